package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meditrack-ph/meditrack-backend/api/responses"
	"github.com/meditrack-ph/meditrack-backend/internal/catalog"
	"github.com/meditrack-ph/meditrack-backend/pkg/enums"
	pkgerrors "github.com/meditrack-ph/meditrack-backend/pkg/errors"
	"github.com/meditrack-ph/meditrack-backend/pkg/logger"
)

// ProductsList serves the filtered catalog listing.
func ProductsList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, err := parseLimit(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		query := r.URL.Query()
		filter := catalog.Filter{
			Search:       strings.TrimSpace(query.Get("search")),
			Category:     strings.TrimSpace(query.Get("category")),
			PharmacyName: strings.TrimSpace(query.Get("pharmacy")),
			Availability: enums.Availability(strings.TrimSpace(query.Get("availability"))),
			Cursor:       strings.TrimSpace(query.Get("cursor")),
			Limit:        limit,
		}

		page, err := svc.List(ctx, filter)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"products":    page.Products,
			"next_cursor": page.NextCursor,
			"total":       page.Total,
		})
	}
}

// ProductGet serves one catalog entry.
func ProductGet(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "productID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		product, err := svc.Get(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
