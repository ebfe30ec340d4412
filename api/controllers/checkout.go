package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meditrack-ph/meditrack-backend/api/responses"
	"github.com/meditrack-ph/meditrack-backend/api/validators"
	"github.com/meditrack-ph/meditrack-backend/internal/cart"
	checkoutsvc "github.com/meditrack-ph/meditrack-backend/internal/checkout"
	"github.com/meditrack-ph/meditrack-backend/internal/transactions"
	pkgerrors "github.com/meditrack-ph/meditrack-backend/pkg/errors"
	"github.com/meditrack-ph/meditrack-backend/pkg/logger"
)

type checkoutPayload struct {
	ProductIDs []string `json:"product_ids"`
}

// Checkout purchases the whole cart, or only the lines named in the
// optional request body.
func Checkout(registry *cart.Registry, svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		mgr, err := managerFor(ctx, registry)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var record transactions.Record
		if r.ContentLength > 0 {
			var payload checkoutPayload
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			record, err = svc.Checkout(ctx, mgr, payload.ProductIDs)
		} else {
			record, err = svc.CheckoutAll(ctx, mgr)
		}
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"transaction": record,
			"cart":        viewOf(mgr),
		})
	}
}

// CheckoutItem purchases one cart line.
func CheckoutItem(registry *cart.Registry, svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		mgr, err := managerFor(ctx, registry)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		record, err := svc.CheckoutItem(ctx, mgr, chi.URLParam(r, "productID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"transaction": record,
			"cart":        viewOf(mgr),
		})
	}
}
