package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meditrack-ph/meditrack-backend/api/middleware"
	"github.com/meditrack-ph/meditrack-backend/api/responses"
	"github.com/meditrack-ph/meditrack-backend/api/validators"
	"github.com/meditrack-ph/meditrack-backend/internal/cart"
	"github.com/meditrack-ph/meditrack-backend/internal/catalog"
	pkgerrors "github.com/meditrack-ph/meditrack-backend/pkg/errors"
	"github.com/meditrack-ph/meditrack-backend/pkg/logger"
)

type addCartItemPayload struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"omitempty,gt=0"`
}

type cartItemView struct {
	ProductID    string `json:"product_id"`
	Name         string `json:"name"`
	PharmacyName string `json:"pharmacy_name,omitempty"`
	UnitPrice    string `json:"unit_price"`
	Quantity     int    `json:"quantity"`
	Subtotal     string `json:"subtotal"`
}

type cartView struct {
	CartID *string        `json:"cart_id,omitempty"`
	Status string         `json:"status"`
	Items  []cartItemView `json:"items"`
	Total  string         `json:"total"`
}

func viewOf(mgr *cart.Manager) cartView {
	snapshot := mgr.Snapshot()
	view := cartView{
		Status: string(snapshot.Status),
		Items:  make([]cartItemView, 0, len(snapshot.Items)),
		Total:  snapshot.TotalPrice().StringFixed(2),
	}
	if snapshot.ID != nil {
		id := snapshot.ID.String()
		view.CartID = &id
	}
	for _, item := range snapshot.Items {
		view.Items = append(view.Items, cartItemView{
			ProductID:    item.ProductID,
			Name:         item.Name,
			PharmacyName: item.PharmacyName,
			UnitPrice:    item.UnitPrice.StringFixed(2),
			Quantity:     item.Quantity,
			Subtotal:     item.Subtotal().StringFixed(2),
		})
	}
	return view
}

// managerFor resolves the request's cart manager: the principal's when the
// request is authenticated, the guest session's otherwise.
func managerFor(ctx context.Context, registry *cart.Registry) (*cart.Manager, error) {
	if userID := middleware.UserIDFromContext(ctx); userID != "" {
		return registry.Principal(ctx, userID, middleware.GuestSessionFromContext(ctx))
	}
	guest := middleware.GuestSessionFromContext(ctx)
	if guest == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing cart session")
	}
	return registry.Guest(guest)
}

// CartGet returns the caller's cart.
func CartGet(registry *cart.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		mgr, err := managerFor(ctx, registry)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, viewOf(mgr))
	}
}

// CartAddItem snapshots the product from the catalog and merges it into the
// cart.
func CartAddItem(registry *cart.Registry, catalogSvc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if catalogSvc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload addCartItemPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		productID, err := uuid.Parse(payload.ProductID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}
		quantity := payload.Quantity
		if quantity == 0 {
			quantity = 1
		}

		mgr, err := managerFor(ctx, registry)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		snapshot, err := catalogSvc.Snapshot(ctx, productID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if _, err := mgr.AddItem(ctx, snapshot, quantity); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, viewOf(mgr))
	}
}

// CartIncrementItem bumps a line's quantity by one.
func CartIncrementItem(registry *cart.Registry, logg *logger.Logger) http.HandlerFunc {
	return cartQuantityHandler(registry, logg, func(ctx context.Context, mgr *cart.Manager, productID string) bool {
		_, ok := mgr.IncrementQuantity(ctx, productID)
		return ok
	})
}

// CartDecrementItem lowers a line's quantity by one, floored at 1.
func CartDecrementItem(registry *cart.Registry, logg *logger.Logger) http.HandlerFunc {
	return cartQuantityHandler(registry, logg, func(ctx context.Context, mgr *cart.Manager, productID string) bool {
		_, ok := mgr.DecrementQuantity(ctx, productID)
		return ok
	})
}

func cartQuantityHandler(registry *cart.Registry, logg *logger.Logger, apply func(context.Context, *cart.Manager, string) bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		mgr, err := managerFor(ctx, registry)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		productID := chi.URLParam(r, "productID")
		if !apply(ctx, mgr, productID) {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "product is not in the cart"))
			return
		}
		responses.WriteSuccess(w, viewOf(mgr))
	}
}

// CartRemoveItem drops a line entirely. Removing an absent product succeeds.
func CartRemoveItem(registry *cart.Registry, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		mgr, err := managerFor(ctx, registry)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		mgr.RemoveItem(ctx, chi.URLParam(r, "productID"))
		responses.WriteSuccess(w, viewOf(mgr))
	}
}
