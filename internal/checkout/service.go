// Package checkout converts cart lines into transaction records. The order
// of operations is fixed: persist the transaction first, then mutate the
// cart. A failed persist leaves the cart untouched so the buyer can retry.
package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/meditrack-ph/meditrack-backend/internal/cart"
	"github.com/meditrack-ph/meditrack-backend/internal/transactions"
	pkgerrors "github.com/meditrack-ph/meditrack-backend/pkg/errors"
	"github.com/meditrack-ph/meditrack-backend/pkg/logger"
)

// Service checks out a selection of cart lines, a single line, or the
// whole cart.
type Service interface {
	// Checkout purchases the selected lines in their full quantities and
	// removes them from the cart. Unselected lines are untouched. Every
	// selected id must be present in the cart.
	Checkout(ctx context.Context, mgr *cart.Manager, productIDs []string) (transactions.Record, error)

	// CheckoutItem purchases one cart line in its full quantity and removes
	// it from the cart. The rest of the cart is untouched.
	CheckoutItem(ctx context.Context, mgr *cart.Manager, productID string) (transactions.Record, error)

	// CheckoutAll purchases every line, empties the cart, and closes it.
	CheckoutAll(ctx context.Context, mgr *cart.Manager) (transactions.Record, error)
}

type recordWriter interface {
	Create(ctx context.Context, record transactions.Record) error
}

type service struct {
	records recordWriter
	logg    *logger.Logger
}

// Params carries the service dependencies.
type Params struct {
	Records *transactions.Repository
	Logger  *logger.Logger
}

// NewService validates dependencies and returns a checkout service.
func NewService(params Params) (Service, error) {
	if params.Records == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "transactions repository is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{records: params.Records, logg: params.Logger}, nil
}

func (s *service) Checkout(ctx context.Context, mgr *cart.Manager, productIDs []string) (transactions.Record, error) {
	cartID, err := requireBound(mgr)
	if err != nil {
		return transactions.Record{}, err
	}
	if len(productIDs) == 0 {
		return transactions.Record{}, pkgerrors.New(pkgerrors.CodeValidation, "no items selected")
	}

	seen := make(map[string]struct{}, len(productIDs))
	items := make([]cart.LineItem, 0, len(productIDs))
	for _, id := range productIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		item, ok := mgr.Item(id)
		if !ok {
			return transactions.Record{}, pkgerrors.New(pkgerrors.CodeValidation, "product is not in the cart")
		}
		items = append(items, item)
	}

	record := buildRecord(mgr.OwnerID(), cartID, items)
	if err := s.records.Create(ctx, record); err != nil {
		return transactions.Record{}, err
	}

	for _, item := range items {
		mgr.RemoveItem(ctx, item.ProductID)
	}
	s.closeIfEmpty(ctx, mgr)
	s.logCheckout(ctx, record)
	return record, nil
}

func (s *service) CheckoutItem(ctx context.Context, mgr *cart.Manager, productID string) (transactions.Record, error) {
	return s.Checkout(ctx, mgr, []string{productID})
}

func (s *service) CheckoutAll(ctx context.Context, mgr *cart.Manager) (transactions.Record, error) {
	if _, err := requireBound(mgr); err != nil {
		return transactions.Record{}, err
	}

	items := mgr.Items()
	if len(items) == 0 {
		return transactions.Record{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return s.Checkout(ctx, mgr, ids)
}

// requireBound rejects guest sessions; checkout always needs a principal.
func requireBound(mgr *cart.Manager) (uuid.UUID, error) {
	if mgr == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "cart manager is required")
	}
	cartID, ok := mgr.CartID()
	if !ok || mgr.State() != cart.StateBound {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to check out")
	}
	return cartID, nil
}

func buildRecord(ownerID string, cartID uuid.UUID, items []cart.LineItem) transactions.Record {
	record := transactions.Record{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		CartID:    cartID,
		CreatedAt: time.Now().UTC(),
	}
	for _, item := range items {
		record.Lines = append(record.Lines, transactions.Line{
			ProductID:    item.ProductID,
			Name:         item.Name,
			PharmacyName: item.PharmacyName,
			Quantity:     item.Quantity,
			UnitCost:     item.UnitPrice,
			TotalPrice:   item.Subtotal(),
		})
		record.Total = record.Total.Add(item.Subtotal())
	}
	return record
}

func (s *service) closeIfEmpty(ctx context.Context, mgr *cart.Manager) {
	if len(mgr.Items()) > 0 {
		return
	}
	if err := mgr.Close(ctx); err != nil {
		// The purchase already succeeded; a failed close only delays the
		// remote header flip and is retried on the next resolve.
		s.logg.Warn(ctx, "closing checked-out cart failed: "+err.Error())
	}
}

func (s *service) logCheckout(ctx context.Context, record transactions.Record) {
	ctx = s.logg.WithFields(ctx, map[string]any{
		"transaction_id": record.ID.String(),
		"cart_id":        record.CartID.String(),
		"user_id":        record.OwnerID,
		"lines":          len(record.Lines),
		"total":          record.Total.StringFixed(2),
	})
	s.logg.Info(ctx, "checkout.completed")
}
