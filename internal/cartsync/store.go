package cartsync

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/meditrack-ph/meditrack-backend/internal/cart"
	"github.com/meditrack-ph/meditrack-backend/pkg/docstore"
	"github.com/meditrack-ph/meditrack-backend/pkg/enums"
	pkgerrors "github.com/meditrack-ph/meditrack-backend/pkg/errors"
)

// Store is the typed cart surface over the raw document store. It implements
// cart.RemoteStore for session resolution and exposes the item-level writes
// the sync adapter and checkout use.
type Store struct {
	docs docstore.Store
}

// NewStore wraps a document store.
func NewStore(docs docstore.Store) (*Store, error) {
	if docs == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "document store is required")
	}
	return &Store{docs: docs}, nil
}

// FindActiveCartByOwner scans the owner's cart index for a cart still marked
// active. Closed carts stay indexed for history but are skipped.
func (s *Store) FindActiveCartByOwner(ctx context.Context, ownerID string) (uuid.UUID, bool, error) {
	keys, err := s.docs.ListIndex(ctx, ownerIndex(ownerID))
	if err != nil {
		return uuid.Nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list owner carts")
	}

	for _, key := range keys {
		var record CartRecord
		if err := s.docs.Get(ctx, key, &record); err != nil {
			if errors.Is(err, docstore.ErrNotFound) {
				continue
			}
			return uuid.Nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read cart record")
		}
		if record.Status != string(enums.CartStatusActive) {
			continue
		}
		id, err := uuid.Parse(strings.TrimPrefix(key, "cart/"))
		if err != nil {
			continue
		}
		return id, true, nil
	}
	return uuid.Nil, false, nil
}

// CreateCart writes a fresh cart header and indexes it under the owner.
func (s *Store) CreateCart(ctx context.Context, ownerID string, at time.Time) (uuid.UUID, error) {
	cartID := uuid.New()
	record := CartRecord{
		OwnerID:     ownerID,
		Status:      string(enums.CartStatusActive),
		CreatedAt:   at,
		LastUpdated: at,
	}
	if err := s.docs.Upsert(ctx, cartKey(cartID), record, at); err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart record")
	}
	if err := s.docs.AddToIndex(ctx, ownerIndex(ownerID), cartKey(cartID)); err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "index cart record")
	}
	return cartID, nil
}

// LoadItems reads every line item of a cart, in index order.
func (s *Store) LoadItems(ctx context.Context, cartID uuid.UUID) ([]cart.LineItem, error) {
	keys, err := s.docs.ListIndex(ctx, itemIndex(cartID))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart items")
	}

	var items []cart.LineItem
	for _, key := range keys {
		var record LineItemRecord
		if err := s.docs.Get(ctx, key, &record); err != nil {
			if errors.Is(err, docstore.ErrNotFound) {
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read cart item")
		}
		items = append(items, cart.LineItem{
			ProductID:    record.ProductID,
			Name:         record.Name,
			PharmacyName: record.PharmacyName,
			UnitPrice:    record.UnitCost,
			Quantity:     record.Quantity,
		})
	}
	return items, nil
}

// CloseCart flips the cart header to closed. The record and its index entry
// stay behind for transaction history.
func (s *Store) CloseCart(ctx context.Context, cartID uuid.UUID, at time.Time) error {
	var record CartRecord
	if err := s.docs.Get(ctx, cartKey(cartID), &record); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read cart record")
	}
	record.Status = string(enums.CartStatusClosed)
	record.LastUpdated = at
	if err := s.docs.Upsert(ctx, cartKey(cartID), record, at); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close cart record")
	}
	return nil
}

// UpsertItem writes one line item document and indexes it under its cart.
// Replays with an older stamp are skipped by the store, so the write is
// idempotent and safe to retry.
func (s *Store) UpsertItem(ctx context.Context, cartID uuid.UUID, item cart.LineItem, stamp time.Time) error {
	record := LineItemRecord{
		CartID:       cartID.String(),
		ProductID:    item.ProductID,
		Name:         item.Name,
		PharmacyName: item.PharmacyName,
		Quantity:     item.Quantity,
		UnitCost:     item.UnitPrice,
		TotalPrice:   item.Subtotal(),
	}
	if err := s.docs.Upsert(ctx, itemKey(cartID, item.ProductID), record, stamp); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert cart item")
	}
	if err := s.docs.AddToIndex(ctx, itemIndex(cartID), itemKey(cartID, item.ProductID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "index cart item")
	}
	return nil
}

// DeleteItem removes one line item document and its index entry.
func (s *Store) DeleteItem(ctx context.Context, cartID uuid.UUID, productID string) error {
	if err := s.docs.Delete(ctx, itemKey(cartID, productID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
	}
	if err := s.docs.RemoveFromIndex(ctx, itemIndex(cartID), itemKey(cartID, productID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unindex cart item")
	}
	return nil
}

// TouchCart refreshes the cart header's last-updated stamp.
func (s *Store) TouchCart(ctx context.Context, cartID uuid.UUID, at time.Time) error {
	var record CartRecord
	if err := s.docs.Get(ctx, cartKey(cartID), &record); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read cart record")
	}
	record.LastUpdated = at
	if err := s.docs.Upsert(ctx, cartKey(cartID), record, at); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "touch cart record")
	}
	return nil
}
