// Package transactions persists completed purchases. A transaction is the
// durable record checkout writes before it touches the cart, so a crash
// between the two leaves a record without a mutation, never the reverse.
package transactions

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meditrack-ph/meditrack-backend/pkg/docstore"
	pkgerrors "github.com/meditrack-ph/meditrack-backend/pkg/errors"
)

// Line is one purchased product within a transaction.
type Line struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	PharmacyName string          `json:"pharmacy_name,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

// Record is a completed purchase.
type Record struct {
	ID        uuid.UUID       `json:"id"`
	OwnerID   string          `json:"owner_id"`
	CartID    uuid.UUID       `json:"cart_id"`
	Lines     []Line          `json:"lines"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

func recordKey(id uuid.UUID) string {
	return "transaction/" + id.String()
}

func ownerIndex(ownerID string) string {
	return "transaction_owner/" + ownerID
}

// Repository reads and writes transaction records in the document store.
type Repository struct {
	docs docstore.Store
}

// NewRepository wraps a document store.
func NewRepository(docs docstore.Store) (*Repository, error) {
	if docs == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "document store is required")
	}
	return &Repository{docs: docs}, nil
}

// Create persists a new transaction record and indexes it under its owner.
func (r *Repository) Create(ctx context.Context, record Record) error {
	if record.ID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "transaction id is required")
	}
	if record.OwnerID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	if len(record.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "transaction needs at least one line")
	}

	if err := r.docs.Upsert(ctx, recordKey(record.ID), record, record.CreatedAt); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "write transaction record")
	}
	if err := r.docs.AddToIndex(ctx, ownerIndex(record.OwnerID), recordKey(record.ID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "index transaction record")
	}
	return nil
}

// Get fetches one transaction by id.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	var record Record
	if err := r.docs.Get(ctx, recordKey(id), &record); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return Record{}, pkgerrors.New(pkgerrors.CodeNotFound, "transaction not found")
		}
		return Record{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read transaction record")
	}
	return record, nil
}

// ListByOwner returns the owner's transactions, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID string) ([]Record, error) {
	keys, err := r.docs.ListIndex(ctx, ownerIndex(ownerID))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list owner transactions")
	}

	records := make([]Record, 0, len(keys))
	for _, key := range keys {
		var record Record
		if err := r.docs.Get(ctx, key, &record); err != nil {
			if errors.Is(err, docstore.ErrNotFound) {
				continue
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read transaction record")
		}
		records = append(records, record)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}
