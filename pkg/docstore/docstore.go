// Package docstore exposes the remote document store the storefront mirrors
// its state into: one JSON document per key, idempotent upserts, and ordered
// secondary indexes. There are no cross-document transactions; every write
// is an independent upsert.
package docstore

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound marks a read of an absent document.
var ErrNotFound = errors.New("docstore: document not found")

// Store is the narrow surface the sync adapter and checkout write through.
type Store interface {
	// Upsert writes doc at key unless the stored document carries a newer
	// stamp. A skipped stale write is not an error; last write wins by
	// stamp, which is the service's explicit conflict rule.
	Upsert(ctx context.Context, key string, doc any, stamp time.Time) error

	// Get unmarshals the document at key into dest, or returns ErrNotFound.
	Get(ctx context.Context, key string, dest any) error

	// Delete removes the document at key. Deleting an absent key succeeds.
	Delete(ctx context.Context, key string) error

	// AddToIndex appends key to the named index; re-adding an existing
	// member is a no-op that keeps its original position. ListIndex
	// returns members in first-add order, so reads built on an index are
	// stable across sessions.
	AddToIndex(ctx context.Context, index, key string) error
	RemoveFromIndex(ctx context.Context, index, key string) error
	ListIndex(ctx context.Context, index string) ([]string, error)
}

type envelope struct {
	StampMS int64  `json:"stamp_ms"`
	Doc     []byte `json:"doc"`
}
