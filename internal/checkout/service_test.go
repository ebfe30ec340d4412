package checkout

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/meditrack-ph/meditrack-backend/internal/cart"
	"github.com/meditrack-ph/meditrack-backend/internal/cartsync"
	"github.com/meditrack-ph/meditrack-backend/internal/transactions"
	"github.com/meditrack-ph/meditrack-backend/pkg/docstore"
	pkgerrors "github.com/meditrack-ph/meditrack-backend/pkg/errors"
	"github.com/meditrack-ph/meditrack-backend/pkg/logger"
)

type noopSyncer struct{}

func (noopSyncer) UpsertItem(uuid.UUID, cart.LineItem, time.Time) {}
func (noopSyncer) DeleteItem(uuid.UUID, string, time.Time)        {}
func (noopSyncer) TouchCart(uuid.UUID, time.Time)                 {}

// writeThroughSyncer mirrors synchronously so tests can read the remote
// copy right away.
type writeThroughSyncer struct {
	store *cartsync.Store
}

func (s writeThroughSyncer) UpsertItem(cartID uuid.UUID, item cart.LineItem, stamp time.Time) {
	_ = s.store.UpsertItem(context.Background(), cartID, item, stamp)
}

func (s writeThroughSyncer) DeleteItem(cartID uuid.UUID, productID string, _ time.Time) {
	_ = s.store.DeleteItem(context.Background(), cartID, productID)
}

func (s writeThroughSyncer) TouchCart(cartID uuid.UUID, stamp time.Time) {
	_ = s.store.TouchCart(context.Background(), cartID, stamp)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

type fixture struct {
	svc      Service
	mgr      *cart.Manager
	repo     *transactions.Repository
	txDocs   *docstore.Memory
	cartDocs *docstore.Memory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cartDocs := docstore.NewMemory()
	remote, err := cartsync.NewStore(cartDocs)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	mgr, err := cart.NewManager(remote, noopSyncer{}, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := mgr.Resolve(context.Background(), "u1", nil); err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	txDocs := docstore.NewMemory()
	repo, err := transactions.NewRepository(txDocs)
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	svc, err := NewService(Params{Records: repo, Logger: testLogger()})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	return &fixture{svc: svc, mgr: mgr, repo: repo, txDocs: txDocs, cartDocs: cartDocs}
}

func addLine(t *testing.T, mgr *cart.Manager, id, name, price string, qty int) {
	t.Helper()
	snapshot := cart.ProductSnapshot{ProductID: id, Name: name, Price: price}
	if _, err := mgr.AddItem(context.Background(), snapshot, qty); err != nil {
		t.Fatalf("AddItem %s: %v", id, err)
	}
}

func TestCheckoutItemRemovesOnlyThatLine(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	addLine(t, f.mgr, "p1", "Biogesic", "₱10.00", 2)
	addLine(t, f.mgr, "p2", "Neozep", "₱5.00", 1)

	record, err := f.svc.CheckoutItem(ctx, f.mgr, "p1")
	if err != nil {
		t.Fatalf("CheckoutItem: %v", err)
	}
	if got, want := record.Total.StringFixed(2), "20.00"; got != want {
		t.Fatalf("expected total %s, got %s", want, got)
	}
	if len(record.Lines) != 1 || record.Lines[0].Quantity != 2 {
		t.Fatalf("unexpected record lines: %+v", record.Lines)
	}

	if _, ok := f.mgr.Item("p1"); ok {
		t.Fatal("p1 must be removed from the cart")
	}
	if _, ok := f.mgr.Item("p2"); !ok {
		t.Fatal("p2 must stay in the cart")
	}

	// The record is durable and listed under the owner.
	listed, err := f.repo.ListByOwner(ctx, "u1")
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != record.ID {
		t.Fatalf("expected the persisted record, got %+v", listed)
	}
}

func TestCheckoutAllEmptiesAndClosesCart(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	addLine(t, f.mgr, "p1", "Biogesic", "₱10.00", 2)
	addLine(t, f.mgr, "p2", "Neozep", "₱5.00", 1)

	record, err := f.svc.CheckoutAll(ctx, f.mgr)
	if err != nil {
		t.Fatalf("CheckoutAll: %v", err)
	}
	if got, want := record.Total.StringFixed(2), "25.00"; got != want {
		t.Fatalf("expected total %s, got %s", want, got)
	}
	if len(f.mgr.Items()) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(f.mgr.Items()))
	}

	// The remote header flipped to closed, so the next resolve starts fresh.
	remote, err := cartsync.NewStore(f.cartDocs)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, found, err := remote.FindActiveCartByOwner(ctx, "u1"); err != nil || found {
		t.Fatalf("expected no active cart after full checkout, found=%v err=%v", found, err)
	}
}

func TestCheckoutAllThenNextSessionSeesLaterItems(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	remote, err := cartsync.NewStore(docstore.NewMemory())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	mgr, err := cart.NewManager(remote, writeThroughSyncer{store: remote}, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := mgr.Resolve(ctx, "u1", nil); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	repo, err := transactions.NewRepository(docstore.NewMemory())
	if err != nil {
		t.Fatalf("NewRepository: %v", err)
	}
	svc, err := NewService(Params{Records: repo, Logger: testLogger()})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	addLine(t, mgr, "p1", "Biogesic", "₱10.00", 1)
	oldID, _ := mgr.CartID()
	if _, err := svc.CheckoutAll(ctx, mgr); err != nil {
		t.Fatalf("CheckoutAll: %v", err)
	}
	if _, ok := mgr.CartID(); ok {
		t.Fatal("full checkout must unbind the session from the closed cart")
	}

	// Shopping continues in the same session; the next resolve opens a
	// fresh cart carrying the new item.
	addLine(t, mgr, "p2", "Neozep", "₱5.00", 1)
	if err := mgr.Resolve(ctx, "u1", nil); err != nil {
		t.Fatalf("re-resolve: %v", err)
	}
	newID, ok := mgr.CartID()
	if !ok || newID == oldID {
		t.Fatalf("expected a fresh cart, got %s (old %s)", newID, oldID)
	}

	// A brand new session over the same store sees the item.
	next, err := cart.NewManager(remote, noopSyncer{}, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if err := next.Resolve(ctx, "u1", nil); err != nil {
		t.Fatalf("next session resolve: %v", err)
	}
	if item, ok := next.Item("p2"); !ok || item.Quantity != 1 {
		t.Fatalf("item added after checkout must survive into the next session, got %+v ok=%v", item, ok)
	}
}

func TestCheckoutSelectionLeavesRestOfCart(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	addLine(t, f.mgr, "p1", "Biogesic", "₱10.00", 2)
	addLine(t, f.mgr, "p2", "Neozep", "₱5.00", 1)
	addLine(t, f.mgr, "p3", "Ascof", "₱7.50", 1)

	record, err := f.svc.Checkout(ctx, f.mgr, []string{"p1", "p3", "p1"})
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if got, want := record.Total.StringFixed(2), "27.50"; got != want {
		t.Fatalf("expected total %s, got %s", want, got)
	}
	if len(record.Lines) != 2 {
		t.Fatalf("duplicate selection must collapse, got %d lines", len(record.Lines))
	}
	if _, ok := f.mgr.Item("p2"); !ok {
		t.Fatal("unselected p2 must stay in the cart")
	}
	if _, ok := f.mgr.Item("p1"); ok {
		t.Fatal("p1 must be removed from the cart")
	}
}

func TestCheckoutEmptySelectionRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	addLine(t, f.mgr, "p1", "Biogesic", "₱10.00", 1)

	_, err := f.svc.Checkout(context.Background(), f.mgr, nil)
	if err == nil {
		t.Fatal("expected error for empty selection")
	}
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected CodeValidation, got %v", err)
	}
	if _, ok := f.mgr.Item("p1"); !ok {
		t.Fatal("rejected checkout must not mutate the cart")
	}
}

func TestCheckoutAllEmptyCartRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, err := f.svc.CheckoutAll(context.Background(), f.mgr)
	if err == nil {
		t.Fatal("expected error for empty cart")
	}
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected CodeValidation, got %v", err)
	}
}

func TestCheckoutItemMissingProductRejected(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	addLine(t, f.mgr, "p1", "Biogesic", "₱10.00", 1)

	_, err := f.svc.CheckoutItem(context.Background(), f.mgr, "ghost")
	if err == nil {
		t.Fatal("expected error for absent product")
	}
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected CodeValidation, got %v", err)
	}
}

func TestCheckoutRequiresBoundCart(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	guest, err := cart.NewManager(mustStore(t), noopSyncer{}, nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	addLine(t, guest, "p1", "Biogesic", "₱10.00", 1)

	_, err = f.svc.CheckoutAll(context.Background(), guest)
	if err == nil {
		t.Fatal("expected rejection for guest checkout")
	}
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected CodeUnauthorized, got %v", err)
	}
}

func TestCheckoutFailedRecordWriteLeavesCartUnchanged(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	addLine(t, f.mgr, "p1", "Biogesic", "₱10.00", 2)
	f.txDocs.FailUpserts = true

	_, err := f.svc.CheckoutAll(ctx, f.mgr)
	if err == nil {
		t.Fatal("expected checkout failure")
	}
	if item, ok := f.mgr.Item("p1"); !ok || item.Quantity != 2 {
		t.Fatalf("failed checkout must not mutate the cart, got %+v ok=%v", item, ok)
	}

	// A retry after the store recovers succeeds.
	f.txDocs.FailUpserts = false
	if _, err := f.svc.CheckoutAll(ctx, f.mgr); err != nil {
		t.Fatalf("retry CheckoutAll: %v", err)
	}
}

func mustStore(t *testing.T) *cartsync.Store {
	t.Helper()
	store, err := cartsync.NewStore(docstore.NewMemory())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return store
}
