package cart

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meditrack-ph/meditrack-backend/pkg/enums"
	pkgerrors "github.com/meditrack-ph/meditrack-backend/pkg/errors"
	"github.com/meditrack-ph/meditrack-backend/pkg/logger"
)

// State names a position in the per-session cart lifecycle.
type State string

const (
	StateGuest        State = "guest"
	StateResolving    State = "resolving"
	StateMergePending State = "merge_pending"
	StateBound        State = "bound"
)

// Syncer is the outbound mirror for cart mutations. Calls must never block
// the mutation that triggered them; delivery is fire-and-forget.
type Syncer interface {
	UpsertItem(cartID uuid.UUID, item LineItem, stamp time.Time)
	DeleteItem(cartID uuid.UUID, productID string, stamp time.Time)
	TouchCart(cartID uuid.UUID, stamp time.Time)
}

// RemoteStore is the synchronous read/bind surface of the remote cart store.
type RemoteStore interface {
	FindActiveCartByOwner(ctx context.Context, ownerID string) (uuid.UUID, bool, error)
	CreateCart(ctx context.Context, ownerID string, at time.Time) (uuid.UUID, error)
	LoadItems(ctx context.Context, cartID uuid.UUID) ([]LineItem, error)
	CloseCart(ctx context.Context, cartID uuid.UUID, at time.Time) error
}

// Manager owns one session's cart and drives the Guest -> Resolving ->
// (MergePending ->) Bound lifecycle. The cart is never shared as ambient
// state; everything that needs it receives the manager explicitly.
type Manager struct {
	mu     sync.Mutex
	state  State
	cart   *Cart
	store  RemoteStore
	syncer Syncer
	logg   *logger.Logger
}

// NewManager starts a session in the Guest state with an empty cart.
func NewManager(store RemoteStore, syncer Syncer, logg *logger.Logger) (*Manager, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "remote store is required")
	}
	if syncer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "syncer is required")
	}
	return &Manager{
		state:  StateGuest,
		cart:   NewCart(),
		store:  store,
		syncer: syncer,
		logg:   logg,
	}, nil
}

// State reports the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// CartID returns the bound cart identifier, if any.
func (m *Manager) CartID() (uuid.UUID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cart.ID == nil {
		return uuid.Nil, false
	}
	return *m.cart.ID, true
}

// OwnerID returns the bound principal, empty for a guest session.
func (m *Manager) OwnerID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart.OwnerID
}

// Items returns a copy of the cart lines in display order.
func (m *Manager) Items() []LineItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]LineItem(nil), m.cart.Items...)
}

// Item returns a copy of the matching line.
func (m *Manager) Item(productID string) (LineItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart.Item(productID)
}

// TotalPrice sums the cart.
func (m *Manager) TotalPrice() decimal.Decimal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart.TotalPrice()
}

// Snapshot deep-copies the cart for read-only consumers.
func (m *Manager) Snapshot() *Cart {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cart.Clone()
}

// AddItem applies the mutation locally, then mirrors it when bound. The
// local update is authoritative; a failed mirror never rolls it back.
func (m *Manager) AddItem(ctx context.Context, snapshot ProductSnapshot, quantity int) (LineItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, err := m.cart.AddItem(snapshot, quantity)
	if err != nil {
		return LineItem{}, err
	}
	m.mirrorUpsert(*item)
	m.logMutation(ctx, "item_added", snapshot.ProductID)
	return *item, nil
}

// IncrementQuantity bumps a line by one; unknown ids are a no-op.
func (m *Manager) IncrementQuantity(ctx context.Context, productID string) (LineItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item := m.cart.IncrementQuantity(productID)
	if item == nil {
		return LineItem{}, false
	}
	m.mirrorUpsert(*item)
	m.logMutation(ctx, "item_incremented", productID)
	return *item, true
}

// DecrementQuantity lowers a line by one, floored at 1.
func (m *Manager) DecrementQuantity(ctx context.Context, productID string) (LineItem, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	item := m.cart.DecrementQuantity(productID)
	if item == nil {
		return LineItem{}, false
	}
	m.mirrorUpsert(*item)
	m.logMutation(ctx, "item_decremented", productID)
	return *item, true
}

// RemoveItem drops a line entirely; absent ids are an idempotent no-op.
func (m *Manager) RemoveItem(ctx context.Context, productID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.cart.RemoveItem(productID) {
		return
	}
	if m.cart.ID != nil {
		m.syncer.DeleteItem(*m.cart.ID, productID, m.cart.UpdatedAt)
		m.syncer.TouchCart(*m.cart.ID, m.cart.UpdatedAt)
	}
	m.logMutation(ctx, "item_removed", productID)
}

// Resolve binds the session to the principal's active remote cart, creating
// one when none exists. Guest items collected before login are merged in:
// quantities sum on collision, otherwise the guest line is appended. Guest
// state has no independent persistence and is discarded after the merge.
func (m *Manager) Resolve(ctx context.Context, ownerID string, guest *Cart) error {
	if ownerID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state == StateBound {
		return nil
	}
	m.state = StateResolving

	cartID, found, err := m.store.FindActiveCartByOwner(ctx, ownerID)
	if err != nil {
		m.state = StateGuest
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve active cart")
	}

	now := time.Now().UTC()
	var items []LineItem
	if found {
		items, err = m.store.LoadItems(ctx, cartID)
		if err != nil {
			m.state = StateGuest
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart items")
		}
	} else {
		cartID, err = m.store.CreateCart(ctx, ownerID, now)
		if err != nil {
			m.state = StateGuest
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
		}
	}

	prior := m.cart
	m.cart = &Cart{
		ID:        &cartID,
		OwnerID:   ownerID,
		Items:     items,
		Status:    enums.CartStatusActive,
		UpdatedAt: now,
	}

	// Lines collected while the session was unbound, whether from guest
	// browsing or added after a checkout closed the previous cart, fold
	// into the resolved cart the same way a guest cart does.
	if prior != nil && prior.ID == nil && len(prior.Items) > 0 {
		m.state = StateMergePending
		m.mergeGuestLocked(prior)
	}
	if guest != nil && len(guest.Items) > 0 {
		m.state = StateMergePending
		m.mergeGuestLocked(guest)
	}

	m.state = StateBound
	if m.logg != nil {
		ctx = m.logg.WithFields(ctx, map[string]any{
			"cart_id": cartID.String(),
			"user_id": ownerID,
			"reused":  found,
		})
		m.logg.Info(ctx, "cart.bound")
	}
	return nil
}

// MergeGuest folds a guest cart into an already bound manager. It is used
// when a guest session authenticates after the user's cart was resolved.
func (m *Manager) MergeGuest(guest *Cart) {
	if guest == nil || len(guest.Items) == 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cart.ID == nil {
		return
	}
	m.mergeGuestLocked(guest)
}

// Close marks the bound cart closed after a full checkout and unbinds the
// session. The closed cart is consumed; the next resolve opens a fresh one,
// and anything added before then is carried into it.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cart.ID == nil {
		return nil
	}
	m.cart.Status = enums.CartStatusClosed
	m.cart.touch()
	if err := m.store.CloseCart(ctx, *m.cart.ID, m.cart.UpdatedAt); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "close cart")
	}
	m.cart = NewCart()
	m.state = StateGuest
	return nil
}

func (m *Manager) mergeGuestLocked(guest *Cart) {
	for _, guestItem := range guest.Items {
		if item := m.cart.find(guestItem.ProductID); item != nil {
			item.Quantity += guestItem.Quantity
		} else {
			m.cart.Items = append(m.cart.Items, guestItem)
		}
	}
	m.cart.touch()
	for _, item := range m.cart.Items {
		m.syncer.UpsertItem(*m.cart.ID, item, m.cart.UpdatedAt)
	}
	m.syncer.TouchCart(*m.cart.ID, m.cart.UpdatedAt)
}

func (m *Manager) mirrorUpsert(item LineItem) {
	if m.cart.ID == nil {
		return
	}
	m.syncer.UpsertItem(*m.cart.ID, item, m.cart.UpdatedAt)
	m.syncer.TouchCart(*m.cart.ID, m.cart.UpdatedAt)
}

func (m *Manager) logMutation(ctx context.Context, action, productID string) {
	if m.logg == nil || m.cart.ID == nil {
		return
	}
	ctx = m.logg.WithFields(ctx, map[string]any{
		"cart_id":    m.cart.ID.String(),
		"product_id": productID,
	})
	m.logg.Debug(ctx, "cart."+action)
}
