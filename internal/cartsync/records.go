// Package cartsync mirrors cart state into the remote document store. The
// synchronous half (Store) serves cart resolution and checkout; the async
// half (Adapter) drains a bounded queue of mutation events so cart writes
// never block on the remote store.
package cartsync

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartRecord is the remote shape of a cart header document.
type CartRecord struct {
	OwnerID     string    `json:"owner_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	LastUpdated time.Time `json:"last_updated"`
}

// LineItemRecord is the remote shape of one cart line. Unit cost and total
// are both persisted so downstream readers never recompute money.
type LineItemRecord struct {
	CartID       string          `json:"cart_id"`
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	PharmacyName string          `json:"pharmacy_name,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

func cartKey(cartID uuid.UUID) string {
	return "cart/" + cartID.String()
}

func itemKey(cartID uuid.UUID, productID string) string {
	return "cart/" + cartID.String() + "/item/" + productID
}

func itemIndex(cartID uuid.UUID) string {
	return "cart_items/" + cartID.String()
}

func ownerIndex(ownerID string) string {
	return "cart_owner/" + ownerID
}
