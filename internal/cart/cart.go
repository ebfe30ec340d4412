package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/meditrack-ph/meditrack-backend/pkg/enums"
	pkgerrors "github.com/meditrack-ph/meditrack-backend/pkg/errors"
	"github.com/meditrack-ph/meditrack-backend/pkg/pricing"
)

// ProductSnapshot is the slice of a catalog record the cart copies at add
// time. Name and price are denormalized on purpose: the line item must keep
// the price the buyer saw even if the catalog entry changes later.
type ProductSnapshot struct {
	ProductID    string
	Name         string
	Price        string
	PharmacyName string
}

// LineItem is one product entry within a cart.
type LineItem struct {
	ProductID    string          `json:"product_id"`
	Name         string          `json:"name"`
	PharmacyName string          `json:"pharmacy_name,omitempty"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
}

// Subtotal returns unit price times quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Cart holds a principal's (or guest's) pending selections. Items keep
// insertion order for display; product ids are unique within a cart.
type Cart struct {
	ID        *uuid.UUID
	OwnerID   string
	Items     []LineItem
	Status    enums.CartStatus
	UpdatedAt time.Time
}

// NewCart returns an empty guest cart.
func NewCart() *Cart {
	return &Cart{Status: enums.CartStatusActive, UpdatedAt: time.Now().UTC()}
}

// AddItem merges quantity into an existing line or appends a new one with
// the normalized unit price. Quantity must be positive.
func (c *Cart) AddItem(snapshot ProductSnapshot, quantity int) (*LineItem, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if snapshot.ProductID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	c.touch()

	if item := c.find(snapshot.ProductID); item != nil {
		item.Quantity += quantity
		return item, nil
	}

	unitPrice, _ := pricing.NormalizeOrZero(snapshot.Price)
	c.Items = append(c.Items, LineItem{
		ProductID:    snapshot.ProductID,
		Name:         snapshot.Name,
		PharmacyName: snapshot.PharmacyName,
		UnitPrice:    unitPrice,
		Quantity:     quantity,
	})
	return &c.Items[len(c.Items)-1], nil
}

// IncrementQuantity bumps the matching line by one. Unknown ids are a no-op.
func (c *Cart) IncrementQuantity(productID string) *LineItem {
	item := c.find(productID)
	if item == nil {
		return nil
	}
	item.Quantity++
	c.touch()
	return item
}

// DecrementQuantity lowers the matching line by one, floored at 1. Removal
// is a separate, explicit operation.
func (c *Cart) DecrementQuantity(productID string) *LineItem {
	item := c.find(productID)
	if item == nil {
		return nil
	}
	if item.Quantity > 1 {
		item.Quantity--
		c.touch()
	}
	return item
}

// RemoveItem deletes the line entirely regardless of quantity. Removing an
// absent id is an idempotent no-op.
func (c *Cart) RemoveItem(productID string) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			c.touch()
			return true
		}
	}
	return false
}

// Item returns a copy of the matching line.
func (c *Cart) Item(productID string) (LineItem, bool) {
	if item := c.find(productID); item != nil {
		return *item, true
	}
	return LineItem{}, false
}

// TotalPrice sums unit price times quantity over all lines.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// Clone deep-copies the cart.
func (c *Cart) Clone() *Cart {
	dup := *c
	if c.ID != nil {
		id := *c.ID
		dup.ID = &id
	}
	dup.Items = append([]LineItem(nil), c.Items...)
	return &dup
}

func (c *Cart) find(productID string) *LineItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

func (c *Cart) touch() {
	c.UpdatedAt = time.Now().UTC()
}
