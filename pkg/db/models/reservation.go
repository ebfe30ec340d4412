package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/meditrack-ph/meditrack-backend/pkg/enums"
)

// Reservation is a product hold placed outside the cart flow, for pickup at
// the pharmacy. The price snapshot is copied at reservation time like a cart
// line so later catalog edits never reprice a hold.
type Reservation struct {
	ID           uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OwnerID      uuid.UUID               `gorm:"column:owner_id;type:uuid;not null;index:reservations_owner_idx" json:"owner_id"`
	ProductID    uuid.UUID               `gorm:"column:product_id;type:uuid;not null" json:"product_id"`
	ProductName  string                  `gorm:"column:product_name;not null" json:"product_name"`
	Price        string                  `gorm:"column:price;not null" json:"price"`
	PharmacyName string                  `gorm:"column:pharmacy_name;not null" json:"pharmacy_name"`
	Quantity     int                     `gorm:"column:quantity;not null;default:1" json:"quantity"`
	Status       enums.ReservationStatus `gorm:"column:status;not null;default:'reserved'" json:"status"`
	CreatedAt    time.Time               `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time               `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}
