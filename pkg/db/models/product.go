package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/meditrack-ph/meditrack-backend/pkg/enums"
)

// Product is a catalog entry as the storefront serves it. Price stays a
// display string ("₱123.45"); the cart normalizes it at add time so a
// line item carries the price the buyer actually saw.
type Product struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string             `gorm:"column:name;not null;index:products_name_idx" json:"product_name"`
	Price        string             `gorm:"column:price;not null" json:"price"`
	PharmacyName string             `gorm:"column:pharmacy_name;not null;index:products_pharmacy_idx" json:"pharmacy_name"`
	Category     string             `gorm:"column:category;not null;index:products_category_idx" json:"category"`
	Manufacturer string             `gorm:"column:manufacturer" json:"manufacturer,omitempty"`
	Dosage       string             `gorm:"column:dosage" json:"dosage,omitempty"`
	Availability enums.Availability `gorm:"column:availability;not null;default:'in_stock'" json:"availability"`
	IsActive     bool               `gorm:"column:is_active;not null;default:true" json:"-"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime" json:"-"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}
