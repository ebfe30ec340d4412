package enums

// CartStatus tracks the lifecycle of a persisted cart document.
type CartStatus string

const (
	CartStatusActive CartStatus = "active"
	CartStatusClosed CartStatus = "closed"
)

func (s CartStatus) IsValid() bool {
	switch s {
	case CartStatusActive, CartStatusClosed:
		return true
	}
	return false
}

// ReservationStatus tracks a product hold outside the cart flow.
type ReservationStatus string

const (
	ReservationStatusReserved  ReservationStatus = "reserved"
	ReservationStatusCancelled ReservationStatus = "cancelled"
	ReservationStatusConverted ReservationStatus = "converted"
)

func (s ReservationStatus) IsValid() bool {
	switch s {
	case ReservationStatusReserved, ReservationStatusCancelled, ReservationStatusConverted:
		return true
	}
	return false
}

// Availability mirrors the catalog's stock signal as served to the storefront.
type Availability string

const (
	AvailabilityInStock    Availability = "in_stock"
	AvailabilityLowStock   Availability = "low_stock"
	AvailabilityOutOfStock Availability = "out_of_stock"
)

func (a Availability) IsValid() bool {
	switch a {
	case AvailabilityInStock, AvailabilityLowStock, AvailabilityOutOfStock:
		return true
	}
	return false
}
