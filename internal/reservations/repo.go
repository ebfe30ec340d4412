package reservations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meditrack-ph/meditrack-backend/pkg/db/models"
	"github.com/meditrack-ph/meditrack-backend/pkg/enums"
)

// Repository encapsulates reservation persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a reservation repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a reservation row.
func (r *Repository) Create(ctx context.Context, reservation *models.Reservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

// FindByID loads one reservation scoped to its owner.
func (r *Repository) FindByID(ctx context.Context, ownerID, id uuid.UUID) (models.Reservation, error) {
	var reservation models.Reservation
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ?", id, ownerID).
		First(&reservation).
		Error
	return reservation, err
}

// ListByOwner returns the owner's reservations, optionally narrowed to one
// status, newest first.
func (r *Repository) ListByOwner(ctx context.Context, ownerID uuid.UUID, status enums.ReservationStatus) ([]models.Reservation, error) {
	query := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var reservations []models.Reservation
	err := query.Order("created_at DESC").Find(&reservations).Error
	return reservations, err
}

// UpdateStatus transitions a reservation. The WHERE clause pins the current
// status so concurrent transitions cannot double-apply.
func (r *Repository) UpdateStatus(ctx context.Context, ownerID, id uuid.UUID, from, to enums.ReservationStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Reservation{}).
		Where("id = ? AND owner_id = ? AND status = ?", id, ownerID, from).
		Update("status", to)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
