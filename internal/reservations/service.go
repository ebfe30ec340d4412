// Package reservations manages product holds placed for pharmacy pickup.
// A hold copies the product's display price at creation, can be cancelled,
// or converted into the owner's cart for a normal checkout.
package reservations

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meditrack-ph/meditrack-backend/internal/cart"
	"github.com/meditrack-ph/meditrack-backend/pkg/db/models"
	"github.com/meditrack-ph/meditrack-backend/pkg/enums"
	pkgerrors "github.com/meditrack-ph/meditrack-backend/pkg/errors"
)

// snapshotLoader is the slice of the catalog service reservations need.
type snapshotLoader interface {
	Snapshot(ctx context.Context, id uuid.UUID) (cart.ProductSnapshot, error)
}

// Service exposes business rules for reservation management.
type Service interface {
	Create(ctx context.Context, ownerID, productID uuid.UUID, quantity int) (models.Reservation, error)
	List(ctx context.Context, ownerID uuid.UUID, status enums.ReservationStatus) ([]models.Reservation, error)
	Cancel(ctx context.Context, ownerID, reservationID uuid.UUID) error

	// Convert moves an active hold into the given cart manager and marks it
	// converted. The cart line carries the price captured at hold time.
	Convert(ctx context.Context, ownerID, reservationID uuid.UUID, mgr *cart.Manager) error
}

// ServiceParams groups dependencies for the reservation service.
type ServiceParams struct {
	Repo    *Repository
	Catalog snapshotLoader
}

type service struct {
	repo    *Repository
	catalog snapshotLoader
}

// NewService builds a reservation service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation repo is required")
	}
	if params.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog loader is required")
	}
	return &service{repo: params.Repo, catalog: params.Catalog}, nil
}

func (s *service) Create(ctx context.Context, ownerID, productID uuid.UUID, quantity int) (models.Reservation, error) {
	if ownerID == uuid.Nil {
		return models.Reservation{}, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	if quantity <= 0 {
		return models.Reservation{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	snapshot, err := s.catalog.Snapshot(ctx, productID)
	if err != nil {
		return models.Reservation{}, err
	}

	reservation := models.Reservation{
		ID:           uuid.New(),
		OwnerID:      ownerID,
		ProductID:    productID,
		ProductName:  snapshot.Name,
		Price:        snapshot.Price,
		PharmacyName: snapshot.PharmacyName,
		Quantity:     quantity,
		Status:       enums.ReservationStatusReserved,
	}
	if err := s.repo.Create(ctx, &reservation); err != nil {
		return models.Reservation{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reservation")
	}
	return reservation, nil
}

func (s *service) List(ctx context.Context, ownerID uuid.UUID, status enums.ReservationStatus) ([]models.Reservation, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	if status != "" && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown reservation status")
	}
	reservations, err := s.repo.ListByOwner(ctx, ownerID, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservations")
	}
	return reservations, nil
}

func (s *service) Cancel(ctx context.Context, ownerID, reservationID uuid.UUID) error {
	transitioned, err := s.transition(ctx, ownerID, reservationID, enums.ReservationStatusCancelled)
	if err != nil {
		return err
	}
	if !transitioned {
		return pkgerrors.New(pkgerrors.CodeConflict, "reservation is no longer active")
	}
	return nil
}

func (s *service) Convert(ctx context.Context, ownerID, reservationID uuid.UUID, mgr *cart.Manager) error {
	if mgr == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart manager is required")
	}

	reservation, err := s.repo.FindByID(ctx, ownerID, reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "reservation not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
	}

	transitioned, err := s.transition(ctx, ownerID, reservationID, enums.ReservationStatusConverted)
	if err != nil {
		return err
	}
	if !transitioned {
		return pkgerrors.New(pkgerrors.CodeConflict, "reservation is no longer active")
	}

	snapshot := cart.ProductSnapshot{
		ProductID:    reservation.ProductID.String(),
		Name:         reservation.ProductName,
		Price:        reservation.Price,
		PharmacyName: reservation.PharmacyName,
	}
	if _, err := mgr.AddItem(ctx, snapshot, reservation.Quantity); err != nil {
		// Roll the status back so the hold is not lost.
		if _, rbErr := s.repo.UpdateStatus(ctx, ownerID, reservationID, enums.ReservationStatusConverted, enums.ReservationStatusReserved); rbErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, rbErr, "restore reservation after failed convert")
		}
		return err
	}
	return nil
}

func (s *service) transition(ctx context.Context, ownerID, reservationID uuid.UUID, to enums.ReservationStatus) (bool, error) {
	if ownerID == uuid.Nil || reservationID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "owner id and reservation id are required")
	}
	transitioned, err := s.repo.UpdateStatus(ctx, ownerID, reservationID, enums.ReservationStatusReserved, to)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update reservation status")
	}
	return transitioned, nil
}
