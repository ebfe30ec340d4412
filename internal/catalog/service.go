// Package catalog serves the product listing the storefront browses and the
// snapshots the cart copies at add time.
package catalog

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

// Service exposes catalog reads.
type Service interface {
	List(ctx context.Context, filter Filter) (Page, error)
	Get(ctx context.Context, id uuid.UUID) (models.Product, error)

	// Snapshot returns the denormalized slice of a product the cart stores.
	// Out-of-stock products cannot be snapshotted.
	Snapshot(ctx context.Context, id uuid.UUID) (cart.ProductSnapshot, error)
}

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Repo *Repository
}

type service struct {
	repo *Repository
}

// NewService builds a catalog service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog repo is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) List(ctx context.Context, filter Filter) (Page, error) {
	if filter.Availability != "" && !filter.Availability.IsValid() {
		return Page{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown availability filter")
	}
	page, err := s.repo.List(ctx, filter)
	if err != nil {
		return Page{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return page, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (models.Product, error) {
	if id == uuid.Nil {
		return models.Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Product{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "product not found")
		}
		return models.Product{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) Snapshot(ctx context.Context, id uuid.UUID) (cart.ProductSnapshot, error) {
	product, err := s.Get(ctx, id)
	if err != nil {
		return cart.ProductSnapshot{}, err
	}
	if product.Availability == enums.AvailabilityOutOfStock {
		return cart.ProductSnapshot{}, pkgerrors.New(pkgerrors.CodeConflict, "product is out of stock")
	}
	return cart.ProductSnapshot{
		ProductID:    product.ID.String(),
		Name:         product.Name,
		Price:        product.Price,
		PharmacyName: product.PharmacyName,
	}, nil
}
