package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meditrack-ph/meditrack-backend/pkg/db/models"
	"github.com/meditrack-ph/meditrack-backend/pkg/enums"
	"github.com/meditrack-ph/meditrack-backend/pkg/pagination"
)

// Filter narrows a catalog listing. Zero values mean "no constraint".
type Filter struct {
	Search       string
	Category     string
	PharmacyName string
	Availability enums.Availability
	Cursor       string
	Limit        int
}

// Page is one listing page plus the cursor for the next one.
type Page struct {
	Products   []models.Product
	NextCursor string
	Total      int64
}

// Repository encapsulates catalog persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads one active product.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&product).
		Error
	return product, err
}

// List returns a filtered, cursor-paginated slice of the catalog ordered
// newest first.
func (r *Repository) List(ctx context.Context, filter Filter) (Page, error) {
	normalizedLimit := pagination.NormalizeLimit(filter.Limit)
	decodedCursor, err := pagination.ParseCursor(filter.Cursor)
	if err != nil {
		return Page{}, err
	}

	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.Product{}), filter)

	var total int64
	if err := query.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Page{}, err
	}

	if decodedCursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID,
		)
	}

	var products []models.Product
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(filter.Limit)).
		Find(&products).
		Error
	if err != nil {
		return Page{}, err
	}

	nextCursor := ""
	if len(products) > normalizedLimit {
		products = products[:normalizedLimit]
		last := products[len(products)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	return Page{Products: products, NextCursor: nextCursor, Total: total}, nil
}

// Create inserts a product. Used by the seeder and admin tooling.
func (r *Repository) Create(ctx context.Context, product *models.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

// UpdateAvailability flips the stock signal of one product.
func (r *Repository) UpdateAvailability(ctx context.Context, id uuid.UUID, availability enums.Availability) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("availability", availability).
		Error
}

func (r *Repository) applyFilter(query *gorm.DB, filter Filter) *gorm.DB {
	query = query.Where("is_active = ?", true)

	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(manufacturer) LIKE ?", like, like)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.PharmacyName != "" {
		query = query.Where("pharmacy_name = ?", filter.PharmacyName)
	}
	if filter.Availability != "" {
		query = query.Where("availability = ?", filter.Availability)
	}
	return query
}
