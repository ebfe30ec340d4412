package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/meditrack-ph/meditrack-backend/pkg/db/models"
	"github.com/meditrack-ph/meditrack-backend/pkg/enums"
)

func mustCreateTestProduct(t *testing.T, tx *gorm.DB, mutate func(*models.Product)) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:           uuid.New(),
		Name:         fmt.Sprintf("Paracetamol %s", uuid.NewString()[:8]),
		Price:        "₱12.50",
		PharmacyName: "MediTrack Pharmacy",
		Category:     "Pain Relief",
		Manufacturer: "Unilab",
		Availability: enums.AvailabilityInStock,
		IsActive:     true,
	}
	if mutate != nil {
		mutate(product)
	}
	if err := tx.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func TestRepositoryFindByID(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	created := mustCreateTestProduct(t, db, nil)
	got, err := repo.FindByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Name != created.Name || got.Price != "₱12.50" {
		t.Fatalf("unexpected product: %+v", got)
	}

	// Inactive products are invisible.
	hidden := mustCreateTestProduct(t, db, func(p *models.Product) { p.IsActive = false })
	if _, err := repo.FindByID(ctx, hidden.ID); err == nil {
		t.Fatal("expected inactive product to be hidden")
	}
}

func TestRepositoryListFilters(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	mustCreateTestProduct(t, db, func(p *models.Product) {
		p.Name = "Biogesic 500mg"
		p.Category = "Pain Relief"
	})
	mustCreateTestProduct(t, db, func(p *models.Product) {
		p.Name = "Neozep Forte"
		p.Category = "Cold & Flu"
		p.PharmacyName = "HealthPlus"
	})
	mustCreateTestProduct(t, db, func(p *models.Product) {
		p.Name = "Cetirizine 10mg"
		p.Category = "Allergy"
		p.Availability = enums.AvailabilityOutOfStock
	})

	page, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(page.Products) != 3 || page.Total != 3 {
		t.Fatalf("expected all 3 products, got %d total %d", len(page.Products), page.Total)
	}

	page, err = repo.List(ctx, Filter{Search: "biogesic"})
	if err != nil {
		t.Fatalf("List search: %v", err)
	}
	if len(page.Products) != 1 || page.Products[0].Name != "Biogesic 500mg" {
		t.Fatalf("unexpected search result: %+v", page.Products)
	}

	page, err = repo.List(ctx, Filter{Category: "Cold & Flu"})
	if err != nil {
		t.Fatalf("List category: %v", err)
	}
	if len(page.Products) != 1 || page.Products[0].PharmacyName != "HealthPlus" {
		t.Fatalf("unexpected category result: %+v", page.Products)
	}

	page, err = repo.List(ctx, Filter{Availability: enums.AvailabilityOutOfStock})
	if err != nil {
		t.Fatalf("List availability: %v", err)
	}
	if len(page.Products) != 1 || page.Products[0].Name != "Cetirizine 10mg" {
		t.Fatalf("unexpected availability result: %+v", page.Products)
	}
}

func TestRepositoryListPaginates(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		createdAt := base.Add(time.Duration(i) * time.Minute)
		mustCreateTestProduct(t, db, func(p *models.Product) {
			p.Name = fmt.Sprintf("Med %02d", i)
			p.CreatedAt = createdAt
			p.UpdatedAt = createdAt
		})
	}

	first, err := repo.List(ctx, Filter{Limit: 2})
	if err != nil {
		t.Fatalf("List page 1: %v", err)
	}
	if len(first.Products) != 2 || first.NextCursor == "" {
		t.Fatalf("expected 2 products and a next cursor, got %d %q", len(first.Products), first.NextCursor)
	}
	if first.Total != 5 {
		t.Fatalf("expected total 5, got %d", first.Total)
	}

	second, err := repo.List(ctx, Filter{Limit: 2, Cursor: first.NextCursor})
	if err != nil {
		t.Fatalf("List page 2: %v", err)
	}
	if len(second.Products) != 2 {
		t.Fatalf("expected 2 products on page 2, got %d", len(second.Products))
	}
	for _, p := range second.Products {
		for _, q := range first.Products {
			if p.ID == q.ID {
				t.Fatalf("product %s appeared on both pages", p.ID)
			}
		}
	}

	third, err := repo.List(ctx, Filter{Limit: 2, Cursor: second.NextCursor})
	if err != nil {
		t.Fatalf("List page 3: %v", err)
	}
	if len(third.Products) != 1 || third.NextCursor != "" {
		t.Fatalf("expected final page of 1 with no cursor, got %d %q", len(third.Products), third.NextCursor)
	}
}

func TestRepositoryUpdateAvailability(t *testing.T) {
	t.Parallel()

	db := openTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := mustCreateTestProduct(t, db, nil)
	if err := repo.UpdateAvailability(ctx, product.ID, enums.AvailabilityLowStock); err != nil {
		t.Fatalf("UpdateAvailability: %v", err)
	}

	got, err := repo.FindByID(ctx, product.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if got.Availability != enums.AvailabilityLowStock {
		t.Fatalf("expected low_stock, got %s", got.Availability)
	}
}
