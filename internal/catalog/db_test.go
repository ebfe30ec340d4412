package catalog

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/meditrack-ph/meditrack-backend/pkg/db/models"
)

// openTestDB returns an isolated in-memory database with the catalog schema
// applied. Each test gets its own connection so parallel tests never share
// state.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Product{}, &models.Reservation{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return conn
}
