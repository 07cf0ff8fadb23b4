// Package testutil builds migrated in-memory stores for package tests.
package testutil

import (
	"testing"

	"github.com/zfogg/aihub/backend/internal/config"
	"github.com/zfogg/aihub/backend/internal/database"
	"github.com/zfogg/aihub/backend/internal/store"
	"gorm.io/gorm"
)

// NewDB opens a fresh migrated sqlite database that is closed with the test
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close(db)
	})
	return db
}

// NewStore is NewDB wrapped in a Store
func NewStore(t testing.TB) *store.Store {
	t.Helper()
	return store.New(NewDB(t))
}
