// Package repotest provides stores for tests: an in-memory SQLite database
// migrated with the relational models, and in-memory replacements for the
// document-backed repositories.
package repotest

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/anonto42/effisocial/backend/internal/models"
	"github.com/anonto42/effisocial/backend/pkg/config"
)

// NewDB opens a private in-memory SQLite database and migrates it.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := config.GormConfig()
	db, err := gorm.Open(sqlite.Open(":memory:"), cfg)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sqlite handle: %v", err)
	}
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(models.RelationalModels()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
