package service

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/sandeepkv93/storefront-admin-console/internal/database"
)

func newServiceDBForTest(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenURL("sqlite://" + filepath.Join(t.TempDir(), "service.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
