package database

import (
	"strings"

	"github.com/sandeepkv93/storefront-admin-console/internal/config"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite://"

func Open(cfg *config.Config) (*gorm.DB, error) {
	return OpenURL(cfg.DatabaseURL)
}

// OpenURL opens postgres for a regular DSN and sqlite for sqlite://<path>.
func OpenURL(dsn string) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}
	if path, ok := strings.CutPrefix(dsn, sqlitePrefix); ok {
		return gorm.Open(sqlite.Open(path), gormCfg)
	}
	return gorm.Open(postgres.Open(dsn), gormCfg)
}
