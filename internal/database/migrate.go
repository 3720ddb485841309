package database

import (
	"github.com/sandeepkv93/storefront-admin-console/internal/domain"

	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Permission{},
		&domain.Role{},
		&domain.Staff{},
		&domain.Order{},
		&domain.Product{},
		&domain.Notification{},
	)
}
