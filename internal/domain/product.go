package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"

	LowStockThreshold = 5
)

type Product struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	Name        string    `gorm:"size:120;not null;index" json:"name"`
	SKU         string    `gorm:"size:64;not null;uniqueIndex" json:"sku"`
	Category    string    `gorm:"size:64;not null;index" json:"category"`
	Description string    `gorm:"size:500" json:"description"`
	Price       float64   `gorm:"not null" json:"price"`
	Stock       int       `gorm:"not null;default:0" json:"stock"`
	IsActive    bool      `gorm:"not null;index" json:"isActive"`
	ImageURL    string    `gorm:"size:1024" json:"imageUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (p Product) Status() string {
	if p.IsActive {
		return ProductStatusActive
	}
	return ProductStatusInactive
}

func (p Product) LowStock() bool { return p.Stock > 0 && p.Stock <= LowStockThreshold }

type ProductStats struct {
	Total      int64 `json:"total"`
	Active     int64 `json:"active"`
	Inactive   int64 `json:"inactive"`
	OutOfStock int64 `json:"outOfStock"`
	LowStock   int64 `json:"lowStock"`
}
