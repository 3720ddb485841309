package repository

import (
	"context"
	"errors"
	"strconv"

	"gorm.io/gorm"

	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
	"github.com/sandeepkv93/storefront-admin-console/internal/observability"
)

var ErrProductNotFound = errors.New("product not found")

type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	ListPaged(ctx context.Context, q ListQuery) (PageResult[domain.Product], error)
	Stats(ctx context.Context) (domain.ProductStats, error)
	Update(ctx context.Context, id string, updates map[string]any) (*domain.Product, error)
	DeleteByID(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) (BulkDeleteResult, error)
}

type GormProductRepository struct {
	db   *gorm.DB
	spec listSpec
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db, spec: listSpec{
		repository:    "product",
		searchColumns: []string{"name", "sku", "category"},
		sortColumns: map[string]string{
			"createdAt": "created_at",
			"name":      "name",
			"price":     "price",
			"stock":     "stock",
			"category":  "category",
		},
		defaultSort: "created_at",
		filter:      filterProducts,
	}}
}

func filterProducts(db *gorm.DB, key, value string) (*gorm.DB, error) {
	switch key {
	case "category":
		return db.Where("category = ?", value), nil
	case "status":
		switch value {
		case domain.ProductStatusActive:
			return db.Where("is_active = ?", true), nil
		case domain.ProductStatusInactive:
			return db.Where("is_active = ?", false), nil
		}
	case "minPrice", "maxPrice":
		price, err := strconv.ParseFloat(value, 64)
		if err != nil || price < 0 {
			break
		}
		if key == "minPrice" {
			return db.Where("price >= ?", price), nil
		}
		return db.Where("price <= ?", price), nil
	case "stock":
		switch value {
		case "in_stock":
			return db.Where("stock > ?", 0), nil
		case "low_stock":
			return db.Where("stock > ? AND stock <= ?", 0, domain.LowStockThreshold), nil
		case "out_of_stock":
			return db.Where("stock <= ?", 0), nil
		}
	}
	return nil, invalidFilter(key, value)
}

func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "product", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "product", "create", "success")
	return nil
}

func (r *GormProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	return findByID[domain.Product](ctx, r.db, "product", id, ErrProductNotFound)
}

func (r *GormProductRepository) ListPaged(ctx context.Context, q ListQuery) (PageResult[domain.Product], error) {
	return listPaged[domain.Product](ctx, r.db, r.spec, q)
}

func (r *GormProductRepository) Stats(ctx context.Context) (domain.ProductStats, error) {
	var stats domain.ProductStats
	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{dst: &stats.Total},
		{dst: &stats.Active, query: "is_active = ?", args: []any{true}},
		{dst: &stats.Inactive, query: "is_active = ?", args: []any{false}},
		{dst: &stats.OutOfStock, query: "stock <= ?", args: []any{0}},
		{dst: &stats.LowStock, query: "stock > ? AND stock <= ?", args: []any{0, domain.LowStockThreshold}},
	}
	for _, c := range counts {
		q := r.db.WithContext(ctx).Model(&domain.Product{})
		if c.query != "" {
			q = q.Where(c.query, c.args...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			observability.RecordRepositoryOperation(ctx, "product", "stats", "error")
			return domain.ProductStats{}, err
		}
	}
	observability.RecordRepositoryOperation(ctx, "product", "stats", "success")
	return stats, nil
}

func (r *GormProductRepository) Update(ctx context.Context, id string, updates map[string]any) (*domain.Product, error) {
	return updateWhere[domain.Product](ctx, r.db, "product", id, nil, updates, ErrProductNotFound, nil)
}

func (r *GormProductRepository) DeleteByID(ctx context.Context, id string) error {
	return deleteByID[domain.Product](ctx, r.db, "product", id, ErrProductNotFound)
}

func (r *GormProductRepository) BulkDelete(ctx context.Context, ids []string) (BulkDeleteResult, error) {
	return bulkDelete[domain.Product](ctx, r.db, "product", ids)
}
