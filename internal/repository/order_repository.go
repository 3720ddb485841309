package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
	"github.com/sandeepkv93/storefront-admin-console/internal/observability"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrOrderConflict = errors.New("order changed concurrently")
)

var orderDateRanges = map[string]time.Duration{
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
	"90d": 90 * 24 * time.Hour,
}

type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id string) (*domain.Order, error)
	ListPaged(ctx context.Context, q ListQuery) (PageResult[domain.Order], error)
	Stats(ctx context.Context) (domain.OrderStats, error)
	// UpdateIf applies updates only while the row still has the guard values.
	UpdateIf(ctx context.Context, id string, guard, updates map[string]any) (*domain.Order, error)
	DeleteByID(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) (BulkDeleteResult, error)
}

type GormOrderRepository struct {
	db   *gorm.DB
	now  func() time.Time
	spec listSpec
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return NewOrderRepositoryWithClock(db, time.Now)
}

func NewOrderRepositoryWithClock(db *gorm.DB, now func() time.Time) *GormOrderRepository {
	r := &GormOrderRepository{db: db, now: now}
	r.spec = listSpec{
		repository:    "order",
		searchColumns: []string{"order_number", "customer_name", "customer_email"},
		sortColumns: map[string]string{
			"createdAt":    "created_at",
			"orderNumber":  "order_number",
			"customerName": "customer_name",
			"status":       "status",
			"total":        "total",
		},
		defaultSort: "created_at",
		filter:      r.filter,
	}
	return r
}

func (r *GormOrderRepository) filter(db *gorm.DB, key, value string) (*gorm.DB, error) {
	switch key {
	case "status":
		if !domain.IsOrderStatus(value) {
			return nil, invalidFilter(key, value)
		}
		return db.Where("status = ?", value), nil
	case "paymentMethod":
		return db.Where("payment_method = ?", value), nil
	case "paymentStatus":
		return db.Where("payment_status = ?", value), nil
	case "date":
		now := r.now().UTC()
		if value == "today" {
			start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
			return db.Where("created_at >= ?", start), nil
		}
		d, ok := orderDateRanges[value]
		if !ok {
			return nil, invalidFilter(key, value)
		}
		return db.Where("created_at >= ?", now.Add(-d)), nil
	default:
		return nil, invalidFilter(key, value)
	}
}

func (r *GormOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "order", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "order", "create", "success")
	return nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	return findByID[domain.Order](ctx, r.db, "order", id, ErrOrderNotFound)
}

func (r *GormOrderRepository) ListPaged(ctx context.Context, q ListQuery) (PageResult[domain.Order], error) {
	return listPaged[domain.Order](ctx, r.db, r.spec, q)
}

func (r *GormOrderRepository) Stats(ctx context.Context) (domain.OrderStats, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	db := r.db.WithContext(ctx).Model(&domain.Order{})
	if err := db.Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "order", "stats", "error")
		return domain.OrderStats{}, err
	}
	var stats domain.OrderStats
	for _, row := range rows {
		stats.Total += row.Count
		switch row.Status {
		case domain.OrderStatusPending:
			stats.Pending = row.Count
		case domain.OrderStatusProcessing:
			stats.Processing = row.Count
		case domain.OrderStatusShipped:
			stats.Shipped = row.Count
		case domain.OrderStatusDelivered:
			stats.Delivered = row.Count
		case domain.OrderStatusCancelled:
			stats.Cancelled = row.Count
		case domain.OrderStatusRefunded:
			stats.Refunded = row.Count
		}
	}
	if err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("payment_status = ?", domain.PaymentStatusPendingVerification).
		Count(&stats.AwaitingVerification).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "order", "stats", "error")
		return domain.OrderStats{}, err
	}
	var revenue struct{ Sum float64 }
	if err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Select("COALESCE(SUM(total), 0) AS sum").
		Where("payment_status = ?", domain.PaymentStatusPaid).
		Scan(&revenue).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "order", "stats", "error")
		return domain.OrderStats{}, err
	}
	stats.Revenue = revenue.Sum
	observability.RecordRepositoryOperation(ctx, "order", "stats", "success")
	return stats, nil
}

func (r *GormOrderRepository) UpdateIf(ctx context.Context, id string, guard, updates map[string]any) (*domain.Order, error) {
	return updateWhere[domain.Order](ctx, r.db, "order", id, guard, updates, ErrOrderNotFound, ErrOrderConflict)
}

func (r *GormOrderRepository) DeleteByID(ctx context.Context, id string) error {
	return deleteByID[domain.Order](ctx, r.db, "order", id, ErrOrderNotFound)
}

func (r *GormOrderRepository) BulkDelete(ctx context.Context, ids []string) (BulkDeleteResult, error) {
	return bulkDelete[domain.Order](ctx, r.db, "order", ids)
}
