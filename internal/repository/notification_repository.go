package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
	"github.com/sandeepkv93/storefront-admin-console/internal/observability"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) error
	FindByID(ctx context.Context, id string) (*domain.Notification, error)
	ListPaged(ctx context.Context, q ListQuery) (PageResult[domain.Notification], error)
	Stats(ctx context.Context) (domain.NotificationStats, error)
	// MarkRead marks the listed unread notifications read and returns how
	// many rows changed.
	MarkRead(ctx context.Context, ids []string, at time.Time) (int64, error)
	// MarkAllRead marks every unread notification matching search and
	// filters read.
	MarkAllRead(ctx context.Context, search string, filters map[string]string, at time.Time) (int64, error)
	DeleteByID(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) (BulkDeleteResult, error)
}

type GormNotificationRepository struct {
	db   *gorm.DB
	spec listSpec
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &GormNotificationRepository{db: db, spec: listSpec{
		repository:    "notification",
		searchColumns: []string{"title", "message"},
		sortColumns: map[string]string{
			"createdAt": "created_at",
			"type":      "type",
			"severity":  "severity",
			"title":     "title",
		},
		defaultSort: "created_at",
		filter:      filterNotifications,
	}}
}

func filterNotifications(db *gorm.DB, key, value string) (*gorm.DB, error) {
	switch key {
	case "type":
		return db.Where("type = ?", value), nil
	case "severity":
		return db.Where("severity = ?", value), nil
	case "read":
		switch value {
		case "read", "true":
			return db.Where("read = ?", true), nil
		case "unread", "false":
			return db.Where("read = ?", false), nil
		}
	}
	return nil, invalidFilter(key, value)
}

func (r *GormNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "notification", "create", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "notification", "create", "success")
	return nil
}

func (r *GormNotificationRepository) FindByID(ctx context.Context, id string) (*domain.Notification, error) {
	return findByID[domain.Notification](ctx, r.db, "notification", id, ErrNotificationNotFound)
}

func (r *GormNotificationRepository) ListPaged(ctx context.Context, q ListQuery) (PageResult[domain.Notification], error) {
	return listPaged[domain.Notification](ctx, r.db, r.spec, q)
}

func (r *GormNotificationRepository) Stats(ctx context.Context) (domain.NotificationStats, error) {
	var stats domain.NotificationStats
	base := func() *gorm.DB { return r.db.WithContext(ctx).Model(&domain.Notification{}) }
	err := errors.Join(
		base().Count(&stats.Total).Error,
		base().Where("read = ?", false).Count(&stats.Unread).Error,
		base().Where("severity = ? AND read = ?", domain.SeverityCritical, false).Count(&stats.Critical).Error,
	)
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "notification", "stats", "error")
		return domain.NotificationStats{}, err
	}
	observability.RecordRepositoryOperation(ctx, "notification", "stats", "success")
	return stats, nil
}

func (r *GormNotificationRepository) MarkRead(ctx context.Context, ids []string, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Model(&domain.Notification{}).
		Where("id IN ? AND read = ?", ids, false).
		Updates(map[string]any{"read": true, "read_at": at})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "notification", "mark_read", "error")
		return 0, res.Error
	}
	observability.RecordRepositoryOperation(ctx, "notification", "mark_read", "success")
	return res.RowsAffected, nil
}

func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, search string, filters map[string]string, at time.Time) (int64, error) {
	scoped := make(map[string]string, len(filters))
	for k, v := range filters {
		if k != "read" {
			scoped[k] = v
		}
	}
	// Same matching rules as ListPaged.
	var ids []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&domain.Notification{}).Where("read = ?", false)
		q, err := applySearchAndFilters(q, r.spec, search, scoped)
		if err != nil {
			return err
		}
		if err := q.Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Model(&domain.Notification{}).Where("id IN ?", ids).
			Updates(map[string]any{"read": true, "read_at": at}).Error
	})
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "notification", "mark_all_read", "error")
		return 0, err
	}
	observability.RecordRepositoryOperation(ctx, "notification", "mark_all_read", "success")
	return int64(len(ids)), nil
}

func (r *GormNotificationRepository) DeleteByID(ctx context.Context, id string) error {
	return deleteByID[domain.Notification](ctx, r.db, "notification", id, ErrNotificationNotFound)
}

func (r *GormNotificationRepository) BulkDelete(ctx context.Context, ids []string) (BulkDeleteResult, error) {
	return bulkDelete[domain.Notification](ctx, r.db, "notification", ids)
}
