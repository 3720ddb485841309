package service

import (
	"context"
	"strings"
	"time"

	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
	"github.com/sandeepkv93/storefront-admin-console/internal/observability"
	"github.com/sandeepkv93/storefront-admin-console/internal/repository"
)

const ResourceNotifications = "notifications"

type NotificationServiceImpl struct {
	collection[domain.Notification]
	repo repository.NotificationRepository
	now  func() time.Time
}

func NewNotificationService(repo repository.NotificationRepository, cache ListCacheStore, ttl time.Duration) *NotificationServiceImpl {
	return &NotificationServiceImpl{
		collection: collection[domain.Notification]{resource: ResourceNotifications, repo: repo, cache: cache, ttl: ttl},
		repo:       repo,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *NotificationServiceImpl) Stats(ctx context.Context) (domain.NotificationStats, error) {
	return s.repo.Stats(ctx)
}

func (s *NotificationServiceImpl) MarkRead(ctx context.Context, ids []string) (int64, error) {
	clean := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			clean = append(clean, id)
		}
	}
	if len(clean) == 0 {
		observability.RecordResourceMutation(ctx, ResourceNotifications, "mark_read", "bad_request")
		return 0, ErrNoIDs
	}
	if len(clean) > MaxBulkDeleteIDs {
		observability.RecordResourceMutation(ctx, ResourceNotifications, "mark_read", "bad_request")
		return 0, ErrTooManyIDs
	}
	n, err := s.repo.MarkRead(ctx, clean, s.now())
	if err != nil {
		observability.RecordResourceMutation(ctx, ResourceNotifications, "mark_read", "error")
		return 0, err
	}
	if n > 0 {
		s.invalidate(ctx)
	}
	observability.RecordResourceMutation(ctx, ResourceNotifications, "mark_read", "success")
	return n, nil
}

// MarkAllRead marks every unread notification matching search and filters.
// The read filter is ignored.
func (s *NotificationServiceImpl) MarkAllRead(ctx context.Context, search string, filters map[string]string) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, search, filters, s.now())
	if err != nil {
		status := "error"
		if isBadRequest(err) {
			status = "bad_request"
		}
		observability.RecordResourceMutation(ctx, ResourceNotifications, "mark_all_read", status)
		return 0, err
	}
	if n > 0 {
		s.invalidate(ctx)
	}
	observability.RecordResourceMutation(ctx, ResourceNotifications, "mark_all_read", "success")
	return n, nil
}
