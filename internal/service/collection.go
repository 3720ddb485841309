package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sandeepkv93/storefront-admin-console/internal/observability"
	"github.com/sandeepkv93/storefront-admin-console/internal/repository"
)

const MaxBulkDeleteIDs = 100

var (
	ErrNoIDs      = errors.New("ids must not be empty")
	ErrTooManyIDs = errors.New("too many ids in one request")
	ErrMissingID  = errors.New("id is required")
)

type listRepository[T any] interface {
	ListPaged(ctx context.Context, q repository.ListQuery) (repository.PageResult[T], error)
	DeleteByID(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) (repository.BulkDeleteResult, error)
}

// collection carries the list, delete and bulk delete behaviour shared by the
// order, product and notification services.
type collection[T any] struct {
	resource string
	repo     listRepository[T]
	cache    ListCacheStore
	ttl      time.Duration
}

func (c *collection[T]) List(ctx context.Context, q repository.ListQuery) (repository.PageResult[T], error) {
	start := time.Now()
	status := "success"
	defer func() { observability.RecordListRequestDuration(ctx, c.resource, status, time.Since(start)) }()
	observability.RecordListPageSize(ctx, c.resource, q.PageSize)

	res, err := listThroughCache(ctx, c.cache, c.ttl, c.resource, q, c.repo.ListPaged)
	if err != nil {
		status = "error"
		if isBadRequest(err) {
			status = "bad_request"
		}
		return repository.PageResult[T]{}, err
	}
	return res, nil
}

func (c *collection[T]) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		observability.RecordResourceMutation(ctx, c.resource, "delete", "bad_request")
		return ErrMissingID
	}
	if err := c.repo.DeleteByID(ctx, id); err != nil {
		observability.RecordResourceMutation(ctx, c.resource, "delete", "error")
		return err
	}
	c.invalidate(ctx)
	observability.RecordResourceMutation(ctx, c.resource, "delete", "success")
	return nil
}

func (c *collection[T]) BulkDelete(ctx context.Context, ids []string) (repository.BulkDeleteResult, error) {
	switch {
	case len(ids) == 0:
		observability.RecordResourceMutation(ctx, c.resource, "bulk_delete", "bad_request")
		return repository.BulkDeleteResult{}, ErrNoIDs
	case len(ids) > MaxBulkDeleteIDs:
		observability.RecordResourceMutation(ctx, c.resource, "bulk_delete", "bad_request")
		return repository.BulkDeleteResult{}, ErrTooManyIDs
	}
	res, err := c.repo.BulkDelete(ctx, ids)
	if err != nil {
		observability.RecordResourceMutation(ctx, c.resource, "bulk_delete", "error")
		return repository.BulkDeleteResult{}, err
	}
	if res.DeletedCount > 0 {
		c.invalidate(ctx)
	}
	observability.RecordBulkDeleteOutcome(ctx, c.resource, "deleted", int(res.DeletedCount))
	observability.RecordBulkDeleteOutcome(ctx, c.resource, "invalid", len(res.InvalidIDs))
	observability.RecordBulkDeleteOutcome(ctx, c.resource, "not_found", len(res.NotFoundIDs))
	status := "success"
	if len(res.InvalidIDs) > 0 || len(res.NotFoundIDs) > 0 {
		status = "partial"
	}
	observability.RecordResourceMutation(ctx, c.resource, "bulk_delete", status)
	return res, nil
}

func (c *collection[T]) invalidate(ctx context.Context) {
	invalidateList(ctx, c.cache, c.resource)
}

func isBadRequest(err error) bool {
	return errors.Is(err, repository.ErrInvalidFilter)
}
