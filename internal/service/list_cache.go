package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/sandeepkv93/storefront-admin-console/internal/observability"
	"github.com/sandeepkv93/storefront-admin-console/internal/repository"
)

// ListCacheStore holds serialized list pages grouped by resource namespace.
// A namespace is dropped as a whole whenever any row in it changes.
type ListCacheStore interface {
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	GetWithAge(ctx context.Context, namespace, key string) ([]byte, bool, time.Duration, error)
	Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error
	InvalidateNamespace(ctx context.Context, namespace string) error
}

type NoopListCacheStore struct{}

func NewNoopListCacheStore() *NoopListCacheStore { return &NoopListCacheStore{} }

func (s *NoopListCacheStore) Get(context.Context, string, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (s *NoopListCacheStore) GetWithAge(context.Context, string, string) ([]byte, bool, time.Duration, error) {
	return nil, false, 0, nil
}

func (s *NoopListCacheStore) Set(context.Context, string, string, []byte, time.Duration) error {
	return nil
}

func (s *NoopListCacheStore) InvalidateNamespace(context.Context, string) error { return nil }

type memoryCacheEntry struct {
	payload   []byte
	createdAt time.Time
	expiresAt time.Time
}

type InMemoryListCacheStore struct {
	mu    sync.RWMutex
	store map[string]map[string]memoryCacheEntry
	now   func() time.Time
}

func NewInMemoryListCacheStore() *InMemoryListCacheStore {
	return &InMemoryListCacheStore{
		store: make(map[string]map[string]memoryCacheEntry),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *InMemoryListCacheStore) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	payload, ok, _, err := s.GetWithAge(ctx, namespace, key)
	return payload, ok, err
}

func (s *InMemoryListCacheStore) GetWithAge(_ context.Context, namespace, key string) ([]byte, bool, time.Duration, error) {
	now := s.now()
	s.mu.RLock()
	entry, ok := s.store[namespace][key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, 0, nil
	}
	if now.After(entry.expiresAt) {
		s.mu.Lock()
		if ns, ok := s.store[namespace]; ok {
			delete(ns, key)
			if len(ns) == 0 {
				delete(s.store, namespace)
			}
		}
		s.mu.Unlock()
		return nil, false, 0, nil
	}
	age := max(now.Sub(entry.createdAt), 0)
	return append([]byte(nil), entry.payload...), true, age, nil
}

func (s *InMemoryListCacheStore) Set(_ context.Context, namespace, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	ns, ok := s.store[namespace]
	if !ok {
		ns = make(map[string]memoryCacheEntry)
		s.store[namespace] = ns
	}
	ns[key] = memoryCacheEntry{
		payload:   append([]byte(nil), value...),
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
	return nil
}

func (s *InMemoryListCacheStore) InvalidateNamespace(_ context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.store, namespace)
	return nil
}

type cachedPage[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// listThroughCache serves a list page from the store when present and fills
// it otherwise. Cache failures degrade to a direct load.
func listThroughCache[T any](
	ctx context.Context,
	store ListCacheStore,
	ttl time.Duration,
	namespace string,
	q repository.ListQuery,
	load func(context.Context, repository.ListQuery) (repository.PageResult[T], error),
) (repository.PageResult[T], error) {
	key := q.CacheKey()
	if store != nil {
		raw, ok, age, err := store.GetWithAge(ctx, namespace, key)
		switch {
		case err != nil:
			observability.RecordListCacheEvent(ctx, namespace, "error")
			slog.WarnContext(ctx, "list cache read failed", "namespace", namespace, "error", err)
		case ok:
			var cp cachedPage[T]
			if err := json.Unmarshal(raw, &cp); err == nil {
				observability.RecordListCacheEvent(ctx, namespace, "hit")
				observability.RecordListCacheEntryAge(ctx, namespace, age)
				return repository.PageResult[T]{
					Items:      cp.Items,
					Page:       cp.Page,
					PageSize:   cp.PageSize,
					Total:      cp.Total,
					TotalPages: cp.TotalPages,
				}, nil
			}
			observability.RecordListCacheEvent(ctx, namespace, "decode_error")
		default:
			observability.RecordListCacheEvent(ctx, namespace, "miss")
		}
	}

	res, err := load(ctx, q)
	if err != nil {
		return repository.PageResult[T]{}, err
	}
	if store != nil && ttl > 0 {
		payload, err := json.Marshal(cachedPage[T]{
			Items:      res.Items,
			Page:       res.Page,
			PageSize:   res.PageSize,
			Total:      res.Total,
			TotalPages: res.TotalPages,
		})
		if err == nil {
			err = store.Set(ctx, namespace, key, payload, ttl)
		}
		if err != nil {
			observability.RecordListCacheEvent(ctx, namespace, "error")
			slog.WarnContext(ctx, "list cache write failed", "namespace", namespace, "error", err)
		}
	}
	return res, nil
}

func invalidateList(ctx context.Context, store ListCacheStore, namespace string) {
	if store == nil {
		return
	}
	if err := store.InvalidateNamespace(ctx, namespace); err != nil {
		observability.RecordListCacheEvent(ctx, namespace, "error")
		slog.WarnContext(ctx, "list cache invalidation failed", "namespace", namespace, "error", err)
		return
	}
	observability.RecordListCacheEvent(ctx, namespace, "invalidate")
}
