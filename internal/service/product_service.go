package service

import (
	"context"
	"time"

	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
	"github.com/sandeepkv93/storefront-admin-console/internal/observability"
	"github.com/sandeepkv93/storefront-admin-console/internal/repository"
)

const ResourceProducts = "products"

type ProductServiceImpl struct {
	collection[domain.Product]
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository, cache ListCacheStore, ttl time.Duration) *ProductServiceImpl {
	return &ProductServiceImpl{
		collection: collection[domain.Product]{resource: ResourceProducts, repo: repo, cache: cache, ttl: ttl},
		repo:       repo,
	}
}

func (s *ProductServiceImpl) Stats(ctx context.Context) (domain.ProductStats, error) {
	return s.repo.Stats(ctx)
}

func (s *ProductServiceImpl) ToggleActive(ctx context.Context, id string) (*domain.Product, error) {
	outcome := "success"
	defer func() { observability.RecordResourceMutation(ctx, ResourceProducts, "toggle_active", outcome) }()

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		outcome = "error"
		return nil, err
	}
	updated, err := s.repo.Update(ctx, id, map[string]any{"is_active": !current.IsActive})
	if err != nil {
		outcome = "error"
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}
