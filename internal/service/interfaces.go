package service

//go:generate mockgen -source=interfaces.go -destination=gomock/interfaces_mock.go -package=gomock

import (
	"context"

	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
	"github.com/sandeepkv93/storefront-admin-console/internal/repository"
	"github.com/sandeepkv93/storefront-admin-console/internal/security"
)

type OrderServiceInterface interface {
	List(ctx context.Context, q repository.ListQuery) (repository.PageResult[domain.Order], error)
	Stats(ctx context.Context) (domain.OrderStats, error)
	UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error)
	VerifyBankTransfer(ctx context.Context, id string) (*domain.Order, error)
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) (repository.BulkDeleteResult, error)
}

type ProductServiceInterface interface {
	List(ctx context.Context, q repository.ListQuery) (repository.PageResult[domain.Product], error)
	Stats(ctx context.Context) (domain.ProductStats, error)
	ToggleActive(ctx context.Context, id string) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) (repository.BulkDeleteResult, error)
}

type NotificationServiceInterface interface {
	List(ctx context.Context, q repository.ListQuery) (repository.PageResult[domain.Notification], error)
	Stats(ctx context.Context) (domain.NotificationStats, error)
	MarkRead(ctx context.Context, ids []string) (int64, error)
	MarkAllRead(ctx context.Context, search string, filters map[string]string) (int64, error)
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) (repository.BulkDeleteResult, error)
}

type AuthServiceInterface interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Me(ctx context.Context, claims *security.Claims) (*Identity, error)
}

// RBACAuthorizer decides route access from the permissions carried in a
// verified token.
type RBACAuthorizer interface {
	Allow(isProtected bool, permissions []string, required string) bool
}
