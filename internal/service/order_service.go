package service

import (
	"context"
	"errors"
	"time"

	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
	"github.com/sandeepkv93/storefront-admin-console/internal/observability"
	"github.com/sandeepkv93/storefront-admin-console/internal/repository"
)

const ResourceOrders = "orders"

var (
	ErrOrderInvalidStatus     = errors.New("unknown order status")
	ErrOrderInvalidTransition = errors.New("order status transition not allowed")
	ErrOrderNotBankTransfer   = errors.New("only bank transfer payments can be verified")
	ErrOrderNotAwaitingPay    = errors.New("payment is not awaiting verification")
)

type OrderServiceImpl struct {
	collection[domain.Order]
	repo repository.OrderRepository
}

func NewOrderService(repo repository.OrderRepository, cache ListCacheStore, ttl time.Duration) *OrderServiceImpl {
	return &OrderServiceImpl{
		collection: collection[domain.Order]{resource: ResourceOrders, repo: repo, cache: cache, ttl: ttl},
		repo:       repo,
	}
}

func (s *OrderServiceImpl) Stats(ctx context.Context) (domain.OrderStats, error) {
	return s.repo.Stats(ctx)
}

// UpdateStatus moves an order along the status workflow. The write is
// guarded on the status it was validated against.
func (s *OrderServiceImpl) UpdateStatus(ctx context.Context, id, status string) (*domain.Order, error) {
	outcome := "success"
	defer func() { observability.RecordResourceMutation(ctx, ResourceOrders, "update_status", outcome) }()

	if !domain.IsOrderStatus(status) {
		outcome = "bad_request"
		return nil, ErrOrderInvalidStatus
	}
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		outcome = "error"
		return nil, err
	}
	if current.Status == status {
		return current, nil
	}
	if !domain.CanTransitionOrder(current.Status, status) {
		outcome = "conflict"
		return nil, ErrOrderInvalidTransition
	}
	updated, err := s.repo.UpdateIf(ctx, id,
		map[string]any{"status": current.Status},
		map[string]any{"status": status})
	if err != nil {
		outcome = "error"
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

// VerifyBankTransfer marks a bank transfer paid. A pending order moves to
// processing in the same write.
func (s *OrderServiceImpl) VerifyBankTransfer(ctx context.Context, id string) (*domain.Order, error) {
	outcome := "success"
	defer func() { observability.RecordResourceMutation(ctx, ResourceOrders, "verify_bank_transfer", outcome) }()

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		outcome = "error"
		return nil, err
	}
	if current.PaymentMethod != domain.PaymentMethodBankTransfer {
		outcome = "conflict"
		return nil, ErrOrderNotBankTransfer
	}
	if current.PaymentStatus != domain.PaymentStatusPendingVerification {
		outcome = "conflict"
		return nil, ErrOrderNotAwaitingPay
	}
	updates := map[string]any{"payment_status": domain.PaymentStatusPaid}
	if current.Status == domain.OrderStatusPending {
		updates["status"] = domain.OrderStatusProcessing
	}
	updated, err := s.repo.UpdateIf(ctx, id,
		map[string]any{"payment_status": current.PaymentStatus, "status": current.Status},
		updates)
	if err != nil {
		outcome = "error"
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}
