package screens

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
	"github.com/sandeepkv93/storefront-admin-console/internal/listctl"
	"github.com/sandeepkv93/storefront-admin-console/internal/permission"
)

var fixedNow = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

type noticeLog struct {
	mu      sync.Mutex
	notices []listctl.Notice
}

func (l *noticeLog) Notify(_ context.Context, n listctl.Notice) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notices = append(l.notices, n)
}

func (l *noticeLog) last(t *testing.T) listctl.Notice {
	t.Helper()
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.notices) == 0 {
		t.Fatal("expected a notice")
	}
	return l.notices[len(l.notices)-1]
}

func testOptions(actor *permission.Actor) (Options, *listctl.ManualScheduler, *noticeLog) {
	sched := listctl.NewManualScheduler()
	notices := &noticeLog{}
	return Options{
		Actor:     actor,
		ActorName: "ops@example.com",
		Scheduler: sched,
		Notifier:  notices,
		Now:       func() time.Time { return fixedNow },
	}, sched, notices
}

func admin() *permission.Actor {
	return permission.NewActor(false, permission.All...)
}

func pageOf[T any](items []T, q listctl.Query) listctl.Page[T] {
	total := len(items)
	pages := max(1, (total+q.PageSize-1)/q.PageSize)
	start := min((q.Page-1)*q.PageSize, total)
	end := min(start+q.PageSize, total)
	return listctl.Page[T]{
		Items:    slices.Clone(items[start:end]),
		PageInfo: listctl.PageInfo{CurrentPage: q.Page, TotalPages: pages, TotalItems: int64(total)},
	}
}

func orderFixtures(n int, status string) []domain.Order {
	out := make([]domain.Order, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Order{
			ID:            fmt.Sprintf("o%d", i+1),
			OrderNumber:   fmt.Sprintf("ORD-%04d", i+1),
			CustomerName:  "Customer",
			CustomerEmail: "customer@example.com",
			Status:        status,
			PaymentMethod: domain.PaymentMethodCard,
			PaymentStatus: domain.PaymentStatusPaid,
			Subtotal:      100,
			ShippingFee:   10,
			Tax:           8,
			Discount:      5,
			CreatedAt:     fixedNow,
		})
	}
	return out
}
