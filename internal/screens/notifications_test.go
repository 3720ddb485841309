package screens

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/sandeepkv93/storefront-admin-console/internal/datasource"
	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
	"github.com/sandeepkv93/storefront-admin-console/internal/listctl"
	screensgomock "github.com/sandeepkv93/storefront-admin-console/internal/screens/gomock"
	"github.com/sandeepkv93/storefront-admin-console/internal/shell"
)

func notificationFixtures() []domain.Notification {
	return []domain.Notification{
		{ID: "n1", Type: domain.NotificationTypeOrder, Severity: domain.SeverityInfo, Title: "New order", CreatedAt: fixedNow},
		{ID: "n2", Type: domain.NotificationTypeInventory, Severity: domain.SeverityWarning, Title: "Low stock", CreatedAt: fixedNow},
		{ID: "n3", Type: domain.NotificationTypeOrder, Severity: domain.SeverityInfo, Title: "Order shipped", Read: true, CreatedAt: fixedNow},
	}
}

func statsReturning(unread ...int64) func(context.Context, any) error {
	i := 0
	return func(_ context.Context, out any) error {
		*out.(*domain.NotificationStats) = domain.NotificationStats{Total: 3, Unread: unread[min(i, len(unread)-1)]}
		i++
		return nil
	}
}

func newNotificationsForTest(t *testing.T, src Source[domain.Notification]) (*Notifications, *shell.UnreadCounter, *listctl.ManualScheduler, *noticeLog) {
	t.Helper()
	opts, sched, notices := testOptions(admin())
	counter := shell.NewUnreadCounter()
	n, err := NewNotifications(src, counter, opts)
	if err != nil {
		t.Fatalf("new notifications: %v", err)
	}
	return n, counter, sched, notices
}

func TestNotificationsLoadWritesUnreadCounter(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := screensgomock.NewMockSource[domain.Notification](ctrl)
	n, counter, _, _ := newNotificationsForTest(t, src)
	rows := notificationFixtures()

	src.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, q listctl.Query) (listctl.Page[domain.Notification], error) {
		return pageOf(rows, q), nil
	})
	src.EXPECT().Stats(gomock.Any(), gomock.Any()).DoAndReturn(statsReturning(2))

	var seen []int64
	n.Unread().Subscribe(func(v int64) { seen = append(seen, v) })
	if err := n.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if counter.Get() != 2 || len(seen) != 1 || seen[0] != 2 {
		t.Fatalf("expected unread 2 published once, got %d %v", counter.Get(), seen)
	}
	if len(n.List().Items()) != 3 {
		t.Fatalf("expected 3 items, got %d", len(n.List().Items()))
	}
}

func TestNotificationsMarkReadRollsBackCounter(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := screensgomock.NewMockSource[domain.Notification](ctrl)
	n, counter, _, notices := newNotificationsForTest(t, src)
	ctx := context.Background()
	rows := notificationFixtures()

	src.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, q listctl.Query) (listctl.Page[domain.Notification], error) {
		return pageOf(rows, q), nil
	})
	src.EXPECT().Stats(gomock.Any(), gomock.Any()).DoAndReturn(statsReturning(2))
	src.EXPECT().Action(gomock.Any(), "mark-read", map[string][]string{"ids": {"n1"}}).
		Return(datasource.ActionResult{}, &datasource.APIError{Status: 500, Message: "Try again later"})

	if err := n.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := n.MarkRead(ctx, "n1"); err == nil {
		t.Fatal("expected mark read failure")
	}
	if counter.Get() != 2 {
		t.Fatalf("expected counter restored to 2, got %d", counter.Get())
	}
	if got := n.List().Items()[0]; got.Read || got.ReadAt != nil {
		t.Fatalf("expected row restored, got %+v", got)
	}
	if msg := notices.last(t).Message; msg != "Try again later" {
		t.Fatalf("unexpected notice %q", msg)
	}
}

func TestNotificationsMarkReadSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := screensgomock.NewMockSource[domain.Notification](ctrl)
	n, counter, _, _ := newNotificationsForTest(t, src)
	ctx := context.Background()
	rows := notificationFixtures()

	src.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, q listctl.Query) (listctl.Page[domain.Notification], error) {
		return pageOf(rows, q), nil
	})
	src.EXPECT().Stats(gomock.Any(), gomock.Any()).DoAndReturn(statsReturning(2, 1)).Times(2)
	src.EXPECT().Action(gomock.Any(), "mark-read", gomock.Any()).Return(datasource.ActionResult{ModifiedCount: 1}, nil)

	if err := n.Load(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	var during []int64
	n.Unread().Subscribe(func(v int64) { during = append(during, v) })
	if err := n.MarkRead(ctx, "n1"); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if counter.Get() != 1 {
		t.Fatalf("expected unread 1, got %d", counter.Get())
	}
	if len(during) != 1 || during[0] != 1 {
		t.Fatalf("expected one change to 1, got %v", during)
	}
	if got := n.List().Items()[0]; !got.Read || got.ReadAt == nil || !got.ReadAt.Equal(fixedNow) {
		t.Fatalf("expected row marked read, got %+v", got)
	}
	// Already read: nothing is sent.
	if err := n.MarkRead(ctx, "n3"); err != nil {
		t.Fatalf("mark read of read row: %v", err)
	}
}

func TestNotificationsMarkAllReadEchoesFilters(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := screensgomock.NewMockSource[domain.Notification](ctrl)
	n, counter, sched, notices := newNotificationsForTest(t, src)
	ctx := context.Background()
	rows := notificationFixtures()

	src.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, q listctl.Query) (listctl.Page[domain.Notification], error) {
		return pageOf(rows, q), nil
	}).Times(2)
	src.EXPECT().Action(gomock.Any(), "mark-all-read", map[string]string{"type": domain.NotificationTypeOrder}).
		Return(datasource.ActionResult{ModifiedCount: 1}, nil)
	src.EXPECT().Stats(gomock.Any(), gomock.Any()).DoAndReturn(statsReturning(1))

	if err := n.SetFilter(NotificationFilterType, domain.NotificationTypeOrder); err != nil {
		t.Fatalf("set filter: %v", err)
	}
	if err := n.SetFilter(NotificationFilterRead, ScopeUnread); err != nil {
		t.Fatalf("set filter: %v", err)
	}
	sched.Advance(0)

	modified, err := n.MarkAllRead(ctx)
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if modified != 1 || counter.Get() != 1 {
		t.Fatalf("unexpected outcome modified=%d unread=%d", modified, counter.Get())
	}
	if msg := notices.last(t).Message; msg != "Marked 1 notifications as read" {
		t.Fatalf("unexpected notice %q", msg)
	}
}

func TestNotificationsMarkAllReadFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := screensgomock.NewMockSource[domain.Notification](ctrl)
	n, _, _, notices := newNotificationsForTest(t, src)

	src.EXPECT().Action(gomock.Any(), "mark-all-read", map[string]string{}).Return(datasource.ActionResult{}, errors.New("offline"))

	_, err := n.MarkAllRead(context.Background())
	var me *listctl.MutationError
	if !errors.As(err, &me) {
		t.Fatalf("expected mutation error, got %v", err)
	}
	if msg := notices.last(t).Message; msg != "Failed to mark notifications as read" {
		t.Fatalf("unexpected notice %q", msg)
	}
}

func TestNotificationsSelectScopeReplaces(t *testing.T) {
	ctrl := gomock.NewController(t)
	src := screensgomock.NewMockSource[domain.Notification](ctrl)
	n, _, _, _ := newNotificationsForTest(t, src)
	rows := notificationFixtures()
	src.EXPECT().List(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, q listctl.Query) (listctl.Page[domain.Notification], error) {
		return pageOf(rows, q), nil
	})
	if err := n.List().Refresh(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}

	if count, err := n.SelectScope(ScopeUnread); err != nil || count != 2 {
		t.Fatalf("select unread: count=%d err=%v", count, err)
	}
	if count, err := n.SelectScope(ScopeRead); err != nil || count != 1 {
		t.Fatalf("select read: count=%d err=%v", count, err)
	}
	if got := n.List().Selected(); len(got) != 1 || got[0] != "n3" {
		t.Fatalf("expected only n3 selected, got %v", got)
	}
	if _, err := n.SelectScope("starred"); !errors.Is(err, listctl.ErrScopeNotSupported) {
		t.Fatalf("expected ErrScopeNotSupported, got %v", err)
	}
}
