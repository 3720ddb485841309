package screens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
	"github.com/sandeepkv93/storefront-admin-console/internal/export"
	"github.com/sandeepkv93/storefront-admin-console/internal/listctl"
	"github.com/sandeepkv93/storefront-admin-console/internal/observability"
	"github.com/sandeepkv93/storefront-admin-console/internal/permission"
	"github.com/sandeepkv93/storefront-admin-console/internal/present"
	"github.com/sandeepkv93/storefront-admin-console/internal/shell"
)

const (
	ResourceNotifications = "notifications"

	NotificationFilterType     = "type"
	NotificationFilterSeverity = "severity"
	NotificationFilterRead     = "read"

	ScopeRead   = "read"
	ScopeUnread = "unread"
)

// Notifications is the only writer of the shared unread counter.
type Notifications struct {
	*screen[domain.Notification, domain.NotificationStats]
	unread *shell.UnreadCounter
}

func NewNotifications(src Source[domain.Notification], unread *shell.UnreadCounter, opts Options) (*Notifications, error) {
	if unread == nil {
		unread = shell.NewUnreadCounter()
	}
	base, err := newScreen[domain.Notification, domain.NotificationStats](src, opts, screenSpec[domain.Notification]{
		resource: ResourceNotifications,
		id:       func(n domain.Notification) string { return n.ID },
		scopes: map[string]func(domain.Notification) bool{
			ScopeRead:   func(n domain.Notification) bool { return n.Read },
			ScopeUnread: func(n domain.Notification) bool { return !n.Read },
		},
		rules: []rule{
			{AffordanceView, permission.NotificationsRead},
			{AffordanceSelectScope, ""},
			{AffordanceMarkRead, permission.NotificationsUpdate},
			{AffordanceMarkAllRead, permission.NotificationsUpdate},
			{AffordanceDelete, permission.NotificationsDelete},
			{AffordanceBulkDelete, permission.NotificationsDelete},
			{AffordanceExport, permission.NotificationsExport},
		},
		filters: []FilterSpec{
			{Key: NotificationFilterType, Label: "Type", Options: []string{
				domain.NotificationTypeOrder, domain.NotificationTypePayment, domain.NotificationTypeInventory, domain.NotificationTypeSystem,
			}},
			{Key: NotificationFilterSeverity, Label: "Severity", Options: []string{
				domain.SeverityInfo, domain.SeverityWarning, domain.SeverityCritical,
			}},
			{Key: NotificationFilterRead, Label: "Read state", Options: []string{ScopeRead, ScopeUnread}},
		},
		sort:  listctl.Sort{Field: "createdAt", Order: listctl.SortDesc},
		table: notificationTable,
	}, func(s domain.NotificationStats) { unread.Set(s.Unread) })
	if err != nil {
		return nil, err
	}
	return &Notifications{screen: base, unread: unread}, nil
}

// Unread is the read side of the counter for the app shell.
func (n *Notifications) Unread() shell.UnreadReader { return n.unread }

// SelectScope replaces the selection with the page items in scope: all, read
// or unread.
func (n *Notifications) SelectScope(scope string) (int, error) {
	if !n.Can(AffordanceSelectScope) {
		return 0, ErrUnavailable
	}
	return n.list.SelectByScope(scope)
}

// MarkRead marks one notification read. The unread counter moves with the
// row and is restored if the server refuses.
func (n *Notifications) MarkRead(ctx context.Context, id string) error {
	if !n.Can(AffordanceMarkRead) {
		return ErrUnavailable
	}
	current, ok := n.loaded(id)
	if ok && current.Read {
		return nil
	}
	var linked []listctl.Optimistic
	if ok {
		var before int64
		linked = append(linked, listctl.NewChange(func() {
			before = n.unread.Get()
			n.unread.Set(before - 1)
		}, func() {
			n.unread.Set(before)
		}))
	}
	return n.list.UpdateField(ctx, id, listctl.Patch[domain.Notification]{
		Op: "mark_read",
		Apply: func(item *domain.Notification) {
			now := n.opts.Now()
			item.Read = true
			item.ReadAt = &now
		},
		Commit: func(ctx context.Context, id string) (*domain.Notification, error) {
			_, err := n.src.Action(ctx, "mark-read", map[string][]string{"ids": {id}})
			return nil, err
		},
		FailureMessage: "Failed to mark notification as read",
	}, linked...)
}

// MarkAllRead marks every notification matching the applied filters read.
// The filters are echoed to the server so only the visible set changes.
func (n *Notifications) MarkAllRead(ctx context.Context) (int64, error) {
	if !n.Can(AffordanceMarkAllRead) {
		return 0, ErrUnavailable
	}
	applied := n.list.Snapshot().Applied
	body := map[string]string{}
	for _, f := range applied.ActiveFilters() {
		if f[0] == NotificationFilterRead {
			continue
		}
		body[f[0]] = f[1]
	}
	if s := strings.TrimSpace(applied.Search); s != "" {
		body["search"] = s
	}

	res, err := n.src.Action(ctx, "mark-all-read", body)
	if err != nil {
		me := &listctl.MutationError{
			Resource: ResourceNotifications,
			Op:       "mark_all_read",
			Message:  listctl.UserMessage(err, "Failed to mark notifications as read"),
			Err:      err,
		}
		observability.RecordListMutation(ctx, ResourceNotifications, "mark_all_read", "error")
		n.logger.WarnContext(ctx, "mark all read failed", "error", err)
		n.notifier.Notify(ctx, listctl.Notice{Level: listctl.LevelError, Resource: ResourceNotifications, Message: me.Message, Err: me})
		return 0, me
	}
	observability.RecordListMutation(ctx, ResourceNotifications, "mark_all_read", "success")
	n.notifier.Notify(ctx, listctl.Notice{
		Level:    listctl.LevelSuccess,
		Resource: ResourceNotifications,
		Message:  fmt.Sprintf("Marked %d notifications as read", res.ModifiedCount),
	})
	if err := n.list.Refresh(ctx); err != nil && !errors.Is(err, listctl.ErrSuperseded) {
		n.logger.WarnContext(ctx, "refresh after mark all read failed", "error", err)
	}
	n.stats.Invalidate(ctx)
	return res.ModifiedCount, nil
}

func notificationTable(_ context.Context, items []domain.Notification) (export.Table, error) {
	t := export.Table{
		Columns: []export.Column{
			{Title: "Type", Width: 12},
			{Title: "Severity", Width: 10},
			{Title: "Title", Width: 30},
			{Title: "Message", Width: 50},
			{Title: "Read", Width: 8},
			{Title: "Created", Width: 18},
		},
		Rows: make([][]any, 0, len(items)),
	}
	for _, item := range items {
		t.Rows = append(t.Rows, []any{
			present.NotificationType(item.Type),
			present.Severity(item.Severity),
			item.Title,
			item.Message,
			present.ReadState(item.Read),
			item.CreatedAt,
		})
	}
	return t, nil
}
