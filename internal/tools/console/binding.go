package console

import (
	"context"
	"io"

	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
	"github.com/sandeepkv93/storefront-admin-console/internal/export"
	"github.com/sandeepkv93/storefront-admin-console/internal/listctl"
	"github.com/sandeepkv93/storefront-admin-console/internal/screens"
	"github.com/sandeepkv93/storefront-admin-console/internal/shell"
)

// screenOps is the type-independent surface of a resource screen.
type screenOps interface {
	Resource() string
	Load(ctx context.Context) error
	ExportTable(ctx context.Context) (export.Table, export.Meta, error)
	Export(ctx context.Context, w io.Writer, format export.Format) error
	Can(a screens.Affordance) bool
	Affordances() []screens.Affordance
	Filters() []screens.FilterSpec
	SetFilter(key, value string) error
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context) (listctl.BulkDeleteResult, error)
}

// listOps is the part of listctl.Controller the console drives directly.
type listOps interface {
	Query() listctl.Query
	PageInfo() listctl.PageInfo
	View() listctl.View
	SetSearchTerm(text string)
	SetPage(n int) bool
	NextPage() bool
	PrevPage() bool
	Toggle(id string) bool
	IsSelected(id string) bool
	Selected() []string
	SelectAllOnPage(included bool)
	ClearSelection()
}

// rowAction is a resource-specific key binding applied to the row under the
// cursor. Page-level actions ignore the id.
type rowAction struct {
	key     string
	label   string
	allowed bool
	run     func(ctx context.Context, id string) error
}

type binding struct {
	screen  screenOps
	list    listOps
	ids     func() []string
	actions []rowAction
	unread  shell.UnreadReader
}

func idsOf[T any](ctl *listctl.Controller[T], id func(T) string) func() []string {
	return func() []string {
		items := ctl.Items()
		out := make([]string, len(items))
		for i, item := range items {
			out[i] = id(item)
		}
		return out
	}
}

func findLoaded[T any](ctl *listctl.Controller[T], id func(T) string, want string) (T, bool) {
	for _, item := range ctl.Items() {
		if id(item) == want {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func orderID(o domain.Order) string { return o.ID }
func productID(p domain.Product) string { return p.ID }
func notificationID(n domain.Notification) string { return n.ID }

func bindOrders(s *screens.Orders, unread shell.UnreadReader) *binding {
	ctl := s.List()
	return &binding{
		screen: s,
		list:   ctl,
		ids:    idsOf(ctl, orderID),
		unread: unread,
		actions: []rowAction{
			{
				key:     "s",
				label:   "advance status",
				allowed: s.Can(screens.AffordanceUpdateStatus),
				run: func(ctx context.Context, id string) error {
					current, ok := findLoaded(ctl, orderID, id)
					if !ok {
						return nil
					}
					next, ok := domain.NextOrderStatus(current.Status)
					if !ok {
						return nil
					}
					return s.UpdateStatus(ctx, id, next)
				},
			},
			{
				key:     "c",
				label:   "cancel",
				allowed: s.Can(screens.AffordanceUpdateStatus),
				run: func(ctx context.Context, id string) error {
					return s.UpdateStatus(ctx, id, domain.OrderStatusCancelled)
				},
			},
			{
				key:     "v",
				label:   "verify transfer",
				allowed: s.Can(screens.AffordanceVerifyPayment),
				run:     s.VerifyBankTransfer,
			},
		},
	}
}

func bindProducts(s *screens.Products, unread shell.UnreadReader) *binding {
	ctl := s.List()
	return &binding{
		screen: s,
		list:   ctl,
		ids:    idsOf(ctl, productID),
		unread: unread,
		actions: []rowAction{
			{key: "t", label: "toggle active", allowed: s.Can(screens.AffordanceToggleActive), run: s.ToggleActive},
		},
	}
}

func bindNotifications(s *screens.Notifications) *binding {
	ctl := s.List()
	return &binding{
		screen: s,
		list:   ctl,
		ids:    idsOf(ctl, notificationID),
		unread: s.Unread(),
		actions: []rowAction{
			{key: "m", label: "mark read", allowed: s.Can(screens.AffordanceMarkRead), run: s.MarkRead},
			{
				key:     "M",
				label:   "mark all read",
				allowed: s.Can(screens.AffordanceMarkAllRead),
				run: func(ctx context.Context, _ string) error {
					_, err := s.MarkAllRead(ctx)
					return err
				},
			},
			{
				key:     "u",
				label:   "select unread",
				allowed: s.Can(screens.AffordanceSelectScope),
				run: func(context.Context, string) error {
					_, err := s.SelectScope(screens.ScopeUnread)
					return err
				},
			},
		},
	}
}
