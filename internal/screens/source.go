// Package screens binds the Orders, Products and Notifications lists to their
// data sources, permissions, stats and export columns.
package screens

import (
	"context"
	"errors"

	"github.com/sandeepkv93/storefront-admin-console/internal/datasource"
	"github.com/sandeepkv93/storefront-admin-console/internal/listctl"
)

//go:generate mockgen -source=source.go -destination=gomock/source_mock.go -package=gomock

// Source is the REST collection behind one screen. datasource.Resource
// satisfies it.
type Source[T any] interface {
	listctl.DataSource[T]
	Stats(ctx context.Context, out any) error
	Patch(ctx context.Context, id, op string, body any) (*T, error)
	Action(ctx context.Context, op string, body any) (datasource.ActionResult, error)
}

// ErrUnavailable is returned when an operation is invoked for an affordance
// the actor cannot see. No notice is raised for it.
var ErrUnavailable = errors.New("affordance not available")

type Affordance string

const (
	AffordanceView          Affordance = "view"
	AffordanceUpdateStatus  Affordance = "update_status"
	AffordanceVerifyPayment Affordance = "verify_payment"
	AffordanceToggleActive  Affordance = "toggle_active"
	AffordanceMarkRead      Affordance = "mark_read"
	AffordanceMarkAllRead   Affordance = "mark_all_read"
	AffordanceSelectScope   Affordance = "select_scope"
	AffordanceDelete        Affordance = "delete"
	AffordanceBulkDelete    Affordance = "bulk_delete"
	AffordanceExport        Affordance = "export"
)

// rule guards an affordance with a permission string. An empty permission
// leaves the affordance visible to everyone.
type rule struct {
	affordance Affordance
	permission string
}

// FilterSpec describes one filter control. Options lists the accepted values;
// an empty list means free text.
type FilterSpec struct {
	Key     string
	Label   string
	Options []string
}
