package screens

import (
	"context"
	"fmt"
	"strings"

	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
	"github.com/sandeepkv93/storefront-admin-console/internal/export"
	"github.com/sandeepkv93/storefront-admin-console/internal/listctl"
	"github.com/sandeepkv93/storefront-admin-console/internal/permission"
	"github.com/sandeepkv93/storefront-admin-console/internal/present"
)

const (
	ResourceOrders = "orders"

	OrderFilterStatus        = "status"
	OrderFilterPaymentMethod = "paymentMethod"
	OrderFilterPaymentStatus = "paymentStatus"
	OrderFilterDate          = "date"
)

var orderDateRanges = []string{"today", "7d", "30d", "90d"}

type Orders struct {
	*screen[domain.Order, domain.OrderStats]
	detail listctl.Detail[domain.Order]
}

func NewOrders(src Source[domain.Order], opts Options) (*Orders, error) {
	base, err := newScreen[domain.Order, domain.OrderStats](src, opts, screenSpec[domain.Order]{
		resource: ResourceOrders,
		id:       func(o domain.Order) string { return o.ID },
		rules: []rule{
			{AffordanceView, permission.OrdersRead},
			{AffordanceUpdateStatus, permission.OrdersUpdate},
			{AffordanceVerifyPayment, permission.OrdersUpdate},
			{AffordanceDelete, permission.OrdersDelete},
			{AffordanceBulkDelete, permission.OrdersDelete},
			{AffordanceExport, permission.OrdersExport},
		},
		filters: []FilterSpec{
			{Key: OrderFilterStatus, Label: "Status", Options: domain.OrderStatuses},
			{Key: OrderFilterPaymentMethod, Label: "Payment method", Options: []string{
				domain.PaymentMethodCard, domain.PaymentMethodBankTransfer, domain.PaymentMethodCOD, domain.PaymentMethodWallet,
			}},
			{Key: OrderFilterPaymentStatus, Label: "Payment status", Options: []string{
				domain.PaymentStatusUnpaid, domain.PaymentStatusPendingVerification, domain.PaymentStatusPaid, domain.PaymentStatusRefunded,
			}},
			{Key: OrderFilterDate, Label: "Placed", Options: orderDateRanges},
		},
		sort:  listctl.Sort{Field: "createdAt", Order: listctl.SortDesc},
		table: orderTable,
	}, nil)
	if err != nil {
		return nil, err
	}
	return &Orders{screen: base}, nil
}

// Detail is the order shown in the detail pane, if any. Status changes made
// from the list are mirrored into it and rolled back with the row.
func (o *Orders) Detail() *listctl.Detail[domain.Order] { return &o.detail }

func (o *Orders) UpdateStatus(ctx context.Context, id, status string) error {
	if !o.Can(AffordanceUpdateStatus) {
		return ErrUnavailable
	}
	status = strings.ToLower(strings.TrimSpace(status))
	if !domain.IsOrderStatus(status) {
		return o.invalid(ctx, "status", fmt.Sprintf("Unknown order status %q", status))
	}
	if current, ok := o.loaded(id); ok {
		if current.Status == status {
			return nil
		}
		if !domain.CanTransitionOrder(current.Status, status) {
			return o.invalid(ctx, "status", fmt.Sprintf("Cannot move order from %s to %s", present.OrderStatus(current.Status), present.OrderStatus(status)))
		}
	}
	apply := func(order *domain.Order) { order.Status = status }
	return o.list.UpdateField(ctx, id, listctl.Patch[domain.Order]{
		Op:    "status",
		Apply: apply,
		Commit: func(ctx context.Context, id string) (*domain.Order, error) {
			return o.src.Patch(ctx, id, "status", map[string]string{"status": status})
		},
		FailureMessage: "Failed to update order status",
		SuccessMessage: "Order marked " + present.OrderStatus(status),
	}, o.detail.Patch(id, apply))
}

// VerifyBankTransfer confirms a bank transfer payment. A pending order moves
// to processing with it.
func (o *Orders) VerifyBankTransfer(ctx context.Context, id string) error {
	if !o.Can(AffordanceVerifyPayment) {
		return ErrUnavailable
	}
	if current, ok := o.loaded(id); ok {
		if current.PaymentMethod != domain.PaymentMethodBankTransfer {
			return o.invalid(ctx, "paymentMethod", "Only bank transfer payments can be verified")
		}
		if current.PaymentStatus != domain.PaymentStatusPendingVerification {
			return o.invalid(ctx, "paymentStatus", "Payment is not awaiting verification")
		}
	}
	apply := func(order *domain.Order) {
		order.PaymentStatus = domain.PaymentStatusPaid
		if order.Status == domain.OrderStatusPending {
			order.Status = domain.OrderStatusProcessing
		}
	}
	return o.list.UpdateField(ctx, id, listctl.Patch[domain.Order]{
		Op:    "verify-bank-transfer",
		Apply: apply,
		Commit: func(ctx context.Context, id string) (*domain.Order, error) {
			return o.src.Patch(ctx, id, "verify-bank-transfer", nil)
		},
		FailureMessage: "Failed to verify bank transfer",
		SuccessMessage: "Bank transfer verified",
	}, o.detail.Patch(id, apply))
}

func orderTable(_ context.Context, orders []domain.Order) (export.Table, error) {
	t := export.Table{
		Columns: []export.Column{
			{Title: "Order", Width: 16},
			{Title: "Customer", Width: 22},
			{Title: "Email", Width: 28},
			{Title: "Status", Width: 14},
			{Title: "Payment", Width: 16},
			{Title: "Payment status", Width: 20},
			{Title: "Items", Width: 8},
			{Title: "Subtotal", Width: 12},
			{Title: "Shipping", Width: 12},
			{Title: "Tax", Width: 10},
			{Title: "Discount", Width: 12},
			{Title: "Total", Width: 12},
			{Title: "Placed", Width: 18},
		},
		Rows: make([][]any, 0, len(orders)),
	}
	for _, o := range orders {
		t.Rows = append(t.Rows, []any{
			o.OrderNumber,
			o.CustomerName,
			o.CustomerEmail,
			present.OrderStatus(o.Status),
			present.PaymentMethod(o.PaymentMethod),
			present.PaymentStatus(o.PaymentStatus),
			o.ItemCount,
			o.Subtotal,
			o.ShippingFee,
			o.Tax,
			o.Discount,
			o.GrandTotal(),
			o.CreatedAt,
		})
	}
	return t, nil
}
