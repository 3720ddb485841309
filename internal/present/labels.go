package present

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
)

var orderStatusLabels = map[string]string{
	domain.OrderStatusPending:    "Pending",
	domain.OrderStatusProcessing: "Processing",
	domain.OrderStatusShipped:    "Shipped",
	domain.OrderStatusDelivered:  "Delivered",
	domain.OrderStatusCancelled:  "Cancelled",
	domain.OrderStatusRefunded:   "Refunded",
}

var paymentMethodLabels = map[string]string{
	domain.PaymentMethodCard:         "Card",
	domain.PaymentMethodBankTransfer: "Bank transfer",
	domain.PaymentMethodCOD:          "Cash on delivery",
	domain.PaymentMethodWallet:       "Wallet",
}

var paymentStatusLabels = map[string]string{
	domain.PaymentStatusUnpaid:              "Unpaid",
	domain.PaymentStatusPendingVerification: "Awaiting verification",
	domain.PaymentStatusPaid:                "Paid",
	domain.PaymentStatusRefunded:            "Refunded",
}

func OrderStatus(status string) string { return lookup(orderStatusLabels, status) }
func PaymentMethod(method string) string { return lookup(paymentMethodLabels, method) }
func PaymentStatus(status string) string { return lookup(paymentStatusLabels, status) }
func NotificationType(kind string) string { return Humanize(kind) }
func Severity(severity string) string { return Humanize(severity) }
func ProductStatus(p domain.Product) string { return Humanize(p.Status()) }

func ReadState(read bool) string {
	if read {
		return "Read"
	}
	return "Unread"
}

func lookup(labels map[string]string, key string) string {
	if v, ok := labels[key]; ok {
		return v
	}
	return Humanize(key)
}

// Humanize turns snake_case or kebab-case values into a sentence-case label.
func Humanize(v string) string {
	v = strings.TrimSpace(strings.NewReplacer("_", " ", "-", " ").Replace(v))
	if v == "" {
		return "-"
	}
	return strings.ToUpper(v[:1]) + strings.ToLower(v[1:])
}

// Money formats an amount as dollars with thousands separators.
func Money(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	cents := int64(math.Round(amount * 100))
	whole, frac := cents/100, cents%100
	digits := fmt.Sprintf("%d", whole)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s$%s.%02d", sign, b.String(), frac)
}

func Timestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// Truncate shortens s to at most n runes, marking the cut with an ellipsis.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n == 1 {
		return "…"
	}
	return string(r[:n-1]) + "…"
}
