package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
	OrderStatusRefunded   = "refunded"

	PaymentMethodCard         = "card"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodCOD          = "cod"
	PaymentMethodWallet       = "wallet"

	PaymentStatusUnpaid              = "unpaid"
	PaymentStatusPendingVerification = "pending_verification"
	PaymentStatusPaid                = "paid"
	PaymentStatusRefunded            = "refunded"
)

var OrderStatuses = []string{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

var orderTransitions = map[string][]string{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  {OrderStatusRefunded},
}

type Order struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	OrderNumber   string    `gorm:"size:32;not null;uniqueIndex" json:"orderNumber"`
	CustomerName  string    `gorm:"size:255;not null" json:"customerName"`
	CustomerEmail string    `gorm:"size:255;not null;index" json:"customerEmail"`
	Status        string    `gorm:"size:32;not null;default:pending;index" json:"status"`
	PaymentMethod string    `gorm:"size:32;not null;index" json:"paymentMethod"`
	PaymentStatus string    `gorm:"size:32;not null;default:unpaid;index" json:"paymentStatus"`
	ItemCount     int       `gorm:"not null;default:0" json:"itemCount"`
	Subtotal      float64   `gorm:"not null;default:0" json:"subtotal"`
	ShippingFee   float64   `gorm:"not null;default:0" json:"shippingFee"`
	Tax           float64   `gorm:"not null;default:0" json:"tax"`
	Discount      float64   `gorm:"not null;default:0" json:"discount"`
	Total         float64   `gorm:"not null;default:0" json:"total"`
	CreatedAt     time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// GrandTotal derives the payable amount from the underlying numeric fields.
func (o Order) GrandTotal() float64 {
	return o.Subtotal + o.ShippingFee + o.Tax - o.Discount
}

func IsOrderStatus(status string) bool {
	for _, s := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

func CanTransitionOrder(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextOrderStatus is the forward step of the fulfilment workflow. Cancelled
// and refunded orders have none.
func NextOrderStatus(from string) (string, bool) {
	next := orderTransitions[from]
	if len(next) == 0 {
		return "", false
	}
	return next[0], true
}

type OrderStats struct {
	Total                int64   `json:"total"`
	Pending              int64   `json:"pending"`
	Processing           int64   `json:"processing"`
	Shipped              int64   `json:"shipped"`
	Delivered            int64   `json:"delivered"`
	Cancelled            int64   `json:"cancelled"`
	Refunded             int64   `json:"refunded"`
	AwaitingVerification int64   `json:"awaitingVerification"`
	Revenue              float64 `json:"revenue"`
}
