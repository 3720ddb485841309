package database

import (
	"fmt"
	"math"
	"time"

	"github.com/sandeepkv93/storefront-admin-console/internal/domain"

	"gorm.io/gorm"
)

const (
	demoOrderCount        = 48
	demoNotificationCount = 30
)

var demoCustomers = []struct{ name, email string }{
	{"Ada Brooks", "ada.brooks@example.com"},
	{"Ben Okafor", "ben.okafor@example.com"},
	{"Chen Wei", "chen.wei@example.com"},
	{"Dana Ruiz", "dana.ruiz@example.com"},
	{"Emeka Obi", "emeka.obi@example.com"},
	{"Farah Haddad", "farah.haddad@example.com"},
	{"Goran Petrov", "goran.petrov@example.com"},
}

var demoProducts = []domain.Product{
	{Name: "Linen Shirt", SKU: "APP-LIN-001", Category: "apparel", Price: 49.90, Stock: 32, IsActive: true, ImageURL: "products/linen-shirt.jpg"},
	{Name: "Denim Jacket", SKU: "APP-DEN-002", Category: "apparel", Price: 89.00, Stock: 4, IsActive: true, ImageURL: "products/denim-jacket.jpg"},
	{Name: "Wool Scarf", SKU: "APP-WOL-003", Category: "apparel", Price: 24.50, Stock: 0, IsActive: true, ImageURL: "products/wool-scarf.jpg"},
	{Name: "Ceramic Mug", SKU: "HOM-MUG-001", Category: "home", Price: 12.00, Stock: 120, IsActive: true, ImageURL: "products/ceramic-mug.jpg"},
	{Name: "Oak Side Table", SKU: "HOM-OAK-002", Category: "home", Price: 189.00, Stock: 2, IsActive: true, ImageURL: "products/oak-table.jpg"},
	{Name: "Desk Lamp", SKU: "HOM-LMP-003", Category: "home", Price: 39.99, Stock: 18, IsActive: false, ImageURL: "/static/desk-lamp.png"},
	{Name: "Wireless Earbuds", SKU: "ELE-EAR-001", Category: "electronics", Price: 129.00, Stock: 45, IsActive: true, ImageURL: "products/earbuds.jpg"},
	{Name: "USB-C Hub", SKU: "ELE-HUB-002", Category: "electronics", Price: 59.00, Stock: 0, IsActive: false, ImageURL: "products/usb-hub.jpg"},
	{Name: "Mechanical Keyboard", SKU: "ELE-KBD-003", Category: "electronics", Price: 149.00, Stock: 7, IsActive: true, ImageURL: "products/keyboard.jpg"},
	{Name: "Trail Running Shoes", SKU: "SPT-SHO-001", Category: "sports", Price: 119.00, Stock: 3, IsActive: true, ImageURL: "products/trail-shoes.jpg"},
	{Name: "Yoga Mat", SKU: "SPT-YOG-002", Category: "sports", Price: 29.00, Stock: 60, IsActive: true, ImageURL: "products/yoga-mat.jpg"},
	{Name: "Water Bottle", SKU: "SPT-BTL-003", Category: "sports", Price: 18.00, Stock: 0, IsActive: true, ImageURL: ""},
}

var demoPaymentMethods = []string{
	domain.PaymentMethodCard,
	domain.PaymentMethodBankTransfer,
	domain.PaymentMethodCOD,
	domain.PaymentMethodWallet,
}

func seedDemo(db *gorm.DB, now time.Time, report *SyncReport) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Product{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			products := make([]domain.Product, len(demoProducts))
			copy(products, demoProducts)
			for i := range products {
				products[i].Description = products[i].Name + " from the demo catalog"
				products[i].CreatedAt = now.Add(-time.Duration(len(products)-i) * 24 * time.Hour)
			}
			if err := tx.Create(&products).Error; err != nil {
				return fmt.Errorf("seed demo products: %w", err)
			}
			report.DemoProducts = len(products)
		}

		if err := tx.Model(&domain.Order{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			orders := demoOrders(now)
			if err := tx.Create(&orders).Error; err != nil {
				return fmt.Errorf("seed demo orders: %w", err)
			}
			report.DemoOrders = len(orders)
		}

		if err := tx.Model(&domain.Notification{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			notifications := demoNotifications(now)
			if err := tx.Create(&notifications).Error; err != nil {
				return fmt.Errorf("seed demo notifications: %w", err)
			}
			report.DemoNotifications = len(notifications)
		}
		return nil
	})
}

func demoOrders(now time.Time) []domain.Order {
	out := make([]domain.Order, 0, demoOrderCount)
	for i := 0; i < demoOrderCount; i++ {
		c := demoCustomers[i%len(demoCustomers)]
		method := demoPaymentMethods[i%len(demoPaymentMethods)]
		status := domain.OrderStatuses[i%len(domain.OrderStatuses)]
		items := 1 + i%4
		subtotal := round2(float64(items) * (19.5 + float64(i%9)*7.25))
		o := domain.Order{
			OrderNumber:   fmt.Sprintf("SO-%06d", 1000+i),
			CustomerName:  c.name,
			CustomerEmail: c.email,
			Status:        status,
			PaymentMethod: method,
			PaymentStatus: demoPaymentStatus(status, method),
			ItemCount:     items,
			Subtotal:      subtotal,
			ShippingFee:   float64(5 * (i % 2)),
			Tax:           round2(subtotal * 0.08),
			Discount:      float64(i%3) * 2.5,
			CreatedAt:     now.Add(-time.Duration(i*41) * time.Hour),
		}
		o.Total = round2(o.GrandTotal())
		out = append(out, o)
	}
	return out
}

func demoPaymentStatus(status, method string) string {
	switch {
	case status == domain.OrderStatusRefunded:
		return domain.PaymentStatusRefunded
	case status == domain.OrderStatusCancelled:
		return domain.PaymentStatusUnpaid
	case status == domain.OrderStatusPending && method == domain.PaymentMethodBankTransfer:
		return domain.PaymentStatusPendingVerification
	case status == domain.OrderStatusPending && method == domain.PaymentMethodCOD:
		return domain.PaymentStatusUnpaid
	default:
		return domain.PaymentStatusPaid
	}
}

func demoNotifications(now time.Time) []domain.Notification {
	kinds := []struct{ kind, severity, title, link string }{
		{domain.NotificationTypeOrder, domain.SeverityInfo, "New order received", "/orders"},
		{domain.NotificationTypePayment, domain.SeverityWarning, "Bank transfer awaiting verification", "/orders"},
		{domain.NotificationTypeInventory, domain.SeverityWarning, "Stock running low", "/products"},
		{domain.NotificationTypeInventory, domain.SeverityCritical, "Product out of stock", "/products"},
		{domain.NotificationTypeSystem, domain.SeverityInfo, "Nightly export completed", ""},
	}
	out := make([]domain.Notification, 0, demoNotificationCount)
	for i := 0; i < demoNotificationCount; i++ {
		k := kinds[i%len(kinds)]
		created := now.Add(-time.Duration(i*5) * time.Hour)
		n := domain.Notification{
			Type:      k.kind,
			Severity:  k.severity,
			Title:     k.title,
			Message:   fmt.Sprintf("%s (#%d)", k.title, i+1),
			Link:      k.link,
			Read:      i%3 == 0,
			CreatedAt: created,
		}
		if n.Read {
			readAt := created.Add(30 * time.Minute)
			n.ReadAt = &readAt
		}
		out = append(out, n)
	}
	return out
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }
