package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	NotificationTypeOrder     = "order"
	NotificationTypePayment   = "payment"
	NotificationTypeInventory = "inventory"
	NotificationTypeSystem    = "system"

	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

type Notification struct {
	ID        string     `gorm:"primaryKey;size:36" json:"id"`
	Type      string     `gorm:"size:32;not null;index" json:"type"`
	Severity  string     `gorm:"size:16;not null;default:info;index" json:"severity"`
	Title     string     `gorm:"size:255;not null" json:"title"`
	Message   string     `gorm:"size:1024" json:"message"`
	Link      string     `gorm:"size:512" json:"link,omitempty"`
	Read      bool       `gorm:"not null;default:false;index" json:"read"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (n *Notification) BeforeCreate(*gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

type NotificationStats struct {
	Total    int64 `json:"total"`
	Unread   int64 `json:"unread"`
	Critical int64 `json:"critical"`
}
