package domain

import "time"

const (
	StaffStatusActive   = "active"
	StaffStatusDisabled = "disabled"
)

type Staff struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	PasswordHash string    `gorm:"size:1024;not null" json:"-"`
	IsProtected  bool      `gorm:"not null;default:false" json:"isProtected"`
	Status       string    `gorm:"size:32;not null;default:active;index" json:"status"`
	LastLoginAt  time.Time `json:"lastLoginAt"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Roles        []Role    `gorm:"many2many:staff_roles" json:"roles,omitempty"`
}

type Role struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Name        string       `gorm:"uniqueIndex;size:64;not null" json:"name"`
	Description string       `gorm:"size:255" json:"description"`
	Permissions []Permission `gorm:"many2many:role_permissions" json:"permissions,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

type Permission struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Resource  string    `gorm:"size:64;not null;uniqueIndex:idx_permission_pair" json:"resource"`
	Action    string    `gorm:"size:64;not null;uniqueIndex:idx_permission_pair" json:"action"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (s Staff) Active() bool { return s.Status == StaffStatusActive }

func (p Permission) Token() string { return p.Resource + ":" + p.Action }
