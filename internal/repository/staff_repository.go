package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sandeepkv93/storefront-admin-console/internal/domain"

	"gorm.io/gorm"
)

var ErrStaffNotFound = errors.New("staff not found")

type StaffRepository interface {
	FindByID(ctx context.Context, id uint) (*domain.Staff, error)
	FindByEmail(ctx context.Context, email string) (*domain.Staff, error)
	Create(ctx context.Context, staff *domain.Staff) error
	SetRoles(ctx context.Context, staffID uint, roleNames []string) error
	TouchLastLogin(ctx context.Context, staffID uint, at time.Time) error
}

type GormStaffRepository struct{ db *gorm.DB }

func NewStaffRepository(db *gorm.DB) StaffRepository { return &GormStaffRepository{db: db} }

func (r *GormStaffRepository) FindByID(ctx context.Context, id uint) (*domain.Staff, error) {
	var s domain.Staff
	err := r.db.WithContext(ctx).Preload("Roles.Permissions").First(&s, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormStaffRepository) FindByEmail(ctx context.Context, email string) (*domain.Staff, error) {
	var s domain.Staff
	err := r.db.WithContext(ctx).Preload("Roles.Permissions").Where("email = ?", email).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormStaffRepository) Create(ctx context.Context, staff *domain.Staff) error {
	return r.db.WithContext(ctx).Create(staff).Error
}

func (r *GormStaffRepository) SetRoles(ctx context.Context, staffID uint, roleNames []string) error {
	var roles []domain.Role
	if len(roleNames) > 0 {
		if err := r.db.WithContext(ctx).Where("name IN ?", roleNames).Find(&roles).Error; err != nil {
			return err
		}
	}
	s := domain.Staff{ID: staffID}
	return r.db.WithContext(ctx).Model(&s).Association("Roles").Replace(roles)
}

func (r *GormStaffRepository) TouchLastLogin(ctx context.Context, staffID uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.Staff{}).Where("id = ?", staffID).Update("last_login_at", at).Error
}
