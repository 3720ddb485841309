package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
	"github.com/sandeepkv93/storefront-admin-console/internal/observability"
	"github.com/sandeepkv93/storefront-admin-console/internal/permission"
	"github.com/sandeepkv93/storefront-admin-console/internal/security"

	"gorm.io/gorm"
)

type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
	// Demo fills empty order, product and notification tables with sample rows.
	Demo bool
	Now  time.Time
}

type SyncReport struct {
	CreatedPermissions int  `json:"created_permissions"`
	CreatedRoles       int  `json:"created_roles"`
	BoundPermissions   int  `json:"bound_permissions"`
	CreatedStaff       int  `json:"created_staff"`
	DemoOrders         int  `json:"demo_orders"`
	DemoProducts       int  `json:"demo_products"`
	DemoNotifications  int  `json:"demo_notifications"`
	Noop               bool `json:"noop"`
}

func Seed(db *gorm.DB, opts SeedOptions) error {
	_, err := SeedSync(db, opts)
	return err
}

// SeedSync converges permissions and roles to the catalog, ensures the
// bootstrap admin exists and optionally loads demo data. Running it twice is
// a no-op.
func SeedSync(db *gorm.DB, opts SeedOptions) (*SyncReport, error) {
	ctx, span := observability.StartSpan(context.Background(), "database.seed_sync")
	defer span.End()
	report, err := seedSync(db, opts)
	if err != nil {
		span.RecordError(err)
		observability.RecordRepositoryOperation(ctx, "seed", "sync", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "seed", "sync", "success")
	return report, nil
}

func seedSync(db *gorm.DB, opts SeedOptions) (*SyncReport, error) {
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	report := &SyncReport{}

	byToken := make(map[string]domain.Permission, len(permission.All))
	for _, token := range permission.All {
		resource, action, _ := strings.Cut(token, ":")
		p := domain.Permission{Resource: resource, Action: action}
		res := db.Where("resource = ? AND action = ?", p.Resource, p.Action).FirstOrCreate(&p)
		if res.Error != nil {
			return nil, fmt.Errorf("seed permission %s: %w", token, res.Error)
		}
		if res.RowsAffected > 0 {
			report.CreatedPermissions++
		}
		byToken[token] = p
	}

	names := make([]string, 0, len(permission.DefaultRoles))
	for name := range permission.DefaultRoles {
		names = append(names, name)
	}
	sort.Strings(names)
	roles := make(map[string]domain.Role, len(names))
	for _, name := range names {
		role := domain.Role{Name: name, Description: strings.ToUpper(name[:1]) + name[1:] + " role"}
		res := db.Where("name = ?", name).FirstOrCreate(&role)
		if res.Error != nil {
			return nil, fmt.Errorf("seed role %s: %w", name, res.Error)
		}
		if res.RowsAffected > 0 {
			report.CreatedRoles++
		}
		bound, err := bindPermissions(db, &role, permission.DefaultRoles[name], byToken)
		if err != nil {
			return nil, err
		}
		report.BoundPermissions += bound
		roles[name] = role
	}

	email := strings.TrimSpace(strings.ToLower(opts.AdminEmail))
	if email != "" {
		created, err := ensureAdmin(db, email, opts.AdminPassword, roles["admin"])
		if err != nil {
			return nil, err
		}
		if created {
			report.CreatedStaff++
		}
	}

	if opts.Demo {
		if err := seedDemo(db, opts.Now, report); err != nil {
			return nil, err
		}
	}

	report.Noop = report.CreatedPermissions == 0 && report.CreatedRoles == 0 && report.BoundPermissions == 0 &&
		report.CreatedStaff == 0 && report.DemoOrders == 0 && report.DemoProducts == 0 && report.DemoNotifications == 0
	return report, nil
}

func bindPermissions(db *gorm.DB, role *domain.Role, tokens []string, byToken map[string]domain.Permission) (int, error) {
	var before domain.Role
	if err := db.Preload("Permissions").Where("id = ?", role.ID).First(&before).Error; err != nil {
		return 0, fmt.Errorf("load role %s: %w", role.Name, err)
	}
	beforeSet := make(map[uint]struct{}, len(before.Permissions))
	for _, p := range before.Permissions {
		beforeSet[p.ID] = struct{}{}
	}
	want := make([]domain.Permission, 0, len(tokens))
	for _, t := range tokens {
		p, ok := byToken[t]
		if !ok {
			return 0, fmt.Errorf("role %s references unknown permission %s", role.Name, t)
		}
		want = append(want, p)
	}
	changed := len(want) != len(before.Permissions)
	bound := 0
	for _, p := range want {
		if _, ok := beforeSet[p.ID]; !ok {
			bound++
			changed = true
		}
	}
	if !changed {
		return 0, nil
	}
	if err := db.Model(role).Association("Permissions").Replace(want); err != nil {
		return 0, fmt.Errorf("bind permissions to role %s: %w", role.Name, err)
	}
	return bound, nil
}

func ensureAdmin(db *gorm.DB, email, password string, adminRole domain.Role) (bool, error) {
	var s domain.Staff
	err := db.Preload("Roles").Where("email = ?", email).First(&s).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if password == "" {
			return false, fmt.Errorf("bootstrap admin %s does not exist and no password was given", email)
		}
		hash, err := security.HashPassword(password)
		if err != nil {
			return false, fmt.Errorf("hash bootstrap admin password: %w", err)
		}
		s = domain.Staff{
			Email:        email,
			Name:         "Administrator",
			PasswordHash: hash,
			IsProtected:  true,
			Status:       domain.StaffStatusActive,
			Roles:        []domain.Role{adminRole},
		}
		if err := db.Create(&s).Error; err != nil {
			return false, fmt.Errorf("create bootstrap admin: %w", err)
		}
		return true, nil
	case err != nil:
		return false, err
	}
	for _, r := range s.Roles {
		if r.ID == adminRole.ID {
			return false, nil
		}
	}
	if err := db.Model(&s).Association("Roles").Append(&adminRole); err != nil {
		return false, fmt.Errorf("assign bootstrap admin role: %w", err)
	}
	return false, nil
}
