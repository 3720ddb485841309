//go:build integration

package integration

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/sandeepkv93/storefront-admin-console/internal/database"
	"github.com/sandeepkv93/storefront-admin-console/internal/datasource"
	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
	"github.com/sandeepkv93/storefront-admin-console/internal/http/handler"
	"github.com/sandeepkv93/storefront-admin-console/internal/http/router"
	"github.com/sandeepkv93/storefront-admin-console/internal/listctl"
	"github.com/sandeepkv93/storefront-admin-console/internal/permission"
	"github.com/sandeepkv93/storefront-admin-console/internal/repository"
	"github.com/sandeepkv93/storefront-admin-console/internal/screens"
	"github.com/sandeepkv93/storefront-admin-console/internal/security"
	"github.com/sandeepkv93/storefront-admin-console/internal/service"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "Admin#12345-long"
	staffPassword = "Staff#12345-long"
)

type stack struct {
	db     *gorm.DB
	apiURL string
	cache  service.ListCacheStore
}

type stackOptions struct {
	cache service.ListCacheStore
}

// newStack serves the real API over a seeded sqlite database.
func newStack(t *testing.T, opts stackOptions) *stack {
	t.Helper()
	db, err := database.OpenURL("sqlite://" + filepath.Join(t.TempDir(), "admin.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if _, err := database.SeedSync(db, database.SeedOptions{AdminEmail: adminEmail, AdminPassword: adminPassword, Demo: true}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cache := opts.cache
	if cache == nil {
		cache = service.NewNoopListCacheStore()
	}
	jwt := security.NewJWTManager("storefront-admin", "storefront-console", "0123456789abcdef0123456789abcdef")
	srv := httptest.NewServer(router.NewRouter(router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(service.NewAuthService(repository.NewStaffRepository(db), jwt, 15*time.Minute)),
		OrderHandler:        handler.NewOrderHandler(service.NewOrderService(repository.NewOrderRepository(db), cache, time.Minute)),
		ProductHandler:      handler.NewProductHandler(service.NewProductService(repository.NewProductRepository(db), cache, time.Minute)),
		NotificationHandler: handler.NewNotificationHandler(service.NewNotificationService(repository.NewNotificationRepository(db), cache, time.Minute)),
		Tokens:              jwt,
		RBAC:                permission.NewGate(),
	}))
	t.Cleanup(srv.Close)
	return &stack{db: db, apiURL: srv.URL + "/api/v1", cache: cache}
}

// addStaff creates an unprotected staff member holding one seeded role.
func (s *stack) addStaff(t *testing.T, email, role string) {
	t.Helper()
	var r domain.Role
	if err := s.db.Where("name = ?", role).First(&r).Error; err != nil {
		t.Fatalf("load role %s: %v", role, err)
	}
	hash, err := security.HashPassword(staffPassword)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	st := domain.Staff{Email: email, Name: role + " staff", PasswordHash: hash, Status: domain.StaffStatusActive, Roles: []domain.Role{r}}
	if err := s.db.Create(&st).Error; err != nil {
		t.Fatalf("create staff: %v", err)
	}
}

// signIn returns a client and the actor the API reports for it.
func (s *stack) signIn(t *testing.T, email, password string) (*datasource.Client, *permission.Actor) {
	t.Helper()
	c := datasource.New(s.apiURL, 5*time.Second)
	c.SetTokenSource(datasource.LoginTokenSource(c, email, password, 5*time.Second))
	me, err := c.Me(context.Background())
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	return c, permission.NewActor(me.IsProtected, me.Permissions...)
}

type noticeLog struct{ notices []listctl.Notice }

func (l *noticeLog) Notify(_ context.Context, n listctl.Notice) { l.notices = append(l.notices, n) }

func screenOptions(actor *permission.Actor, notices listctl.Notifier) screens.Options {
	return screens.Options{
		Actor:        actor,
		ActorName:    "integration",
		InitialQuery: listctl.Query{Page: 1, PageSize: 10},
		Scheduler:    listctl.NewManualScheduler(),
		Notifier:     notices,
		Logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}
