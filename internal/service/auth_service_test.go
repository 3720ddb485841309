package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sandeepkv93/storefront-admin-console/internal/database"
	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
	"github.com/sandeepkv93/storefront-admin-console/internal/permission"
	"github.com/sandeepkv93/storefront-admin-console/internal/repository"
	"github.com/sandeepkv93/storefront-admin-console/internal/security"
)

func newAuthServiceForTest(t *testing.T) (*AuthService, repository.StaffRepository, *security.JWTManager) {
	t.Helper()
	db := newServiceDBForTest(t)
	if _, err := database.SeedSync(db, database.SeedOptions{AdminEmail: "admin@example.com", AdminPassword: "Admin#12345-long"}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	staff := repository.NewStaffRepository(db)
	jwtMgr := security.NewJWTManager("storefront-admin", "storefront-console", "test-secret-with-enough-entropy-123")
	return NewAuthService(staff, jwtMgr, 15*time.Minute), staff, jwtMgr
}

func TestAuthServiceLoginIssuesTokenWithPermissions(t *testing.T) {
	svc, _, jwtMgr := newAuthServiceForTest(t)
	res, err := svc.Login(context.Background(), "  Admin@Example.com ", "Admin#12345-long")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if res.AccessToken == "" || res.ExpiresIn != 15*time.Minute {
		t.Fatalf("unexpected login result: %+v", res)
	}
	claims, err := jwtMgr.ParseAccessToken(res.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if !claims.Protected {
		t.Fatal("bootstrap admin token should be protected")
	}
	if len(claims.Permissions) != len(permission.All) {
		t.Fatalf("expected %d permissions, got %v", len(permission.All), claims.Permissions)
	}

	me, err := svc.Me(context.Background(), claims)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.Staff.Email != "admin@example.com" || me.Staff.LastLoginAt.IsZero() {
		t.Fatalf("unexpected identity: %+v", me.Staff)
	}
}

func TestAuthServiceLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := newAuthServiceForTest(t)
	ctx := context.Background()
	cases := []struct {
		name     string
		email    string
		password string
	}{
		{name: "unknown email", email: "nobody@example.com", password: "Admin#12345-long"},
		{name: "wrong password", email: "admin@example.com", password: "nope"},
		{name: "blank", email: " ", password: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Login(ctx, tc.email, tc.password); !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestAuthServiceLoginRejectsDisabledStaff(t *testing.T) {
	svc, staff, _ := newAuthServiceForTest(t)
	ctx := context.Background()
	hash, err := security.HashPassword("Viewer#12345")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	disabled := &domain.Staff{Email: "off@example.com", Name: "Off Duty", PasswordHash: hash, Status: domain.StaffStatusDisabled}
	if err := staff.Create(ctx, disabled); err != nil {
		t.Fatalf("create staff: %v", err)
	}
	if _, err := svc.Login(ctx, "off@example.com", "Viewer#12345"); !errors.Is(err, ErrStaffDisabled) {
		t.Fatalf("expected ErrStaffDisabled, got %v", err)
	}
}
