package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
	"github.com/sandeepkv93/storefront-admin-console/internal/observability"
	"github.com/sandeepkv93/storefront-admin-console/internal/permission"
	"github.com/sandeepkv93/storefront-admin-console/internal/repository"
	"github.com/sandeepkv93/storefront-admin-console/internal/security"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrStaffDisabled      = errors.New("staff account is disabled")
)

type LoginResult struct {
	Staff       *domain.Staff
	Permissions []string
	AccessToken string
	ExpiresIn   time.Duration
}

type Identity struct {
	Staff       *domain.Staff
	Permissions []string
}

type AuthService struct {
	staff     repository.StaffRepository
	jwt       *security.JWTManager
	accessTTL time.Duration
	now       func() time.Time
}

func NewAuthService(staff repository.StaffRepository, jwt *security.JWTManager, accessTTL time.Duration) *AuthService {
	return &AuthService{staff: staff, jwt: jwt, accessTTL: accessTTL, now: time.Now}
}

// Login checks staff credentials and issues an access token carrying the
// flattened role permissions.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	status := "success"
	defer func() { observability.RecordAuthLogin(ctx, status) }()

	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		status = "bad_request"
		return nil, ErrInvalidCredentials
	}
	st, err := s.staff.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrStaffNotFound) {
		status = "invalid_credentials"
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		status = "error"
		return nil, err
	}
	ok, err := security.VerifyPassword(st.PasswordHash, password)
	if err != nil || !ok {
		status = "invalid_credentials"
		return nil, ErrInvalidCredentials
	}
	if !st.Active() {
		status = "disabled"
		return nil, ErrStaffDisabled
	}

	perms := permission.PermissionsFromRoles(st.Roles)
	roles := make([]string, 0, len(st.Roles))
	for _, r := range st.Roles {
		roles = append(roles, r.Name)
	}
	token, err := s.jwt.SignAccessToken(st.ID, roles, perms, st.IsProtected, s.accessTTL)
	if err != nil {
		status = "error"
		return nil, err
	}
	if err := s.staff.TouchLastLogin(ctx, st.ID, s.now().UTC()); err != nil {
		slog.WarnContext(ctx, "record last login failed", "staff_id", st.ID, "error", err)
	}
	return &LoginResult{Staff: st, Permissions: perms, AccessToken: token, ExpiresIn: s.accessTTL}, nil
}

// Me reloads the staff member named by a verified token so role changes show
// up without a new login.
func (s *AuthService) Me(ctx context.Context, claims *security.Claims) (*Identity, error) {
	id, err := claims.StaffID()
	if err != nil {
		return nil, err
	}
	st, err := s.staff.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !st.Active() {
		return nil, ErrStaffDisabled
	}
	return &Identity{Staff: st, Permissions: permission.PermissionsFromRoles(st.Roles)}, nil
}
