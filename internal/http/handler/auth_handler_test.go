package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/mock/gomock"

	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
	"github.com/sandeepkv93/storefront-admin-console/internal/http/middleware"
	"github.com/sandeepkv93/storefront-admin-console/internal/repository"
	"github.com/sandeepkv93/storefront-admin-console/internal/security"
	"github.com/sandeepkv93/storefront-admin-console/internal/service"
	servicegomock "github.com/sandeepkv93/storefront-admin-console/internal/service/gomock"
)

func TestAuthHandlerLogin(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockAuthServiceInterface(ctrl)
	h := NewAuthHandler(svc)
	r := chi.NewRouter()
	r.Post("/auth/login", h.Login)

	t.Run("success returns bearer token and staff", func(t *testing.T) {
		svc.EXPECT().Login(gomock.Any(), "ops@example.com", "Secret#12345").Return(&service.LoginResult{
			Staff:       &domain.Staff{ID: 3, Email: "ops@example.com", Name: "Ops", Roles: []domain.Role{{Name: "fulfillment"}}},
			Permissions: []string{"orders:read"},
			AccessToken: "tok",
			ExpiresIn:   15 * time.Minute,
		}, nil)
		rr, body := serve(t, r, http.MethodPost, "/auth/login", `{"email":"ops@example.com","password":"Secret#12345"}`)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rr.Code)
		}
		if body["accessToken"] != "tok" || body["tokenType"] != "Bearer" || body["expiresIn"] != float64(900) {
			t.Fatalf("unexpected token fields: %v", body)
		}
		staff := body["staff"].(map[string]any)
		if staff["email"] != "ops@example.com" || len(staff["permissions"].([]any)) != 1 {
			t.Fatalf("unexpected staff: %v", staff)
		}
	})

	t.Run("invalid credentials", func(t *testing.T) {
		svc.EXPECT().Login(gomock.Any(), "ops@example.com", "nope").Return(nil, service.ErrInvalidCredentials)
		rr, _ := serve(t, r, http.MethodPost, "/auth/login", `{"email":"ops@example.com","password":"nope"}`)
		if rr.Code != http.StatusUnauthorized || errorCode(t, rr) != "INVALID_CREDENTIALS" {
			t.Fatalf("expected 401 INVALID_CREDENTIALS, got %d %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("disabled account", func(t *testing.T) {
		svc.EXPECT().Login(gomock.Any(), "off@example.com", "Secret#12345").Return(nil, service.ErrStaffDisabled)
		rr, _ := serve(t, r, http.MethodPost, "/auth/login", `{"email":"off@example.com","password":"Secret#12345"}`)
		if rr.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rr.Code)
		}
	})

	t.Run("unknown fields rejected", func(t *testing.T) {
		rr, _ := serve(t, r, http.MethodPost, "/auth/login", `{"username":"ops"}`)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})
}

func TestAuthHandlerMe(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := servicegomock.NewMockAuthServiceInterface(ctrl)
	h := NewAuthHandler(svc)
	claims := &security.Claims{}
	claims.Subject = "3"

	call := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req = req.WithContext(context.WithValue(req.Context(), middleware.ClaimsContextKey, claims))
		rr := httptest.NewRecorder()
		h.Me(rr, req)
		return rr
	}

	svc.EXPECT().Me(gomock.Any(), claims).Return(&service.Identity{
		Staff:       &domain.Staff{ID: 3, Email: "ops@example.com", IsProtected: true},
		Permissions: []string{"orders:read", "orders:update"},
	}, nil)
	if rr := call(); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	svc.EXPECT().Me(gomock.Any(), claims).Return(nil, repository.ErrStaffNotFound)
	if rr := call(); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for removed staff, got %d", rr.Code)
	}

	rr := httptest.NewRecorder()
	h.Me(rr, httptest.NewRequest(http.MethodGet, "/auth/me", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without claims, got %d", rr.Code)
	}
}
