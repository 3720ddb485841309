package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
	"github.com/sandeepkv93/storefront-admin-console/internal/http/middleware"
	"github.com/sandeepkv93/storefront-admin-console/internal/http/response"
	"github.com/sandeepkv93/storefront-admin-console/internal/observability"
	"github.com/sandeepkv93/storefront-admin-console/internal/repository"
	"github.com/sandeepkv93/storefront-admin-console/internal/security"
	"github.com/sandeepkv93/storefront-admin-console/internal/service"
)

type AuthHandler struct {
	authSvc service.AuthServiceInterface
}

func NewAuthHandler(authSvc service.AuthServiceInterface) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

type staffView struct {
	ID          uint     `json:"id"`
	Email       string   `json:"email"`
	Name        string   `json:"name"`
	IsProtected bool     `json:"isProtected"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

func newStaffView(st *domain.Staff, perms []string) staffView {
	roles := make([]string, 0, len(st.Roles))
	for _, r := range st.Roles {
		roles = append(roles, r.Name)
	}
	if perms == nil {
		perms = []string{}
	}
	return staffView{
		ID:          st.ID,
		Email:       st.Email,
		Name:        st.Name,
		IsProtected: st.IsProtected,
		Roles:       roles,
		Permissions: perms,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	res, err := h.authSvc.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		in := observability.AuditInput{
			EventName:    "auth.login",
			ActorStaffID: "anonymous",
			TargetType:   "staff",
			TargetID:     strings.ToLower(strings.TrimSpace(body.Email)),
			Action:       "login",
			Outcome:      "rejected",
			Reason:       err.Error(),
		}
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			observability.Audit(r, in)
			response.Error(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password", nil)
		case errors.Is(err, service.ErrStaffDisabled):
			observability.Audit(r, in)
			response.Error(w, r, http.StatusForbidden, "STAFF_DISABLED", "staff account is disabled", nil)
		default:
			in.Outcome = "failure"
			observability.Audit(r, in)
			writeServiceError(w, r, err, "failed to sign in")
		}
		return
	}
	staffID := strconv.FormatUint(uint64(res.Staff.ID), 10)
	observability.Audit(r, observability.AuditInput{
		EventName:    "auth.login",
		ActorStaffID: staffID,
		TargetType:   "staff",
		TargetID:     staffID,
		Action:       "login",
		Outcome:      "success",
	})
	response.JSON(w, r, http.StatusOK, map[string]any{
		"accessToken": res.AccessToken,
		"tokenType":   "Bearer",
		"expiresIn":   int64(res.ExpiresIn.Seconds()),
		"staff":       newStaffView(res.Staff, res.Permissions),
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth context", nil)
		return
	}
	id, err := h.authSvc.Me(r.Context(), claims)
	switch {
	case err == nil:
		response.JSON(w, r, http.StatusOK, map[string]any{"staff": newStaffView(id.Staff, id.Permissions)})
	case errors.Is(err, repository.ErrStaffNotFound), errors.Is(err, service.ErrStaffDisabled), errors.Is(err, security.ErrInvalidToken):
		response.Error(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "staff account is not available", nil)
	default:
		writeServiceError(w, r, err, "failed to load staff profile")
	}
}
