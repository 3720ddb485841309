package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sandeepkv93/storefront-admin-console/internal/health"
	"github.com/sandeepkv93/storefront-admin-console/internal/http/handler"
	"github.com/sandeepkv93/storefront-admin-console/internal/http/middleware"
	"github.com/sandeepkv93/storefront-admin-console/internal/http/response"
	"github.com/sandeepkv93/storefront-admin-console/internal/permission"
	"github.com/sandeepkv93/storefront-admin-console/internal/service"
)

const defaultMaxBodyBytes = 1 << 20

type Dependencies struct {
	AuthHandler         *handler.AuthHandler
	OrderHandler        *handler.OrderHandler
	ProductHandler      *handler.ProductHandler
	NotificationHandler *handler.NotificationHandler
	Tokens              middleware.AccessTokenParser
	RBAC                service.RBACAuthorizer
	CORSOrigins         []string
	MaxBodyBytes        int64
	LoginRateLimiter    LoginRateLimiterFunc
	Readiness           *health.ProbeRunner
	EnableOTelHTTP      bool
}

type LoginRateLimiterFunc func(http.Handler) http.Handler

func NewRouter(dep Dependencies) http.Handler {
	maxBody := dep.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	loginLimiter := dep.LoginRateLimiter
	if loginLimiter == nil {
		loginLimiter = func(next http.Handler) http.Handler { return next }
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	r.Use(middleware.BodyLimit(maxBody))

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]any{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	authn := middleware.AuthMiddleware(dep.Tokens)
	require := func(perm string) func(http.Handler) http.Handler {
		return middleware.RequirePermission(dep.RBAC, perm)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(loginLimiter).Post("/login", dep.AuthHandler.Login)
			r.With(authn).Get("/me", dep.AuthHandler.Me)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(authn)
			r.With(require(permission.OrdersRead)).Get("/", dep.OrderHandler.List)
			r.With(require(permission.OrdersRead)).Get("/stats", dep.OrderHandler.Stats)
			r.With(require(permission.OrdersUpdate)).Patch("/{id}/status", dep.OrderHandler.UpdateStatus)
			r.With(require(permission.OrdersUpdate)).Patch("/{id}/verify-bank-transfer", dep.OrderHandler.VerifyBankTransfer)
			r.With(require(permission.OrdersDelete)).Delete("/{id}", dep.OrderHandler.Delete)
			r.With(require(permission.OrdersDelete)).Post("/bulk-delete", dep.OrderHandler.BulkDelete)
		})

		r.Route("/products", func(r chi.Router) {
			r.Use(authn)
			r.With(require(permission.ProductsRead)).Get("/", dep.ProductHandler.List)
			r.With(require(permission.ProductsRead)).Get("/stats", dep.ProductHandler.Stats)
			r.With(require(permission.ProductsUpdate)).Patch("/{id}/toggle-active", dep.ProductHandler.ToggleActive)
			r.With(require(permission.ProductsDelete)).Delete("/{id}", dep.ProductHandler.Delete)
			r.With(require(permission.ProductsDelete)).Post("/bulk-delete", dep.ProductHandler.BulkDelete)
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(authn)
			r.With(require(permission.NotificationsRead)).Get("/", dep.NotificationHandler.List)
			r.With(require(permission.NotificationsRead)).Get("/stats", dep.NotificationHandler.Stats)
			r.With(require(permission.NotificationsUpdate)).Post("/mark-read", dep.NotificationHandler.MarkRead)
			r.With(require(permission.NotificationsUpdate)).Post("/mark-all-read", dep.NotificationHandler.MarkAllRead)
			r.With(require(permission.NotificationsDelete)).Delete("/{id}", dep.NotificationHandler.Delete)
			r.With(require(permission.NotificationsDelete)).Post("/bulk-delete", dep.NotificationHandler.BulkDelete)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
