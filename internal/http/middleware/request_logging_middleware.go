package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sandeepkv93/storefront-admin-console/internal/security"
)

// StructuredRequestLogger emits one structured log line per request using slog.
func StructuredRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		holder := &claimsHolder{}
		r = r.WithContext(context.WithValue(r.Context(), claimsHolderKey, holder))
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		requestID := chimiddleware.GetReqID(r.Context())
		routePattern := ""
		if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
			routePattern = routeCtx.RoutePattern()
		}

		attrs := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"route", routePattern,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration_ms", float64(time.Since(start).Microseconds()) / 1000.0,
			"request_id", requestID,
			"client_ip", r.RemoteAddr,
			"user_agent", r.UserAgent(),
		}
		if holder.claims != nil {
			attrs = append(attrs, "staff_id", holder.claims.Subject)
		}

		if status >= http.StatusInternalServerError {
			slog.ErrorContext(r.Context(), "http.request", attrs...)
			return
		}
		slog.InfoContext(r.Context(), "http.request", attrs...)
	})
}

// claimsHolder lets the auth middleware, which runs further down the chain,
// report the authenticated staff member back to the request logger.
type claimsHolder struct{ claims *security.Claims }

const claimsHolderKey contextKey = "claims_holder"

func rememberClaims(r *http.Request, claims *security.Claims) {
	if h, ok := r.Context().Value(claimsHolderKey).(*claimsHolder); ok {
		h.claims = claims
	}
}
