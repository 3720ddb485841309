package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sandeepkv93/storefront-admin-console/internal/http/response"
	"github.com/sandeepkv93/storefront-admin-console/internal/repository"
	"github.com/sandeepkv93/storefront-admin-console/internal/service"
)

var (
	badRequestErrors = []error{
		repository.ErrInvalidFilter,
		service.ErrNoIDs,
		service.ErrTooManyIDs,
		service.ErrMissingID,
		service.ErrOrderInvalidStatus,
	}
	notFoundErrors = []error{
		repository.ErrOrderNotFound,
		repository.ErrProductNotFound,
		repository.ErrNotificationNotFound,
	}
	conflictErrors = []error{
		repository.ErrOrderConflict,
		service.ErrOrderInvalidTransition,
		service.ErrOrderNotBankTransfer,
		service.ErrOrderNotAwaitingPay,
	}
)

// writeServiceError maps service and repository errors onto the error
// envelope. Anything unrecognised is logged and reported as failMessage.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, failMessage string) {
	switch {
	case isAny(err, badRequestErrors):
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
	case isAny(err, notFoundErrors):
		response.Error(w, r, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case isAny(err, conflictErrors):
		response.Error(w, r, http.StatusConflict, "CONFLICT", err.Error(), nil)
	default:
		slog.ErrorContext(r.Context(), failMessage, "error", err)
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", failMessage, nil)
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func auditOutcome(err error) string {
	if err == nil {
		return "success"
	}
	if isAny(err, badRequestErrors) || isAny(err, notFoundErrors) || isAny(err, conflictErrors) {
		return "rejected"
	}
	return "failure"
}
