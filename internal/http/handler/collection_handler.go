package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/storefront-admin-console/internal/http/response"
	"github.com/sandeepkv93/storefront-admin-console/internal/observability"
	"github.com/sandeepkv93/storefront-admin-console/internal/repository"
)

type collectionService[T any] interface {
	List(ctx context.Context, q repository.ListQuery) (repository.PageResult[T], error)
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) (repository.BulkDeleteResult, error)
}

// collectionHandler serves the list, delete and bulk delete endpoints every
// resource shares.
type collectionHandler[T any] struct {
	resource   string
	singular   string
	filterKeys []string
	svc        collectionService[T]
}

func (h *collectionHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	q, err := parseListQuery(r, h.filterKeys)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	page, err := h.svc.List(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, err, "failed to list "+h.resource)
		return
	}
	response.JSON(w, r, http.StatusOK, listBody(page))
}

func (h *collectionHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.svc.Delete(r.Context(), id)
	h.audit(r, "delete", id, err)
	if err != nil {
		writeServiceError(w, r, err, "failed to delete "+h.singular)
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"message": capitalize(h.singular) + " deleted"})
}

func (h *collectionHandler[T]) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var body idsPayload
	if err := decodeJSON(r, &body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	res, err := h.svc.BulkDelete(r.Context(), body.IDs)
	h.audit(r, "bulk_delete", strings.Join(body.IDs, ","), err)
	if err != nil {
		writeServiceError(w, r, err, "failed to delete "+h.resource)
		return
	}
	out := map[string]any{
		"deletedCount": res.DeletedCount,
		"message":      bulkDeleteMessage(h.resource, res),
	}
	if len(res.InvalidIDs) > 0 {
		out["invalidIds"] = res.InvalidIDs
	}
	if len(res.NotFoundIDs) > 0 {
		out["notFoundIds"] = res.NotFoundIDs
	}
	response.JSON(w, r, http.StatusOK, out)
}

func (h *collectionHandler[T]) audit(r *http.Request, action, targetID string, err error) {
	observability.Audit(r, observability.AuditInput{
		EventName:    h.singular + "." + action,
		ActorStaffID: actorStaffID(r),
		TargetType:   h.singular,
		TargetID:     targetID,
		Action:       action,
		Outcome:      auditOutcome(err),
		Reason:       errReason(err),
	})
}

func bulkDeleteMessage(resource string, res repository.BulkDeleteResult) string {
	msg := fmt.Sprintf("Deleted %d %s", res.DeletedCount, resource)
	var skipped []string
	if n := len(res.InvalidIDs); n > 0 {
		skipped = append(skipped, fmt.Sprintf("%d invalid", n))
	}
	if n := len(res.NotFoundIDs); n > 0 {
		skipped = append(skipped, fmt.Sprintf("%d not found", n))
	}
	if len(skipped) > 0 {
		msg += " (" + strings.Join(skipped, ", ") + ")"
	}
	return msg
}

func errReason(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
