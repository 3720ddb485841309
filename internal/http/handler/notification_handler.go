package handler

import (
	"net/http"
	"strings"

	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
	"github.com/sandeepkv93/storefront-admin-console/internal/http/response"
	"github.com/sandeepkv93/storefront-admin-console/internal/service"
)

var notificationFilterKeys = []string{"type", "severity", "read"}

type NotificationHandler struct {
	collectionHandler[domain.Notification]
	svc service.NotificationServiceInterface
}

func NewNotificationHandler(svc service.NotificationServiceInterface) *NotificationHandler {
	return &NotificationHandler{
		collectionHandler: collectionHandler[domain.Notification]{
			resource:   service.ResourceNotifications,
			singular:   "notification",
			filterKeys: notificationFilterKeys,
			svc:        svc,
		},
		svc: svc,
	}
}

func (h *NotificationHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "failed to load notification stats")
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"stats": stats})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	var body idsPayload
	if err := decodeJSON(r, &body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	n, err := h.svc.MarkRead(r.Context(), body.IDs)
	h.audit(r, "mark_read", strings.Join(body.IDs, ","), err)
	if err != nil {
		writeServiceError(w, r, err, "failed to mark notifications read")
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"modifiedCount": n})
}

// MarkAllRead takes the applied search and filters as a flat JSON object.
// The read filter is ignored since every matching row ends up read.
func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	body := map[string]string{}
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &body); err != nil {
			response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
			return
		}
	}
	search := strings.TrimSpace(body["search"])
	delete(body, "search")
	delete(body, "read")

	n, err := h.svc.MarkAllRead(r.Context(), search, body)
	h.audit(r, "mark_all_read", "", err)
	if err != nil {
		writeServiceError(w, r, err, "failed to mark notifications read")
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"modifiedCount": n})
}
