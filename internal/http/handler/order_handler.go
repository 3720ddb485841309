package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
	"github.com/sandeepkv93/storefront-admin-console/internal/http/response"
	"github.com/sandeepkv93/storefront-admin-console/internal/service"
)

var orderFilterKeys = []string{"status", "paymentMethod", "paymentStatus", "date"}

type OrderHandler struct {
	collectionHandler[domain.Order]
	svc service.OrderServiceInterface
}

func NewOrderHandler(svc service.OrderServiceInterface) *OrderHandler {
	return &OrderHandler{
		collectionHandler: collectionHandler[domain.Order]{
			resource:   service.ResourceOrders,
			singular:   "order",
			filterKeys: orderFilterKeys,
			svc:        svc,
		},
		svc: svc,
	}
}

func (h *OrderHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "failed to load order stats")
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"stats": stats})
}

func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	order, err := h.svc.UpdateStatus(r.Context(), id, body.Status)
	h.audit(r, "update_status", id, err)
	if err != nil {
		writeServiceError(w, r, err, "failed to update order status")
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"item": order})
}

func (h *OrderHandler) VerifyBankTransfer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	order, err := h.svc.VerifyBankTransfer(r.Context(), id)
	h.audit(r, "verify_bank_transfer", id, err)
	if err != nil {
		writeServiceError(w, r, err, "failed to verify bank transfer")
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"item": order})
}
