package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
	"github.com/sandeepkv93/storefront-admin-console/internal/http/response"
	"github.com/sandeepkv93/storefront-admin-console/internal/service"
)

var productFilterKeys = []string{"category", "status", "minPrice", "maxPrice", "stock"}

type ProductHandler struct {
	collectionHandler[domain.Product]
	svc service.ProductServiceInterface
}

func NewProductHandler(svc service.ProductServiceInterface) *ProductHandler {
	return &ProductHandler{
		collectionHandler: collectionHandler[domain.Product]{
			resource:   service.ResourceProducts,
			singular:   "product",
			filterKeys: productFilterKeys,
			svc:        svc,
		},
		svc: svc,
	}
}

func (h *ProductHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "failed to load product stats")
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"stats": stats})
}

func (h *ProductHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	product, err := h.svc.ToggleActive(r.Context(), id)
	h.audit(r, "toggle_active", id, err)
	if err != nil {
		writeServiceError(w, r, err, "failed to toggle product")
		return
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"item": product})
}
