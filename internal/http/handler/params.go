package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sandeepkv93/storefront-admin-console/internal/http/middleware"
	"github.com/sandeepkv93/storefront-admin-console/internal/repository"
)

// parseListQuery reads page, limit, search, sortBy, sortOrder and the
// resource's filter keys. Other query parameters are ignored.
func parseListQuery(r *http.Request, filterKeys []string) (repository.ListQuery, error) {
	q := r.URL.Query()
	pageReq := repository.PageRequest{Page: repository.DefaultPage, PageSize: repository.DefaultPageSize}
	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return repository.ListQuery{}, errors.New("page must be a positive integer")
		}
		pageReq.Page = v
	}
	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return repository.ListQuery{}, errors.New("limit must be a positive integer")
		}
		if v > repository.MaxPageSize {
			return repository.ListQuery{}, fmt.Errorf("limit must be <= %d", repository.MaxPageSize)
		}
		pageReq.PageSize = v
	}

	sortOrder := strings.ToLower(strings.TrimSpace(q.Get("sortOrder")))
	switch sortOrder {
	case "":
		sortOrder = "desc"
	case "asc", "desc":
	default:
		return repository.ListQuery{}, errors.New("sortOrder must be asc or desc")
	}

	filters := make(map[string]string, len(filterKeys))
	for _, key := range filterKeys {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			filters[key] = v
		}
	}
	return repository.ListQuery{
		PageRequest: pageReq,
		Search:      strings.TrimSpace(q.Get("search")),
		Filters:     filters,
		SortBy:      strings.TrimSpace(q.Get("sortBy")),
		SortOrder:   sortOrder,
	}, nil
}

func listBody[T any](page repository.PageResult[T]) map[string]any {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	return map[string]any{
		"items": items,
		"pagination": map[string]any{
			"currentPage": page.Page,
			"pageSize":    page.PageSize,
			"totalPages":  max(page.TotalPages, 1),
			"totalItems":  page.Total,
		},
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid payload")
	}
	return nil
}

type idsPayload struct {
	IDs []string `json:"ids"`
}

func actorStaffID(r *http.Request) string {
	if claims, ok := middleware.ClaimsFromContext(r.Context()); ok {
		return claims.Subject
	}
	return ""
}
