package datasource

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/sandeepkv93/storefront-admin-console/internal/listctl"
)

// Resource is the REST collection at /<name>.
type Resource[T any] struct {
	c    *Client
	name string
}

func NewResource[T any](c *Client, name string) *Resource[T] {
	return &Resource[T]{c: c, name: strings.Trim(name, "/")}
}

func (r *Resource[T]) Name() string { return r.name }

type pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
}

func (r *Resource[T]) List(ctx context.Context, q listctl.Query) (listctl.Page[T], error) {
	var out struct {
		Items      []T        `json:"items"`
		Pagination pagination `json:"pagination"`
	}
	if err := r.c.do(ctx, http.MethodGet, "/"+r.name, q.Values(), nil, &out); err != nil {
		return listctl.Page[T]{}, err
	}
	return listctl.Page[T]{
		Items: out.Items,
		PageInfo: listctl.PageInfo{
			CurrentPage: out.Pagination.CurrentPage,
			TotalPages:  out.Pagination.TotalPages,
			TotalItems:  out.Pagination.TotalItems,
		},
	}, nil
}

// Stats decodes the stats object of GET /<name>/stats into out.
func (r *Resource[T]) Stats(ctx context.Context, out any) error {
	wrapper := struct {
		Stats any `json:"stats"`
	}{Stats: out}
	return r.c.do(ctx, http.MethodGet, "/"+r.name+"/stats", nil, nil, &wrapper)
}

// Patch sends PATCH /<name>/<id>/<op> and returns the updated item when the
// server includes one.
func (r *Resource[T]) Patch(ctx context.Context, id, op string, body any) (*T, error) {
	var out struct {
		Item *T `json:"item"`
	}
	if err := r.c.do(ctx, http.MethodPatch, r.itemPath(id)+"/"+op, nil, body, &out); err != nil {
		return nil, err
	}
	return out.Item, nil
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return errors.New("delete requires an id")
	}
	return r.c.do(ctx, http.MethodDelete, r.itemPath(id), nil, nil, nil)
}

func (r *Resource[T]) BulkDelete(ctx context.Context, ids []string) (listctl.BulkDeleteResult, error) {
	var out struct {
		Message      string   `json:"message"`
		DeletedCount int64    `json:"deletedCount"`
		InvalidIDs   []string `json:"invalidIds"`
		NotFoundIDs  []string `json:"notFoundIds"`
	}
	body := map[string][]string{"ids": ids}
	if err := r.c.do(ctx, http.MethodPost, "/"+r.name+"/bulk-delete", nil, body, &out); err != nil {
		return listctl.BulkDeleteResult{}, err
	}
	return listctl.BulkDeleteResult{
		DeletedCount: out.DeletedCount,
		InvalidIDs:   out.InvalidIDs,
		NotFoundIDs:  out.NotFoundIDs,
		Message:      out.Message,
	}, nil
}

type ActionResult struct {
	ModifiedCount int64  `json:"modifiedCount"`
	Message       string `json:"message"`
}

// Action sends POST /<name>/<op>.
func (r *Resource[T]) Action(ctx context.Context, op string, body any) (ActionResult, error) {
	var out ActionResult
	if err := r.c.do(ctx, http.MethodPost, "/"+r.name+"/"+op, nil, body, &out); err != nil {
		return ActionResult{}, err
	}
	return out, nil
}

func (r *Resource[T]) itemPath(id string) string {
	return "/" + r.name + "/" + url.PathEscape(id)
}
