package listctl

import "context"

type PageInfo struct {
	CurrentPage int
	TotalPages  int
	TotalItems  int64
}

type Page[T any] struct {
	Items []T
	PageInfo
}

type BulkDeleteResult struct {
	DeletedCount int64
	InvalidIDs   []string
	NotFoundIDs  []string
	Message      string
}

// DataSource is the remote collection a Controller reads from and mutates.
type DataSource[T any] interface {
	List(ctx context.Context, q Query) (Page[T], error)
	Delete(ctx context.Context, id string) error
	BulkDelete(ctx context.Context, ids []string) (BulkDeleteResult, error)
}

// normalizePage enforces page invariants on a server response. Items beyond
// pageSize are dropped; nothing is ever added.
func normalizePage[T any](p Page[T], pageSize int) Page[T] {
	out := Page[T]{PageInfo: p.PageInfo}
	if out.TotalItems <= 0 {
		out.Items = []T{}
		out.TotalItems = 0
		out.TotalPages = 1
		out.CurrentPage = 1
		return out
	}
	items := p.Items
	if pageSize > 0 && len(items) > pageSize {
		items = items[:pageSize]
	}
	out.Items = append(make([]T, 0, len(items)), items...)
	if out.TotalPages < 1 {
		out.TotalPages = 1
	}
	if out.CurrentPage < 1 {
		out.CurrentPage = 1
	}
	if out.CurrentPage > out.TotalPages {
		out.CurrentPage = out.TotalPages
	}
	return out
}
