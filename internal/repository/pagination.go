package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/sandeepkv93/storefront-admin-console/internal/observability"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

var ErrInvalidFilter = errors.New("invalid filter")

type PageRequest struct {
	Page     int
	PageSize int
}

type PageResult[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

// ListQuery is one list request after the handler parsed it. SortBy is the
// API field name and is mapped through the repository's whitelist.
type ListQuery struct {
	PageRequest
	Search    string
	Filters   map[string]string
	SortBy    string
	SortOrder string
}

// CacheKey is stable for equal queries regardless of filter map order.
func (q ListQuery) CacheKey() string {
	n := normalizePageRequest(q.PageRequest)
	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	fmt.Fprintf(&b, "page=%d&limit=%d&search=%s&sortBy=%s&sortOrder=%s",
		n.Page, n.PageSize, strings.ToLower(strings.TrimSpace(q.Search)), q.SortBy, strings.ToLower(q.SortOrder))
	for _, k := range keys {
		fmt.Fprintf(&b, "&%s=%s", k, q.Filters[k])
	}
	return b.String()
}

type BulkDeleteResult struct {
	DeletedCount int64
	InvalidIDs   []string
	NotFoundIDs  []string
}

func normalizePageRequest(in PageRequest) PageRequest {
	page := in.Page
	if page < 1 {
		page = DefaultPage
	}
	pageSize := in.PageSize
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return PageRequest{Page: page, PageSize: pageSize}
}

// calcTotalPages never reports fewer than one page, so an empty result is
// still page 1 of 1.
func calcTotalPages(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 1
	}
	return int(math.Ceil(float64(total) / float64(pageSize)))
}

type listSpec struct {
	repository    string
	searchColumns []string
	sortColumns   map[string]string
	defaultSort   string
	filter        func(db *gorm.DB, key, value string) (*gorm.DB, error)
}

func invalidFilter(key, value string) error {
	return fmt.Errorf("%w: %s=%q", ErrInvalidFilter, key, value)
}

func listPaged[T any](ctx context.Context, db *gorm.DB, spec listSpec, q ListQuery) (PageResult[T], error) {
	normalized := normalizePageRequest(q.PageRequest)
	result := PageResult[T]{Page: normalized.Page, PageSize: normalized.PageSize, Items: []T{}}

	base, err := applySearchAndFilters(db.WithContext(ctx).Model(new(T)), spec, q.Search, q.Filters)
	if err != nil {
		observability.RecordRepositoryOperation(ctx, spec.repository, "list_paged", "bad_request")
		return PageResult[T]{}, err
	}

	if err := base.Count(&result.Total).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, spec.repository, "list_paged", "error")
		return PageResult[T]{}, err
	}
	col, ok := spec.sortColumns[q.SortBy]
	if !ok {
		col = spec.defaultSort
	}
	desc := !strings.EqualFold(q.SortOrder, "asc")
	offset := (normalized.Page - 1) * normalized.PageSize
	err = base.
		Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc}).
		Offset(offset).Limit(normalized.PageSize).
		Find(&result.Items).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, spec.repository, "list_paged", "error")
		return PageResult[T]{}, err
	}
	result.TotalPages = calcTotalPages(result.Total, normalized.PageSize)
	observability.RecordRepositoryOperation(ctx, spec.repository, "list_paged", "success")
	return result, nil
}

func applySearchAndFilters(base *gorm.DB, spec listSpec, search string, filters map[string]string) (*gorm.DB, error) {
	if s := strings.ToLower(strings.TrimSpace(search)); s != "" && len(spec.searchColumns) > 0 {
		conds := make([]string, 0, len(spec.searchColumns))
		args := make([]any, 0, len(spec.searchColumns))
		for _, col := range spec.searchColumns {
			conds = append(conds, "LOWER("+col+") LIKE ?")
			args = append(args, "%"+s+"%")
		}
		base = base.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := strings.TrimSpace(filters[k])
		if v == "" || strings.EqualFold(v, "all") {
			continue
		}
		next, err := spec.filter(base, k, v)
		if err != nil {
			return nil, err
		}
		base = next
	}
	// Session makes the chain safe to reuse for both Count and Find.
	return base.Session(&gorm.Session{}), nil
}

// bulkDelete deletes the rows whose ids parse as UUIDs and exist. The rest are
// reported back, never treated as a failure of the whole call.
func bulkDelete[T any](ctx context.Context, db *gorm.DB, repository string, ids []string) (BulkDeleteResult, error) {
	res := BulkDeleteResult{}
	seen := make(map[string]struct{}, len(ids))
	valid := make([]string, 0, len(ids))
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, err := uuid.Parse(id); err != nil {
			res.InvalidIDs = append(res.InvalidIDs, raw)
			continue
		}
		valid = append(valid, id)
	}
	if len(valid) == 0 {
		observability.RecordRepositoryOperation(ctx, repository, "bulk_delete", "bad_request")
		return res, nil
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var found []string
		if err := tx.Model(new(T)).Where("id IN ?", valid).Pluck("id", &found).Error; err != nil {
			return err
		}
		present := make(map[string]struct{}, len(found))
		for _, id := range found {
			present[id] = struct{}{}
		}
		for _, id := range valid {
			if _, ok := present[id]; !ok {
				res.NotFoundIDs = append(res.NotFoundIDs, id)
			}
		}
		if len(found) == 0 {
			return nil
		}
		del := tx.Where("id IN ?", found).Delete(new(T))
		if del.Error != nil {
			return del.Error
		}
		res.DeletedCount = del.RowsAffected
		return nil
	})
	if err != nil {
		observability.RecordRepositoryOperation(ctx, repository, "bulk_delete", "error")
		return BulkDeleteResult{}, err
	}
	observability.RecordRepositoryOperation(ctx, repository, "bulk_delete", "success")
	return res, nil
}

func findByID[T any](ctx context.Context, db *gorm.DB, repository, id string, notFound error) (*T, error) {
	var out T
	if err := db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, repository, "find_by_id", "not_found")
			return nil, notFound
		}
		observability.RecordRepositoryOperation(ctx, repository, "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, repository, "find_by_id", "success")
	return &out, nil
}

// updateWhere applies updates to the row matching id and guard, then reloads
// it. A zero-row update is reported as notFound when the row is gone and as
// conflict otherwise.
func updateWhere[T any](ctx context.Context, db *gorm.DB, repository, id string, guard map[string]any, updates map[string]any, notFound, conflict error) (*T, error) {
	q := db.WithContext(ctx).Model(new(T)).Where("id = ?", id)
	if len(guard) > 0 {
		q = q.Where(guard)
	}
	res := q.Updates(updates)
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, repository, "update", "error")
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Count(&n).Error; err != nil {
			observability.RecordRepositoryOperation(ctx, repository, "update", "error")
			return nil, err
		}
		if n == 0 || conflict == nil {
			observability.RecordRepositoryOperation(ctx, repository, "update", "not_found")
			return nil, notFound
		}
		observability.RecordRepositoryOperation(ctx, repository, "update", "conflict")
		return nil, conflict
	}
	observability.RecordRepositoryOperation(ctx, repository, "update", "success")
	return findByID[T](ctx, db, repository, id, notFound)
}

func deleteByID[T any](ctx context.Context, db *gorm.DB, repository, id string, notFound error) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, repository, "delete_by_id", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, repository, "delete_by_id", "not_found")
		return notFound
	}
	observability.RecordRepositoryOperation(ctx, repository, "delete_by_id", "success")
	return nil
}
