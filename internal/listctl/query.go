package listctl

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// FilterAll clears a filter. Blank values behave the same way.
const FilterAll = "all"

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

var DefaultPageSizeOptions = []int{10, 20, 50, 100}

type Sort struct {
	Field string
	Order SortOrder
}

// Query is the descriptor that drives a list fetch.
type Query struct {
	Page     int
	PageSize int
	Search   string
	Filters  map[string]string
	Sort     Sort
}

func (q Query) Clone() Query {
	out := q
	out.Filters = make(map[string]string, len(q.Filters))
	for k, v := range q.Filters {
		out.Filters[k] = v
	}
	return out
}

func (q Query) Filter(key string) string {
	return q.Filters[key]
}

// ActiveFilters returns the non-empty filters sorted by key.
func (q Query) ActiveFilters() [][2]string {
	keys := make([]string, 0, len(q.Filters))
	for k, v := range q.Filters {
		if isEmptyFilter(v) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][2]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, [2]string{k, q.Filters[k]})
	}
	return out
}

func (q Query) Equal(other Query) bool {
	if q.Page != other.Page || q.PageSize != other.PageSize || q.Search != other.Search || q.Sort != other.Sort {
		return false
	}
	a, b := q.ActiveFilters(), other.ActiveFilters()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Values encodes the query as request parameters. Empty filters are left out
// entirely rather than sent as empty strings.
func (q Query) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.PageSize))
	if s := strings.TrimSpace(q.Search); s != "" {
		v.Set("search", s)
	}
	for _, kv := range q.ActiveFilters() {
		v.Set(kv[0], strings.TrimSpace(kv[1]))
	}
	if q.Sort.Field != "" {
		order := q.Sort.Order
		if order == "" {
			order = SortDesc
		}
		v.Set("sortBy", q.Sort.Field)
		v.Set("sortOrder", string(order))
	}
	return v
}

func (q Query) normalized(pageSize int) Query {
	out := q.Clone()
	if out.Page < 1 {
		out.Page = DefaultPage
	}
	if out.PageSize < 1 {
		out.PageSize = pageSize
	}
	for k, v := range out.Filters {
		if isEmptyFilter(v) {
			delete(out.Filters, k)
		}
	}
	return out
}

func isEmptyFilter(v string) bool {
	t := strings.TrimSpace(v)
	return t == "" || strings.EqualFold(t, FilterAll)
}
