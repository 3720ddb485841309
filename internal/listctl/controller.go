package listctl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/sandeepkv93/storefront-admin-console/internal/observability"
)

const (
	DefaultDebounce = 400 * time.Millisecond
	ScopeAll        = "all"
)

type View int

const (
	ViewIdle View = iota
	ViewLoading
	ViewError
	ViewEmpty
	ViewReady
)

func (v View) String() string {
	switch v {
	case ViewLoading:
		return "loading"
	case ViewError:
		return "error"
	case ViewEmpty:
		return "empty"
	case ViewReady:
		return "ready"
	default:
		return "idle"
	}
}

type Config[T any] struct {
	Resource        string
	ID              func(T) string
	InitialQuery    Query
	PageSizeOptions []int
	Debounce        time.Duration
	// FetchTimeout bounds a single list request. Zero leaves it to the
	// data source.
	FetchTimeout time.Duration
	Scheduler    Scheduler
	Notifier     Notifier
	// Scopes maps a scope name to its predicate for SelectByScope. "all" is
	// always available.
	Scopes      map[string]func(T) bool
	OnChange    func()
	OnMutated   func(ctx context.Context, op string)
	BaseContext context.Context
	Logger      *slog.Logger
}

type Snapshot[T any] struct {
	Query     Query
	Applied   Query
	Items     []T
	PageInfo  PageInfo
	View      View
	Loading   bool
	Err       error
	Selection []string
}

// Controller owns the list state of one resource screen. The mutex is never
// held across a data source call.
type Controller[T any] struct {
	cfg Config[T]
	ds  DataSource[T]

	mu        sync.Mutex
	draft     Query
	applied   Query
	items     []T
	info      PageInfo
	loaded    bool
	seq       uint64
	loading   uint64
	gen       uint64
	pending   Timer
	fetchErr  error
	lastErr   error
	selection Selection
	mutating  map[string]struct{}
}

func New[T any](ds DataSource[T], cfg Config[T]) (*Controller[T], error) {
	if ds == nil {
		return nil, errors.New("list controller requires a data source")
	}
	if cfg.ID == nil {
		return nil, ErrMissingIDAccessor
	}
	if strings.TrimSpace(cfg.Resource) == "" {
		return nil, ErrMissingResourceName
	}
	if len(cfg.PageSizeOptions) == 0 {
		cfg.PageSizeOptions = DefaultPageSizeOptions
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = ClockScheduler{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Notifier == nil {
		cfg.Notifier = NewLogNotifier(cfg.Logger)
	}
	if cfg.BaseContext == nil {
		cfg.BaseContext = context.Background()
	}
	draft := cfg.InitialQuery.normalized(cfg.PageSizeOptions[0])
	if !slices.Contains(cfg.PageSizeOptions, draft.PageSize) {
		return nil, &ValidationError{Field: "pageSize", Message: fmt.Sprintf("page size %d is not allowed", draft.PageSize), Err: ErrPageSizeNotAllowed}
	}
	return &Controller[T]{
		cfg:       cfg,
		ds:        ds,
		draft:     draft,
		applied:   draft.Clone(),
		selection: newSelection(),
		mutating:  map[string]struct{}{},
	}, nil
}

func (c *Controller[T]) Resource() string { return c.cfg.Resource }

func (c *Controller[T]) PageSizeOptions() []int {
	return append([]int(nil), c.cfg.PageSizeOptions...)
}

// Query returns the intended query, including edits not yet fetched.
func (c *Controller[T]) Query() Query {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.Clone()
}

func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.items)
}

func (c *Controller[T]) PageInfo() PageInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.info
}

func (c *Controller[T]) Selected() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.IDs()
}

func (c *Controller[T]) IsSelected(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selection.Has(id)
}

func (c *Controller[T]) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Controller[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot[T]{
		Query:     c.draft.Clone(),
		Applied:   c.applied.Clone(),
		Items:     slices.Clone(c.items),
		PageInfo:  c.info,
		View:      c.viewLocked(),
		Loading:   c.loading != 0,
		Err:       c.lastErr,
		Selection: c.selection.IDs(),
	}
}

func (c *Controller[T]) viewLocked() View {
	switch {
	case c.loading != 0:
		return ViewLoading
	case c.fetchErr != nil:
		return ViewError
	case !c.loaded:
		return ViewIdle
	case c.info.TotalItems == 0:
		return ViewEmpty
	default:
		return ViewReady
	}
}

func (c *Controller[T]) SetSearchTerm(text string) {
	c.mu.Lock()
	c.draft.Search = text
	c.draft.Page = DefaultPage
	c.scheduleLocked(c.cfg.Debounce)
	c.mu.Unlock()
	c.changed()
}

func (c *Controller[T]) SetFilter(key, value string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	c.mu.Lock()
	if isEmptyFilter(value) {
		delete(c.draft.Filters, key)
	} else {
		if c.draft.Filters == nil {
			c.draft.Filters = map[string]string{}
		}
		c.draft.Filters[key] = strings.TrimSpace(value)
	}
	c.draft.Page = DefaultPage
	c.scheduleLocked(0)
	c.mu.Unlock()
	c.changed()
}

func (c *Controller[T]) SetSort(field string, order SortOrder) error {
	order = SortOrder(strings.ToLower(string(order)))
	if order != SortAsc && order != SortDesc {
		return &ValidationError{Field: "sortOrder", Message: "sort order must be asc or desc", Err: ErrInvalidSortOrder}
	}
	c.mu.Lock()
	c.draft.Sort = Sort{Field: strings.TrimSpace(field), Order: order}
	c.draft.Page = DefaultPage
	c.scheduleLocked(0)
	c.mu.Unlock()
	c.changed()
	return nil
}

// SetPage moves to page n. It reports false and does nothing when n is
// outside the known page range.
func (c *Controller[T]) SetPage(n int) bool {
	c.mu.Lock()
	total := max(c.info.TotalPages, 1)
	if n < 1 || n > total {
		c.mu.Unlock()
		return false
	}
	c.draft.Page = n
	c.scheduleLocked(0)
	c.mu.Unlock()
	c.changed()
	return true
}

func (c *Controller[T]) NextPage() bool {
	return c.SetPage(c.Query().Page + 1)
}

func (c *Controller[T]) PrevPage() bool {
	return c.SetPage(c.Query().Page - 1)
}

func (c *Controller[T]) SetPageSize(n int) error {
	if !slices.Contains(c.cfg.PageSizeOptions, n) {
		return &ValidationError{Field: "pageSize", Message: fmt.Sprintf("page size %d is not allowed", n), Err: ErrPageSizeNotAllowed}
	}
	c.mu.Lock()
	c.draft.PageSize = n
	c.draft.Page = DefaultPage
	c.scheduleLocked(0)
	c.mu.Unlock()
	c.changed()
	return nil
}

// scheduleLocked replaces any pending fetch with one that fires after delay.
func (c *Controller[T]) scheduleLocked(delay time.Duration) {
	c.cancelPendingLocked()
	gen := c.gen
	c.pending = c.cfg.Scheduler.Schedule(delay, func() { c.flush(gen) })
}

func (c *Controller[T]) cancelPendingLocked() {
	c.gen++
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

func (c *Controller[T]) flush(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	q := c.draft.Clone()
	c.mu.Unlock()
	_, _ = c.fetch(c.cfg.BaseContext, q)
}

// Flush issues any pending fetch immediately.
func (c *Controller[T]) Flush(ctx context.Context) error {
	c.mu.Lock()
	if c.pending == nil {
		c.mu.Unlock()
		return nil
	}
	c.cancelPendingLocked()
	q := c.draft.Clone()
	c.mu.Unlock()
	_, err := c.fetch(ctx, q)
	return err
}

// Refresh re-issues the current query unchanged.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.cancelPendingLocked()
	q := c.draft.Clone()
	c.mu.Unlock()
	_, err := c.fetch(ctx, q)
	return err
}

// Fetch makes q the current query and loads it.
func (c *Controller[T]) Fetch(ctx context.Context, q Query) (Page[T], error) {
	q = q.normalized(c.cfg.PageSizeOptions[0])
	c.mu.Lock()
	c.cancelPendingLocked()
	c.draft = q.Clone()
	c.mu.Unlock()
	return c.fetch(ctx, q)
}

// beginLocked issues a new sequence number and marks it as the outstanding
// load. Only the latest sequence ever clears the loading state.
func (c *Controller[T]) beginLocked() uint64 {
	c.seq++
	c.loading = c.seq
	return c.seq
}

func (c *Controller[T]) list(ctx context.Context, q Query) (Page[T], error) {
	if c.cfg.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.FetchTimeout)
		defer cancel()
	}
	return c.ds.List(ctx, q)
}

func (c *Controller[T]) fetch(ctx context.Context, q Query) (Page[T], error) {
	c.mu.Lock()
	seq := c.beginLocked()
	c.mu.Unlock()
	c.changed()

	for {
		start := time.Now()
		page, err := c.list(ctx, q)

		c.mu.Lock()
		if seq != c.seq {
			c.mu.Unlock()
			observability.RecordListFetch(ctx, c.cfg.Resource, "superseded", time.Since(start))
			c.changed()
			return Page[T]{}, ErrSuperseded
		}
		if err != nil {
			c.loading = 0
			fe := &FetchError{Resource: c.cfg.Resource, Query: q, Message: UserMessage(err, "Failed to load "+c.cfg.Resource), Err: err}
			c.fetchErr = fe
			c.lastErr = fe
			c.mu.Unlock()
			observability.RecordListFetch(ctx, c.cfg.Resource, "error", time.Since(start))
			c.cfg.Logger.WarnContext(ctx, "list fetch failed", "resource", c.cfg.Resource, "page", q.Page, "error", err)
			c.notify(ctx, Notice{Level: LevelError, Resource: c.cfg.Resource, Message: fe.Message, Err: fe})
			c.changed()
			return Page[T]{}, fe
		}
		// The requested page vanished (rows deleted past it): step back to
		// the new last page under a fresh sequence.
		if last := max(page.TotalPages, 1); len(page.Items) == 0 && page.TotalItems > 0 && q.Page > last {
			q = q.Clone()
			q.Page = last
			if c.draft.Page > last {
				c.draft.Page = last
			}
			seq = c.beginLocked()
			c.mu.Unlock()
			observability.RecordListFetch(ctx, c.cfg.Resource, "past_last_page", time.Since(start))
			c.cfg.Logger.DebugContext(ctx, "list page past end, reloading last page", "resource", c.cfg.Resource, "page", last)
			continue
		}
		c.loading = 0
		page = normalizePage(page, q.PageSize)
		c.items = page.Items
		c.info = page.PageInfo
		c.applied = q.Clone()
		c.loaded = true
		c.fetchErr = nil
		c.lastErr = nil
		c.selection.prune(c.visibleLocked())
		c.mu.Unlock()
		observability.RecordListFetch(ctx, c.cfg.Resource, "success", time.Since(start))
		c.changed()
		return page, nil
	}
}

func (c *Controller[T]) visibleLocked() map[string]struct{} {
	out := make(map[string]struct{}, len(c.items))
	for _, item := range c.items {
		out[c.cfg.ID(item)] = struct{}{}
	}
	return out
}

func (c *Controller[T]) indexLocked(id string) int {
	for i, item := range c.items {
		if c.cfg.ID(item) == id {
			return i
		}
	}
	return -1
}

// SelectOne adds or removes id. Only ids on the current page can be added.
func (c *Controller[T]) SelectOne(id string, included bool) bool {
	c.mu.Lock()
	if included {
		if c.indexLocked(id) < 0 {
			c.mu.Unlock()
			return false
		}
		c.selection.pick(id)
	} else {
		c.selection.drop(id)
	}
	c.mu.Unlock()
	c.changed()
	return true
}

func (c *Controller[T]) Toggle(id string) bool {
	return c.SelectOne(id, !c.IsSelected(id))
}

func (c *Controller[T]) SelectAllOnPage(included bool) {
	c.mu.Lock()
	for _, item := range c.items {
		id := c.cfg.ID(item)
		if included {
			c.selection.pick(id)
		} else {
			c.selection.drop(id)
		}
	}
	c.mu.Unlock()
	c.changed()
}

// SelectByScope replaces the selection with the page items matching scope.
func (c *Controller[T]) SelectByScope(scope string) (int, error) {
	match := func(T) bool { return true }
	if scope != ScopeAll {
		fn, ok := c.cfg.Scopes[scope]
		if !ok {
			return 0, &ValidationError{Field: "scope", Message: fmt.Sprintf("unknown selection scope %q", scope), Err: ErrScopeNotSupported}
		}
		match = fn
	}
	c.mu.Lock()
	ids := make([]string, 0, len(c.items))
	for _, item := range c.items {
		if match(item) {
			ids = append(ids, c.cfg.ID(item))
		}
	}
	c.selection.replaceScoped(ids)
	c.mu.Unlock()
	c.changed()
	return len(ids), nil
}

func (c *Controller[T]) ClearSelection() {
	c.mu.Lock()
	c.selection.clear()
	c.mu.Unlock()
	c.changed()
}

// beginMutation claims ids for a mutation. It fails if any is already claimed.
func (c *Controller[T]) beginMutation(ids ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		if _, busy := c.mutating[id]; busy {
			return &ValidationError{Field: "id", Message: fmt.Sprintf("%s %s is still being updated", c.cfg.Resource, id), Err: ErrMutationInFlight}
		}
	}
	for _, id := range ids {
		c.mutating[id] = struct{}{}
	}
	return nil
}

func (c *Controller[T]) endMutation(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.mutating, id)
	}
}

func (c *Controller[T]) DeleteOne(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return c.reject(ctx, &ValidationError{Field: "id", Message: "id is required"})
	}
	if err := c.beginMutation(id); err != nil {
		return c.reject(ctx, err)
	}
	defer c.endMutation(id)

	if err := c.ds.Delete(ctx, id); err != nil {
		return c.mutationFailed(ctx, "delete", id, err, "Failed to delete "+c.cfg.Resource)
	}

	c.mu.Lock()
	if i := c.indexLocked(id); i >= 0 {
		c.items = slices.Delete(slices.Clone(c.items), i, i+1)
		if c.info.TotalItems > 0 {
			c.info.TotalItems--
		}
	}
	c.selection.drop(id)
	c.lastErr = nil
	c.mu.Unlock()

	observability.RecordListMutation(ctx, c.cfg.Resource, "delete", "success")
	c.notify(ctx, Notice{Level: LevelSuccess, Resource: c.cfg.Resource, Message: "Deleted 1 item"})
	c.changed()
	c.mutated(ctx, "delete")
	return nil
}

// DeleteSelected bulk deletes the current selection.
func (c *Controller[T]) DeleteSelected(ctx context.Context) (BulkDeleteResult, error) {
	return c.BulkDelete(ctx, c.Selected())
}

func (c *Controller[T]) BulkDelete(ctx context.Context, ids []string) (BulkDeleteResult, error) {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return BulkDeleteResult{}, c.reject(ctx, &ValidationError{Field: "ids", Message: "Select at least one item to delete", Err: ErrEmptySelection})
	}
	if err := c.beginMutation(ids...); err != nil {
		return BulkDeleteResult{}, c.reject(ctx, err)
	}
	res, err := c.ds.BulkDelete(ctx, ids)
	c.endMutation(ids...)
	if err != nil {
		return BulkDeleteResult{}, c.mutationFailed(ctx, "bulk_delete", "", err, "Failed to delete selected items")
	}

	c.mu.Lock()
	c.selection.clear()
	c.lastErr = nil
	c.mu.Unlock()

	observability.RecordListMutation(ctx, c.cfg.Resource, "bulk_delete", "success")
	c.notify(ctx, Notice{Level: LevelSuccess, Resource: c.cfg.Resource, Message: BulkDeleteSummary(res)})
	c.changed()
	if err := c.Refresh(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		c.cfg.Logger.WarnContext(ctx, "refresh after bulk delete failed", "resource", c.cfg.Resource, "error", err)
	}
	c.mutated(ctx, "bulk_delete")
	return res, nil
}

// BulkDeleteSummary describes a bulk delete outcome for the operator.
func BulkDeleteSummary(res BulkDeleteResult) string {
	var b strings.Builder
	if res.DeletedCount == 1 {
		b.WriteString("Deleted 1 item")
	} else {
		fmt.Fprintf(&b, "Deleted %d items", res.DeletedCount)
	}
	if n := len(res.NotFoundIDs); n > 0 {
		fmt.Fprintf(&b, "; %d not found", n)
	}
	if n := len(res.InvalidIDs); n > 0 {
		fmt.Fprintf(&b, "; %d invalid", n)
	}
	return b.String()
}

// UpdateField applies patch to the row optimistically together with any
// linked changes, then commits it. A refused commit restores the row and
// rolls the linked changes back in reverse order.
func (c *Controller[T]) UpdateField(ctx context.Context, id string, patch Patch[T], linked ...Optimistic) error {
	if patch.Apply == nil || patch.Commit == nil {
		return c.reject(ctx, &ValidationError{Field: "patch", Message: "invalid change", Err: ErrIncompleteMutation})
	}
	op := patch.Op
	if op == "" {
		op = "update"
	}
	if err := c.beginMutation(id); err != nil {
		return c.reject(ctx, err)
	}
	defer c.endMutation(id)

	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 && len(linked) == 0 {
		c.mu.Unlock()
		return c.reject(ctx, &ValidationError{Field: "id", Message: fmt.Sprintf("%s %s is not loaded", c.cfg.Resource, id), Err: ErrItemNotLoaded})
	}
	var prev T
	if idx >= 0 {
		snapshot, err := deepCopy(c.items[idx])
		if err != nil {
			c.mu.Unlock()
			return c.reject(ctx, fmt.Errorf("snapshot %s %s: %w", c.cfg.Resource, id, err))
		}
		next, err := deepCopy(c.items[idx])
		if err != nil {
			c.mu.Unlock()
			return c.reject(ctx, fmt.Errorf("snapshot %s %s: %w", c.cfg.Resource, id, err))
		}
		patch.Apply(&next)
		prev = snapshot
		c.replaceLocked(idx, next)
	}
	c.mu.Unlock()
	for _, l := range linked {
		l.Apply()
	}
	c.changed()

	updated, err := patch.Commit(ctx, id)
	if err != nil {
		c.mu.Lock()
		if idx >= 0 {
			if i := c.indexLocked(id); i >= 0 {
				c.replaceLocked(i, prev)
			}
		}
		c.mu.Unlock()
		for i := len(linked) - 1; i >= 0; i-- {
			linked[i].Rollback()
		}
		msg := patch.FailureMessage
		if msg == "" {
			msg = "Failed to update " + c.cfg.Resource
		}
		return c.mutationFailed(ctx, op, id, err, msg)
	}

	c.mu.Lock()
	if updated != nil {
		if i := c.indexLocked(id); i >= 0 {
			c.replaceLocked(i, *updated)
		}
	}
	c.lastErr = nil
	c.mu.Unlock()

	observability.RecordListMutation(ctx, c.cfg.Resource, op, "success")
	if patch.SuccessMessage != "" {
		c.notify(ctx, Notice{Level: LevelSuccess, Resource: c.cfg.Resource, Message: patch.SuccessMessage})
	}
	c.changed()
	c.mutated(ctx, op)
	return nil
}

// replaceLocked swaps row i on a fresh slice so snapshots already handed out
// stay untouched.
func (c *Controller[T]) replaceLocked(i int, item T) {
	items := slices.Clone(c.items)
	items[i] = item
	c.items = items
}

func (c *Controller[T]) mutationFailed(ctx context.Context, op, id string, err error, fallback string) error {
	me := &MutationError{Resource: c.cfg.Resource, Op: op, ID: id, Message: UserMessage(err, fallback), Err: err}
	c.mu.Lock()
	c.lastErr = me
	c.mu.Unlock()
	observability.RecordListMutation(ctx, c.cfg.Resource, op, "error")
	c.cfg.Logger.WarnContext(ctx, "list mutation failed", "resource", c.cfg.Resource, "op", op, "id", id, "error", err)
	c.notify(ctx, Notice{Level: LevelError, Resource: c.cfg.Resource, Message: me.Message, Err: me})
	c.changed()
	return me
}

func (c *Controller[T]) reject(ctx context.Context, err error) error {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
	msg := err.Error()
	var ve *ValidationError
	if errors.As(err, &ve) {
		msg = ve.Message
	}
	c.notify(ctx, Notice{Level: LevelError, Resource: c.cfg.Resource, Message: msg, Err: err})
	c.changed()
	return err
}

func (c *Controller[T]) notify(ctx context.Context, n Notice) {
	c.cfg.Notifier.Notify(ctx, n)
}

func (c *Controller[T]) changed() {
	if c.cfg.OnChange != nil {
		c.cfg.OnChange()
	}
}

func (c *Controller[T]) mutated(ctx context.Context, op string) {
	if c.cfg.OnMutated != nil {
		c.cfg.OnMutated(ctx, op)
	}
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
