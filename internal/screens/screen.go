package screens

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sandeepkv93/storefront-admin-console/internal/export"
	"github.com/sandeepkv93/storefront-admin-console/internal/listctl"
	"github.com/sandeepkv93/storefront-admin-console/internal/observability"
	"github.com/sandeepkv93/storefront-admin-console/internal/permission"
)

// Options carries what every screen needs besides its data source.
type Options struct {
	Actor           *permission.Actor
	ActorName       string
	InitialQuery    listctl.Query
	PageSizeOptions []int
	Debounce        time.Duration
	FetchTimeout    time.Duration
	Scheduler       listctl.Scheduler
	Notifier        listctl.Notifier
	OnChange        func()
	BaseContext     context.Context
	Logger          *slog.Logger
	Now             func() time.Time
}

type screenSpec[T any] struct {
	resource string
	id       func(T) string
	scopes   map[string]func(T) bool
	rules    []rule
	filters  []FilterSpec
	sort     listctl.Sort
	table    func(ctx context.Context, items []T) (export.Table, error)
}

// screen is the part shared by every resource screen.
type screen[T any, S any] struct {
	spec     screenSpec[T]
	src      Source[T]
	actor    *permission.Actor
	opts     Options
	list     *listctl.Controller[T]
	stats    *statsCache[S]
	notifier listctl.Notifier
	logger   *slog.Logger
}

func newScreen[T any, S any](src Source[T], opts Options, spec screenSpec[T], onStats func(S)) (*screen[T, S], error) {
	if src == nil {
		return nil, fmt.Errorf("%s screen requires a source", spec.resource)
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Notifier == nil {
		opts.Notifier = listctl.NewLogNotifier(opts.Logger)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger.With("screen", spec.resource)
	s := &screen[T, S]{
		spec:     spec,
		src:      src,
		actor:    opts.Actor,
		opts:     opts,
		notifier: opts.Notifier,
		logger:   logger,
	}
	s.stats = &statsCache[S]{
		load: func(ctx context.Context) (S, error) {
			var out S
			err := src.Stats(ctx, &out)
			return out, err
		},
		onLoad: onStats,
		logger: logger,
	}
	initial := opts.InitialQuery.Clone()
	if initial.Sort.Field == "" {
		initial.Sort = spec.sort
	}
	list, err := listctl.New[T](src, listctl.Config[T]{
		Resource:        spec.resource,
		ID:              spec.id,
		InitialQuery:    initial,
		PageSizeOptions: opts.PageSizeOptions,
		Debounce:        opts.Debounce,
		FetchTimeout:    opts.FetchTimeout,
		Scheduler:       opts.Scheduler,
		Notifier:        opts.Notifier,
		Scopes:          spec.scopes,
		OnChange:        opts.OnChange,
		OnMutated:       func(ctx context.Context, _ string) { s.stats.Invalidate(ctx) },
		BaseContext:     opts.BaseContext,
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}
	s.list = list
	return s, nil
}

func (s *screen[T, S]) Resource() string { return s.spec.resource }

// List exposes the list controller for rendering and navigation.
func (s *screen[T, S]) List() *listctl.Controller[T] { return s.list }

// Can reports whether the actor may use a.
func (s *screen[T, S]) Can(a Affordance) bool {
	for _, r := range s.spec.rules {
		if r.affordance == a {
			return permission.Authorize(s.actor, r.permission)
		}
	}
	return false
}

// Affordances lists the visible affordances in declaration order.
func (s *screen[T, S]) Affordances() []Affordance {
	out := make([]Affordance, 0, len(s.spec.rules))
	for _, r := range s.spec.rules {
		if permission.Authorize(s.actor, r.permission) {
			out = append(out, r.affordance)
		}
	}
	return out
}

func (s *screen[T, S]) Filters() []FilterSpec {
	return slices.Clone(s.spec.filters)
}

// SetFilter validates the value against the filter's options before handing
// it to the list.
func (s *screen[T, S]) SetFilter(key, value string) error {
	idx := slices.IndexFunc(s.spec.filters, func(f FilterSpec) bool { return f.Key == key })
	if idx < 0 {
		return &listctl.ValidationError{Field: key, Message: fmt.Sprintf("unknown %s filter %q", s.spec.resource, key)}
	}
	value = strings.TrimSpace(value)
	spec := s.spec.filters[idx]
	if value != "" && value != listctl.FilterAll && len(spec.Options) > 0 && !slices.Contains(spec.Options, value) {
		return &listctl.ValidationError{Field: key, Message: fmt.Sprintf("%s must be one of %s", spec.Label, strings.Join(spec.Options, ", "))}
	}
	s.list.SetFilter(key, value)
	return nil
}

func (s *screen[T, S]) Stats() (S, bool) { return s.stats.Get() }

func (s *screen[T, S]) RefreshStats(ctx context.Context) (S, error) {
	return s.stats.Refresh(ctx)
}

// Load fetches the current page and the stats together. A stats failure is
// logged; only a list failure is returned.
func (s *screen[T, S]) Load(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		return s.list.Refresh(ctx)
	})
	g.Go(func() error {
		if _, err := s.stats.Refresh(ctx); err != nil {
			s.logger.WarnContext(ctx, "stats load failed", "error", err)
		}
		return nil
	})
	return g.Wait()
}

func (s *screen[T, S]) Delete(ctx context.Context, id string) error {
	if !s.Can(AffordanceDelete) {
		return ErrUnavailable
	}
	return s.list.DeleteOne(ctx, id)
}

// BulkDelete deletes the current selection.
func (s *screen[T, S]) BulkDelete(ctx context.Context) (listctl.BulkDeleteResult, error) {
	if !s.Can(AffordanceBulkDelete) {
		return listctl.BulkDeleteResult{}, ErrUnavailable
	}
	return s.list.DeleteSelected(ctx)
}

// ExportTable flattens the loaded page. It never fetches.
func (s *screen[T, S]) ExportTable(ctx context.Context) (export.Table, export.Meta, error) {
	snap := s.list.Snapshot()
	table, err := s.spec.table(ctx, snap.Items)
	if err != nil {
		return export.Table{}, export.Meta{}, err
	}
	meta := export.Meta{
		Resource:   s.spec.resource,
		Search:     strings.TrimSpace(snap.Applied.Search),
		Filters:    snap.Applied.ActiveFilters(),
		SortField:  snap.Applied.Sort.Field,
		SortOrder:  string(snap.Applied.Sort.Order),
		Page:       snap.PageInfo.CurrentPage,
		TotalPages: snap.PageInfo.TotalPages,
		TotalItems: snap.PageInfo.TotalItems,
		ExportedAt: s.opts.Now(),
		ExportedBy: s.opts.ActorName,
	}
	return table, meta, nil
}

// Export writes the loaded page to w.
func (s *screen[T, S]) Export(ctx context.Context, w io.Writer, format export.Format) error {
	if !s.Can(AffordanceExport) {
		return ErrUnavailable
	}
	table, meta, err := s.ExportTable(ctx)
	if err == nil {
		err = export.Write(w, format, table, meta)
	}
	if err != nil {
		observability.RecordExport(ctx, s.spec.resource, string(format), "error")
		s.notifier.Notify(ctx, listctl.Notice{Level: listctl.LevelError, Resource: s.spec.resource, Message: "Export failed", Err: err})
		return err
	}
	observability.RecordExport(ctx, s.spec.resource, string(format), "success")
	s.notifier.Notify(ctx, listctl.Notice{Level: listctl.LevelSuccess, Resource: s.spec.resource, Message: fmt.Sprintf("Exported %d rows", len(table.Rows))})
	return nil
}

// invalid raises a notice for a request the screen refuses to send.
func (s *screen[T, S]) invalid(ctx context.Context, field, msg string) error {
	err := &listctl.ValidationError{Field: field, Message: msg}
	s.notifier.Notify(ctx, listctl.Notice{Level: listctl.LevelError, Resource: s.spec.resource, Message: msg, Err: err})
	return err
}

// loaded returns the row with id from the current page.
func (s *screen[T, S]) loaded(id string) (T, bool) {
	for _, item := range s.list.Items() {
		if s.spec.id(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}
