package listctl

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"
)

type row struct {
	ID   string
	Name string
	Read bool
	Tags []string
}

type serverError struct{ msg string }

func (e serverError) Error() string       { return "server: " + e.msg }
func (e serverError) UserMessage() string { return e.msg }

type fakeSource struct {
	mu      sync.Mutex
	rows    []row
	queries []Query
	events  []string

	listFn   func(ctx context.Context, q Query) (Page[row], error)
	deleteFn func(ctx context.Context, id string) error
	bulkFn   func(ctx context.Context, ids []string) (BulkDeleteResult, error)
}

func (s *fakeSource) List(ctx context.Context, q Query) (Page[row], error) {
	s.mu.Lock()
	s.queries = append(s.queries, q.Clone())
	s.events = append(s.events, "list")
	fn := s.listFn
	rows := append([]row(nil), s.rows...)
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx, q)
	}
	return paginate(rows, q), nil
}

func (s *fakeSource) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	s.events = append(s.events, "delete:"+id)
	fn := s.deleteFn
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx, id)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rows {
		if r.ID == id {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return serverError{msg: "not found"}
}

func (s *fakeSource) BulkDelete(ctx context.Context, ids []string) (BulkDeleteResult, error) {
	s.mu.Lock()
	s.events = append(s.events, "bulk:"+strings.Join(ids, ","))
	fn := s.bulkFn
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx, ids)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	drop := map[string]struct{}{}
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := s.rows[:0]
	deleted := int64(0)
	for _, r := range s.rows {
		if _, ok := drop[r.ID]; ok {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	s.rows = kept
	return BulkDeleteResult{DeletedCount: deleted}, nil
}

func (s *fakeSource) listCalls() []Query {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Query(nil), s.queries...)
}

func (s *fakeSource) eventLog() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

func paginate(rows []row, q Query) Page[row] {
	filtered := make([]row, 0, len(rows))
	for _, r := range rows {
		if q.Search != "" && !strings.Contains(r.Name, q.Search) {
			continue
		}
		if v := q.Filter("read"); v != "" && fmt.Sprint(r.Read) != v {
			continue
		}
		filtered = append(filtered, r)
	}
	total := len(filtered)
	pages := max((total+q.PageSize-1)/q.PageSize, 1)
	start := min((q.Page-1)*q.PageSize, total)
	end := min(start+q.PageSize, total)
	return Page[row]{
		Items:    filtered[start:end],
		PageInfo: PageInfo{CurrentPage: q.Page, TotalPages: pages, TotalItems: int64(total)},
	}
}

func makeRows(n int) []row {
	out := make([]row, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, row{ID: fmt.Sprintf("r%02d", i), Name: fmt.Sprintf("row %d", i), Read: i%2 == 0, Tags: []string{"t"}})
	}
	return out
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (n *recordingNotifier) Notify(_ context.Context, notice Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *recordingNotifier) last() Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notices) == 0 {
		return Notice{}
	}
	return n.notices[len(n.notices)-1]
}

func newTestController(t *testing.T, src *fakeSource, mutate func(*Config[row])) (*Controller[row], *ManualScheduler, *recordingNotifier) {
	t.Helper()
	sched := NewManualScheduler()
	notes := &recordingNotifier{}
	cfg := Config[row]{
		Resource:  "rows",
		ID:        func(r row) string { return r.ID },
		Scheduler: sched,
		Notifier:  notes,
		Scopes: map[string]func(row) bool{
			"read":   func(r row) bool { return r.Read },
			"unread": func(r row) bool { return !r.Read },
		},
	}
	if mutate != nil {
		mutate(&cfg)
	}
	ctl, err := New[row](src, cfg)
	if err != nil {
		t.Fatalf("new controller: %v", err)
	}
	return ctl, sched, notes
}

func TestNewRequiresIDAccessor(t *testing.T) {
	if _, err := New[row](&fakeSource{}, Config[row]{Resource: "rows"}); !errors.Is(err, ErrMissingIDAccessor) {
		t.Fatalf("expected ErrMissingIDAccessor, got %v", err)
	}
}

func TestNonPageChangesResetPage(t *testing.T) {
	src := &fakeSource{rows: makeRows(35)}
	ctl, sched, _ := newTestController(t, src, nil)
	ctx := context.Background()
	if err := ctl.Refresh(ctx); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	if !ctl.SetPage(3) {
		t.Fatal("expected page 3 to be accepted")
	}
	sched.Advance(0)
	if got := ctl.PageInfo().CurrentPage; got != 3 {
		t.Fatalf("expected page 3 loaded, got %d", got)
	}

	changes := []struct {
		name  string
		apply func()
	}{
		{name: "filter", apply: func() { ctl.SetFilter("read", "true") }},
		{name: "sort", apply: func() {
			if err := ctl.SetSort("name", SortAsc); err != nil {
				t.Fatalf("set sort: %v", err)
			}
		}},
		{name: "page size", apply: func() {
			if err := ctl.SetPageSize(20); err != nil {
				t.Fatalf("set page size: %v", err)
			}
		}},
		{name: "search", apply: func() { ctl.SetSearchTerm("row") }},
	}
	for _, tc := range changes {
		t.Run(tc.name, func(t *testing.T) {
			ctl.SetFilter("read", "")
			sched.Advance(time.Second)
			if !ctl.SetPage(2) {
				t.Fatal("expected page 2 to be accepted")
			}
			sched.Advance(0)

			tc.apply()
			if got := ctl.Query().Page; got != 1 {
				t.Fatalf("expected draft page 1, got %d", got)
			}
			sched.Advance(time.Second)
			calls := src.listCalls()
			if got := calls[len(calls)-1].Page; got != 1 {
				t.Fatalf("expected request page 1, got %d", got)
			}
		})
	}
}

func TestSetPageOutOfRangeIsNoop(t *testing.T) {
	src := &fakeSource{rows: makeRows(15)}
	ctl, sched, _ := newTestController(t, src, nil)
	if err := ctl.Refresh(context.Background()); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	before := len(src.listCalls())
	for _, n := range []int{0, -1, 3} {
		if ctl.SetPage(n) {
			t.Fatalf("expected page %d to be rejected", n)
		}
	}
	sched.Advance(time.Second)
	if got := len(src.listCalls()); got != before {
		t.Fatalf("expected no fetch, got %d new calls", got-before)
	}
}

func TestSetPageSizeRejectsUnknownOption(t *testing.T) {
	ctl, sched, _ := newTestController(t, &fakeSource{}, nil)
	err := ctl.SetPageSize(7)
	var ve *ValidationError
	if !errors.As(err, &ve) || !errors.Is(err, ErrPageSizeNotAllowed) {
		t.Fatalf("expected page size validation error, got %v", err)
	}
	if sched.Pending() != 0 {
		t.Fatal("expected no fetch to be scheduled")
	}
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	started := make(chan string, 2)
	gates := map[string]chan Page[row]{"first": make(chan Page[row]), "second": make(chan Page[row])}
	src := &fakeSource{listFn: func(_ context.Context, q Query) (Page[row], error) {
		started <- q.Search
		return <-gates[q.Search], nil
	}}
	ctl, _, _ := newTestController(t, src, nil)
	ctx := context.Background()

	firstErr := make(chan error, 1)
	go func() {
		_, err := ctl.Fetch(ctx, Query{Search: "first"})
		firstErr <- err
	}()
	if got := <-started; got != "first" {
		t.Fatalf("expected first request, got %q", got)
	}
	secondErr := make(chan error, 1)
	go func() {
		_, err := ctl.Fetch(ctx, Query{Search: "second"})
		secondErr <- err
	}()
	if got := <-started; got != "second" {
		t.Fatalf("expected second request, got %q", got)
	}

	gates["second"] <- Page[row]{Items: []row{{ID: "b"}}, PageInfo: PageInfo{CurrentPage: 1, TotalPages: 1, TotalItems: 1}}
	if err := <-secondErr; err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	gates["first"] <- Page[row]{Items: []row{{ID: "a"}}, PageInfo: PageInfo{CurrentPage: 1, TotalPages: 1, TotalItems: 1}}
	if err := <-firstErr; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded for first fetch, got %v", err)
	}

	snap := ctl.Snapshot()
	if len(snap.Items) != 1 || snap.Items[0].ID != "b" {
		t.Fatalf("expected second response to win, got %+v", snap.Items)
	}
	if snap.Applied.Search != "second" || snap.Loading {
		t.Fatalf("unexpected snapshot state: %+v", snap)
	}
}

func TestLatestFetchEndsLoadingBeforeOlderOneReturns(t *testing.T) {
	rows := makeRows(25)
	started := make(chan int, 2)
	releaseFirst := make(chan struct{})
	src := &fakeSource{listFn: func(_ context.Context, q Query) (Page[row], error) {
		started <- q.Page
		if q.Page == 1 {
			<-releaseFirst
		}
		return paginate(rows, q), nil
	}}
	ctl, _, _ := newTestController(t, src, nil)
	ctx := context.Background()

	firstErr := make(chan error, 1)
	go func() {
		_, err := ctl.Fetch(ctx, Query{Page: 1})
		firstErr <- err
	}()
	if got := <-started; got != 1 {
		t.Fatalf("expected page 1 request first, got %d", got)
	}
	if got := ctl.View(); got != ViewLoading {
		t.Fatalf("expected loading while page 1 is outstanding, got %v", got)
	}

	if _, err := ctl.Fetch(ctx, Query{Page: 2}); err != nil {
		t.Fatalf("page 2 fetch: %v", err)
	}
	<-started
	snap := ctl.Snapshot()
	if snap.View != ViewReady || snap.Loading {
		t.Fatalf("expected ready once the latest page applied, got view=%v loading=%v", snap.View, snap.Loading)
	}
	if snap.Applied.Page != 2 || snap.PageInfo.CurrentPage != 2 {
		t.Fatalf("expected page 2 applied, got %+v", snap.PageInfo)
	}

	close(releaseFirst)
	if err := <-firstErr; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded for page 1, got %v", err)
	}
	if got := ctl.View(); got != ViewReady {
		t.Fatalf("expected ready after stale response, got %v", got)
	}
	if got := ctl.PageInfo().CurrentPage; got != 2 {
		t.Fatalf("stale response must not move the page, got %d", got)
	}
}

func TestBulkDeleteOfLastPageFallsBackToNewLastPage(t *testing.T) {
	src := &fakeSource{rows: makeRows(23)}
	ctl, _, _ := newTestController(t, src, nil)
	ctx := context.Background()
	if err := ctl.Refresh(ctx); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	if !ctl.SetPage(3) {
		t.Fatal("expected page 3 to be reachable")
	}
	if err := ctl.Flush(ctx); err != nil {
		t.Fatalf("load page 3: %v", err)
	}
	ctl.SelectAllOnPage(true)
	if got := len(ctl.Selected()); got != 3 {
		t.Fatalf("expected 3 rows selected on page 3, got %d", got)
	}

	if _, err := ctl.DeleteSelected(ctx); err != nil {
		t.Fatalf("bulk delete: %v", err)
	}

	snap := ctl.Snapshot()
	if snap.Query.Page != 2 || snap.Applied.Page != 2 {
		t.Fatalf("expected draft and applied query on page 2, got draft=%d applied=%d", snap.Query.Page, snap.Applied.Page)
	}
	want := PageInfo{CurrentPage: 2, TotalPages: 2, TotalItems: 20}
	if snap.PageInfo != want {
		t.Fatalf("unexpected page info: %+v", snap.PageInfo)
	}
	if len(snap.Items) != 10 || snap.Items[0].ID != "r11" {
		t.Fatalf("expected the rows of page 2, got %d items", len(snap.Items))
	}
	if snap.View != ViewReady || snap.Loading {
		t.Fatalf("expected ready view, got %v loading=%v", snap.View, snap.Loading)
	}
	calls := src.listCalls()
	if last := calls[len(calls)-1]; last.Page != 2 {
		t.Fatalf("expected the final list call for page 2, got %d", last.Page)
	}
}

func TestSelectionPrunedOnPageLoad(t *testing.T) {
	src := &fakeSource{rows: makeRows(20)}
	ctl, sched, _ := newTestController(t, src, nil)
	if err := ctl.Refresh(context.Background()); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	ctl.SelectAllOnPage(true)
	if got := len(ctl.Selected()); got != 10 {
		t.Fatalf("expected 10 selected, got %d", got)
	}

	ctl.SetPage(2)
	sched.Advance(0)
	if got := ctl.Selected(); len(got) != 0 {
		t.Fatalf("expected selection pruned after page change, got %v", got)
	}

	if !ctl.SelectOne("r11", true) {
		t.Fatal("expected r11 to be selectable on page 2")
	}
	if ctl.SelectOne("r01", true) {
		t.Fatal("expected r01 to be rejected off page")
	}
	n, err := ctl.SelectByScope("unread")
	if err != nil {
		t.Fatalf("select by scope: %v", err)
	}
	if n != 5 {
		t.Fatalf("expected 5 unread rows on page 2, got %d", n)
	}
	if ctl.IsSelected("r12") {
		t.Fatal("scope select must replace, not merge")
	}
	scoped := ctl.Selected()

	ctl.SetPage(1)
	sched.Advance(0)
	if got := ctl.Selected(); !reflect.DeepEqual(got, scoped) {
		t.Fatalf("expected scoped ids to survive page load, got %v want %v", got, scoped)
	}

	if _, err := ctl.SelectByScope("read"); err != nil {
		t.Fatalf("select by scope: %v", err)
	}
	for _, id := range ctl.Selected() {
		if id == "r11" {
			t.Fatal("switching scope must not accumulate previous scope")
		}
	}
	if _, err := ctl.SelectByScope("starred"); !errors.Is(err, ErrScopeNotSupported) {
		t.Fatalf("expected ErrScopeNotSupported, got %v", err)
	}
}

func TestBulkDeleteClearsSelectionThenRefreshes(t *testing.T) {
	src := &fakeSource{rows: makeRows(12)}
	var mutated []string
	ctl, _, notes := newTestController(t, src, func(cfg *Config[row]) {
		cfg.OnMutated = func(_ context.Context, op string) { mutated = append(mutated, op) }
	})
	ctx := context.Background()
	if err := ctl.Refresh(ctx); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	ctl.SelectOne("r01", true)
	ctl.SelectOne("r02", true)

	res, err := ctl.DeleteSelected(ctx)
	if err != nil {
		t.Fatalf("bulk delete: %v", err)
	}
	if res.DeletedCount != 2 {
		t.Fatalf("expected 2 deleted, got %d", res.DeletedCount)
	}
	if got := ctl.Selected(); len(got) != 0 {
		t.Fatalf("expected empty selection, got %v", got)
	}
	events := src.eventLog()
	if events[len(events)-2] != "bulk:r01,r02" || events[len(events)-1] != "list" {
		t.Fatalf("expected bulk delete followed by refetch, got %v", events)
	}
	if got := ctl.PageInfo().TotalItems; got != 10 {
		t.Fatalf("expected 10 remaining, got %d", got)
	}
	if !reflect.DeepEqual(mutated, []string{"bulk_delete"}) {
		t.Fatalf("expected bulk_delete mutation hook, got %v", mutated)
	}
	if got := notes.last(); got.Level != LevelSuccess || got.Message != "Deleted 2 items" {
		t.Fatalf("unexpected notice: %+v", got)
	}
}

func TestBulkDeleteEmptySelectionSkipsNetwork(t *testing.T) {
	src := &fakeSource{}
	ctl, _, notes := newTestController(t, src, nil)
	_, err := ctl.BulkDelete(context.Background(), []string{" ", ""})
	var ve *ValidationError
	if !errors.As(err, &ve) || !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("expected empty selection validation error, got %v", err)
	}
	if len(src.eventLog()) != 0 {
		t.Fatalf("expected no network calls, got %v", src.eventLog())
	}
	if notes.last().Level != LevelError {
		t.Fatal("expected an error notice")
	}
}

func TestBulkDeleteFailureKeepsSelection(t *testing.T) {
	src := &fakeSource{
		rows: makeRows(5),
		bulkFn: func(context.Context, []string) (BulkDeleteResult, error) {
			return BulkDeleteResult{}, serverError{msg: "Orders with pending refunds cannot be deleted"}
		},
	}
	ctl, _, notes := newTestController(t, src, nil)
	ctx := context.Background()
	if err := ctl.Refresh(ctx); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	ctl.SelectAllOnPage(true)
	want := ctl.Selected()
	calls := len(src.listCalls())

	_, err := ctl.DeleteSelected(ctx)
	var me *MutationError
	if !errors.As(err, &me) {
		t.Fatalf("expected MutationError, got %v", err)
	}
	if me.Message != "Orders with pending refunds cannot be deleted" {
		t.Fatalf("expected server message, got %q", me.Message)
	}
	if got := ctl.Selected(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected selection kept, got %v", got)
	}
	if got := len(src.listCalls()); got != calls {
		t.Fatal("expected no refetch after failed bulk delete")
	}
	if got := notes.last(); got.Level != LevelError || got.Message != me.Message {
		t.Fatalf("unexpected notice: %+v", got)
	}
}

func TestBulkDeleteSummaryReportsPartialOutcome(t *testing.T) {
	got := BulkDeleteSummary(BulkDeleteResult{DeletedCount: 3, NotFoundIDs: []string{"x"}, InvalidIDs: []string{"y", "z"}})
	if got != "Deleted 3 items; 1 not found; 2 invalid" {
		t.Fatalf("unexpected summary %q", got)
	}
}

func TestDeleteOne(t *testing.T) {
	src := &fakeSource{rows: makeRows(3)}
	ctl, _, _ := newTestController(t, src, nil)
	ctx := context.Background()
	if err := ctl.Refresh(ctx); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	ctl.SelectOne("r02", true)
	if err := ctl.DeleteOne(ctx, "r02"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ctl.IsSelected("r02") {
		t.Fatal("expected deleted id removed from selection")
	}
	snap := ctl.Snapshot()
	if len(snap.Items) != 2 || snap.PageInfo.TotalItems != 2 {
		t.Fatalf("unexpected state after delete: %+v", snap)
	}

	src.deleteFn = func(context.Context, string) error { return serverError{msg: "Order is locked"} }
	err := ctl.DeleteOne(ctx, "r01")
	var me *MutationError
	if !errors.As(err, &me) || me.Message != "Order is locked" {
		t.Fatalf("expected MutationError with server message, got %v", err)
	}
	if got := len(ctl.Items()); got != 2 {
		t.Fatalf("expected state unchanged on failure, got %d items", got)
	}
}

func TestUpdateFieldRollsBackOnFailure(t *testing.T) {
	src := &fakeSource{rows: makeRows(3)}
	ctl, _, _ := newTestController(t, src, nil)
	ctx := context.Background()
	if err := ctl.Refresh(ctx); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	before := ctl.Items()

	var detail Detail[row]
	detail.Open("r02", before[1])
	detailBefore, _ := detail.Get()

	commitSeen := make(chan row, 1)
	err := ctl.UpdateField(ctx, "r02", Patch[row]{
		Op: "rename",
		Apply: func(r *row) {
			r.Name = "renamed"
			r.Tags[0] = "changed"
		},
		Commit: func(context.Context, string) (*row, error) {
			commitSeen <- ctl.Items()[1]
			return nil, serverError{msg: "Name already taken"}
		},
	}, detail.Patch("r02", func(r *row) { r.Name = "renamed" }))

	var me *MutationError
	if !errors.As(err, &me) || me.Op != "rename" {
		t.Fatalf("expected rename MutationError, got %v", err)
	}
	if optimistic := <-commitSeen; optimistic.Name != "renamed" || optimistic.Tags[0] != "changed" {
		t.Fatalf("expected optimistic row during commit, got %+v", optimistic)
	}
	if got := ctl.Items(); !reflect.DeepEqual(got, before) {
		t.Fatalf("expected rows restored, got %+v want %+v", got, before)
	}
	if before[1].Tags[0] != "t" {
		t.Fatal("patch must not write through to the captured row")
	}
	if got, _ := detail.Get(); !reflect.DeepEqual(got, detailBefore) {
		t.Fatalf("expected detail rolled back, got %+v", got)
	}
}

func TestUpdateFieldAppliesServerRow(t *testing.T) {
	src := &fakeSource{rows: makeRows(2)}
	var ops []string
	ctl, _, _ := newTestController(t, src, func(cfg *Config[row]) {
		cfg.OnMutated = func(_ context.Context, op string) { ops = append(ops, op) }
	})
	ctx := context.Background()
	if err := ctl.Refresh(ctx); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	err := ctl.UpdateField(ctx, "r01", Patch[row]{
		Op:    "mark_read",
		Apply: func(r *row) { r.Read = true },
		Commit: func(context.Context, string) (*row, error) {
			return &row{ID: "r01", Name: "from server", Read: true}, nil
		},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := ctl.Items()[0]; got.Name != "from server" || !got.Read {
		t.Fatalf("expected server row, got %+v", got)
	}
	if !reflect.DeepEqual(ops, []string{"mark_read"}) {
		t.Fatalf("unexpected mutation hooks %v", ops)
	}
}

func TestConcurrentMutationOnSameIDIsRejected(t *testing.T) {
	src := &fakeSource{rows: makeRows(2)}
	ctl, _, _ := newTestController(t, src, nil)
	ctx := context.Background()
	if err := ctl.Refresh(ctx); err != nil {
		t.Fatalf("initial load: %v", err)
	}
	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- ctl.UpdateField(ctx, "r01", Patch[row]{
			Apply: func(r *row) { r.Read = true },
			Commit: func(context.Context, string) (*row, error) {
				close(entered)
				<-release
				return nil, nil
			},
		})
	}()
	<-entered

	err := ctl.DeleteOne(ctx, "r01")
	var ve *ValidationError
	if !errors.As(err, &ve) || !errors.Is(err, ErrMutationInFlight) {
		t.Fatalf("expected in-flight rejection, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first mutation: %v", err)
	}
	if err := ctl.DeleteOne(ctx, "r01"); err != nil {
		t.Fatalf("delete after first mutation settled: %v", err)
	}
}

func TestEmptyAndErrorViewsAreDistinct(t *testing.T) {
	src := &fakeSource{}
	ctl, _, notes := newTestController(t, src, nil)
	ctx := context.Background()
	if got := ctl.View(); got != ViewIdle {
		t.Fatalf("expected idle before first load, got %s", got)
	}
	if err := ctl.Refresh(ctx); err != nil {
		t.Fatalf("empty load: %v", err)
	}
	if got := ctl.View(); got != ViewEmpty {
		t.Fatalf("expected empty view, got %s", got)
	}
	snap := ctl.Snapshot()
	if snap.Items == nil || len(snap.Items) != 0 || snap.PageInfo.TotalPages != 1 {
		t.Fatalf("unexpected empty page %+v", snap.PageInfo)
	}

	src.rows = makeRows(2)
	if err := ctl.Refresh(ctx); err != nil {
		t.Fatalf("load: %v", err)
	}
	src.listFn = func(context.Context, Query) (Page[row], error) {
		return Page[row]{}, serverError{msg: "backend unavailable"}
	}
	err := ctl.Refresh(ctx)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if got := ctl.View(); got != ViewError {
		t.Fatalf("expected error view, got %s", got)
	}
	if got := len(ctl.Items()); got != 2 {
		t.Fatalf("expected prior rows kept on error, got %d", got)
	}
	if got := notes.last(); got.Message != "backend unavailable" {
		t.Fatalf("unexpected notice %+v", got)
	}
}

func TestFetchTimeoutBecomesFetchError(t *testing.T) {
	src := &fakeSource{listFn: func(ctx context.Context, _ Query) (Page[row], error) {
		<-ctx.Done()
		return Page[row]{}, ctx.Err()
	}}
	ctl, _, _ := newTestController(t, src, func(cfg *Config[row]) { cfg.FetchTimeout = 20 * time.Millisecond })
	err := ctl.Refresh(context.Background())
	var fe *FetchError
	if !errors.As(err, &fe) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected timeout FetchError, got %v", err)
	}
	if ctl.Snapshot().Loading {
		t.Fatal("expected loading to settle after timeout")
	}
}

func TestSearchBurstIssuesOneFetch(t *testing.T) {
	src := &fakeSource{rows: makeRows(3)}
	ctl, sched, _ := newTestController(t, src, nil)
	for _, term := range []string{"r", "ro", "row", "row ", "row 2"} {
		ctl.SetSearchTerm(term)
		sched.Advance(50 * time.Millisecond)
	}
	if got := len(src.listCalls()); got != 0 {
		t.Fatalf("expected no fetch inside the debounce window, got %d", got)
	}
	sched.Advance(DefaultDebounce)
	calls := src.listCalls()
	if len(calls) != 1 {
		t.Fatalf("expected exactly one fetch, got %d", len(calls))
	}
	if calls[0].Search != "row 2" {
		t.Fatalf("expected last search term, got %q", calls[0].Search)
	}
}

func TestBatchedFilterChangesCoalesce(t *testing.T) {
	src := &fakeSource{}
	ctl, sched, _ := newTestController(t, src, nil)
	ctl.SetFilter("status", "pending")
	ctl.SetFilter("paymentMethod", "bank_transfer")
	ctl.SetFilter("paymentStatus", FilterAll)
	sched.Advance(0)
	calls := src.listCalls()
	if len(calls) != 1 {
		t.Fatalf("expected one fetch for batched filters, got %d", len(calls))
	}
	v := calls[0].Values()
	if v.Get("status") != "pending" || v.Get("paymentMethod") != "bank_transfer" {
		t.Fatalf("unexpected request values %v", v)
	}
	if v.Has("paymentStatus") {
		t.Fatal("expected all-sentinel filter to be omitted")
	}
}

func TestOnChangeFiresOutsideLock(t *testing.T) {
	src := &fakeSource{rows: makeRows(1)}
	var ctl *Controller[row]
	views := []View{}
	ctl, _, _ = newTestController(t, src, func(cfg *Config[row]) {
		cfg.OnChange = func() { views = append(views, ctl.View()) }
	})
	if err := ctl.Refresh(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(views) < 2 || views[0] != ViewLoading || views[len(views)-1] != ViewReady {
		t.Fatalf("unexpected view transitions %v", views)
	}
}
