package console

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/storefront-admin-console/internal/config"
	"github.com/sandeepkv93/storefront-admin-console/internal/domain"
	"github.com/sandeepkv93/storefront-admin-console/internal/export"
	"github.com/sandeepkv93/storefront-admin-console/internal/listctl"
	"github.com/sandeepkv93/storefront-admin-console/internal/permission"
	"github.com/sandeepkv93/storefront-admin-console/internal/screens"
)

type fakeAPI struct {
	mu          sync.Mutex
	permissions []string
	orders      []domain.Order
	unread      int64
	queries     map[string][]url.Values
	patches     []string
}

func newFakeAPI(t *testing.T, permissions ...string) (*fakeAPI, *httptest.Server) {
	t.Helper()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	api := &fakeAPI{
		permissions: permissions,
		unread:      4,
		queries:     map[string][]url.Values{},
		orders: []domain.Order{
			{ID: "o-1", OrderNumber: "ORD-1001", CustomerName: "Ada", Status: domain.OrderStatusPending, PaymentMethod: domain.PaymentMethodCard, PaymentStatus: domain.PaymentStatusPaid, Total: 42, CreatedAt: now},
			{ID: "o-2", OrderNumber: "ORD-1002", CustomerName: "Lin", Status: domain.OrderStatusShipped, PaymentMethod: domain.PaymentMethodCOD, PaymentStatus: domain.PaymentStatusUnpaid, Total: 17.5, CreatedAt: now},
		},
	}
	srv := httptest.NewServer(http.HandlerFunc(api.serve(t)))
	t.Cleanup(srv.Close)
	return api, srv
}

func (a *fakeAPI) serve(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer console-token" {
			writeJSON(t, w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Authentication required"})
			return
		}
		a.mu.Lock()
		defer a.mu.Unlock()
		path := strings.TrimPrefix(r.URL.Path, "/api/v1")
		switch {
		case path == "/auth/me":
			writeJSON(t, w, http.StatusOK, map[string]any{"success": true, "staff": map[string]any{
				"id": 7, "email": "ops@example.com", "name": "Ops", "isProtected": false, "permissions": a.permissions,
			}})
		case r.Method == http.MethodGet && path == "/orders":
			a.queries["orders"] = append(a.queries["orders"], r.URL.Query())
			items := a.orders
			if s := r.URL.Query().Get("search"); s != "" {
				items = nil
				for _, o := range a.orders {
					if strings.Contains(strings.ToLower(o.CustomerName), strings.ToLower(s)) {
						items = append(items, o)
					}
				}
			}
			writeJSON(t, w, http.StatusOK, map[string]any{
				"success":    true,
				"items":      items,
				"pagination": map[string]any{"currentPage": 1, "totalPages": 1, "totalItems": len(items)},
			})
		case r.Method == http.MethodGet && path == "/orders/stats":
			writeJSON(t, w, http.StatusOK, map[string]any{"success": true, "stats": map[string]any{"total": len(a.orders)}})
		case r.Method == http.MethodGet && path == "/notifications/stats":
			writeJSON(t, w, http.StatusOK, map[string]any{"success": true, "stats": map[string]any{"total": 9, "unread": a.unread}})
		case r.Method == http.MethodPatch && strings.HasPrefix(path, "/orders/"):
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			a.patches = append(a.patches, path+":"+body["status"])
			writeJSON(t, w, http.StatusOK, map[string]any{"success": true})
		default:
			writeJSON(t, w, http.StatusNotFound, map[string]any{"success": false, "message": "Not found"})
		}
	}
}

func (a *fakeAPI) orderQueries() []url.Values {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]url.Values(nil), a.queries["orders"]...)
}

func (a *fakeAPI) patchLog() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.patches...)
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, body any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func testConsoleConfig(t *testing.T, srv *httptest.Server) *config.Console {
	t.Helper()
	return &config.Console{
		APIBaseURL:      srv.URL + "/api/v1",
		APIToken:        "console-token",
		RequestTimeout:  2 * time.Second,
		PageSizeOptions: []int{10, 20},
		DefaultPageSize: 10,
		SearchDebounce:  300 * time.Millisecond,
		ExportDir:       t.TempDir(),
	}
}

func testSession(t *testing.T, srv *httptest.Server) *session {
	t.Helper()
	s, err := newSession(context.Background(), testConsoleConfig(t, srv), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	s.scheduler = listctl.NewManualScheduler()
	return s
}

func TestNewSessionRequiresCredentials(t *testing.T) {
	_, srv := newFakeAPI(t)
	cfg := testConsoleConfig(t, srv)
	cfg.APIToken = ""
	_, err := newSession(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials, got %v", err)
	}
}

func TestNewSessionRejectsBadToken(t *testing.T) {
	_, srv := newFakeAPI(t)
	cfg := testConsoleConfig(t, srv)
	cfg.APIToken = "stale"
	if _, err := newSession(context.Background(), cfg, slog.New(slog.NewTextHandler(io.Discard, nil))); err == nil {
		t.Fatal("expected identity lookup to fail")
	}
}

func TestWhoamiListsAffordancesPerScreen(t *testing.T) {
	_, srv := newFakeAPI(t, permission.OrdersRead, permission.OrdersUpdate, permission.OrdersExport)
	s := testSession(t, srv)

	details, err := whoamiDetails(s)
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	want := []string{
		"staff: Ops <ops@example.com>",
		"protected: false",
		"orders: view, update_status, verify_payment, export",
		"products: none",
		"notifications: select_scope",
	}
	if strings.Join(details, "\n") != strings.Join(want, "\n") {
		t.Fatalf("unexpected details:\n%s", strings.Join(details, "\n"))
	}
}

func TestRunExportAppliesQueryAndWritesFile(t *testing.T) {
	api, srv := newFakeAPI(t, permission.OrdersRead, permission.OrdersExport)
	s := testSession(t, srv)

	res, err := runExport(context.Background(), s, &exportOptions{
		resource: screens.ResourceOrders,
		format:   "xlsx",
		search:   "ada",
		filters:  []string{"status=pending"},
		page:     1,
	}, time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if want := filepath.Join(s.cfg.ExportDir, "orders-20260302-093000.xlsx"); res.path != want {
		t.Fatalf("expected %s, got %s", want, res.path)
	}
	if res.rows != 1 || res.meta.TotalItems != 1 {
		t.Fatalf("unexpected result %+v", res)
	}
	info, err := os.Stat(res.path)
	if err != nil || info.Size() == 0 {
		t.Fatalf("expected non-empty export file, err=%v", err)
	}

	queries := api.orderQueries()
	if len(queries) != 1 {
		t.Fatalf("expected one list request, got %d", len(queries))
	}
	if q := queries[0]; q.Get("search") != "ada" || q.Get("status") != "pending" || q.Get("page") != "1" {
		t.Fatalf("unexpected query %v", q)
	}
}

func TestRunExportRequiresExportPermission(t *testing.T) {
	api, srv := newFakeAPI(t, permission.OrdersRead)
	s := testSession(t, srv)

	_, err := runExport(context.Background(), s, &exportOptions{resource: screens.ResourceOrders, format: "pdf", page: 1}, time.Now())
	if !errors.Is(err, screens.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if n := len(api.orderQueries()); n != 0 {
		t.Fatalf("expected no list requests, got %d", n)
	}
}

func TestRunExportRejectsBadArguments(t *testing.T) {
	_, srv := newFakeAPI(t, permission.OrdersRead, permission.OrdersExport)
	s := testSession(t, srv)

	tests := []struct {
		name string
		opts exportOptions
	}{
		{name: "format", opts: exportOptions{resource: screens.ResourceOrders, format: "csv", page: 1}},
		{name: "filter syntax", opts: exportOptions{resource: screens.ResourceOrders, format: "xlsx", filters: []string{"status"}, page: 1}},
		{name: "filter value", opts: exportOptions{resource: screens.ResourceOrders, format: "xlsx", filters: []string{"status=lost"}, page: 1}},
		{name: "page", opts: exportOptions{resource: screens.ResourceOrders, format: "xlsx", page: 5}},
		{name: "resource", opts: exportOptions{resource: "customers", format: "xlsx", page: 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := runExport(context.Background(), s, &tc.opts, time.Now()); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestPrimeUnreadFillsCounter(t *testing.T) {
	_, srv := newFakeAPI(t, permission.OrdersRead, permission.NotificationsRead)
	s := testSession(t, srv)

	s.primeUnread(context.Background())
	if got := s.unread.Get(); got != 4 {
		t.Fatalf("expected unread 4, got %d", got)
	}
}

func loadedModel(t *testing.T, s *session) *model {
	t.Helper()
	signal := newChangeSignal()
	notices := &noticeBox{signal: signal}
	b, err := s.bind(screens.ResourceOrders, notices, signal.Send)
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	m := newModel(context.Background(), b, notices, signal, s.cfg.ExportDir)
	if err := b.screen.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	m.Update(opDoneMsg{label: "load"})
	return m
}

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestModelNavigationAndSelection(t *testing.T) {
	_, srv := newFakeAPI(t, permission.OrdersRead)
	m := loadedModel(t, testSession(t, srv))

	if len(m.rowIDs) != 2 {
		t.Fatalf("expected two rows, got %v", m.rowIDs)
	}
	m.Update(keyRunes("j"))
	if m.currentID() != "o-2" {
		t.Fatalf("expected cursor on o-2, got %q", m.currentID())
	}
	m.Update(keyRunes("j"))
	if m.cursor != 1 {
		t.Fatalf("expected cursor to stop at the last row, got %d", m.cursor)
	}
	m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	if !m.b.list.IsSelected("o-2") {
		t.Fatal("expected o-2 selected")
	}
	m.Update(keyRunes("a"))
	if got := len(m.b.list.Selected()); got != 2 {
		t.Fatalf("expected page selection, got %d", got)
	}
	m.Update(keyRunes("A"))
	if got := len(m.b.list.Selected()); got != 0 {
		t.Fatalf("expected empty selection, got %d", got)
	}

	view := m.View()
	if !strings.Contains(view, "ORD-1001") || !strings.Contains(view, "page 1/1") {
		t.Fatalf("unexpected view:\n%s", view)
	}
	if strings.Contains(view, "x delete") || strings.Contains(view, "s advance status") {
		t.Fatalf("help lists actions the actor cannot use:\n%s", view)
	}
}

func TestModelSearchModeEditsDraftQuery(t *testing.T) {
	_, srv := newFakeAPI(t, permission.OrdersRead)
	m := loadedModel(t, testSession(t, srv))

	m.Update(keyRunes("/"))
	if !m.searching {
		t.Fatal("expected search mode")
	}
	m.Update(keyRunes("ad"))
	m.Update(keyRunes("x"))
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if got := m.b.list.Query().Search; got != "ad" {
		t.Fatalf("expected draft search %q, got %q", "ad", got)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.searching {
		t.Fatal("expected search mode to end")
	}
	// "x" outside search mode is delete, which this actor cannot use.
	if _, cmd := m.Update(keyRunes("x")); cmd != nil {
		t.Fatal("expected delete to be ignored without permission")
	}
}

func TestModelFilterCycling(t *testing.T) {
	_, srv := newFakeAPI(t, permission.OrdersRead)
	m := loadedModel(t, testSession(t, srv))

	m.Update(keyRunes("f"))
	if got := m.b.list.Query().Filter(screens.OrderFilterStatus); got != domain.OrderStatuses[0] {
		t.Fatalf("expected first status option, got %q", got)
	}
	m.Update(keyRunes("F"))
	m.Update(keyRunes("f"))
	if got := m.b.list.Query().Filter(screens.OrderFilterPaymentMethod); got != domain.PaymentMethodCard {
		t.Fatalf("expected card payment filter, got %q", got)
	}
}

func TestModelRowActionAdvancesStatus(t *testing.T) {
	api, srv := newFakeAPI(t, permission.OrdersRead, permission.OrdersUpdate)
	m := loadedModel(t, testSession(t, srv))

	_, cmd := m.Update(keyRunes("s"))
	if cmd == nil {
		t.Fatal("expected status action to run")
	}
	msg := cmd()
	done, ok := msg.(opDoneMsg)
	if !ok || done.err != nil {
		t.Fatalf("unexpected result %#v", msg)
	}
	m.Update(done)
	if got := api.patchLog(); len(got) != 1 || got[0] != "/orders/o-1/status:processing" {
		t.Fatalf("unexpected patches %v", got)
	}
	if n := m.notices.get(); n == nil || n.Level != listctl.LevelSuccess {
		t.Fatalf("expected success notice, got %+v", n)
	}
}

func TestModelExportWritesIntoExportDir(t *testing.T) {
	_, srv := newFakeAPI(t, permission.OrdersRead, permission.OrdersExport)
	s := testSession(t, srv)
	m := loadedModel(t, s)
	m.now = func() time.Time { return time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC) }

	_, cmd := m.Update(keyRunes("E"))
	if cmd == nil {
		t.Fatal("expected export to run")
	}
	if done := cmd().(opDoneMsg); done.err != nil {
		t.Fatalf("export: %v", done.err)
	}
	path := filepath.Join(s.cfg.ExportDir, export.FileName(screens.ResourceOrders, export.FormatPDF, m.now()))
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected %s: %v", path, err)
	}
}
