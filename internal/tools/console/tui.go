package console

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sandeepkv93/storefront-admin-console/internal/export"
	"github.com/sandeepkv93/storefront-admin-console/internal/listctl"
	"github.com/sandeepkv93/storefront-admin-console/internal/present"
	"github.com/sandeepkv93/storefront-admin-console/internal/screens"
)

const defaultColumnWidth = 14

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Underline(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	focusedFilter = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
)

type changedMsg struct{}

type opDoneMsg struct {
	label string
	err   error
}

// changeSignal coalesces controller and counter callbacks into at most one
// pending redraw. Send never blocks.
type changeSignal chan struct{}

func newChangeSignal() changeSignal { return make(changeSignal, 1) }

func (c changeSignal) Send() {
	select {
	case c <- struct{}{}:
	default:
	}
}

func (c changeSignal) wait() tea.Cmd {
	return func() tea.Msg {
		<-c
		return changedMsg{}
	}
}

// noticeBox keeps the latest notice for the status line.
type noticeBox struct {
	mu     sync.Mutex
	notice *listctl.Notice
	signal changeSignal
}

func (b *noticeBox) Notify(_ context.Context, n listctl.Notice) {
	b.mu.Lock()
	b.notice = &n
	b.mu.Unlock()
	b.signal.Send()
}

func (b *noticeBox) get() *listctl.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.notice
}

type model struct {
	ctx       context.Context
	b         *binding
	notices   *noticeBox
	signal    changeSignal
	exportDir string
	now       func() time.Time

	table       export.Table
	rowIDs      []string
	cursor      int
	searching   bool
	search      string
	filterFocus int
	busy        string
	lastErr     error
	unsubscribe func()
}

func newModel(ctx context.Context, b *binding, notices *noticeBox, signal changeSignal, exportDir string) *model {
	m := &model{
		ctx:       ctx,
		b:         b,
		notices:   notices,
		signal:    signal,
		exportDir: exportDir,
		now:       time.Now,
		search:    b.list.Query().Search,
	}
	if b.unread != nil {
		m.unsubscribe = b.unread.Subscribe(func(int64) { signal.Send() })
	}
	m.refreshRows()
	return m
}

func (m *model) Init() tea.Cmd {
	return tea.Batch(m.signal.wait(), m.run("load", m.b.screen.Load))
}

func (m *model) run(label string, fn func(ctx context.Context) error) tea.Cmd {
	m.busy = label
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{label: label, err: fn(ctx)}
	}
}

func (m *model) refreshRows() {
	table, _, err := m.b.screen.ExportTable(m.ctx)
	if err != nil {
		m.lastErr = err
		return
	}
	m.table = table
	m.rowIDs = m.b.ids()
	if m.cursor >= len(m.rowIDs) {
		m.cursor = max(len(m.rowIDs)-1, 0)
	}
}

func (m *model) currentID() string {
	if m.cursor < 0 || m.cursor >= len(m.rowIDs) {
		return ""
	}
	return m.rowIDs[m.cursor]
}

// optionFilters are the filters the console can cycle with a key press.
func (m *model) optionFilters() []screens.FilterSpec {
	var out []screens.FilterSpec
	for _, f := range m.b.screen.Filters() {
		if len(f.Options) > 0 {
			out = append(out, f)
		}
	}
	return out
}

func (m *model) cycleFilter() error {
	filters := m.optionFilters()
	if len(filters) == 0 {
		return nil
	}
	f := filters[m.filterFocus%len(filters)]
	values := append([]string{""}, f.Options...)
	current := m.b.list.Query().Filter(f.Key)
	next := values[0]
	for i, v := range values {
		if v == current {
			next = values[(i+1)%len(values)]
			break
		}
	}
	return m.b.screen.SetFilter(f.Key, next)
}

func (m *model) exportTo(format export.Format) tea.Cmd {
	path := filepath.Join(m.exportDir, export.FileName(m.b.screen.Resource(), format, m.now()))
	return m.run("export", func(ctx context.Context) error {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := m.b.screen.Export(ctx, f, format); err != nil {
			_ = f.Close()
			_ = os.Remove(path)
			return err
		}
		return f.Close()
	})
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case changedMsg:
		m.refreshRows()
		return m, m.signal.wait()
	case opDoneMsg:
		m.busy = ""
		m.lastErr = nil
		switch {
		case msg.err == nil, errors.Is(msg.err, listctl.ErrSuperseded):
		case errors.Is(msg.err, screens.ErrUnavailable):
			m.lastErr = fmt.Errorf("%s: not permitted", msg.label)
		default:
			m.lastErr = fmt.Errorf("%s: %w", msg.label, msg.err)
		}
		m.refreshRows()
		return m, nil
	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m *model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter, tea.KeyEsc:
		m.searching = false
		return m, nil
	case tea.KeyBackspace:
		if r := []rune(m.search); len(r) > 0 {
			m.search = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.search += " "
	case tea.KeyRunes:
		m.search += string(msg.Runes)
	default:
		return m, nil
	}
	m.b.list.SetSearchTerm(m.search)
	return m, nil
}

func (m *model) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "q", "ctrl+c":
		if m.unsubscribe != nil {
			m.unsubscribe()
		}
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.rowIDs)-1 {
			m.cursor++
		}
	case "right", "n":
		m.b.list.NextPage()
	case "left", "p":
		m.b.list.PrevPage()
	case "/":
		m.searching = true
	case "f":
		m.lastErr = m.cycleFilter()
	case "F":
		if n := len(m.optionFilters()); n > 0 {
			m.filterFocus = (m.filterFocus + 1) % n
		}
	case " ":
		if id := m.currentID(); id != "" {
			m.b.list.Toggle(id)
		}
	case "a":
		m.b.list.SelectAllOnPage(true)
	case "A":
		m.b.list.ClearSelection()
	case "r":
		return m, m.run("refresh", m.b.screen.Load)
	case "x":
		if id := m.currentID(); id != "" && m.b.screen.Can(screens.AffordanceDelete) {
			return m, m.run("delete", func(ctx context.Context) error { return m.b.screen.Delete(ctx, id) })
		}
	case "X":
		if m.b.screen.Can(screens.AffordanceBulkDelete) && len(m.b.list.Selected()) > 0 {
			return m, m.run("bulk delete", func(ctx context.Context) error {
				_, err := m.b.screen.BulkDelete(ctx)
				return err
			})
		}
	case "e", "E":
		if m.b.screen.Can(screens.AffordanceExport) {
			format := export.FormatXLSX
			if key == "E" {
				format = export.FormatPDF
			}
			return m, m.exportTo(format)
		}
	default:
		for _, a := range m.b.actions {
			if a.key == key && a.allowed {
				id := m.currentID()
				run := a.run
				return m, m.run(a.label, func(ctx context.Context) error { return run(ctx, id) })
			}
		}
	}
	return m, nil
}

func (m *model) View() string {
	var b strings.Builder
	info := m.b.list.PageInfo()
	q := m.b.list.Query()

	title := titleStyle.Render(present.Humanize(m.b.screen.Resource()))
	fmt.Fprintf(&b, "%s  %s  page %d/%d  %d items", title, mutedStyle.Render(m.b.list.View().String()), max(info.CurrentPage, 1), max(info.TotalPages, 1), info.TotalItems)
	if m.b.unread != nil {
		fmt.Fprintf(&b, "  unread %d", m.b.unread.Get())
	}
	if m.busy != "" {
		fmt.Fprintf(&b, "  %s", mutedStyle.Render(m.busy+"..."))
	}
	b.WriteString("\n")

	search := q.Search
	if m.searching {
		search = m.search + "_"
	}
	fmt.Fprintf(&b, "search: %s\n", search)
	b.WriteString(m.filterLine(q))
	b.WriteString("\n\n")

	b.WriteString(m.tableView())

	if n := m.notices.get(); n != nil {
		style := successStyle
		if n.Level == listctl.LevelError {
			style = errorStyle
		}
		b.WriteString("\n" + style.Render(n.Message))
	}
	if m.lastErr != nil {
		b.WriteString("\n" + errorStyle.Render(m.lastErr.Error()))
	}
	b.WriteString("\n" + mutedStyle.Render(m.help()) + "\n")
	return b.String()
}

func (m *model) filterLine(q listctl.Query) string {
	filters := m.optionFilters()
	parts := make([]string, 0, len(filters))
	for i, f := range filters {
		v := q.Filter(f.Key)
		if v == "" {
			v = listctl.FilterAll
		}
		part := f.Label + "=" + v
		if i == m.filterFocus%max(len(filters), 1) {
			part = focusedFilter.Render(part)
		}
		parts = append(parts, part)
	}
	return "filters: " + strings.Join(parts, "  ")
}

func (m *model) tableView() string {
	if len(m.table.Columns) == 0 {
		return ""
	}
	var b strings.Builder
	widths := make([]int, len(m.table.Columns))
	head := make([]string, len(m.table.Columns))
	for i, c := range m.table.Columns {
		widths[i] = defaultColumnWidth
		if c.Width >= 4 {
			widths[i] = int(c.Width)
		}
		head[i] = pad(c.Title, widths[i])
	}
	b.WriteString("      " + headerStyle.Render(strings.Join(head, " ")) + "\n")
	if len(m.table.Rows) == 0 {
		b.WriteString(mutedStyle.Render("      no results") + "\n")
		return b.String()
	}
	for r, row := range m.table.Rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = pad(export.CellText(v), widths[i])
		}
		mark := "[ ]"
		if r < len(m.rowIDs) && m.b.list.IsSelected(m.rowIDs[r]) {
			mark = "[x]"
		}
		line := strings.Join(cells, " ")
		if r == m.cursor {
			b.WriteString(cursorStyle.Render("> "+mark+" "+line) + "\n")
			continue
		}
		b.WriteString("  " + mark + " " + line + "\n")
	}
	return b.String()
}

func (m *model) help() string {
	keys := []string{"j/k move", "n/p page", "/ search", "f filter", "F next filter", "space select", "a all", "A none", "r refresh"}
	if m.b.screen.Can(screens.AffordanceDelete) {
		keys = append(keys, "x delete")
	}
	if m.b.screen.Can(screens.AffordanceBulkDelete) {
		keys = append(keys, "X delete selected")
	}
	if m.b.screen.Can(screens.AffordanceExport) {
		keys = append(keys, "e xlsx", "E pdf")
	}
	for _, a := range m.b.actions {
		if a.allowed {
			keys = append(keys, a.key+" "+a.label)
		}
	}
	return strings.Join(append(keys, "q quit"), " | ")
}

func pad(s string, width int) string {
	s = present.Truncate(s, width)
	if n := len([]rune(s)); n < width {
		s += strings.Repeat(" ", width-n)
	}
	return s
}

// runTUI drives one resource screen until the operator quits.
func runTUI(ctx context.Context, s *session, resource string) error {
	signal := newChangeSignal()
	notices := &noticeBox{signal: signal}
	b, err := s.bind(resource, notices, signal.Send)
	if err != nil {
		return err
	}
	if resource != screens.ResourceNotifications {
		s.primeUnread(ctx)
	}
	_, err = tea.NewProgram(newModel(ctx, b, notices, signal, s.cfg.ExportDir), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
