package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sandeepkv93/storefront-admin-console/internal/observability"
	"github.com/sandeepkv93/storefront-admin-console/internal/tools/common"
)

// Action is one tool step. Details are printed line by line on success and
// after the error on failure.
type Action func(ctx context.Context) ([]string, error)

type actionMsg struct {
	details []string
	err     error
}

type tickMsg time.Time

type model struct {
	ctx     context.Context
	title   string
	started time.Time
	elapsed time.Duration
	details []string
	err     error
	done    bool
	action  Action
}

func tick() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tick(), func() tea.Msg {
		details, err := m.action(m.ctx)
		return actionMsg{details: details, err: err}
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.err = context.Canceled
			m.done = true
			return m, tea.Quit
		}
	case tickMsg:
		if m.done {
			return m, nil
		}
		m.elapsed = time.Time(msg).Sub(m.started).Truncate(time.Second)
		return m, tick()
	case actionMsg:
		m.details = msg.details
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63")).Render(m.title)
	if !m.done {
		return fmt.Sprintf("%s\n\nRunning... %s\n", title, m.elapsed)
	}
	var b strings.Builder
	b.WriteString(title + "\n")
	if m.err != nil {
		failed := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("FAILED")
		fmt.Fprintf(&b, "%s: %v\n", failed, m.err)
	} else {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("OK") + "\n")
	}
	for _, d := range m.details {
		b.WriteString("- " + d + "\n")
	}
	return b.String()
}

// Run shows a progress view while action runs and leaves its result on screen.
func Run(ctx context.Context, title string, action Action) ([]string, error) {
	m := model{ctx: ctx, title: title, started: time.Now(), action: action}
	final, err := tea.NewProgram(m, tea.WithContext(ctx)).Run()
	if err != nil {
		return nil, err
	}
	res := final.(model)
	return res.details, res.err
}

// Execute runs action with a timeout. In ci mode it skips the TUI and prints
// a JSON result to stdout instead. The title is "<tool> <command>" and labels the run metrics.
func Execute(ci bool, title string, timeout time.Duration, action Action) (details []string, err error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	started := time.Now()
	tool, command, _ := strings.Cut(title, " ")
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		observability.RecordToolCommandRun(ctx, tool, command, status)
		observability.RecordToolCommandDuration(ctx, tool, command, status, time.Since(started))
	}()
	if !ci {
		return Run(ctx, title, action)
	}
	details, err = action(ctx)
	common.PrintCIResult(common.NewCIResult(title, details, err, time.Since(started)))
	return details, err
}
