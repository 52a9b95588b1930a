// Package tui provides the Bubble Tea terminal UI for linkaudit,
// displaying live per-page progress and a styled summary of the suite.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lukemcguire/linkaudit/crawler"
	"github.com/lukemcguire/linkaudit/result"
)

// RunFunc runs the whole suite.
type RunFunc func(ctx context.Context) (*result.SuiteResult, error)

// Model is the Bubble Tea model for the audit TUI.
type Model struct {
	ctx        context.Context
	cancel     context.CancelFunc
	run        RunFunc
	spinner    spinner.Model
	progressCh <-chan crawler.Event

	page     string
	phase    crawler.Phase
	current  string
	checked  int
	flagged  int
	reported int
	quitting bool
	done     bool
	result   *result.SuiteResult
	err      error
	width    int
}

// NewModel creates a TUI model that runs run and follows progressCh.
func NewModel(ctx context.Context, cancel context.CancelFunc, run RunFunc, progressCh <-chan crawler.Event) Model {
	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return Model{
		ctx:        ctx,
		cancel:     cancel,
		run:        run,
		spinner:    spin,
		progressCh: progressCh,
	}
}

// Init starts the spinner, the suite, and the progress listener concurrently.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startAudit(), waitForProgress(m.progressCh))
}

// startAudit returns a tea.Cmd that runs the suite and sends AuditDoneMsg.
func (m Model) startAudit() tea.Cmd {
	return func() tea.Msg {
		res, err := m.run(m.ctx)
		return AuditDoneMsg{Result: res, Err: err}
	}
}

// Update handles messages from the Bubble Tea runtime.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			m.cancel()
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case ProgressMsg:
		m.apply(msg.Event)
		return m, waitForProgress(m.progressCh)

	case AuditDoneMsg:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// apply folds a progress event into the counters of the page on screen.
func (m *Model) apply(evt crawler.Event) {
	if evt.Phase == crawler.PhaseReported {
		m.reported++
		return
	}
	if evt.Page != m.page {
		m.page = evt.Page
		m.checked, m.flagged = 0, 0
		m.current = ""
	}
	m.phase = evt.Phase
	if evt.Phase == crawler.PhaseProbing {
		m.checked = evt.Checked
		m.flagged = evt.Flagged
		m.current = evt.URL
	}
}

// View renders the current TUI state.
func (m Model) View() string {
	if m.done && m.result != nil {
		return RenderSummary(m.result)
	}
	if m.done && m.err != nil {
		return errorStyle.Render("Error: "+m.err.Error()) + "\n"
	}
	page := m.page
	if page == "" {
		page = "..."
	}
	return fmt.Sprintf("%s Auditing %s (%s) checked %d, flagged %d, pages done %d\n%s\n",
		m.spinner.View(), page, m.phase, m.checked, m.flagged, m.reported,
		dimStyle.Render("  "+m.current))
}

// GetResult returns the suite result for output formatting.
func (m Model) GetResult() *result.SuiteResult {
	return m.result
}

// Err returns the error the suite finished with.
func (m Model) Err() error {
	return m.err
}
