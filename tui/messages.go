package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lukemcguire/linkaudit/crawler"
	"github.com/lukemcguire/linkaudit/result"
)

// ProgressMsg carries one progress event from the running audit.
type ProgressMsg struct {
	Event crawler.Event
}

// AuditDoneMsg signals the suite has completed.
type AuditDoneMsg struct {
	Result *result.SuiteResult
	Err    error
}

// waitForProgress returns a tea.Cmd that reads one event from the progress
// channel. A closed channel yields no message; completion is reported by
// startAudit.
func waitForProgress(ch <-chan crawler.Event) tea.Cmd {
	return func() tea.Msg {
		evt, ok := <-ch
		if !ok {
			return nil
		}
		return ProgressMsg{Event: evt}
	}
}
