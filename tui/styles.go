package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/lukemcguire/linkaudit/result"
)

var (
	titleStyle       = lipgloss.NewStyle().Bold(true)
	successStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	errorStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	headerStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	pageStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	dimStyle         = lipgloss.NewStyle().Faint(true)
	urlStyle         = lipgloss.NewStyle()
	statusErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)

// RenderSummary produces a Lip Gloss styled summary of a suite run, one
// section per page in suite order.
func RenderSummary(res *result.SuiteResult) string {
	if res == nil {
		return errorStyle.Render("No results available.")
	}

	var builder strings.Builder

	for _, page := range res.Pages {
		builder.WriteString(pageStyle.Render("## " + page.Page.Source))
		builder.WriteString("\n")
		builder.WriteString(renderPage(page))
	}

	elapsed := res.Stats.Duration.Round(time.Millisecond)
	style := titleStyle
	var total string
	if res.HasFlagged() {
		total = fmt.Sprintf("Flagged %d links out of %d checked on %d pages (%s)",
			res.Stats.FlaggedCount, res.Stats.TotalChecked, res.Stats.Pages, elapsed)
	} else {
		style = successStyle
		total = fmt.Sprintf("Checked %d links on %d pages, none flagged (%s)",
			res.Stats.TotalChecked, res.Stats.Pages, elapsed)
	}
	if res.Stats.FailedPages > 0 {
		total += fmt.Sprintf(", %d pages failed", res.Stats.FailedPages)
	}
	builder.WriteString(style.Render(total))
	builder.WriteString("\n")

	return builder.String()
}

// renderPage renders one page section: a success line, a table of flagged
// links, and the page failure if there was one.
func renderPage(page result.PageResult) string {
	var builder strings.Builder

	switch {
	case page.Audit == nil:
	case len(page.Audit.Flagged) == 0:
		builder.WriteString(successStyle.Render(result.NoBrokenLinks))
		builder.WriteString("\n")
		builder.WriteString(dimStyle.Render(fmt.Sprintf(
			"Checked %d links in %s",
			page.Audit.Stats.TotalChecked,
			page.Audit.Stats.Duration.Round(time.Millisecond),
		)))
		builder.WriteString("\n")
	default:
		rows := make([][]string, 0, len(page.Audit.Flagged))
		for _, link := range page.Audit.Flagged {
			status := result.UnreachableMarker
			detail := ""
			if link.Verdict == result.VerdictBroken {
				status = strconv.Itoa(link.StatusCode)
			} else {
				detail = result.FormatCategory(link.ErrorCategory)
			}
			rows = append(rows, []string{link.URL, status, detail})
		}

		pageTable := table.New().
			Border(lipgloss.RoundedBorder()).
			Headers("URL", "Status", "Cause").
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == table.HeaderRow {
					return headerStyle
				}
				if col == 1 {
					return statusErrorStyle
				}
				return urlStyle
			}).
			Rows(rows...)

		builder.WriteString(pageTable.Render())
		builder.WriteString("\n")
	}

	if page.Err != nil {
		builder.WriteString(errorStyle.Render("Error: " + page.Err.Error()))
		builder.WriteString("\n")
	}
	builder.WriteString("\n")
	return builder.String()
}
