package result

import (
	"strconv"
	"strings"
)

const (
	// NoBrokenLinks is the whole report of a page with nothing flagged.
	NoBrokenLinks = "No broken links detected."

	// BrokenLinksHeader opens the report of a page with flagged links.
	BrokenLinksHeader = "Broken links detected:"

	// UnreachableMarker replaces the status code of unreachable links.
	UnreachableMarker = "no response / blocked"
)

// Summary renders the report text for an audit. It depends on nothing but
// the audit, so equal audits always render byte-identical reports.
func Summary(audit *AuditResult) string {
	if audit == nil || len(audit.Flagged) == 0 {
		return NoBrokenLinks
	}

	var builder strings.Builder
	builder.WriteString(BrokenLinksHeader)
	for _, link := range audit.Flagged {
		builder.WriteString("\n")
		builder.WriteString(FormatEntry(link))
	}
	return builder.String()
}

// FormatEntry renders one flagged link as "<url> (<detail>)".
func FormatEntry(link LinkResult) string {
	detail := UnreachableMarker
	if link.Verdict == VerdictBroken {
		detail = strconv.Itoa(link.StatusCode)
	}
	return link.URL + " (" + detail + ")"
}
