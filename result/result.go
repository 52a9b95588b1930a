// Package result holds the data model shared by the auditor, the report
// sink and the output writers: page descriptors, probe outcomes, verdicts
// and the per-page and per-suite aggregates.
package result

import "time"

// Page identifies one document to audit and the artifact its report is
// written to.
type Page struct {
	Source string `json:"source"` // Document path, relative to the site root
	Report string `json:"report"` // Report file name, relative to the results directory
}

// LinkResult is a classified link that made it into a report.
type LinkResult struct {
	URL           string        `json:"url"`                  // The href as it appeared in the page
	Verdict       Verdict       `json:"verdict"`              // Broken or Unreachable
	StatusCode    int           `json:"status_code"`          // HTTP status code (0 if unreachable)
	Error         string        `json:"error,omitempty"`      // Transport error for unreachable links
	ErrorCategory ErrorCategory `json:"error_type,omitempty"` // Refinement of the transport error
	Index         int           `json:"-"`                    // Position among the page's link candidates
}

// AuditStats contains aggregate statistics for one page audit.
type AuditStats struct {
	TotalChecked int           // Link candidates probed
	Redirects    int           // Candidates that answered with a 3xx
	BrokenCount  int           // Flagged as broken
	Unreachable  int           // Flagged as unreachable
	Duration     time.Duration // Wall time of the audit
}

// AuditResult is the finalized outcome of auditing a single page.
type AuditResult struct {
	Page    Page
	URL     string       // Resolved location the page was loaded from
	Flagged []LinkResult // Broken links first, then unreachable ones, each in document order
	Stats   AuditStats
}

// PageResult pairs a page with its audit, rendered summary and any
// page-level failure.
type PageResult struct {
	Page    Page
	Audit   *AuditResult // nil when the document could not be loaded
	Summary string
	Err     error
}

// SuiteStats contains totals across every audited page.
type SuiteStats struct {
	Pages        int
	FailedPages  int
	TotalChecked int
	FlaggedCount int
	Duration     time.Duration
}

// SuiteResult is the complete output of a suite run.
type SuiteResult struct {
	Pages []PageResult
	Stats SuiteStats
}

// HasFlagged reports whether any page of the suite has flagged links.
func (s *SuiteResult) HasFlagged() bool {
	if s == nil {
		return false
	}
	for _, page := range s.Pages {
		if page.Audit != nil && len(page.Audit.Flagged) > 0 {
			return true
		}
	}
	return false
}
