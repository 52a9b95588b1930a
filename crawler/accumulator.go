package crawler

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/lukemcguire/linkaudit/result"
)

// accumulator collects classified links for one page audit. Probe
// goroutines record into it concurrently; it is discarded after finalize.
type accumulator struct {
	mu          sync.Mutex
	broken      []result.LinkResult
	unreachable []result.LinkResult
	checked     int
	redirects   int
	pending     int
}

// launch counts a probe that has been started but not recorded.
func (acc *accumulator) launch() {
	acc.mu.Lock()
	acc.pending++
	acc.mu.Unlock()
}

// record stores the verdict for the link at position index and returns
// the page counters after the update.
func (acc *accumulator) record(index int, link string, outcome result.Outcome, verdict result.Verdict) Event {
	acc.mu.Lock()
	defer acc.mu.Unlock()

	acc.checked++
	acc.pending--

	switch verdict {
	case result.VerdictRedirect:
		acc.redirects++
	case result.VerdictBroken:
		acc.broken = append(acc.broken, result.LinkResult{
			URL:        link,
			Verdict:    verdict,
			StatusCode: outcome.Status,
			Index:      index,
		})
	case result.VerdictUnreachable:
		entry := result.LinkResult{
			URL:           link,
			Verdict:       verdict,
			ErrorCategory: result.CategorizeError(outcome.Err),
			Index:         index,
		}
		if outcome.Err != nil {
			entry.Error = outcome.Err.Error()
		}
		acc.unreachable = append(acc.unreachable, entry)
	}

	return Event{
		Checked: acc.checked,
		Flagged: len(acc.broken) + len(acc.unreachable),
		Pending: acc.pending,
	}
}

// finalize builds the audit result. Broken links come before unreachable
// ones and each group is in document order, whatever order probes finished.
func (acc *accumulator) finalize(page result.Page, pageURL string, elapsed time.Duration) *result.AuditResult {
	acc.mu.Lock()
	defer acc.mu.Unlock()

	byIndex := func(a, b result.LinkResult) int { return cmp.Compare(a.Index, b.Index) }
	slices.SortFunc(acc.broken, byIndex)
	slices.SortFunc(acc.unreachable, byIndex)

	flagged := make([]result.LinkResult, 0, len(acc.broken)+len(acc.unreachable))
	flagged = append(flagged, acc.broken...)
	flagged = append(flagged, acc.unreachable...)

	return &result.AuditResult{
		Page:    page,
		URL:     pageURL,
		Flagged: flagged,
		Stats: result.AuditStats{
			TotalChecked: acc.checked,
			Redirects:    acc.redirects,
			BrokenCount:  len(acc.broken),
			Unreachable:  len(acc.unreachable),
			Duration:     elapsed,
		},
	}
}
