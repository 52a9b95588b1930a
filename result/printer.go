package result

import (
	"fmt"
	"io"
)

// PrintResults writes each page's summary followed by suite totals to w.
func PrintResults(w io.Writer, res *SuiteResult) {
	writef := func(format string, a ...any) { _, _ = fmt.Fprintf(w, format, a...) }

	for i, page := range res.Pages {
		writef("== %s\n", page.Page.Source)
		if page.Audit != nil {
			writef("%s\n", page.Summary)
		}
		if page.Err != nil {
			writef("Error: %v\n", page.Err)
		}
		if i < len(res.Pages)-1 {
			writef("\n")
		}
	}
	writef("Audited %d pages, checked %d links, flagged %d (%d pages failed)\n",
		res.Stats.Pages, res.Stats.TotalChecked, res.Stats.FlaggedCount, res.Stats.FailedPages)
}
