package result

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// flaggedRecord is one flagged link flattened with the page it was found on.
type flaggedRecord struct {
	Page string `json:"page"`
	LinkResult
}

// flatten lists every flagged link of the suite, page by page.
func flatten(res *SuiteResult) []flaggedRecord {
	records := []flaggedRecord{}
	if res == nil {
		return records
	}
	for _, page := range res.Pages {
		if page.Audit == nil {
			continue
		}
		for _, link := range page.Audit.Flagged {
			records = append(records, flaggedRecord{Page: page.Page.Source, LinkResult: link})
		}
	}
	return records
}

// WriteJSON writes the flagged links of the suite as a formatted JSON array.
// Uses flat array format (not wrapped with metadata) for simpler CI integration.
func WriteJSON(w io.Writer, res *SuiteResult) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(flatten(res)); err != nil {
		return fmt.Errorf("write json output: %w", err)
	}
	return nil
}

// WriteCSV writes the flagged links of the suite as CSV.
// Always includes a header row, even if nothing was flagged.
// Column order: page, url, verdict, status_code, error_type
func WriteCSV(w io.Writer, res *SuiteResult) error {
	cw := csv.NewWriter(w)

	header := []string{"page", "url", "verdict", "status_code", "error_type"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, rec := range flatten(res) {
		row := []string{
			rec.Page,
			rec.URL,
			string(rec.Verdict),
			statusCodeStr(rec.StatusCode),
			string(rec.ErrorCategory),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv record for %s: %w", rec.URL, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv output: %w", err)
	}
	return nil
}

// statusCodeStr converts an HTTP status code to a string.
// Returns empty string for 0 (no HTTP status).
func statusCodeStr(code int) string {
	if code == 0 {
		return ""
	}
	return strconv.Itoa(code)
}
