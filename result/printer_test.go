package result

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestPrintResults_AllClean(t *testing.T) {
	var buf bytes.Buffer
	r := &SuiteResult{
		Pages: []PageResult{
			{Page: Page{Source: "grammar.html"}, Audit: &AuditResult{}, Summary: NoBrokenLinks},
		},
		Stats: SuiteStats{Pages: 1, TotalChecked: 10},
	}

	PrintResults(&buf, r)

	got := buf.String()
	want := "== grammar.html\nNo broken links detected.\n" +
		"Audited 1 pages, checked 10 links, flagged 0 (0 pages failed)\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestPrintResults_WithFailures(t *testing.T) {
	var buf bytes.Buffer
	r := &SuiteResult{
		Pages: []PageResult{
			{
				Page:    Page{Source: "grammar.html"},
				Audit:   &AuditResult{Flagged: []LinkResult{{URL: "/dead", Verdict: VerdictBroken, StatusCode: 404}}},
				Summary: "Broken links detected:\n/dead (404)",
			},
			{
				Page: Page{Source: "reading.html"},
				Err:  errors.New("load document: 404 Not Found"),
			},
		},
		Stats: SuiteStats{Pages: 2, FailedPages: 1, TotalChecked: 3, FlaggedCount: 1},
	}

	PrintResults(&buf, r)

	got := buf.String()
	for _, want := range []string{
		"== grammar.html\nBroken links detected:\n/dead (404)\n",
		"== reading.html\nError: load document: 404 Not Found\n",
		"Audited 2 pages, checked 3 links, flagged 1 (1 pages failed)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestSuiteResultHasFlagged(t *testing.T) {
	var nilSuite *SuiteResult
	if nilSuite.HasFlagged() {
		t.Error("nil suite should not report flagged links")
	}
	if (&SuiteResult{Pages: []PageResult{{Audit: &AuditResult{}}}}).HasFlagged() {
		t.Error("clean suite should not report flagged links")
	}
	if !sampleSuite().HasFlagged() {
		t.Error("suite with broken links should report flagged links")
	}
}
