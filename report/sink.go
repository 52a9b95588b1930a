// Package report persists page summaries and hands them to the logging
// collaborator, escalating flagged pages when strict mode is on.
package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/lukemcguire/linkaudit/result"
)

// ErrStrictViolation is returned for a page with flagged links while strict
// mode is active. The report has already been written and logged.
var ErrStrictViolation = errors.New("broken links detected, see logs for details")

// Sink writes summaries to per-page artifacts under a results directory.
type Sink struct {
	dir    string
	logger Logger
	strict func() bool
	log    *zap.Logger
}

// NewSink creates a Sink. strict is consulted once per report; nil means
// strict mode is never active. A nil log discards diagnostics.
func NewSink(dir string, logger Logger, strict func() bool, log *zap.Logger) *Sink {
	if strict == nil {
		strict = func() bool { return false }
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Sink{dir: dir, logger: logger, strict: strict, log: log}
}

// Path returns where the report for page is written.
func (s *Sink) Path(page result.Page) string {
	return filepath.Join(s.dir, page.Report)
}

// Report renders the summary for audit, overwrites the page's artifact with
// it and logs it once. In strict mode a page with flagged links then fails
// with ErrStrictViolation.
func (s *Sink) Report(ctx context.Context, audit *result.AuditResult) (string, error) {
	summary := result.Summary(audit)
	path := s.Path(audit.Page)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return summary, fmt.Errorf("create results directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(summary), 0o644); err != nil {
		return summary, fmt.Errorf("write report %s: %w", path, err)
	}
	s.log.Debug("Report written", zap.String("page", audit.Page.Source), zap.String("path", path))

	if s.logger != nil {
		if err := s.logger.Log(WithPage(ctx, audit.Page.Source), summary); err != nil {
			return summary, fmt.Errorf("log summary: %w", err)
		}
	}

	if s.strict() && len(audit.Flagged) > 0 {
		return summary, ErrStrictViolation
	}
	return summary, nil
}
