// Package suite drives an audit over a fixed list of pages, one
// independent unit per page.
package suite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lukemcguire/linkaudit/crawler"
	"github.com/lukemcguire/linkaudit/result"
)

// DefaultPages is the page list audited on every run.
var DefaultPages = []result.Page{
	{Source: "grammar.html", Report: "Grammar_brokenLinks.txt"},
	{Source: "listening.html", Report: "Listening_brokenLinks.txt"},
	{Source: "reading.html", Report: "Reading_brokenLinks.txt"},
	{Source: "other.html", Report: "OtherTopics_brokenLinks.txt"},
	{Source: "test-prep.html", Report: "TestPrep_brokenLinks.txt"},
	{Source: "vocabulary.html", Report: "Vocabulary_brokenLinks.txt"},
	{Source: "writing.html", Report: "Writing_brokenLinks.txt"},
}

// Auditor audits a single page.
type Auditor interface {
	Audit(ctx context.Context, page result.Page) (*result.AuditResult, error)
}

// Reporter persists and logs the summary of an audit.
type Reporter interface {
	Report(ctx context.Context, audit *result.AuditResult) (string, error)
}

// Config holds driver configuration.
type Config struct {
	Pages    []result.Page // Pages to audit (default DefaultPages)
	Parallel int           // Pages audited at once (default 1)
}

// Driver runs the audit and report cycle for every page of its list.
type Driver struct {
	auditor    Auditor
	reporter   Reporter
	cfg        Config
	progressCh chan<- crawler.Event
	log        *zap.Logger
}

// New creates a Driver. The progressCh parameter is optional; pass nil to
// disable the per-page Reported events.
func New(auditor Auditor, reporter Reporter, cfg Config, progressCh chan<- crawler.Event, log *zap.Logger) *Driver {
	if len(cfg.Pages) == 0 {
		cfg.Pages = DefaultPages
	}
	if cfg.Parallel <= 0 {
		cfg.Parallel = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Driver{
		auditor:    auditor,
		reporter:   reporter,
		cfg:        cfg,
		progressCh: progressCh,
		log:        log,
	}
}

// Run audits every page. A page that fails records its error in its
// PageResult and does not stop the others. The returned error joins the
// failures of all pages and is nil when every page passed.
func (d *Driver) Run(ctx context.Context) (*result.SuiteResult, error) {
	start := time.Now()
	res := &result.SuiteResult{Pages: make([]result.PageResult, len(d.cfg.Pages))}

	var group errgroup.Group
	group.SetLimit(d.cfg.Parallel)
	for i, page := range d.cfg.Pages {
		group.Go(func() error {
			res.Pages[i] = d.runPage(ctx, page)
			return nil
		})
	}
	_ = group.Wait()

	var errs []error
	for _, page := range res.Pages {
		res.Stats.Pages++
		if page.Audit != nil {
			res.Stats.TotalChecked += page.Audit.Stats.TotalChecked
			res.Stats.FlaggedCount += len(page.Audit.Flagged)
		}
		if page.Err != nil {
			res.Stats.FailedPages++
			errs = append(errs, fmt.Errorf("%s: %w", page.Page.Source, page.Err))
		}
	}
	res.Stats.Duration = time.Since(start)

	d.log.Info("Suite finished",
		zap.Int("pages", res.Stats.Pages),
		zap.Int("failed_pages", res.Stats.FailedPages),
		zap.Int("checked", res.Stats.TotalChecked),
		zap.Int("flagged", res.Stats.FlaggedCount),
		zap.Duration("duration", res.Stats.Duration),
	)

	return res, errors.Join(errs...)
}

// runPage audits and reports one page.
func (d *Driver) runPage(ctx context.Context, page result.Page) result.PageResult {
	pr := result.PageResult{Page: page}

	audit, err := d.auditor.Audit(ctx, page)
	if err != nil {
		d.log.Error("Audit failed", zap.String("page", page.Source), zap.Error(err))
		pr.Err = err
		return pr
	}
	pr.Audit = audit

	pr.Summary, pr.Err = d.reporter.Report(ctx, audit)
	if pr.Err != nil {
		d.log.Error("Page failed", zap.String("page", page.Source), zap.Error(pr.Err))
	}

	if d.progressCh != nil {
		evt := crawler.Event{
			Page:    page.Source,
			Phase:   crawler.PhaseReported,
			Checked: audit.Stats.TotalChecked,
			Flagged: len(audit.Flagged),
		}
		select {
		case d.progressCh <- evt:
		case <-ctx.Done():
		}
	}
	return pr
}
