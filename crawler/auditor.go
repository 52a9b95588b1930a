// Package crawler audits static HTML pages for broken links. For each page
// it loads the document, extracts anchor targets, probes every target
// concurrently and classifies the outcomes once all probes have settled.
package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lukemcguire/linkaudit/result"
	"github.com/lukemcguire/linkaudit/urlutil"
)

// Config holds auditor configuration.
type Config struct {
	SiteURL      string        // Root the page sources resolve against
	ProbeTimeout time.Duration // Per-request timeout (default 60s)
	MaxInFlight  int           // Concurrent probes per page (0 = unbounded)
	RateLimit    int           // Probe requests per second (0 = unlimited)
	TargetRTT    time.Duration // Adapt RateLimit to this response time (0 = fixed rate)
	UserAgent    string        // User-Agent header for loads and probes
}

// Auditor runs the extract, probe and classify cycle for single pages.
// An Auditor holds no per-page state and may audit several pages at once.
type Auditor struct {
	cfg        Config
	site       *url.URL
	client     *http.Client
	prober     *Prober
	progressCh chan<- Event
	log        *zap.Logger
}

// New creates an Auditor with the given configuration.
// The progressCh parameter is optional; pass nil to disable progress events.
// A nil logger discards log output.
func New(cfg Config, progressCh chan<- Event, log *zap.Logger) (*Auditor, error) {
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.MaxInFlight < 0 {
		cfg.MaxInFlight = 0
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if log == nil {
		log = zap.NewNop()
	}

	site, err := urlutil.SiteRoot(cfg.SiteURL)
	if err != nil {
		return nil, fmt.Errorf("site url: %w", err)
	}

	return &Auditor{
		cfg:        cfg,
		site:       site,
		client:     &http.Client{Timeout: cfg.ProbeTimeout},
		prober:     NewProber(cfg.ProbeTimeout, NewThrottle(cfg.RateLimit, cfg.TargetRTT), cfg.UserAgent),
		progressCh: progressCh,
		log:        log,
	}, nil
}

// Audit loads page, probes every link candidate on it and returns the
// finalized result. The result is built only after every probe has settled.
// Transport failures of individual links become unreachable entries; an
// error is returned only when the document itself cannot be loaded, and it
// wraps ErrDocumentLoad.
func (a *Auditor) Audit(ctx context.Context, page result.Page) (*result.AuditResult, error) {
	start := time.Now()
	log := a.log.With(zap.String("page", page.Source))

	pageURL, err := urlutil.Resolve(a.site, page.Source)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrDocumentLoad, page.Source, err)
	}

	a.emit(ctx, Event{Page: page.Source, Phase: PhaseLoading})
	doc, base, err := LoadPage(ctx, a.client, pageURL, a.cfg.UserAgent)
	if err != nil {
		log.Error("Page could not be loaded", zap.String("url", pageURL.String()), zap.Error(err))
		return nil, err
	}

	a.emit(ctx, Event{Page: page.Source, Phase: PhaseExtracting})

	acc := &accumulator{}
	var group errgroup.Group
	if a.cfg.MaxInFlight > 0 {
		group.SetLimit(a.cfg.MaxInFlight)
	}

	index := 0
	for link := range ExtractLinks(doc) {
		position := index
		index++
		acc.launch()
		group.Go(func() error {
			outcome := a.prober.Probe(ctx, base, link)
			verdict := result.Classify(outcome)
			progress := acc.record(position, link, outcome, verdict)

			if verdict.Flagged() {
				log.Debug("Link flagged",
					zap.String("url", link),
					zap.Int("status", outcome.Status),
					zap.String("verdict", string(verdict)),
					zap.Error(outcome.Err),
				)
			}

			progress.Page = page.Source
			progress.Phase = PhaseProbing
			progress.URL = link
			progress.StatusCode = outcome.Status
			progress.Verdict = verdict
			a.emit(ctx, progress)
			return nil
		})
	}

	// Probes never return errors; Wait is the barrier before finalizing.
	_ = group.Wait()

	a.emit(ctx, Event{Page: page.Source, Phase: PhaseFinalizing, Checked: index})
	audit := acc.finalize(page, pageURL.String(), time.Since(start))

	fields := []zap.Field{
		zap.Int("checked", audit.Stats.TotalChecked),
		zap.Int("broken", audit.Stats.BrokenCount),
		zap.Int("unreachable", audit.Stats.Unreachable),
		zap.Int("redirects", audit.Stats.Redirects),
		zap.Duration("duration", audit.Stats.Duration),
	}
	if throttle := a.prober.throttle; throttle != nil {
		fields = append(fields,
			zap.Float64("probe_rate", throttle.Rate()),
			zap.Duration("avg_rtt", throttle.AverageRTT()),
		)
	}
	log.Info("Page audited", fields...)

	return audit, nil
}

// emit sends evt to the progress channel unless there is none or ctx is done.
func (a *Auditor) emit(ctx context.Context, evt Event) {
	if a.progressCh == nil {
		return
	}
	select {
	case a.progressCh <- evt:
	case <-ctx.Done():
	}
}
