package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/lukemcguire/linkaudit/result"
	"github.com/lukemcguire/linkaudit/urlutil"
)

const (
	// DefaultProbeTimeout bounds a single probe from dial to response headers.
	DefaultProbeTimeout = 60 * time.Second

	// DefaultUserAgent is sent with every request unless overridden.
	DefaultUserAgent = "linkaudit/1.0 (+https://github.com/lukemcguire/linkaudit)"

	// maxDrainBytes is how much of a probe response body is read before
	// closing, so keep-alive connections can be reused.
	maxDrainBytes = 64 << 10
)

// Prober checks the reachability of single links.
// It is safe for concurrent use.
type Prober struct {
	client    *http.Client
	timeout   time.Duration
	throttle  *Throttle
	userAgent string
}

// NewProber creates a Prober. Redirects are never followed so the caller
// sees 3xx statuses. A nil throttle disables pacing.
func NewProber(timeout time.Duration, throttle *Throttle, userAgent string) *Prober {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	return &Prober{
		client: &http.Client{
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		timeout:   timeout,
		throttle:  throttle,
		userAgent: userAgent,
	}
}

// Probe issues one GET for link, resolved against base, and reports what came
// back. HTTP error statuses are returned as ordinary outcomes; only a
// transport failure (including the timeout) yields an unreachable outcome.
func (p *Prober) Probe(ctx context.Context, base *url.URL, link string) result.Outcome {
	target, err := urlutil.Resolve(base, link)
	if err != nil {
		return result.NoResponse(err)
	}

	// Queueing for the throttle does not count against the probe timeout.
	if err := p.throttle.Wait(ctx); err != nil {
		return result.NoResponse(fmt.Errorf("throttle wait: %w", err))
	}

	reqCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, target.String(), nil)
	if err != nil {
		return result.NoResponse(err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return result.NoResponse(err)
	}
	p.throttle.Observe(time.Since(start))

	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
	_ = resp.Body.Close()

	return result.Responded(resp.StatusCode)
}
