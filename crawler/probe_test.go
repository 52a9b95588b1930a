package crawler

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukemcguire/linkaudit/result"
)

func TestProbe_ReportsStatusWithoutFailing(t *testing.T) {
	statuses := []int{
		http.StatusOK,
		http.StatusNotFound,
		http.StatusForbidden,
		http.StatusInternalServerError,
		http.StatusServiceUnavailable,
	}

	for _, status := range statuses {
		t.Run(http.StatusText(status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}))
			defer server.Close()

			outcome := NewProber(5*time.Second, nil, "").Probe(context.Background(), nil, server.URL)

			assert.True(t, outcome.Reachable)
			assert.Equal(t, status, outcome.Status)
			assert.NoError(t, outcome.Err)
		})
	}
}

func TestProbe_DoesNotFollowRedirects(t *testing.T) {
	var followed atomic.Bool
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/gone", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) {
		followed.Store(true)
		http.NotFound(w, r)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	outcome := NewProber(5*time.Second, nil, "").Probe(context.Background(), nil, server.URL+"/old")

	assert.Equal(t, http.StatusMovedPermanently, outcome.Status)
	assert.Equal(t, result.VerdictRedirect, result.Classify(outcome))
	assert.False(t, followed.Load(), "redirect target should not be requested")
}

func TestProbe_ResolvesRelativeLinks(t *testing.T) {
	paths := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths <- r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	base, err := url.Parse(server.URL + "/pages/grammar.html")
	require.NoError(t, err)

	outcome := NewProber(5*time.Second, nil, "").Probe(context.Background(), base, "reading.html")

	assert.True(t, outcome.Reachable)
	assert.Equal(t, "/pages/reading.html", <-paths)
}

func TestProbe_SendsUserAgent(t *testing.T) {
	agents := make(chan string, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agents <- r.UserAgent()
	}))
	defer server.Close()

	NewProber(5*time.Second, nil, "tester/1.0").Probe(context.Background(), nil, server.URL)

	assert.Equal(t, "tester/1.0", <-agents)
}

func TestProbe_ConnectionRefusedIsUnreachable(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	outcome := NewProber(5*time.Second, nil, "").Probe(context.Background(), nil, "http://"+addr+"/")

	assert.False(t, outcome.Reachable)
	assert.Equal(t, result.ReasonNoResponse, outcome.Reason)
	assert.Error(t, outcome.Err)
	assert.Equal(t, result.VerdictUnreachable, result.Classify(outcome))
}

func TestProbe_TimeoutIsUnreachable(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	start := time.Now()
	outcome := NewProber(100*time.Millisecond, nil, "").Probe(context.Background(), nil, server.URL)

	assert.False(t, outcome.Reachable)
	assert.True(t, errors.Is(outcome.Err, context.DeadlineExceeded), "expected deadline error, got %v", outcome.Err)
	assert.Equal(t, result.CategoryTimeout, result.CategorizeError(outcome.Err))
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestProbe_MalformedLinkIsUnreachable(t *testing.T) {
	outcome := NewProber(time.Second, nil, "").Probe(context.Background(), nil, "http://[::1")

	assert.False(t, outcome.Reachable)
	assert.Error(t, outcome.Err)
}

func TestProbe_RelativeLinkWithoutBaseIsUnreachable(t *testing.T) {
	outcome := NewProber(time.Second, nil, "").Probe(context.Background(), nil, "reading.html")

	assert.False(t, outcome.Reachable)
}

func TestNewProberDefaults(t *testing.T) {
	p := NewProber(0, nil, "")

	assert.Equal(t, DefaultProbeTimeout, p.timeout)
	assert.Equal(t, DefaultUserAgent, p.userAgent)
	assert.Nil(t, p.throttle)
}

func TestProbe_FeedsThrottle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(50 * time.Millisecond)
	}))
	defer server.Close()

	throttle := NewThrottle(20, time.Millisecond)
	prober := NewProber(5*time.Second, throttle, "")

	outcome := prober.Probe(context.Background(), nil, server.URL)

	require.True(t, outcome.Reachable)
	assert.Less(t, throttle.Rate(), 20.0, "a slow response should ease an adaptive throttle")
}

func TestProbe_ThrottleQueueDoesNotUseTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	defer server.Close()

	throttle := NewThrottle(2, 0)
	require.NoError(t, throttle.Wait(context.Background()))
	require.NoError(t, throttle.Wait(context.Background()))

	// The next token is ~500ms away, well past the 100ms probe timeout.
	outcome := NewProber(100*time.Millisecond, throttle, "").Probe(context.Background(), nil, server.URL)

	require.True(t, outcome.Reachable, "unexpected error: %v", outcome.Err)
	assert.Equal(t, http.StatusOK, outcome.Status)
}
