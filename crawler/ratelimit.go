package crawler

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// minThrottleRate is the slowest an adaptive throttle will pace probes.
	minThrottleRate = 1.0

	// rttSmoothing is the weight of a new observation in the moving average.
	rttSmoothing = 0.2

	// throttleRecovery is the rate multiplier applied per fast response.
	throttleRecovery = 1.1

	// maxThrottleStep bounds how far one slow response can cut the rate.
	maxThrottleStep = 0.5
)

// Throttle paces probe requests. A fixed throttle holds its configured
// rate. An adaptive throttle slows down while the average response time is
// above its target and climbs back toward the configured rate otherwise.
// A nil *Throttle never blocks.
type Throttle struct {
	limiter *rate.Limiter
	ceiling float64
	target  time.Duration

	mu      sync.Mutex
	current float64
	avgRTT  time.Duration
}

// NewThrottle creates a throttle allowing rps probes per second. A
// non-zero target makes it adaptive. It returns nil when rps is not
// positive.
func NewThrottle(rps int, target time.Duration) *Throttle {
	if rps <= 0 {
		return nil
	}
	ceiling := float64(rps)
	return &Throttle{
		limiter: rate.NewLimiter(rate.Limit(ceiling), rps),
		ceiling: ceiling,
		target:  max(target, 0),
		current: ceiling,
		avgRTT:  target,
	}
}

// Wait blocks until the next probe may start or ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil {
		return nil
	}
	return t.limiter.Wait(ctx)
}

// Observe feeds the round trip of a completed probe to an adaptive
// throttle. Fixed throttles ignore it.
func (t *Throttle) Observe(rtt time.Duration) {
	if t == nil || t.target <= 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.avgRTT = time.Duration(rttSmoothing*float64(rtt) + (1-rttSmoothing)*float64(t.avgRTT))

	next := t.current * throttleRecovery
	if t.avgRTT > t.target {
		ratio := float64(t.target) / float64(t.avgRTT)
		next = t.current * max(ratio, maxThrottleStep)
	}
	next = min(max(next, minThrottleRate), t.ceiling)

	if math.Abs(next-t.current) > 0.05 {
		t.current = next
		t.limiter.SetLimit(rate.Limit(next))
		t.limiter.SetBurst(int(math.Ceil(next)))
	}
}

// Rate returns the current pace in probes per second, or 0 for a nil
// throttle.
func (t *Throttle) Rate() float64 {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// AverageRTT returns the moving average of observed round trips.
func (t *Throttle) AverageRTT() time.Duration {
	if t == nil {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.avgRTT
}
