package result

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		outcome Outcome
		want    Verdict
	}{
		{"no response", NoResponse(errors.New("dial tcp: connection refused")), VerdictUnreachable},
		{"no response without error", Outcome{Reason: ReasonNoResponse}, VerdictUnreachable},
		{"100 continue", Responded(100), VerdictIgnored},
		{"200 ok", Responded(200), VerdictIgnored},
		{"204 no content", Responded(204), VerdictIgnored},
		{"299 upper 2xx", Responded(299), VerdictIgnored},
		{"300 lower redirect bound", Responded(300), VerdictRedirect},
		{"301 moved", Responded(301), VerdictRedirect},
		{"399 upper redirect bound", Responded(399), VerdictRedirect},
		{"400 bad request", Responded(400), VerdictIgnored},
		{"401 unauthorized", Responded(401), VerdictIgnored},
		{"403 forbidden", Responded(403), VerdictIgnored},
		{"404 not found", Responded(404), VerdictBroken},
		{"410 gone", Responded(410), VerdictIgnored},
		{"429 too many requests", Responded(429), VerdictIgnored},
		{"499 upper 4xx", Responded(499), VerdictIgnored},
		{"500 internal error", Responded(500), VerdictBroken},
		{"503 unavailable", Responded(503), VerdictBroken},
		{"599 upper 5xx", Responded(599), VerdictBroken},
		{"999 nonstandard", Responded(999), VerdictBroken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.outcome))
		})
	}
}

func TestVerdictFlagged(t *testing.T) {
	assert.True(t, VerdictBroken.Flagged())
	assert.True(t, VerdictUnreachable.Flagged())
	assert.False(t, VerdictRedirect.Flagged())
	assert.False(t, VerdictIgnored.Flagged())
}

func TestNoResponse(t *testing.T) {
	err := errors.New("timeout")
	outcome := NoResponse(err)

	assert.False(t, outcome.Reachable)
	assert.Equal(t, ReasonNoResponse, outcome.Reason)
	assert.Equal(t, 0, outcome.Status)
	assert.ErrorIs(t, outcome.Err, err)
}
