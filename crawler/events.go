package crawler

import "github.com/lukemcguire/linkaudit/result"

// Phase is the step a page audit is in.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseExtracting
	PhaseProbing
	PhaseFinalizing
	PhaseReported
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseExtracting:
		return "extracting"
	case PhaseProbing:
		return "probing"
	case PhaseFinalizing:
		return "finalizing"
	case PhaseReported:
		return "reported"
	default:
		return "unknown"
	}
}

// Event reports audit progress. Probe completions carry the URL, status and
// verdict of the link just checked; phase transitions carry only counters.
type Event struct {
	Page       string
	Phase      Phase
	URL        string
	StatusCode int
	Verdict    result.Verdict
	Checked    int
	Flagged    int
	Pending    int
}
