package result

import "net/http"

// ReasonNoResponse is the reason attached to every unreachable outcome.
const ReasonNoResponse = "no-response"

// Outcome is what a single probe observed.
type Outcome struct {
	Reachable bool   // A response arrived
	Status    int    // HTTP status code when Reachable
	Reason    string // ReasonNoResponse when not Reachable
	Err       error  // Transport error when not Reachable
}

// Responded returns the outcome of a probe that received a response.
func Responded(status int) Outcome {
	return Outcome{Reachable: true, Status: status}
}

// NoResponse returns the outcome of a probe that failed at the transport level.
func NoResponse(err error) Outcome {
	return Outcome{Reason: ReasonNoResponse, Err: err}
}

// Verdict is the classification assigned to a probed link.
type Verdict string

const (
	VerdictIgnored     Verdict = "ignored"
	VerdictRedirect    Verdict = "redirect"
	VerdictBroken      Verdict = "broken"
	VerdictUnreachable Verdict = "unreachable"
)

// Flagged reports whether links with this verdict belong in a report.
func (v Verdict) Flagged() bool {
	return v == VerdictBroken || v == VerdictUnreachable
}

// Classify maps a probe outcome to its verdict.
//
// Redirects cover [300, 400). Broken is exactly 404 or any status of 500
// and above. Every other response is ignored.
func Classify(outcome Outcome) Verdict {
	if !outcome.Reachable {
		return VerdictUnreachable
	}

	status := outcome.Status
	switch {
	case status >= http.StatusMultipleChoices && status < http.StatusBadRequest:
		return VerdictRedirect
	case status == http.StatusNotFound || status >= http.StatusInternalServerError:
		return VerdictBroken
	default:
		return VerdictIgnored
	}
}
