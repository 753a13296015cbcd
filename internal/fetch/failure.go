package fetch

import "fmt"

// FailureReason classifies why an upstream fetch produced no descriptor.
type FailureReason string

const (
	ReasonTimeout            FailureReason = "timeout"
	ReasonUpstreamError      FailureReason = "upstream_error"
	ReasonMalformedResponse  FailureReason = "malformed_response"
	ReasonNoUsableMedia      FailureReason = "no_usable_media"
	ReasonAllUpstreamsFailed FailureReason = "all_upstreams_failed"
)

// Failure is the typed outcome of a fetch that produced no usable
// descriptor. Callers treat all reasons uniformly as "could not fetch" and
// differ only in user-facing wording; Message carries the upstream's own
// error text when one was available.
type Failure struct {
	Reason  FailureReason
	Status  int
	Message string
}

func (f *Failure) Error() string {
	if f.Message != "" {
		return fmt.Sprintf("%s: %s", f.Reason, f.Message)
	}

	return string(f.Reason)
}
