package llm

import "fmt"

// UpstreamError reports a failed call to the generation endpoint: either the
// transport failed or the endpoint answered with a non-2xx status.
type UpstreamError struct {
	StatusCode int
	Status     string
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("upstream request failed: %v", e.Err)
	}
	return fmt.Sprintf("upstream returned %s", e.Status)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// MalformedResponseError reports a reply that is not valid JSON or lacks
// required fields.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed upstream response: %s: %v", e.Reason, e.Err)
	}
	return "malformed upstream response: " + e.Reason
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
