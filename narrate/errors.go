package narrate

import (
	"errors"
	"fmt"
	"time"
)

// Common errors for the narration core.
var (
	// ErrEmptyJobID is returned when an operation is given no job identifier.
	ErrEmptyJobID = errors.New("empty job identifier")

	// ErrTrackUnavailable is returned when no alignment track exists for a
	// reference. This is the graceful outcome for documents whose alignment
	// job never linked; callers degrade to verbatim rendering.
	ErrTrackUnavailable = errors.New("alignment track unavailable")
)

// Sub-job names used in failure reporting.
const (
	SubjobSynthesis = "synthesis"
	SubjobAlignment = "alignment"
)

// TransportError indicates a network or protocol failure reaching the remote
// API. It is propagated to the caller of the failing operation, never
// silently retried by the core.
type TransportError struct {
	Op  string // Operation being performed, e.g. "status" or "alignment"
	Err error  // Underlying transport failure
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure during %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedResponseError indicates a remote payload that could not be
// normalized into the expected shape. Payload carries truncated context for
// diagnostics.
type MalformedResponseError struct {
	Payload string
	Err     error
}

// Error implements the error interface.
func (e *MalformedResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed remote response: %v (payload: %s)", e.Err, e.Payload)
	}
	return fmt.Sprintf("malformed remote response (payload: %s)", e.Payload)
}

// Unwrap returns the underlying error.
func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// JobFailedError is a terminal remote failure of one sub-job. It is not
// retried automatically. When both sub-jobs failed, Subjob names the primary.
type JobFailedError struct {
	Subjob string // SubjobSynthesis or SubjobAlignment
	Reason string // Error message reported by the remote system
}

// Error implements the error interface.
func (e *JobFailedError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s job failed", e.Subjob)
	}
	return fmt.Sprintf("%s job failed: %s", e.Subjob, e.Reason)
}

// PollingTimeoutError indicates the attempt budget was exhausted without any
// terminal sub-job state.
type PollingTimeoutError struct {
	Attempts int
	Interval time.Duration
}

// Error implements the error interface.
func (e *PollingTimeoutError) Error() string {
	return fmt.Sprintf("job did not complete after %d polls at %s intervals", e.Attempts, e.Interval)
}

// truncatePayload bounds the payload context carried in errors.
func truncatePayload(payload []byte) string {
	const limit = 256
	if len(payload) > limit {
		return string(payload[:limit]) + "..."
	}
	return string(payload)
}
