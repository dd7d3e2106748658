package narrate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// StatusPoller performs a single status query for a remote composite job.
// Implementations must not retry internally; retry and backoff policy belongs
// to the Awaiter and its caller.
type StatusPoller interface {
	Poll(ctx context.Context, jobID string) (CompositeJobView, error)
}

// rawCompositeStatus mirrors the remote status payload. The remote API has
// grown several ad hoc shapes over time; all of them are decoded here and
// nowhere else, so shape volatility stays at this one boundary.
type rawCompositeStatus struct {
	Status    json.RawMessage `json:"status"`
	Error     string          `json:"error"`
	Message   string          `json:"message"`
	AudioURL  string          `json:"audio_url"`
	AudioRef  string          `json:"audio_ref"`
	Alignment *rawSubJob      `json:"alignment"`
	// Older deployments nest the linked job under "alignment_job".
	AlignmentJob *rawSubJob `json:"alignment_job"`
}

// rawSubJob mirrors one sub-job entry within the composite payload.
type rawSubJob struct {
	Status  json.RawMessage `json:"status"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
	URL     string          `json:"url"`
	Ref     string          `json:"ref"`
}

// rawStatusObject is the nested form some payloads use for a status field.
type rawStatusObject struct {
	State   string `json:"state"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// NormalizeStatusPayload maps a raw remote status payload onto the closed
// CompositeJobView shape. Artifact references are derived only when the
// corresponding sub-job has completed. A payload that cannot be normalized
// yields a *MalformedResponseError carrying the offending payload context.
func NormalizeStatusPayload(payload []byte) (CompositeJobView, error) {
	var raw rawCompositeStatus
	if err := json.Unmarshal(payload, &raw); err != nil {
		return CompositeJobView{}, &MalformedResponseError{
			Payload: truncatePayload(payload),
			Err:     err,
		}
	}
	if raw.Status == nil {
		return CompositeJobView{}, &MalformedResponseError{
			Payload: truncatePayload(payload),
			Err:     fmt.Errorf("missing status field"),
		}
	}

	primary, primaryMsg, err := decodeStatus(raw.Status)
	if err != nil {
		return CompositeJobView{}, &MalformedResponseError{
			Payload: truncatePayload(payload),
			Err:     err,
		}
	}

	view := CompositeJobView{PrimaryStatus: primary}

	if primary == StatusFailed {
		view.PrimaryError = firstNonEmpty(raw.Error, raw.Message, primaryMsg)
	}
	if primary == StatusCompleted {
		view.AudioRef = firstNonEmpty(raw.AudioURL, raw.AudioRef)
	}

	sub := raw.Alignment
	if sub == nil {
		sub = raw.AlignmentJob
	}
	if sub != nil {
		alignment, alignmentMsg, err := decodeStatus(sub.Status)
		if err != nil {
			return CompositeJobView{}, &MalformedResponseError{
				Payload: truncatePayload(payload),
				Err:     fmt.Errorf("alignment sub-job: %w", err),
			}
		}
		view.AlignmentStatus = alignment
		if alignment == StatusFailed {
			view.AlignmentError = firstNonEmpty(sub.Error, sub.Message, alignmentMsg)
		}
		if alignment == StatusCompleted {
			view.AlignmentRef = firstNonEmpty(sub.URL, sub.Ref)
		}
	}

	return view, nil
}

// decodeStatus accepts the two forms a status field takes on the wire: a bare
// string, or an object with a state and optional message.
func decodeStatus(raw json.RawMessage) (JobStatus, string, error) {
	if raw == nil {
		return "", "", fmt.Errorf("missing sub-job status")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		status, err := canonicalStatus(s)
		return status, "", err
	}

	var obj rawStatusObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", "", fmt.Errorf("unrecognized status shape: %s", string(raw))
	}
	status, err := canonicalStatus(obj.State)
	if err != nil {
		return "", "", err
	}
	return status, firstNonEmpty(obj.Message, obj.Error), nil
}

// canonicalStatus folds the remote API's status vocabulary into the four-state
// enum.
func canonicalStatus(s string) (JobStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending", "queued", "created", "accepted":
		return StatusPending, nil
	case "processing", "running", "in_progress", "started":
		return StatusProcessing, nil
	case "completed", "complete", "done", "success", "succeeded":
		return StatusCompleted, nil
	case "failed", "error", "errored":
		return StatusFailed, nil
	default:
		return "", fmt.Errorf("unknown job status %q", s)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
