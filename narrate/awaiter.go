package narrate

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// PollPolicy bounds the completion wait.
type PollPolicy struct {
	// MaxAttempts is the total poll budget before giving up.
	MaxAttempts int

	// Interval is the pause between polls.
	Interval time.Duration

	// AbsenceGracePolls is how many additional polls to tolerate after the
	// primary job completes without an alignment job being linked. The remote
	// system links alignment asynchronously, so a short absence is expected;
	// once the grace is exceeded the job is treated as complete without
	// alignment. This is a tunable heuristic, not a remote contract.
	AbsenceGracePolls int
}

// DefaultPollPolicy returns the standard polling policy.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{
		MaxAttempts:       120,
		Interval:          5 * time.Second,
		AbsenceGracePolls: 5,
	}
}

// Awaiter drives a StatusPoller until a composite job reaches a verdict.
// Instances share no mutable state; an orchestrator may run one Awaiter per
// job concurrently. Polls for a single job are strictly sequential.
type Awaiter struct {
	poller   StatusPoller
	policy   PollPolicy
	observer func(CompositeJobView)
	logger   *log.Logger
}

// NewAwaiter creates an Awaiter. Zero policy fields fall back to defaults.
func NewAwaiter(poller StatusPoller, policy PollPolicy) *Awaiter {
	defaults := DefaultPollPolicy()
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = defaults.MaxAttempts
	}
	if policy.Interval <= 0 {
		policy.Interval = defaults.Interval
	}
	if policy.AbsenceGracePolls <= 0 {
		policy.AbsenceGracePolls = defaults.AbsenceGracePolls
	}

	return &Awaiter{
		poller: poller,
		policy: policy,
		logger: log.Default(),
	}
}

// SetLogger replaces the logger used for per-tick diagnostics.
func (a *Awaiter) SetLogger(logger *log.Logger) {
	if logger != nil {
		a.logger = logger
	}
}

// OnPoll registers an observer invoked with each CompositeJobView before the
// termination checks. The observer must not block; it cannot alter control
// flow.
func (a *Awaiter) OnPoll(fn func(CompositeJobView)) {
	a.observer = fn
}

// AwaitCompletion polls the job until it terminates, times out, or the
// context is canceled.
//
// A job terminates successfully when both sub-jobs resolve without failure,
// or when the primary job completes and no alignment job links within the
// grace window; in the latter case the returned Completion carries an empty
// AlignmentRef and callers treat alignment as unavailable rather than failed.
// Sub-job failures return a *JobFailedError naming the failed sub-job, with
// the primary failure taking precedence when both failed. Transport failures
// from the poller propagate immediately; bounded transport retry, if wanted,
// belongs in the poller implementation.
func (a *Awaiter) AwaitCompletion(ctx context.Context, jobID string) (Completion, error) {
	if jobID == "" {
		return Completion{}, ErrEmptyJobID
	}

	absentPolls := 0

	for attempt := 1; attempt <= a.policy.MaxAttempts; attempt++ {
		view, err := a.poller.Poll(ctx, jobID)
		if err != nil {
			return Completion{}, fmt.Errorf("poll attempt %d: %w", attempt, err)
		}

		if a.observer != nil {
			a.observer(view)
		}

		a.logger.Debug("polled job",
			"job", jobID,
			"attempt", attempt,
			"primary", view.PrimaryStatus,
			"alignment", view.AlignmentStatus)

		primaryDone := view.PrimaryStatus.Terminal()
		alignmentDone := view.AlignmentLinked() && view.AlignmentStatus.Terminal()

		// Both sub-jobs resolved.
		if primaryDone && alignmentDone {
			if view.PrimaryStatus == StatusFailed {
				return Completion{}, &JobFailedError{Subjob: SubjobSynthesis, Reason: view.PrimaryError}
			}
			if view.AlignmentStatus == StatusFailed {
				return Completion{}, &JobFailedError{Subjob: SubjobAlignment, Reason: view.AlignmentError}
			}
			return Completion{AudioRef: view.AudioRef, AlignmentRef: view.AlignmentRef}, nil
		}

		// Primary resolved, alignment never linked. Wait out the grace window
		// before concluding the remote system will not produce one.
		if primaryDone && !view.AlignmentLinked() {
			absentPolls++
			if absentPolls > a.policy.AbsenceGracePolls+1 {
				if view.PrimaryStatus == StatusFailed {
					return Completion{}, &JobFailedError{Subjob: SubjobSynthesis, Reason: view.PrimaryError}
				}
				a.logger.Warn("no alignment job linked, continuing without alignment",
					"job", jobID,
					"gracePolls", a.policy.AbsenceGracePolls)
				return Completion{AudioRef: view.AudioRef}, nil
			}
		} else {
			absentPolls = 0
		}

		if attempt == a.policy.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return Completion{}, ctx.Err()
		case <-time.After(a.policy.Interval):
		}
	}

	return Completion{}, &PollingTimeoutError{
		Attempts: a.policy.MaxAttempts,
		Interval: a.policy.Interval,
	}
}
