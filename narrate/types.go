package narrate

// JobStatus represents the state of one remote sub-job.
// JSON values are lower-case to match API conventions.
type JobStatus string

const (
	// StatusPending indicates the job is queued but not yet running.
	StatusPending JobStatus = "pending"

	// StatusProcessing indicates the job is running.
	StatusProcessing JobStatus = "processing"

	// StatusCompleted indicates the job finished successfully.
	StatusCompleted JobStatus = "completed"

	// StatusFailed indicates the job finished with an error.
	StatusFailed JobStatus = "failed"
)

// Terminal returns true if the status is a final state.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// CompositeJobView is a snapshot of a remote composite job at one poll
// instant. The primary sub-job is speech synthesis; the alignment sub-job is
// the forced-alignment task the remote system links after synthesis. A zero
// AlignmentStatus means no alignment job has been linked yet.
type CompositeJobView struct {
	PrimaryStatus   JobStatus
	AlignmentStatus JobStatus

	// Error messages, set only when the corresponding sub-job failed.
	PrimaryError   string
	AlignmentError string

	// Artifact references, set only when the corresponding sub-job completed.
	AudioRef     string
	AlignmentRef string
}

// AlignmentLinked reports whether the remote system has linked an alignment
// sub-job to this job yet.
func (v CompositeJobView) AlignmentLinked() bool {
	return v.AlignmentStatus != ""
}

// AlignedWord is one timestamped word from an alignment track.
// Start and End are offsets in seconds from the beginning of the audio.
type AlignedWord struct {
	Word  string  `json:"word" yaml:"word"`
	Start float64 `json:"start" yaml:"start"`
	End   float64 `json:"end" yaml:"end"`
}

// AlignmentTrack is the ordered word timeline for one document. Order is
// spoken order, which may differ slightly from source-text order.
type AlignmentTrack struct {
	Words    []AlignedWord `json:"words" yaml:"words"`
	Duration float64       `json:"duration" yaml:"duration"`
}

// Completion is the successful outcome of awaiting a composite job.
type Completion struct {
	AudioRef     string
	AlignmentRef string
}

// AlignmentAvailable reports whether an alignment track was produced. A
// completion without alignment is a valid outcome: the remote system does not
// link alignment jobs for every language and voice configuration.
func (c Completion) AlignmentAvailable() bool {
	return c.AlignmentRef != ""
}

// SpanKind distinguishes the two span variants.
type SpanKind int

const (
	// SpanVerbatim is plain text with no timing information.
	SpanVerbatim SpanKind = iota

	// SpanTimed is text annotated with alignment timing.
	SpanTimed
)

// String returns the string representation of the span kind.
func (k SpanKind) String() string {
	switch k {
	case SpanVerbatim:
		return "verbatim"
	case SpanTimed:
		return "timed"
	default:
		return "unknown"
	}
}

// Span is one contiguous piece of annotated document text. Concatenating the
// Text fields of all spans for a document, in order, reconstructs the input
// text exactly.
type Span struct {
	Kind SpanKind
	Text string

	// Timing fields, meaningful only when Kind is SpanTimed.
	Start      float64
	End        float64
	TrackIndex int
}

// Verbatim builds a plain text span.
func Verbatim(text string) Span {
	return Span{Kind: SpanVerbatim, Text: text}
}

// Timed builds a timing-annotated span for the given track entry.
func Timed(text string, start, end float64, trackIndex int) Span {
	return Span{
		Kind:       SpanTimed,
		Text:       text,
		Start:      start,
		End:        end,
		TrackIndex: trackIndex,
	}
}
