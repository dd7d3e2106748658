package render_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dgnsrekt/speakdown/internal/render"
	"github.com/dgnsrekt/speakdown/narrate"
)

func spans() []narrate.Span {
	return []narrate.Span{
		narrate.Timed("The", 0.0, 0.2, 0),
		narrate.Verbatim(" "),
		narrate.Timed("cat", 0.2, 0.5, 1),
		narrate.Verbatim(" sat."),
	}
}

// TestTranscript checks lossless reconstruction from spans.
func TestTranscript(t *testing.T) {
	if got := render.Transcript(spans()); got != "The cat sat." {
		t.Errorf("Transcript = %q, want %q", got, "The cat sat.")
	}
}

// TestSpansWritesAllText checks that every span's text reaches the writer, in
// order. Unstyled spans keep the output byte-identical to the transcript.
func TestSpansWritesAllText(t *testing.T) {
	var buf bytes.Buffer
	if err := render.Spans(&buf, spans(), render.Styles{}, false); err != nil {
		t.Fatalf("Spans failed: %v", err)
	}
	if buf.String() != "The cat sat." {
		t.Errorf("output = %q, want %q", buf.String(), "The cat sat.")
	}
}

// TestSpansTimestamps checks the time-bound annotations.
func TestSpansTimestamps(t *testing.T) {
	var buf bytes.Buffer
	if err := render.Spans(&buf, spans(), render.Styles{}, true); err != nil {
		t.Fatalf("Spans failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "[0.00-0.20]") || !strings.Contains(out, "[0.20-0.50]") {
		t.Errorf("missing timestamp annotations: %q", out)
	}
}

// TestCoverage checks the timed/total span counts.
func TestCoverage(t *testing.T) {
	timed, total := render.Coverage(spans())
	if timed != 2 || total != 4 {
		t.Errorf("Coverage = (%d, %d), want (2, 4)", timed, total)
	}
}

// TestSummaryRender checks the run summary line.
func TestSummaryRender(t *testing.T) {
	s := render.Summary{Synced: 3, Unchanged: 2, Errored: 1}
	out := s.Render()

	for _, want := range []string{"3 documents synced", "2 unchanged", "1 errored"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary %q missing %q", out, want)
		}
	}

	clean := render.Summary{Synced: 1}.Render()
	if strings.Contains(clean, "errored") {
		t.Errorf("clean summary should omit error count: %q", clean)
	}
	if !strings.Contains(clean, "1 document synced") {
		t.Errorf("singular form expected: %q", clean)
	}
}
