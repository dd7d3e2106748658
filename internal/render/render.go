// Package render materializes annotated spans as terminal output: verbatim
// spans as plain text, timed spans as highlighted, timing-tagged words.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize/english"

	"github.com/dgnsrekt/speakdown/narrate"
)

// Styles holds the lipgloss styles applied to spans.
type Styles struct {
	Timed    lipgloss.Style
	Verbatim lipgloss.Style
}

// DefaultStyles returns the standard highlight styling: aligned words get a
// yellow highlight, everything else passes through unstyled.
func DefaultStyles() Styles {
	return Styles{
		Timed: lipgloss.NewStyle().
			Background(lipgloss.Color("226")).
			Foreground(lipgloss.Color("0")),
		Verbatim: lipgloss.NewStyle(),
	}
}

// Spans writes styled span text to w. Timed spans carry their time bounds as
// a dim suffix when annotate is true.
func Spans(w io.Writer, spans []narrate.Span, styles Styles, annotate bool) error {
	stamp := lipgloss.NewStyle().Faint(true)

	for _, span := range spans {
		var out string
		switch span.Kind {
		case narrate.SpanTimed:
			out = styles.Timed.Render(span.Text)
			if annotate {
				out += stamp.Render(fmt.Sprintf("[%.2f-%.2f]", span.Start, span.End))
			}
		default:
			out = styles.Verbatim.Render(span.Text)
		}
		if _, err := io.WriteString(w, out); err != nil {
			return fmt.Errorf("unable to write span: %w", err)
		}
	}
	return nil
}

// Transcript reconstructs the plain document text from its spans.
func Transcript(spans []narrate.Span) string {
	var b strings.Builder
	for _, span := range spans {
		b.WriteString(span.Text)
	}
	return b.String()
}

// Coverage reports how much of a span sequence carries timing.
func Coverage(spans []narrate.Span) (timed, total int) {
	for _, span := range spans {
		if span.Kind == narrate.SpanTimed {
			timed++
		}
		total++
	}
	return timed, total
}

// Summary is the per-run outcome report.
type Summary struct {
	Synced    int
	Unchanged int
	Errored   int
}

// Render returns the one-line human readable run summary.
func (s Summary) Render() string {
	parts := []string{
		english.Plural(s.Synced, "document", "") + " synced",
		fmt.Sprintf("%d unchanged", s.Unchanged),
	}
	if s.Errored > 0 {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
		parts = append(parts, style.Render(fmt.Sprintf("%d errored", s.Errored)))
	}
	return strings.Join(parts, ", ")
}
