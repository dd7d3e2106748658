package narrate

import (
	"strings"
	"unicode"
)

// DefaultLookahead is how many track entries past the cursor the matcher
// scans for each token. A correct entry further ahead than this renders
// verbatim.
const DefaultLookahead = 10

// Cursor tracks the match position within an alignment track across the text
// nodes of one document render pass. It is monotonically non-decreasing and
// must not be shared across documents.
type Cursor struct {
	pos int
}

// Pos returns the current track index.
func (c *Cursor) Pos() int {
	return c.pos
}

// Matcher reconciles tokenized document text against an alignment track.
// Matching is greedy and local: each token takes the first normalized-equal
// track entry within the lookahead window, and an unmatched token degrades to
// verbatim text without desynchronizing the remainder.
type Matcher struct {
	lookahead int
	normalize func(string) string
}

// MatcherOption configures a Matcher.
type MatcherOption func(*Matcher)

// WithLookahead overrides the forward search window.
func WithLookahead(n int) MatcherOption {
	return func(m *Matcher) {
		if n > 0 {
			m.lookahead = n
		}
	}
}

// WithNormalizer overrides the token normalization applied before comparing
// document tokens against track words.
func WithNormalizer(fn func(string) string) MatcherOption {
	return func(m *Matcher) {
		if fn != nil {
			m.normalize = fn
		}
	}
}

// NewMatcher creates a Matcher with the default window and normalizer.
func NewMatcher(opts ...MatcherOption) *Matcher {
	m := &Matcher{
		lookahead: DefaultLookahead,
		normalize: NormalizeToken,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Match annotates one text node against the track, advancing the cursor past
// matched entries. It must be called once per text-bearing node of a
// document, in document order, threading the same cursor through every call.
// The concatenated Text of the returned spans equals text exactly.
func (m *Matcher) Match(text string, track []AlignedWord, cursor *Cursor) []Span {
	if text == "" {
		return nil
	}

	var spans []Span
	for _, seg := range tokenize(text) {
		if !seg.token {
			spans = appendSpan(spans, Verbatim(seg.text))
			continue
		}

		idx, ok := m.findMatch(seg.text, track, cursor.pos)
		if !ok {
			spans = appendSpan(spans, Verbatim(seg.text))
			continue
		}

		entry := track[idx]
		spans = appendSpan(spans, Timed(seg.text, entry.Start, entry.End, idx))
		cursor.pos = idx + 1
	}

	return spans
}

// findMatch scans the window [from, from+lookahead) for the first entry whose
// normalized word equals the normalized token.
func (m *Matcher) findMatch(token string, track []AlignedWord, from int) (int, bool) {
	want := m.normalize(token)
	if want == "" {
		return 0, false
	}

	limit := from + m.lookahead
	if limit > len(track) {
		limit = len(track)
	}
	for i := from; i < limit; i++ {
		if m.normalize(track[i].Word) == want {
			return i, true
		}
	}
	return 0, false
}

// NormalizeToken lowercases a token and strips every rune that is not a
// letter or number. It is the default comparison form for both document
// tokens and track words.
func NormalizeToken(token string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(token) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// segment is a tokenizer output piece: either a word token or the literal
// separator text between tokens.
type segment struct {
	text  string
	token bool
}

// tokenize splits text into maximal runs of letter, number, and apostrophe
// runes, preserving the separator substrings in their original positions.
func tokenize(text string) []segment {
	var segments []segment
	var current strings.Builder
	inToken := false

	flush := func() {
		if current.Len() > 0 {
			segments = append(segments, segment{text: current.String(), token: inToken})
			current.Reset()
		}
	}

	for _, r := range text {
		isWord := unicode.IsLetter(r) || unicode.IsNumber(r) || r == '\'' || r == '’'
		if isWord != inToken {
			flush()
			inToken = isWord
		}
		current.WriteRune(r)
	}
	flush()

	return segments
}

// appendSpan appends a span, merging adjacent verbatim spans so a separator
// glued to an unmatched token stays one span. Timed spans never merge.
func appendSpan(spans []Span, s Span) []Span {
	if len(spans) > 0 && s.Kind == SpanVerbatim {
		last := &spans[len(spans)-1]
		if last.Kind == SpanVerbatim {
			last.Text += s.Text
			return spans
		}
	}
	return append(spans, s)
}
