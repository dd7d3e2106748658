// Package document flattens markdown into the narratable text nodes the
// matcher consumes. Code blocks, inline code, and raw HTML never reach the
// narration stream; the matcher itself has no notion of skipping, so the
// exclusion happens here.
package document

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Document is one flattened markdown document.
type Document struct {
	// Path identifies the document to the manifest.
	Path string

	// Title is the first heading, if any.
	Title string

	// Nodes are the narratable text nodes in document order. Each node is
	// matched separately, threading one cursor through the whole sequence.
	Nodes []string
}

// Narration returns the linear text submitted for synthesis, in the order it
// will be spoken.
func (d *Document) Narration() string {
	return strings.Join(d.Nodes, "\n")
}

// Flatten parses markdown and extracts its narratable text nodes.
func Flatten(path string, source []byte) (*Document, error) {
	source = StripFrontmatter(source)

	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(source))

	doc := &Document{Path: path}
	var block strings.Builder

	flush := func() {
		node := strings.TrimSpace(block.String())
		block.Reset()
		if node != "" {
			doc.Nodes = append(doc.Nodes, node)
		}
	}

	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch n.Kind() {
		case ast.KindFencedCodeBlock, ast.KindCodeBlock, ast.KindHTMLBlock,
			ast.KindCodeSpan, ast.KindRawHTML:
			// Non-narrated containers.
			if entering {
				return ast.WalkSkipChildren, nil
			}

		case ast.KindText:
			if entering {
				t := n.(*ast.Text)
				block.Write(t.Segment.Value(source))
				if t.SoftLineBreak() || t.HardLineBreak() {
					block.WriteByte(' ')
				}
			}

		case ast.KindString:
			if entering {
				block.Write(n.(*ast.String).Value)
			}

		case ast.KindParagraph, ast.KindTextBlock:
			if !entering {
				flush()
			}

		case ast.KindHeading:
			if !entering {
				if doc.Title == "" {
					doc.Title = strings.TrimSpace(block.String())
				}
				flush()
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	flush()

	return doc, nil
}

// StripFrontmatter removes a leading YAML frontmatter block, if present.
func StripFrontmatter(source []byte) []byte {
	delim := []byte("---")
	if !bytes.HasPrefix(source, delim) {
		return source
	}

	rest := source[len(delim):]
	if len(rest) == 0 || (rest[0] != '\n' && !bytes.HasPrefix(rest, []byte("\r\n"))) {
		return source
	}

	end := bytes.Index(rest, []byte("\n---"))
	if end < 0 {
		return source
	}

	after := rest[end+len("\n---"):]
	if nl := bytes.IndexByte(after, '\n'); nl >= 0 {
		return after[nl+1:]
	}
	return nil
}
