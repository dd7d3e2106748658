package document_test

import (
	"strings"
	"testing"

	"github.com/dgnsrekt/speakdown/internal/document"
)

const sample = `---
title: Frontmatter Title
voice: narrator
---

# Getting Started

Speakdown reads markdown and narrates it.

` + "```go\nfunc main() {}\n```" + `

Inline ` + "`code()`" + ` is skipped, prose is kept.

- First item
- Second item

<div>raw html block</div>

> A quoted thought.
`

// TestFlatten checks node extraction and exclusion of non-narrated regions.
func TestFlatten(t *testing.T) {
	doc, err := document.Flatten("sample.md", []byte(sample))
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}

	if doc.Title != "Getting Started" {
		t.Errorf("title = %q, want Getting Started", doc.Title)
	}

	narration := doc.Narration()

	wantPresent := []string{
		"Getting Started",
		"Speakdown reads markdown and narrates it.",
		"prose is kept",
		"First item",
		"Second item",
		"A quoted thought.",
	}
	for _, want := range wantPresent {
		if !strings.Contains(narration, want) {
			t.Errorf("narration missing %q:\n%s", want, narration)
		}
	}

	wantAbsent := []string{
		"func main",
		"code()",
		"raw html block",
		"Frontmatter Title",
	}
	for _, banned := range wantAbsent {
		if strings.Contains(narration, banned) {
			t.Errorf("narration should not contain %q:\n%s", banned, narration)
		}
	}
}

// TestFlattenNodeOrder checks that nodes come out in document order.
func TestFlattenNodeOrder(t *testing.T) {
	src := "# One\n\nTwo here.\n\nThree here.\n"
	doc, err := document.Flatten("order.md", []byte(src))
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}

	if len(doc.Nodes) != 3 {
		t.Fatalf("node count = %d, want 3: %+v", len(doc.Nodes), doc.Nodes)
	}
	if doc.Nodes[0] != "One" || doc.Nodes[1] != "Two here." || doc.Nodes[2] != "Three here." {
		t.Errorf("unexpected node order: %+v", doc.Nodes)
	}
}

// TestFlattenEmpty checks degenerate documents.
func TestFlattenEmpty(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "empty", src: ""},
		{name: "only code", src: "```\nx := 1\n```\n"},
		{name: "only frontmatter", src: "---\ntitle: x\n---\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := document.Flatten("empty.md", []byte(tt.src))
			if err != nil {
				t.Fatalf("Flatten failed: %v", err)
			}
			if strings.TrimSpace(doc.Narration()) != "" {
				t.Errorf("expected no narration, got %q", doc.Narration())
			}
		})
	}
}

// TestFlattenSoftBreaks checks that a wrapped paragraph stays one node with
// spaces at the line breaks.
func TestFlattenSoftBreaks(t *testing.T) {
	src := "A sentence\nwrapped across\nthree lines.\n"
	doc, err := document.Flatten("wrap.md", []byte(src))
	if err != nil {
		t.Fatalf("Flatten failed: %v", err)
	}

	if len(doc.Nodes) != 1 {
		t.Fatalf("node count = %d, want 1: %+v", len(doc.Nodes), doc.Nodes)
	}
	if doc.Nodes[0] != "A sentence wrapped across three lines." {
		t.Errorf("node = %q", doc.Nodes[0])
	}
}

// TestStripFrontmatter checks frontmatter removal edge cases.
func TestStripFrontmatter(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "present",
			in:   "---\ntitle: x\n---\nBody.\n",
			want: "Body.\n",
		},
		{
			name: "absent",
			in:   "Body only.\n",
			want: "Body only.\n",
		},
		{
			name: "unterminated",
			in:   "---\ntitle: x\nBody.\n",
			want: "---\ntitle: x\nBody.\n",
		},
		{
			name: "horizontal rule is not frontmatter",
			in:   "Intro.\n\n---\n\nMore.\n",
			want: "Intro.\n\n---\n\nMore.\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(document.StripFrontmatter([]byte(tt.in)))
			if got != tt.want {
				t.Errorf("StripFrontmatter mismatch:\ngot  %q\nwant %q", got, tt.want)
			}
		})
	}
}
