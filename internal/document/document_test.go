package document

import (
	"strings"
	"testing"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		wantTexts []string
	}{
		{
			name:      "plain paragraphs",
			source:    "First paragraph here.\n\nSecond paragraph here.",
			wantTexts: []string{"First paragraph here.", "Second paragraph here."},
		},
		{
			name:      "heading counts as paragraph",
			source:    "# Title\n\nBody text.",
			wantTexts: []string{"Title", "Body text."},
		},
		{
			name:      "soft line breaks collapse to spaces",
			source:    "line one\nline two",
			wantTexts: []string{"line one line two"},
		},
		{
			name:      "code blocks skipped",
			source:    "Before.\n\n```\ncode here\n```\n\nAfter.",
			wantTexts: []string{"Before.", "After."},
		},
		{
			name:      "inline markup stripped",
			source:    "Some **bold** and *italic* and `code`.",
			wantTexts: []string{"Some bold and italic and code."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Extract([]byte(tt.source))
			if err != nil {
				t.Fatalf("Extract failed: %v", err)
			}
			if len(doc.Paragraphs) != len(tt.wantTexts) {
				t.Fatalf("got %d paragraphs, want %d", len(doc.Paragraphs), len(tt.wantTexts))
			}
			for i, want := range tt.wantTexts {
				if doc.Paragraphs[i].Text != want {
					t.Errorf("paragraph %d = %q, want %q", i, doc.Paragraphs[i].Text, want)
				}
				if doc.Paragraphs[i].Index != i {
					t.Errorf("paragraph %d has Index %d", i, doc.Paragraphs[i].Index)
				}
			}
		})
	}
}

func TestExtractEmpty(t *testing.T) {
	if _, err := Extract([]byte("   \n\n  ")); err != ErrEmptyDocument {
		t.Errorf("expected ErrEmptyDocument, got %v", err)
	}
}

func TestSplitWords(t *testing.T) {
	words := SplitWords("A quick  test")
	if len(words) != 3 {
		t.Fatalf("got %d words, want 3", len(words))
	}
	want := []Word{
		{Text: "A", Offset: 0, Length: 1},
		{Text: "quick", Offset: 2, Length: 5},
		{Text: "test", Offset: 9, Length: 4},
	}
	for i, w := range want {
		if words[i] != w {
			t.Errorf("word %d = %+v, want %+v", i, words[i], w)
		}
	}
}

func TestSplitWordsOffsetsIndexBack(t *testing.T) {
	text := "The  spacing   is \t odd here"
	for _, w := range SplitWords(text) {
		if got := text[w.Offset : w.Offset+w.Length]; got != w.Text {
			t.Errorf("offset %d length %d yields %q, want %q", w.Offset, w.Length, got, w.Text)
		}
	}
}

func TestWordAt(t *testing.T) {
	words := SplitWords("one two three")
	tests := []struct {
		offset int
		want   int
	}{
		{0, 0},
		{2, 0},
		{3, 0}, // whitespace after "one" resolves to preceding word
		{4, 1},
		{8, 2},
		{12, 2},
		{-5, -1},
	}
	for _, tt := range tests {
		if got := WordAt(words, tt.offset); got != tt.want {
			t.Errorf("WordAt(%d) = %d, want %d", tt.offset, got, tt.want)
		}
	}
	if got := WordAt(nil, 3); got != -1 {
		t.Errorf("WordAt on empty list = %d, want -1", got)
	}
}

func TestTotalWords(t *testing.T) {
	doc, err := Extract([]byte("one two\n\nthree four five"))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if got := doc.TotalWords(); got != 5 {
		t.Errorf("TotalWords = %d, want 5", got)
	}
}

func TestParagraphLookup(t *testing.T) {
	doc, err := Extract([]byte(strings.Repeat("para\n\n", 3)))
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if _, ok := doc.Paragraph(2); !ok {
		t.Error("paragraph 2 should exist")
	}
	if _, ok := doc.Paragraph(3); ok {
		t.Error("paragraph 3 should not exist")
	}
	if _, ok := doc.Paragraph(-1); ok {
		t.Error("negative index should not resolve")
	}
}
