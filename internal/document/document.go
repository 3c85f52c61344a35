// Package document extracts readable paragraphs from markdown and plain
// text sources and segments them into words with stable character offsets.
package document

import (
	"errors"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Common errors for document extraction.
var (
	ErrEmptyDocument = errors.New("document contains no readable paragraphs")
)

// Word is a single word within a paragraph. Offset and Length are byte
// positions into the paragraph's Text.
type Word struct {
	Text   string
	Offset int
	Length int
}

// Paragraph is one readable block of the document in reading order.
type Paragraph struct {
	Index int
	Text  string
	Words []Word
}

// WordCount returns the number of words in the paragraph, never less
// than one so empty-ish blocks still occupy a timeline slice.
func (p Paragraph) WordCount() int {
	if len(p.Words) == 0 {
		return 1
	}
	return len(p.Words)
}

// Document is an ordered, session-stable list of paragraphs.
type Document struct {
	Path       string
	Paragraphs []Paragraph
	size       int64
}

// Size returns the byte size of the source the document was built from.
func (d *Document) Size() int64 {
	return d.size
}

// TotalWords returns the word count across all paragraphs.
func (d *Document) TotalWords() int {
	total := 0
	for _, p := range d.Paragraphs {
		total += p.WordCount()
	}
	return total
}

// Paragraph returns the paragraph at index, or false when the index is
// outside the document.
func (d *Document) Paragraph(index int) (Paragraph, bool) {
	if index < 0 || index >= len(d.Paragraphs) {
		return Paragraph{}, false
	}
	return d.Paragraphs[index], true
}

// Extract parses markdown source and returns the document's readable
// paragraphs. Headings and list items count as paragraphs: they are
// spoken too.
func Extract(source []byte) (*Document, error) {
	md := goldmark.New()
	root := md.Parser().Parse(text.NewReader(source))

	var paragraphs []Paragraph
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.(type) {
		case *ast.Paragraph, *ast.Heading:
			txt := collapseWhitespace(blockText(n, source))
			if txt == "" {
				return ast.WalkSkipChildren, nil
			}
			paragraphs = append(paragraphs, Paragraph{
				Index: len(paragraphs),
				Text:  txt,
				Words: SplitWords(txt),
			})
			return ast.WalkSkipChildren, nil
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if len(paragraphs) == 0 {
		return nil, ErrEmptyDocument
	}
	return &Document{Paragraphs: paragraphs, size: int64(len(source))}, nil
}

// blockText collects the plain text of a block node, skipping inline
// markup but keeping its textual content.
func blockText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.AutoLink:
			b.Write(t.URL(source))
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SplitWords segments text into words with byte offsets. A word is a
// maximal run of non-space characters.
func SplitWords(s string) []Word {
	var words []Word
	start := -1
	for i, r := range s {
		if unicode.IsSpace(r) {
			if start >= 0 {
				words = append(words, Word{Text: s[start:i], Offset: start, Length: i - start})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, Word{Text: s[start:], Offset: start, Length: len(s) - start})
	}
	return words
}

// WordAt returns the index of the word containing the byte offset, or the
// nearest preceding word when the offset lands on whitespace. Returns -1
// for an empty word list or an offset before the first word.
func WordAt(words []Word, offset int) int {
	idx := -1
	for i, w := range words {
		if offset < w.Offset {
			break
		}
		idx = i
		if offset < w.Offset+w.Length {
			return i
		}
	}
	return idx
}
