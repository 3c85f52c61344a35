package highlight

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/lectern-reader/lectern/internal/document"
)

// Styles are the visual markers for the two layers.
type Styles struct {
	Paragraph lipgloss.Style
	Word      lipgloss.Style
	Plain     lipgloss.Style
}

// DefaultStyles returns the stock look: dimmed page, lit paragraph,
// inverted word.
func DefaultStyles() Styles {
	return Styles{
		Paragraph: lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("237")),
		Word:      lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("226")).Bold(true),
		Plain:     lipgloss.NewStyle(),
	}
}

// lineRef maps one rendered line back to its paragraph and the byte
// offset of the line's first character within the paragraph text.
// Paragraph is -1 for separator lines.
type lineRef struct {
	paragraph int
	start     int
	end       int
	text      string
}

// Renderer turns the document plus the coordinator's state into viewport
// content, and maps viewport coordinates back to paragraphs and words for
// click-to-seek.
type Renderer struct {
	doc        *document.Document
	styles     Styles
	capability RangeHighlighter

	width     int
	lines     []lineRef
	paraStart []int
}

// NewRenderer creates a renderer for one document.
func NewRenderer(doc *document.Document, styles Styles, capability RangeHighlighter) *Renderer {
	return &Renderer{doc: doc, styles: styles, capability: capability}
}

// SetWidth re-wraps the document at a new width. Width changes invalidate
// all line positions, so callers should re-scroll afterwards.
func (r *Renderer) SetWidth(width int) {
	if width < 1 {
		width = 1
	}
	r.width = width
	r.reflow()
}

// Render produces the full page with the current highlight state applied.
// A lit paragraph outside the document is skipped silently: the target is
// gone, the next change event will supersede it.
func (r *Renderer) Render(state State, wordPara, wordOffset, wordLength int, wordOK bool) string {
	if r.lines == nil {
		r.reflow()
	}
	var b strings.Builder
	for i, ln := range r.lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		if ln.paragraph < 0 {
			continue
		}
		lit := state.ParagraphLit && ln.paragraph == state.ParagraphIndex
		base := r.styles.Plain
		if lit {
			base = r.styles.Paragraph
		}
		if lit && wordOK && wordPara == ln.paragraph {
			if rendered, ok := r.renderWordOverlap(ln, wordOffset, wordLength, base); ok {
				b.WriteString(rendered)
				continue
			}
		}
		b.WriteString(base.Render(ln.text))
	}
	return b.String()
}

// renderWordOverlap styles the part of the word range that falls on this
// line. Wrapping can split a word's range across lines; each line styles
// only its own overlap.
func (r *Renderer) renderWordOverlap(ln lineRef, offset, length int, base lipgloss.Style) (string, bool) {
	lo := max(offset, ln.start)
	hi := min(offset+length, ln.end)
	if lo >= hi {
		return "", false
	}
	return r.capability.Apply(ln.text, lo-ln.start, hi-lo, base)
}

// ParagraphLine returns the first rendered line of a paragraph, for
// scroll-into-view. ok is false when the paragraph has no rendered lines.
func (r *Renderer) ParagraphLine(index int) (int, bool) {
	if r.lines == nil {
		r.reflow()
	}
	if index < 0 || index >= len(r.paraStart) {
		return 0, false
	}
	return r.paraStart[index], true
}

// LineCount returns the number of rendered lines.
func (r *Renderer) LineCount() int {
	if r.lines == nil {
		r.reflow()
	}
	return len(r.lines)
}

// Locate maps a rendered line and display column to a paragraph and word
// index. The word index is -1 when the column lands outside any word.
func (r *Renderer) Locate(line, col int) (paragraph, word int, ok bool) {
	if r.lines == nil {
		r.reflow()
	}
	if line < 0 || line >= len(r.lines) {
		return 0, 0, false
	}
	ln := r.lines[line]
	if ln.paragraph < 0 {
		return 0, 0, false
	}
	para, found := r.doc.Paragraph(ln.paragraph)
	if !found {
		return 0, 0, false
	}
	offset := ln.start + byteOffsetForColumn(ln.text, col)
	return ln.paragraph, document.WordAt(para.Words, offset), true
}

// reflow rebuilds the wrapped line index at the current width.
func (r *Renderer) reflow() {
	width := r.width
	if width < 1 {
		width = 80
	}
	r.lines = r.lines[:0]
	r.paraStart = make([]int, len(r.doc.Paragraphs))
	for pi, p := range r.doc.Paragraphs {
		if pi > 0 {
			r.lines = append(r.lines, lineRef{paragraph: -1})
		}
		r.paraStart[pi] = len(r.lines)
		for _, span := range wrapSpans(p, width) {
			span.paragraph = pi
			r.lines = append(r.lines, span)
		}
	}
}

// wrapSpans greedily wraps a paragraph into lines of at most width
// display cells, keeping each line a verbatim slice of the paragraph text
// so byte offsets survive wrapping. A word wider than the whole line gets
// a line of its own rather than being split.
func wrapSpans(p document.Paragraph, width int) []lineRef {
	if len(p.Words) == 0 {
		return []lineRef{{start: 0, end: len(p.Text), text: p.Text}}
	}
	var spans []lineRef
	lineStart := p.Words[0].Offset
	lineEnd := lineStart
	for _, w := range p.Words {
		wordEnd := w.Offset + w.Length
		if lineEnd > lineStart && runewidth.StringWidth(p.Text[lineStart:wordEnd]) > width {
			spans = append(spans, lineRef{
				start: lineStart,
				end:   lineEnd,
				text:  p.Text[lineStart:lineEnd],
			})
			lineStart = w.Offset
		}
		lineEnd = wordEnd
	}
	spans = append(spans, lineRef{
		start: lineStart,
		end:   lineEnd,
		text:  p.Text[lineStart:lineEnd],
	})
	return spans
}

// byteOffsetForColumn maps a display column to the byte offset of the
// rune occupying it, clamping past-end columns to the last rune.
func byteOffsetForColumn(line string, col int) int {
	if col < 0 {
		return 0
	}
	cells := 0
	lastStart := 0
	for i, r := range line {
		w := runewidth.RuneWidth(r)
		if col < cells+w {
			return i
		}
		cells += w
		lastStart = i
	}
	return lastStart
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
