package highlight

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// RangeHighlighter is the capability behind the word layer: styling a
// character range inside a rendered line independently of the line's own
// styling. Terminals without color support cannot express the extra
// layer; the probe then selects the unsupported variant and word
// highlighting silently degrades to paragraph-only. Call sites never
// branch on terminal features themselves.
type RangeHighlighter interface {
	// Supported reports whether the word layer can be expressed at all.
	Supported() bool

	// Apply renders line with [offset, offset+length) in the word style
	// and the rest in base. Returns the rendered line and whether the
	// range styling was applied; out-of-range offsets fall back to
	// base-only rendering.
	Apply(line string, offset, length int, base lipgloss.Style) (string, bool)
}

// DetectRangeHighlighter probes the terminal's color profile once at
// startup and returns the matching implementation.
func DetectRangeHighlighter(profile termenv.Profile, word lipgloss.Style) RangeHighlighter {
	if profile == termenv.Ascii {
		return unsupportedRange{}
	}
	return styledRange{word: word}
}

// styledRange styles the word range as a separately rendered segment
// between two base-rendered segments. Chunked rendering keeps the word
// style additive: the base style resumes after the word without nesting
// ANSI sequences.
type styledRange struct {
	word lipgloss.Style
}

func (s styledRange) Supported() bool { return true }

func (s styledRange) Apply(line string, offset, length int, base lipgloss.Style) (string, bool) {
	if offset < 0 || length <= 0 || offset+length > len(line) {
		return base.Render(line), false
	}
	rendered := base.Render(line[:offset]) +
		s.word.Render(line[offset:offset+length]) +
		base.Render(line[offset+length:])
	return rendered, true
}

// unsupportedRange is the fallback for terminals that cannot express a
// second visual layer.
type unsupportedRange struct{}

func (unsupportedRange) Supported() bool { return false }

func (unsupportedRange) Apply(line string, _, _ int, base lipgloss.Style) (string, bool) {
	return base.Render(line), false
}
