// Package highlight applies the two highlight layers to the rendered page
// and arbitrates automatic scrolling against user intent.
//
// The Coordinator lives in the UI's execution context and mirrors the
// sync engine's state asynchronously: it consumes bridge events and never
// calls back into the engine. Correctness against out-of-order delivery
// rests on the staleness guard, not on locking.
package highlight

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/lectern-reader/lectern/internal/timing"
)

// Latency budgets. Exceeding one is logged for diagnostics and changes
// nothing else: playback never blocks on highlighting.
const (
	ParagraphLatencyBudget = 200 * time.Millisecond
	WordLatencyBudget      = 100 * time.Millisecond
)

// State mirrors the engine's indices plus the two layer flags. The flags
// are independent: that independence is the invariant this package
// exists to enforce.
type State struct {
	ParagraphIndex int
	WordIndex      int // -1 when no word is lit
	ParagraphLit   bool
	WordLit        bool
}

// Coordinator owns the highlight state for one session. It is not
// goroutine-safe: all calls happen on the UI update loop.
type Coordinator struct {
	state State

	// Word boundaries for the paragraph they were attached to. wordsFor
	// diverging from the tracked paragraph means the boundaries are
	// stale and the word layer has nothing to resolve against.
	words    []timing.WordBoundary
	wordsFor int

	scroll     *ScrollArbiter
	capability RangeHighlighter
	now        func() time.Time
	logger     *log.Logger
}

// New creates a coordinator. The capability decides whether word-level
// highlighting is expressible at all.
func New(capability RangeHighlighter, scroll *ScrollArbiter, logger *log.Logger) *Coordinator {
	if scroll == nil {
		scroll = NewScrollArbiter(0)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Coordinator{
		state:      State{WordIndex: -1},
		wordsFor:   -1,
		scroll:     scroll,
		capability: capability,
		now:        time.Now,
		logger:     logger,
	}
}

// ApplyParagraph moves the paragraph layer to index. Only the paragraph
// layer is touched: at most one paragraph is lit at a time, and the word
// layer stays untouched (it resolves against the tracked paragraph, so a
// stale word simply stops rendering until fresh boundaries arrive).
// Returns whether the caller should auto-scroll to the paragraph. The
// caller owns the programmatic-scroll flag: it marks the arbiter only if
// it actually moves the viewport, since the target line may already be
// visible and a phantom flag would swallow a real user scroll.
func (c *Coordinator) ApplyParagraph(index int, timestampMs int64) bool {
	c.measureLatency("paragraph", timestampMs, ParagraphLatencyBudget)

	c.state.ParagraphIndex = index
	c.state.ParagraphLit = true

	return c.scroll.ShouldAutoScroll()
}

// SetWordTimeline attaches normalized boundaries for a paragraph.
func (c *Coordinator) SetWordTimeline(paragraph int, boundaries []timing.WordBoundary) {
	c.words = boundaries
	c.wordsFor = paragraph
}

// ApplyWord lights a word within the tracked paragraph. A message for any
// other paragraph is stale — it raced a fast paragraph transition — and
// is discarded. Returns whether the word layer was updated.
func (c *Coordinator) ApplyWord(paragraph, word int, timestampMs int64) bool {
	c.measureLatency("word", timestampMs, WordLatencyBudget)

	if paragraph != c.state.ParagraphIndex {
		c.logger.Debug("discarding stale word highlight",
			"paragraph", paragraph, "tracked", c.state.ParagraphIndex, "word", word)
		return false
	}
	if !c.capability.Supported() {
		return false
	}
	if c.wordsFor != paragraph || word < 0 || word >= len(c.words) {
		return false
	}

	c.state.WordIndex = word
	c.state.WordLit = true
	return true
}

// ClearParagraphLayer drops the paragraph marker. The word layer is
// deliberately untouched; routing both layers through one clear is the
// historical bug this split exists to prevent.
func (c *Coordinator) ClearParagraphLayer() {
	c.state.ParagraphLit = false
}

// ClearWordLayer drops the word marker, leaving the paragraph layer
// alone.
func (c *Coordinator) ClearWordLayer() {
	c.state.WordLit = false
	c.state.WordIndex = -1
}

// ClearAll drops both layers. Reserved for session stop and completion.
func (c *Coordinator) ClearAll() {
	c.ClearParagraphLayer()
	c.ClearWordLayer()
	c.words = nil
	c.wordsFor = -1
}

// State returns the current highlight state.
func (c *Coordinator) State() State {
	return c.state
}

// WordRange resolves the lit word's character range within its paragraph
// text. ok is false when no word is lit or the attached boundaries no
// longer match the tracked paragraph.
func (c *Coordinator) WordRange() (paragraph, offset, length int, ok bool) {
	if !c.state.WordLit || c.wordsFor != c.state.ParagraphIndex {
		return 0, 0, 0, false
	}
	if c.state.WordIndex < 0 || c.state.WordIndex >= len(c.words) {
		return 0, 0, 0, false
	}
	b := c.words[c.state.WordIndex]
	return c.wordsFor, b.CharOffset, b.CharLength, true
}

func (c *Coordinator) measureLatency(layer string, timestampMs int64, budget time.Duration) {
	if timestampMs <= 0 {
		return
	}
	latency := c.now().Sub(time.UnixMilli(timestampMs))
	if latency > budget {
		c.logger.Warn("highlight latency budget exceeded",
			"layer", layer, "latency", latency, "budget", budget)
	}
}
