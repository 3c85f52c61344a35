package highlight

import (
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/lectern-reader/lectern/internal/bridge"
	"github.com/lectern-reader/lectern/internal/timing"
)

func testBoundaries() []timing.WordBoundary {
	return []timing.WordBoundary{
		{Word: "one", CharOffset: 0, CharLength: 3, Start: 0, End: 100 * time.Millisecond},
		{Word: "two", CharOffset: 4, CharLength: 3, Start: 100 * time.Millisecond, End: 200 * time.Millisecond},
		{Word: "three", CharOffset: 8, CharLength: 5, Start: 200 * time.Millisecond, End: 400 * time.Millisecond},
	}
}

func newTestCoordinator() *Coordinator {
	capability := DetectRangeHighlighter(termenv.TrueColor, lipgloss.NewStyle())
	return New(capability, NewScrollArbiter(0), nil)
}

func TestDualLayerIndependence(t *testing.T) {
	c := newTestCoordinator()

	c.ApplyParagraph(2, bridge.Now())
	c.SetWordTimeline(2, testBoundaries())
	if !c.ApplyWord(2, 2, bridge.Now()) {
		t.Fatal("ApplyWord rejected a valid word")
	}

	st := c.State()
	if !st.ParagraphLit || !st.WordLit {
		t.Fatalf("both layers should be lit, got %+v", st)
	}

	// Clearing the paragraph layer must leave the word layer lit.
	c.ClearParagraphLayer()
	st = c.State()
	if st.ParagraphLit {
		t.Error("paragraph layer still lit after ClearParagraphLayer")
	}
	if !st.WordLit {
		t.Error("ClearParagraphLayer must not clear the word layer")
	}

	// And vice versa.
	c.ApplyParagraph(2, bridge.Now())
	c.ClearWordLayer()
	st = c.State()
	if st.WordLit {
		t.Error("word layer still lit after ClearWordLayer")
	}
	if !st.ParagraphLit {
		t.Error("ClearWordLayer must not clear the paragraph layer")
	}
}

func TestStaleWordHighlightDiscarded(t *testing.T) {
	c := newTestCoordinator()
	c.ApplyParagraph(2, bridge.Now())
	c.SetWordTimeline(2, testBoundaries())

	// A word message for paragraph 1 arrives after the transition to 2.
	if c.ApplyWord(1, 0, bridge.Now()) {
		t.Error("word highlight for a non-tracked paragraph must be discarded")
	}
	if st := c.State(); st.WordLit {
		t.Errorf("stale message mutated state: %+v", st)
	}
}

func TestApplyWordResolvesRange(t *testing.T) {
	c := newTestCoordinator()
	c.ApplyParagraph(0, bridge.Now())
	c.SetWordTimeline(0, testBoundaries())

	if !c.ApplyWord(0, 1, bridge.Now()) {
		t.Fatal("ApplyWord rejected a valid word")
	}
	para, offset, length, ok := c.WordRange()
	if !ok {
		t.Fatal("WordRange not resolvable after ApplyWord")
	}
	if para != 0 || offset != 4 || length != 3 {
		t.Errorf("WordRange = (%d, %d, %d), want (0, 4, 3)", para, offset, length)
	}
}

func TestApplyWordRejectsOutOfRangeIndex(t *testing.T) {
	c := newTestCoordinator()
	c.ApplyParagraph(0, bridge.Now())
	c.SetWordTimeline(0, testBoundaries())

	for _, word := range []int{-1, 3, 99} {
		if c.ApplyWord(0, word, bridge.Now()) {
			t.Errorf("ApplyWord accepted out-of-range word %d", word)
		}
	}
}

func TestApplyWordWithoutBoundaries(t *testing.T) {
	c := newTestCoordinator()
	c.ApplyParagraph(1, bridge.Now())

	// No SetWordTimeline yet: paragraph-only mode, word rejected quietly.
	if c.ApplyWord(1, 0, bridge.Now()) {
		t.Error("ApplyWord accepted a word with no boundaries attached")
	}
}

func TestUnsupportedCapabilityDegradesSilently(t *testing.T) {
	c := New(DetectRangeHighlighter(termenv.Ascii, lipgloss.NewStyle()), NewScrollArbiter(0), nil)
	c.ApplyParagraph(0, bridge.Now())
	c.SetWordTimeline(0, testBoundaries())

	if c.ApplyWord(0, 0, bridge.Now()) {
		t.Error("ascii terminal must fall back to paragraph-only highlighting")
	}
	if st := c.State(); !st.ParagraphLit {
		t.Error("paragraph layer must survive the degraded word path")
	}
}

func TestWordRangeStaleAfterParagraphChange(t *testing.T) {
	c := newTestCoordinator()
	c.ApplyParagraph(0, bridge.Now())
	c.SetWordTimeline(0, testBoundaries())
	c.ApplyWord(0, 0, bridge.Now())

	// Fast transition: paragraph changes before new boundaries arrive.
	c.ApplyParagraph(1, bridge.Now())
	if _, _, _, ok := c.WordRange(); ok {
		t.Error("WordRange must not resolve against the previous paragraph's boundaries")
	}
}

func TestClearAll(t *testing.T) {
	c := newTestCoordinator()
	c.ApplyParagraph(0, bridge.Now())
	c.SetWordTimeline(0, testBoundaries())
	c.ApplyWord(0, 0, bridge.Now())

	c.ClearAll()
	st := c.State()
	if st.ParagraphLit || st.WordLit {
		t.Errorf("layers survive ClearAll: %+v", st)
	}
	if _, _, _, ok := c.WordRange(); ok {
		t.Error("boundaries survive ClearAll")
	}
}

func TestLatencyOverrunDoesNotChangeBehavior(t *testing.T) {
	c := newTestCoordinator()
	// A timestamp from two seconds ago blows both budgets; the highlight
	// must land anyway.
	old := time.Now().Add(-2 * time.Second).UnixMilli()
	if scroll := c.ApplyParagraph(3, old); !scroll {
		t.Error("late paragraph event must still highlight and scroll")
	}
	if st := c.State(); !st.ParagraphLit || st.ParagraphIndex != 3 {
		t.Errorf("late paragraph event dropped: %+v", st)
	}

	c.SetWordTimeline(3, testBoundaries())
	if !c.ApplyWord(3, 0, old) {
		t.Error("late word event must still highlight")
	}
}

func TestScrollSuppressionFlowsThroughApplyParagraph(t *testing.T) {
	clock := &fakeClock{t: time.UnixMilli(10_000)}
	arbiter := NewScrollArbiter(0)
	arbiter.now = clock.now
	c := New(DetectRangeHighlighter(termenv.TrueColor, lipgloss.NewStyle()), arbiter, nil)
	c.now = clock.now

	arbiter.NoteUserScroll()
	clock.advanceTo(11_000)
	if c.ApplyParagraph(1, clock.t.UnixMilli()) {
		t.Error("scroll should be suppressed inside the cooldown")
	}
	if st := c.State(); !st.ParagraphLit || st.ParagraphIndex != 1 {
		t.Errorf("suppressed scroll must not suppress the highlight: %+v", st)
	}

	clock.advanceTo(14_500)
	if !c.ApplyParagraph(2, clock.t.UnixMilli()) {
		t.Error("scroll should proceed after the cooldown")
	}
}

// An approved transition whose scroll the caller then skips (target line
// already on screen) must not open a programmatic window: a user scroll
// right after it is genuine and has to start the cooldown.
func TestApprovedButSkippedScrollKeepsUserScrollAlive(t *testing.T) {
	clock := &fakeClock{t: time.UnixMilli(10_000)}
	arbiter := NewScrollArbiter(0)
	arbiter.now = clock.now
	c := New(DetectRangeHighlighter(termenv.TrueColor, lipgloss.NewStyle()), arbiter, nil)
	c.now = clock.now

	if !c.ApplyParagraph(0, clock.t.UnixMilli()) {
		t.Fatal("first transition should approve an auto-scroll")
	}
	// Caller skips the viewport move, then the user scrolls 200ms later.
	clock.advanceTo(10_200)
	arbiter.NoteUserScroll()

	clock.advanceTo(11_200)
	if c.ApplyParagraph(1, clock.t.UnixMilli()) {
		t.Error("auto-scroll must stay suppressed after a recent user scroll")
	}

	clock.advanceTo(14_300)
	if !c.ApplyParagraph(2, clock.t.UnixMilli()) {
		t.Error("scroll should resume once the cooldown has elapsed")
	}
}
