package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lectern-reader/lectern/internal/bridge"
	"github.com/lectern-reader/lectern/internal/document"
)

const testMarkdown = `# Title

First paragraph with several words.

Second paragraph here.
`

func newTestModel(t *testing.T) model {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.md")
	if err := os.WriteFile(path, []byte(testMarkdown), 0o644); err != nil {
		t.Fatal(err)
	}
	m := newModel(Config{Path: path, Provider: "mock"}).(model)
	t.Cleanup(func() { m.teardown() })

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	m = next.(model)

	doc, err := document.Extract([]byte(testMarkdown))
	if err != nil {
		t.Fatal(err)
	}
	doc.Path = path
	next, _ = m.Update(docLoadedMsg{doc: doc})
	return next.(model)
}

func TestPlayStateString(t *testing.T) {
	for state, want := range map[playState]string{
		stateIdle:      "idle",
		statePreparing: "synthesizing",
		statePlaying:   "playing",
		statePaused:    "paused",
	} {
		if got := state.String(); got != want {
			t.Errorf("playState(%d).String() = %q, want %q", state, got, want)
		}
	}
}

func TestIsScrollKey(t *testing.T) {
	for _, k := range []string{"j", "k", "g", "G", "b", "f", "u", "d"} {
		if !isScrollKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}) {
			t.Errorf("isScrollKey(%q) = false, want true", k)
		}
	}
	if !isScrollKey(tea.KeyMsg{Type: tea.KeyUp}) {
		t.Error(`isScrollKey(up) = false, want true`)
	}
	if isScrollKey(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")}) {
		t.Error(`isScrollKey("x") = true, want false`)
	}
}

func TestHighlightEventLightsParagraph(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(bridge.HighlightMsg{Index: 1, Timestamp: bridge.Now()})
	m = next.(model)

	state := m.coord.State()
	if !state.ParagraphLit || state.ParagraphIndex != 1 {
		t.Errorf("coordinator state = %+v, want paragraph 1 lit", state)
	}
}

func TestClearHighlightEventResetsBothLayers(t *testing.T) {
	m := newTestModel(t)

	next, _ := m.Update(bridge.HighlightMsg{Index: 0, Timestamp: bridge.Now()})
	m = next.(model)
	next, _ = m.Update(bridge.ClearHighlightMsg{})
	m = next.(model)

	state := m.coord.State()
	if state.ParagraphLit || state.WordLit {
		t.Errorf("coordinator state = %+v, want both layers cleared", state)
	}
}

func TestProgressEventReachesStatusBar(t *testing.T) {
	m := newTestModel(t)
	m.state = statePlaying

	next, _ := m.Update(bridge.ProgressMsg{Percent: 42, TimeRemaining: "1:30"})
	m = next.(model)

	note := m.noteView()
	if !strings.Contains(note, "1:30") {
		t.Errorf("noteView() = %q, want remaining time shown", note)
	}
}

func TestNoteViewIdleShowsParagraphCount(t *testing.T) {
	m := newTestModel(t)
	note := m.noteView()
	if !strings.Contains(note, "3 paragraphs") {
		t.Errorf("noteView() = %q, want paragraph count", note)
	}
}

func TestScrollKeysSuppressAutoScroll(t *testing.T) {
	m := newTestModel(t)
	if !m.arbiter.ShouldAutoScroll() {
		t.Fatal("auto-scroll should start allowed")
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	m = next.(model)

	if m.arbiter.ShouldAutoScroll() {
		t.Error("auto-scroll still allowed right after a manual scroll key")
	}
}

func TestContentWidthRespectsMaxWidth(t *testing.T) {
	m := newTestModel(t)
	m.cfg.MaxWidth = 40
	if got := m.contentWidth(); got != 40 {
		t.Errorf("contentWidth() = %d, want 40", got)
	}
	m.cfg.MaxWidth = 0
	if got := m.contentWidth(); got != 80 {
		t.Errorf("contentWidth() = %d, want 80", got)
	}
}

func TestMouseWheelDeltaConfiguresViewport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.md")
	if err := os.WriteFile(path, []byte(testMarkdown), 0o644); err != nil {
		t.Fatal(err)
	}
	m := newModel(Config{Path: path, Provider: "mock", MouseWheelDelta: 5}).(model)
	t.Cleanup(func() { m.teardown() })
	if m.viewport.MouseWheelDelta != 5 {
		t.Errorf("viewport wheel delta = %d, want 5", m.viewport.MouseWheelDelta)
	}

	// Zero means keep the bubble's default rather than freezing the wheel.
	m2 := newModel(Config{Path: path, Provider: "mock"}).(model)
	t.Cleanup(func() { m2.teardown() })
	if m2.viewport.MouseWheelDelta <= 0 {
		t.Errorf("unset wheel delta left viewport at %d", m2.viewport.MouseWheelDelta)
	}
}

func TestIndent(t *testing.T) {
	got := indent("a\nb", 2)
	if got != "  a\n  b" {
		t.Errorf("indent() = %q", got)
	}
	if indent("a", 0) != "a" {
		t.Error("indent with n=0 should be a no-op")
	}
}
