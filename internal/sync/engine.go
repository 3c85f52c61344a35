// Package sync owns the playback synchronization state: the paragraph
// timeline, the audio-position-to-index mapping, and the frame-paced
// reconciliation loop that drives highlight events over the bridge.
//
// One Engine exists per playback session. All timeline reads and index
// writes happen under one mutex, driven by a single ticker goroutine; the
// tick never blocks, it only reads the clock and a precomputed timeline.
package sync

import (
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/lectern-reader/lectern/internal/bridge"
	"github.com/lectern-reader/lectern/internal/timeline"
	"github.com/lectern-reader/lectern/internal/timing"
)

// Common errors for engine lifecycle operations.
var (
	ErrAlreadyStarted = errors.New("sync engine already started")
	ErrNotStarted     = errors.New("sync engine not started")
)

// Clock is the externally advancing audio position source.
type Clock interface {
	// Position returns the elapsed audio time.
	Position() time.Duration
}

// Seeker is implemented by clocks that support discontinuous jumps. When
// the engine's clock is also a Seeker, seek operations move the audio
// position as well as the computed indices.
type Seeker interface {
	Seek(pos time.Duration) error
}

// WordSource supplies normalized word boundaries for a paragraph, or nil
// when the provider has no word-level timing for it. Absence is a normal
// degraded mode: the engine simply never emits word events.
type WordSource interface {
	WordTimeline(paragraph int) []timing.WordBoundary
}

// Config tunes the engine's pacing.
type Config struct {
	TickRate     time.Duration // reconciliation tick, default 16ms (~60Hz)
	ProgressRate rate.Limit    // progress events per second, default 4
	Logger       *log.Logger
}

// DefaultConfig returns the pacing used in production.
func DefaultConfig() Config {
	return Config{
		TickRate:     16 * time.Millisecond,
		ProgressRate: 4,
	}
}

// Engine reconciles the audio clock against the paragraph timeline and
// emits highlight and progress events.
type Engine struct {
	mu     sync.Mutex
	tl     *timeline.Timeline
	clock  Clock
	br     *bridge.Bridge
	source WordSource

	words   []timing.WordBoundary // active paragraph's boundaries, nil when absent
	paraIdx int
	wordIdx int // -1 when no word is active

	running bool
	paused  bool
	stopCh  chan struct{}

	tick    time.Duration
	limiter *rate.Limiter
	logger  *log.Logger
}

// New creates an engine for one playback session.
func New(tl *timeline.Timeline, clock Clock, br *bridge.Bridge, source WordSource, cfg Config) *Engine {
	if cfg.TickRate <= 0 {
		cfg.TickRate = DefaultConfig().TickRate
	}
	if cfg.ProgressRate <= 0 {
		cfg.ProgressRate = DefaultConfig().ProgressRate
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Engine{
		tl:      tl,
		clock:   clock,
		br:      br,
		source:  source,
		paraIdx: 0,
		wordIdx: -1,
		tick:    cfg.TickRate,
		limiter: rate.NewLimiter(cfg.ProgressRate, 1),
		logger:  cfg.Logger,
	}
}

// Start begins the reconciliation loop. The paragraph event for the
// initial index is emitted unconditionally before the first tick: a plain
// changed-index guard would suppress it (the index is still at its
// default) and leave the first paragraph unhighlighted.
func (e *Engine) Start() error {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return ErrAlreadyStarted
	}
	e.running = true
	e.paused = false
	e.stopCh = make(chan struct{})
	e.applyPositionLocked(e.clock.Position(), true)
	stopCh := e.stopCh
	e.mu.Unlock()

	go e.loop(stopCh)
	return nil
}

// Stop halts the loop and resets the indices. The session is expected to
// follow up with a ClearHighlightMsg so the coordinator drops both layers.
func (e *Engine) Stop() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return ErrNotStarted
	}
	e.running = false
	close(e.stopCh)
	e.paraIdx = 0
	e.wordIdx = -1
	e.words = nil
	return nil
}

// Pause freezes the loop but retains all state for Resume.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = true
}

// Resume continues a paused loop.
func (e *Engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = false
}

// SeekTo jumps to an absolute audio position. The position is clamped to
// the timeline, the indices are recomputed, and change events are emitted
// unconditionally: after a discontinuous jump the last-known index is
// stale even when it happens to be numerically equal.
func (e *Engine) SeekTo(pos time.Duration) {
	if pos < 0 {
		pos = 0
	}
	if total := e.tl.Total(); pos > total {
		pos = total
	}
	if s, ok := e.clock.(Seeker); ok {
		if err := s.Seek(pos); err != nil {
			e.logger.Warn("clock seek failed", "pos", pos, "err", err)
		}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.applyPositionLocked(pos, true)
}

// SeekToParagraph jumps to the start of a paragraph.
func (e *Engine) SeekToParagraph(index int) {
	e.SeekTo(e.tl.Entry(index).Start)
}

// SeekToWord jumps to the exact start time of a word within a paragraph,
// falling back to the paragraph start when no word timing exists.
func (e *Engine) SeekToWord(paragraph, word int) {
	entry := e.tl.Entry(paragraph)
	pos := entry.Start
	if e.source != nil {
		if boundaries := e.source.WordTimeline(entry.Index); word >= 0 && word < len(boundaries) {
			pos = entry.Start + boundaries[word].Start
		}
	}
	e.SeekTo(pos)
}

// SetWordTimeline attaches word boundaries for the active paragraph and
// forwards them to the coordinator.
func (e *Engine) SetWordTimeline(boundaries []timing.WordBoundary) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.words = boundaries
	e.wordIdx = -1
	if boundaries != nil {
		e.br.Publish(bridge.SetWordTimelineMsg{ParagraphIndex: e.paraIdx, Boundaries: boundaries})
	}
}

// ClearWordTimeline detaches word boundaries; the engine falls back to
// paragraph-only sync.
func (e *Engine) ClearWordTimeline() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.words = nil
	e.wordIdx = -1
}

// RescaleToActual rescales the timeline once the audio source reports its
// authoritative duration, then re-emits the current indices: rescaling can
// move the position into a different paragraph.
func (e *Engine) RescaleToActual(actual time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.tl.RescaleToActual(actual); err != nil {
		return err
	}
	if e.running {
		e.applyPositionLocked(e.clock.Position(), true)
	}
	return nil
}

// CurrentParagraph returns the active paragraph index.
func (e *Engine) CurrentParagraph() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paraIdx
}

// CurrentWord returns the active word index, -1 when none.
func (e *Engine) CurrentWord() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.wordIdx
}

// IsRunning reports whether the loop is active (paused counts as running).
func (e *Engine) IsRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Timeline exposes the engine's timeline for consumers that need entry
// boundaries (e.g. click-to-seek).
func (e *Engine) Timeline() *timeline.Timeline {
	return e.tl
}

func (e *Engine) loop(stopCh <-chan struct{}) {
	ticker := time.NewTicker(e.tick)
	defer ticker.Stop()
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			e.tickOnce()
		}
	}
}

// tickOnce is one reconciliation step: read the clock, resolve indices,
// emit what changed.
func (e *Engine) tickOnce() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running || e.paused {
		return
	}
	pos := e.clock.Position()
	e.applyPositionLocked(pos, false)
	if e.limiter.Allow() {
		e.br.Publish(progressMsg(pos, e.tl.Total()))
	}
}

// applyPositionLocked resolves the paragraph and word for pos. With force
// set, events are emitted even when the indices are unchanged (session
// start and seeks).
func (e *Engine) applyPositionLocked(pos time.Duration, force bool) {
	idx := e.tl.IndexAt(pos)
	if force || idx != e.paraIdx {
		e.transitionLocked(idx)
	}
	if len(e.words) == 0 {
		return
	}
	rel := pos - e.tl.Entry(e.paraIdx).Start
	w := timing.IndexAt(e.words, rel)
	if w >= 0 && (force || w != e.wordIdx) {
		e.wordIdx = w
		e.br.Publish(bridge.HighlightWordMsg{
			ParagraphIndex: e.paraIdx,
			WordIndex:      w,
			Timestamp:      bridge.Now(),
		})
	}
}

// transitionLocked enters a paragraph: the paragraph event always goes out
// before the word timeline is attached, so no word event for the new
// paragraph can precede its paragraph event.
func (e *Engine) transitionLocked(idx int) {
	e.paraIdx = idx
	e.wordIdx = -1
	e.words = nil
	e.br.Publish(bridge.HighlightMsg{Index: idx, Timestamp: bridge.Now()})
	if e.source == nil {
		return
	}
	if boundaries := e.source.WordTimeline(idx); boundaries != nil {
		e.words = boundaries
		e.br.Publish(bridge.SetWordTimelineMsg{ParagraphIndex: idx, Boundaries: boundaries})
	}
}
