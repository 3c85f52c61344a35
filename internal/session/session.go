// Package session wires one document to one playback run: it synthesizes
// audio per paragraph, builds the estimated timeline, starts the sync
// engine against the player's clock, and routes seek requests from the
// bridge back into the engine.
package session

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/lectern-reader/lectern/internal/audio"
	"github.com/lectern-reader/lectern/internal/bridge"
	"github.com/lectern-reader/lectern/internal/cache"
	"github.com/lectern-reader/lectern/internal/document"
	"github.com/lectern-reader/lectern/internal/speech"
	"github.com/lectern-reader/lectern/internal/sync"
	"github.com/lectern-reader/lectern/internal/timeline"
	"github.com/lectern-reader/lectern/internal/timing"
)

// Common errors for session lifecycle.
var (
	ErrNotPrepared = errors.New("session not prepared")
	ErrNoPlayback  = errors.New("no playback in progress")
)

// Config tunes a session.
type Config struct {
	// WordsPerMinute is the planning rate for duration estimates.
	// Zero means 170, matching the mock provider's default pace.
	WordsPerMinute int

	// Cache stores synthesis results across runs. Optional.
	Cache *cache.Store

	// Engine overrides the sync engine pacing. Zero values take the
	// engine defaults.
	Engine sync.Config

	Logger *log.Logger
}

// Session owns one document's playback lifecycle. Prepare must complete
// before Play; after Stop the session can be played again from the top.
type Session struct {
	doc      *document.Document
	provider speech.Provider
	player   audio.Player
	br       *bridge.Bridge
	cfg      Config
	log      *log.Logger

	mu         stdsync.Mutex
	clip       audio.Clip
	boundaries [][]timing.WordBoundary
	engine     *sync.Engine
	prepared   bool
	playing    bool
	routeStop  chan struct{}
}

// New creates an unprepared session.
func New(doc *document.Document, provider speech.Provider, player audio.Player, br *bridge.Bridge, cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.WordsPerMinute <= 0 {
		cfg.WordsPerMinute = 170
	}
	return &Session{
		doc:      doc,
		provider: provider,
		player:   player,
		br:       br,
		cfg:      cfg,
		log:      cfg.Logger,
	}
}

// cachedResult is the gob shape stored per paragraph.
type cachedResult struct {
	Data       []byte
	SampleRate int
	Channels   int
	Duration   time.Duration
	Timing     *timing.Payload
}

// Prepare synthesizes every paragraph, normalizes word timing, and builds
// the estimated timeline. Paragraphs the provider cannot voice get an
// empty slot and stay navigable.
func (s *Session) Prepare(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := len(s.doc.Paragraphs)
	s.boundaries = make([][]timing.WordBoundary, count)
	clip := audio.Clip{}
	estimated := time.Duration(0)

	for i, p := range s.doc.Paragraphs {
		estimated += speech.EstimateDuration(p.Text, s.cfg.WordsPerMinute)

		res, err := s.synthesize(ctx, p.Text)
		if errors.Is(err, speech.ErrEmptyText) {
			continue
		}
		if err != nil {
			return fmt.Errorf("synthesizing paragraph %d: %w", i, err)
		}

		if clip.SampleRate == 0 {
			clip.SampleRate = res.Clip.SampleRate
			clip.Channels = res.Clip.Channels
		}
		clip.Data = append(clip.Data, res.Clip.Data...)
		clip.Duration += res.Clip.Duration

		if res.Timing != nil {
			s.boundaries[i] = timing.Normalize(*res.Timing, p.Text)
		}
	}

	tl, err := timeline.Build(s.doc.Paragraphs, estimated)
	if err != nil {
		return err
	}

	engCfg := s.cfg.Engine
	if engCfg.Logger == nil {
		engCfg.Logger = s.log
	}
	s.clip = clip
	s.engine = sync.New(tl, s.player, s.br, s, engCfg)
	s.prepared = true
	s.log.Debug("session prepared",
		"paragraphs", count,
		"estimated", estimated,
		"actual", clip.Duration)
	return nil
}

// synthesize runs the provider through the cache when one is configured.
func (s *Session) synthesize(ctx context.Context, text string) (*speech.Result, error) {
	if s.cfg.Cache == nil {
		return s.provider.Synthesize(ctx, text)
	}

	key := cache.Key(s.provider.Name(), text)
	if blob, err := s.cfg.Cache.Get(key); err == nil {
		var cr cachedResult
		if decErr := gob.NewDecoder(bytes.NewReader(blob)).Decode(&cr); decErr == nil {
			return &speech.Result{
				Clip: audio.Clip{
					Data:       cr.Data,
					SampleRate: cr.SampleRate,
					Channels:   cr.Channels,
					Duration:   cr.Duration,
				},
				Timing: cr.Timing,
			}, nil
		}
		s.log.Warn("discarding undecodable cache entry", "key", key)
	}

	res, err := s.provider.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	cr := cachedResult{
		Data:       res.Clip.Data,
		SampleRate: res.Clip.SampleRate,
		Channels:   res.Clip.Channels,
		Duration:   res.Clip.Duration,
		Timing:     res.Timing,
	}
	if encErr := gob.NewEncoder(&buf).Encode(cr); encErr == nil {
		if putErr := s.cfg.Cache.Put(key, buf.Bytes()); putErr != nil {
			s.log.Warn("cache write failed", "key", key, "error", putErr)
		}
	}
	return res, nil
}

// WordTimeline implements sync.WordSource.
func (s *Session) WordTimeline(paragraph int) []timing.WordBoundary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if paragraph < 0 || paragraph >= len(s.boundaries) {
		return nil
	}
	return s.boundaries[paragraph]
}

// Play starts audio and the sync engine, rescales the timeline to the
// player's authoritative duration, and begins routing inbound seeks.
func (s *Session) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.prepared {
		return ErrNotPrepared
	}
	if s.playing {
		return audio.ErrAlreadyPlaying
	}

	if err := s.player.Play(s.clip); err != nil {
		return err
	}
	if err := s.engine.Start(); err != nil {
		s.player.Stop() //nolint:errcheck
		return err
	}
	if !s.engine.Timeline().DurationAccurate() {
		if actual := s.player.Duration(); actual > 0 {
			if err := s.engine.RescaleToActual(actual); err != nil {
				s.log.Warn("timeline rescale failed", "error", err)
			}
		}
	}

	s.playing = true
	s.routeStop = make(chan struct{})
	go s.route(s.routeStop, s.player.Done())
	return nil
}

// Pause freezes both the audio and the sync loop.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		return ErrNoPlayback
	}
	if err := s.player.Pause(); err != nil {
		return err
	}
	s.engine.Pause()
	return nil
}

// Resume continues a paused session.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		return ErrNoPlayback
	}
	if err := s.player.Resume(); err != nil {
		return err
	}
	s.engine.Resume()
	return nil
}

// Stop halts playback and clears both highlight layers. The only path
// that emits ClearHighlightMsg.
func (s *Session) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopLocked(true)
}

func (s *Session) stopLocked(stopPlayer bool) error {
	if !s.playing {
		return ErrNoPlayback
	}
	s.playing = false
	close(s.routeStop)
	if stopPlayer {
		s.player.Stop() //nolint:errcheck
	}
	if err := s.engine.Stop(); err != nil {
		return err
	}
	s.br.Publish(bridge.ClearHighlightMsg{})
	return nil
}

// Paused reports whether audio exists but is not advancing.
func (s *Session) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing && !s.player.IsPlaying()
}

// Playing reports whether a session run is active, paused or not.
func (s *Session) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// SeekToParagraph jumps playback to a paragraph start.
func (s *Session) SeekToParagraph(index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		return ErrNoPlayback
	}
	s.engine.SeekToParagraph(index)
	return nil
}

// SeekToWord jumps playback to a word's exact start time, falling back to
// the paragraph start when no word timing exists.
func (s *Session) SeekToWord(paragraph, word int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		return ErrNoPlayback
	}
	s.engine.SeekToWord(paragraph, word)
	return nil
}

// NextParagraph and PrevParagraph are relative seeks for transport keys.
func (s *Session) NextParagraph() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		return ErrNoPlayback
	}
	s.engine.SeekToParagraph(s.engine.CurrentParagraph() + 1)
	return nil
}

func (s *Session) PrevParagraph() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		return ErrNoPlayback
	}
	s.engine.SeekToParagraph(s.engine.CurrentParagraph() - 1)
	return nil
}

// route consumes inbound bridge events and watches for natural playback
// completion. It exits when the run stops either way.
func (s *Session) route(stop <-chan struct{}, done <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case <-done:
			s.mu.Lock()
			if err := s.stopLocked(false); err != nil && !errors.Is(err, ErrNoPlayback) {
				s.log.Warn("completion teardown failed", "error", err)
			}
			s.mu.Unlock()
			return
		case ev, ok := <-s.br.Inbound():
			if !ok {
				return
			}
			s.handleInbound(ev)
		}
	}
}

func (s *Session) handleInbound(ev bridge.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.playing {
		return
	}
	switch msg := ev.(type) {
	case bridge.JumpToParagraphMsg:
		s.engine.SeekToParagraph(msg.Index)
	case bridge.JumpToWordMsg:
		s.engine.SeekToWord(msg.ParagraphIndex, msg.WordIndex)
	default:
		s.log.Debug("ignoring inbound event", "type", fmt.Sprintf("%T", ev))
	}
}
