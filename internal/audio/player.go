// Package audio provides playback position sources for the sync engine.
//
// A Player is both the transport (play/pause/stop) and the engine's
// clock: its Position is the externally advancing time the sync loop
// reconciles against, and its Duration is the authoritative value that
// triggers the timeline rescale.
package audio

import (
	"errors"
	"sync"
	"time"
)

// Common errors for playback operations.
var (
	ErrNothingToPlay  = errors.New("no audio clip to play")
	ErrNotPlaying     = errors.New("no playback in progress")
	ErrAlreadyPlaying = errors.New("playback already in progress")
	ErrUnavailable    = errors.New("audio device unavailable")
)

// Clip is one session's worth of synthesized audio. Data may be empty for
// providers that only supply timing (the timer player ignores it).
type Clip struct {
	Data       []byte
	SampleRate int
	Channels   int
	Duration   time.Duration
}

// Player is the transport and clock for one playback session.
type Player interface {
	// Play starts the clip from the beginning.
	Play(clip Clip) error

	// Pause freezes the position; Resume continues it.
	Pause() error
	Resume() error

	// Stop halts playback and resets the position to zero.
	Stop() error

	// Seek jumps to an absolute position, clamped to the clip.
	Seek(pos time.Duration) error

	// Position returns the elapsed playback time.
	Position() time.Duration

	// Duration returns the authoritative clip duration, zero before Play.
	Duration() time.Duration

	// IsPlaying reports whether audio is advancing (paused is not playing).
	IsPlaying() bool

	// Done is closed when the clip plays to completion. Stop does not
	// close it.
	Done() <-chan struct{}
}

// TimerPlayer simulates playback against the wall clock. It backs the
// mock speech provider and any environment without an audio device, and
// it is the position-tracking core the oto player builds on.
type TimerPlayer struct {
	mu        sync.Mutex
	duration  time.Duration
	base      time.Duration // position at the last start/seek/pause
	startedAt time.Time
	playing   bool
	paused    bool
	done      chan struct{}
	completed bool
	timer     *time.Timer
}

// NewTimerPlayer creates a stopped timer player.
func NewTimerPlayer() *TimerPlayer {
	return &TimerPlayer{done: make(chan struct{})}
}

// Play implements Player.
func (p *TimerPlayer) Play(clip Clip) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing {
		return ErrAlreadyPlaying
	}
	if clip.Duration <= 0 {
		return ErrNothingToPlay
	}
	p.duration = clip.Duration
	p.base = 0
	p.startedAt = time.Now()
	p.playing = true
	p.paused = false
	p.completed = false
	p.done = make(chan struct{})
	p.resetTimerLocked(clip.Duration)
	return nil
}

// Pause implements Player.
func (p *TimerPlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing || p.paused {
		return ErrNotPlaying
	}
	p.base = p.positionLocked()
	p.paused = true
	p.stopTimerLocked()
	return nil
}

// Resume implements Player.
func (p *TimerPlayer) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing || !p.paused {
		return ErrNotPlaying
	}
	p.paused = false
	p.startedAt = time.Now()
	p.resetTimerLocked(p.duration - p.base)
	return nil
}

// Stop implements Player.
func (p *TimerPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	p.paused = false
	p.base = 0
	p.stopTimerLocked()
	return nil
}

// Seek implements Player.
func (p *TimerPlayer) Seek(pos time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if pos < 0 {
		pos = 0
	}
	if pos > p.duration {
		pos = p.duration
	}
	p.base = pos
	p.startedAt = time.Now()
	if p.playing && !p.paused {
		p.resetTimerLocked(p.duration - pos)
	}
	return nil
}

// Position implements Player.
func (p *TimerPlayer) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.positionLocked()
}

// Duration implements Player.
func (p *TimerPlayer) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

// IsPlaying implements Player.
func (p *TimerPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing && !p.paused
}

// Done implements Player.
func (p *TimerPlayer) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

func (p *TimerPlayer) positionLocked() time.Duration {
	if !p.playing || p.paused {
		return p.base
	}
	pos := p.base + time.Since(p.startedAt)
	if pos > p.duration {
		return p.duration
	}
	return pos
}

func (p *TimerPlayer) resetTimerLocked(remaining time.Duration) {
	p.stopTimerLocked()
	if remaining < 0 {
		remaining = 0
	}
	p.timer = time.AfterFunc(remaining, p.complete)
}

func (p *TimerPlayer) stopTimerLocked() {
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *TimerPlayer) complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing || p.completed {
		return
	}
	p.base = p.duration
	p.playing = false
	p.completed = true
	close(p.done)
}
