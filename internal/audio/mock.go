package audio

import (
	"sync"
	"time"
)

// MockPlayer is a Player whose position tests advance by hand, so sync
// behavior can be exercised without wall-clock sleeps.
type MockPlayer struct {
	mu       sync.Mutex
	pos      time.Duration
	duration time.Duration
	playing  bool
	paused   bool
	done     chan struct{}

	// Call counters for assertions.
	PlayCalls  int
	PauseCalls int
	StopCalls  int
	SeekCalls  int
}

// NewMockPlayer creates a stopped mock player.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{done: make(chan struct{})}
}

// Advance moves the position forward as if audio had played, closing Done
// when the clip end is reached.
func (p *MockPlayer) Advance(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing || p.paused {
		return
	}
	p.pos += d
	if p.pos >= p.duration {
		p.pos = p.duration
		p.playing = false
		close(p.done)
	}
}

// Play implements Player.
func (p *MockPlayer) Play(clip Clip) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.PlayCalls++
	if p.playing {
		return ErrAlreadyPlaying
	}
	if clip.Duration <= 0 {
		return ErrNothingToPlay
	}
	p.duration = clip.Duration
	p.pos = 0
	p.playing = true
	p.paused = false
	p.done = make(chan struct{})
	return nil
}

// Pause implements Player.
func (p *MockPlayer) Pause() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.PauseCalls++
	if !p.playing || p.paused {
		return ErrNotPlaying
	}
	p.paused = true
	return nil
}

// Resume implements Player.
func (p *MockPlayer) Resume() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.playing || !p.paused {
		return ErrNotPlaying
	}
	p.paused = false
	return nil
}

// Stop implements Player.
func (p *MockPlayer) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.StopCalls++
	p.playing = false
	p.paused = false
	p.pos = 0
	return nil
}

// Seek implements Player.
func (p *MockPlayer) Seek(pos time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.SeekCalls++
	if pos < 0 {
		pos = 0
	}
	if pos > p.duration {
		pos = p.duration
	}
	p.pos = pos
	return nil
}

// Position implements Player.
func (p *MockPlayer) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos
}

// Duration implements Player.
func (p *MockPlayer) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

// IsPlaying implements Player.
func (p *MockPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing && !p.paused
}

// Done implements Player.
func (p *MockPlayer) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}
