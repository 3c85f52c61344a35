package audio

import (
	"testing"
	"time"
)

func TestTimerPlayerLifecycle(t *testing.T) {
	p := NewTimerPlayer()

	if err := p.Play(Clip{}); err != ErrNothingToPlay {
		t.Errorf("Play with no duration: got %v, want ErrNothingToPlay", err)
	}

	clip := Clip{Duration: time.Hour} // long enough to never complete mid-test
	if err := p.Play(clip); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if !p.IsPlaying() {
		t.Error("player should be playing")
	}
	if err := p.Play(clip); err != ErrAlreadyPlaying {
		t.Errorf("second Play: got %v, want ErrAlreadyPlaying", err)
	}
	if got := p.Duration(); got != time.Hour {
		t.Errorf("Duration = %v, want 1h", got)
	}

	if err := p.Pause(); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	if p.IsPlaying() {
		t.Error("paused player reports playing")
	}
	frozen := p.Position()
	time.Sleep(10 * time.Millisecond)
	if got := p.Position(); got != frozen {
		t.Errorf("position advanced while paused: %v -> %v", frozen, got)
	}
	if err := p.Pause(); err != ErrNotPlaying {
		t.Errorf("double Pause: got %v, want ErrNotPlaying", err)
	}

	if err := p.Resume(); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	if got := p.Position(); got != 0 {
		t.Errorf("position after Stop = %v, want 0", got)
	}
}

func TestTimerPlayerSeek(t *testing.T) {
	p := NewTimerPlayer()
	if err := p.Play(Clip{Duration: time.Hour}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	defer p.Stop() //nolint:errcheck

	if err := p.Seek(30 * time.Minute); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	if got := p.Position(); got < 30*time.Minute || got > 30*time.Minute+time.Second {
		t.Errorf("position after seek = %v, want ~30m", got)
	}

	// Clamping.
	if err := p.Seek(-time.Minute); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	if got := p.Position(); got > time.Second {
		t.Errorf("negative seek landed at %v, want 0", got)
	}
	if err := p.Seek(2 * time.Hour); err != nil {
		t.Fatalf("Seek failed: %v", err)
	}
	if got := p.Position(); got != time.Hour {
		t.Errorf("past-end seek landed at %v, want clip duration", got)
	}
}

func TestTimerPlayerCompletion(t *testing.T) {
	p := NewTimerPlayer()
	if err := p.Play(Clip{Duration: 20 * time.Millisecond}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	select {
	case <-p.Done():
	case <-time.After(time.Second):
		t.Fatal("Done never closed")
	}
	if got := p.Position(); got != 20*time.Millisecond {
		t.Errorf("position after completion = %v, want clip duration", got)
	}
	if p.IsPlaying() {
		t.Error("completed player reports playing")
	}
}

func TestTimerPlayerStopDoesNotCloseDone(t *testing.T) {
	p := NewTimerPlayer()
	if err := p.Play(Clip{Duration: time.Hour}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	done := p.Done()
	if err := p.Stop(); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}
	select {
	case <-done:
		t.Error("Stop closed Done; only natural completion should")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMockPlayerAdvance(t *testing.T) {
	p := NewMockPlayer()
	if err := p.Play(Clip{Duration: time.Second}); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	p.Advance(300 * time.Millisecond)
	if got := p.Position(); got != 300*time.Millisecond {
		t.Errorf("Position = %v, want 300ms", got)
	}

	if err := p.Pause(); err != nil {
		t.Fatalf("Pause failed: %v", err)
	}
	p.Advance(300 * time.Millisecond)
	if got := p.Position(); got != 300*time.Millisecond {
		t.Errorf("paused Advance moved the position to %v", got)
	}
	if err := p.Resume(); err != nil {
		t.Fatalf("Resume failed: %v", err)
	}

	p.Advance(time.Second)
	select {
	case <-p.Done():
	default:
		t.Error("Done not closed after advancing past the clip end")
	}
	if got := p.Position(); got != time.Second {
		t.Errorf("Position = %v, want clamped to duration", got)
	}
}
