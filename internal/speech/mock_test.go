package speech

import (
	"context"
	"testing"
	"time"

	"github.com/lectern-reader/lectern/internal/timing"
)

func TestMockProviderDeterministic(t *testing.T) {
	p := &MockProvider{WordsPerMinute: 60} // one word per second
	res, err := p.Synthesize(context.Background(), "one two three")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if res.Clip.Duration != 3*time.Second {
		t.Errorf("duration = %v, want 3s", res.Clip.Duration)
	}
	if res.Timing == nil || res.Timing.Words == nil {
		t.Fatal("expected a word-granularity timing payload")
	}

	boundaries := timing.Normalize(*res.Timing, "one two three")
	if len(boundaries) != 3 {
		t.Fatalf("normalized %d boundaries, want 3", len(boundaries))
	}
	if boundaries[1].Start != time.Second || boundaries[1].End != 2*time.Second {
		t.Errorf("word 1 timing = [%v,%v), want [1s,2s)", boundaries[1].Start, boundaries[1].End)
	}
}

func TestMockProviderWithoutTiming(t *testing.T) {
	p := &MockProvider{WithoutTiming: true}
	res, err := p.Synthesize(context.Background(), "hello there")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	if res.Timing != nil {
		t.Error("WithoutTiming provider still produced a payload")
	}
}

func TestMockProviderEmptyText(t *testing.T) {
	p := &MockProvider{}
	if _, err := p.Synthesize(context.Background(), "   "); err != ErrEmptyText {
		t.Errorf("got %v, want ErrEmptyText", err)
	}
}

func TestMockProviderHonorsContext(t *testing.T) {
	p := &MockProvider{GenerationDelay: time.Second}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Synthesize(ctx, "some text"); err != context.Canceled {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestEstimateDuration(t *testing.T) {
	tests := []struct {
		text string
		wpm  int
		want time.Duration
	}{
		{"one two three", 60, 3 * time.Second},
		{"one two three four five six", 120, 3 * time.Second},
		{"", 60, time.Second}, // empty text still occupies a slice
	}
	for _, tt := range tests {
		if got := EstimateDuration(tt.text, tt.wpm); got != tt.want {
			t.Errorf("EstimateDuration(%q, %d) = %v, want %v", tt.text, tt.wpm, got, tt.want)
		}
	}
}
