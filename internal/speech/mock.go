package speech

import (
	"context"
	"time"

	"github.com/lectern-reader/lectern/internal/audio"
	"github.com/lectern-reader/lectern/internal/document"
	"github.com/lectern-reader/lectern/internal/timing"
)

// MockProvider paces words at a fixed rate and emits a deterministic
// word-granularity timing payload. It produces no audio bytes; playback
// runs on the timer player.
type MockProvider struct {
	// WordsPerMinute is the speaking rate; zero means 170.
	WordsPerMinute int

	// GenerationDelay simulates synthesis latency per paragraph.
	GenerationDelay time.Duration

	// WithoutTiming disables the timing payload, exercising the
	// paragraph-only degraded mode end to end.
	WithoutTiming bool
}

// Name implements Provider.
func (m *MockProvider) Name() string { return "mock" }

// Synthesize implements Provider.
func (m *MockProvider) Synthesize(ctx context.Context, text string) (*Result, error) {
	words := document.SplitWords(text)
	if len(words) == 0 {
		return nil, ErrEmptyText
	}
	if m.GenerationDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.GenerationDelay):
		}
	}

	wpm := m.WordsPerMinute
	if wpm <= 0 {
		wpm = 170
	}
	perWord := time.Minute / time.Duration(wpm)
	total := time.Duration(len(words)) * perWord

	result := &Result{
		Clip: audio.Clip{
			SampleRate: 22050,
			Channels:   1,
			Duration:   total,
		},
	}
	if m.WithoutTiming {
		return result, nil
	}

	payload := &timing.WordPayload{
		Words:       make([]string, len(words)),
		StartMs:     make([]float64, len(words)),
		DurationsMs: make([]float64, len(words)),
	}
	perWordMs := float64(perWord) / float64(time.Millisecond)
	for i, w := range words {
		payload.Words[i] = w.Text
		payload.StartMs[i] = float64(i) * perWordMs
		payload.DurationsMs[i] = perWordMs
	}
	result.Timing = &timing.Payload{Words: payload}
	return result, nil
}
