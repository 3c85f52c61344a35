// Package speech defines the synthesis provider boundary. Providers
// supply audio bytes, a duration, and optionally a raw word-timing
// payload in one of the shapes the timing adapter understands. The sync
// core never sees a provider directly.
package speech

import (
	"context"
	"errors"
	"time"

	"github.com/lectern-reader/lectern/internal/audio"
	"github.com/lectern-reader/lectern/internal/document"
	"github.com/lectern-reader/lectern/internal/timing"
)

// Common errors for synthesis.
var (
	ErrEmptyText = errors.New("nothing to synthesize")
)

// Result is one paragraph's synthesis output. Timing is nil when the
// provider has no word-level data; that is a recognized degraded mode,
// not a failure.
type Result struct {
	Clip   audio.Clip
	Timing *timing.Payload
}

// Provider converts paragraph text into audio and timing.
type Provider interface {
	// Name identifies the provider for logging and cache keys.
	Name() string

	// Synthesize produces audio for one paragraph of text.
	Synthesize(ctx context.Context, text string) (*Result, error)
}

// EstimateDuration predicts speaking time for text at a planning rate.
// The timeline is built from this estimate and rescaled once the real
// clip duration is known.
func EstimateDuration(text string, wordsPerMinute int) time.Duration {
	if wordsPerMinute <= 0 {
		wordsPerMinute = 150
	}
	words := len(document.SplitWords(text))
	if words == 0 {
		words = 1
	}
	return time.Duration(words) * time.Minute / time.Duration(wordsPerMinute)
}
