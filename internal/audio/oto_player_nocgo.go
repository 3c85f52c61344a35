//go:build !cgo

package audio

import "fmt"

// OtoPlayer requires cgo for the platform audio backends. Without it the
// constructor reports the device unavailable and callers fall back to the
// timer player.
type OtoPlayer struct {
	*TimerPlayer
}

// NewOtoPlayer always fails in nocgo builds.
func NewOtoPlayer(sampleRate, channels int) (*OtoPlayer, error) {
	return nil, fmt.Errorf("%w: built without cgo", ErrUnavailable)
}
