//go:build cgo

package audio

import (
	"bytes"
	"fmt"
	"time"

	"github.com/ebitengine/oto/v3"
)

// OtoPlayer plays 16-bit PCM through the system audio device. Position
// and completion tracking ride on an embedded TimerPlayer: oto exposes no
// position API, and wall-clock accounting stays within a buffer's worth
// of the device anyway, which the sync tick absorbs.
type OtoPlayer struct {
	timer *TimerPlayer
	ctx   *oto.Context

	// data keeps the PCM alive for the duration of playback; oto reads
	// from it asynchronously.
	data   []byte
	player *oto.Player
}

// NewOtoPlayer opens the system audio device for the given format.
func NewOtoPlayer(sampleRate, channels int) (*OtoPlayer, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: invalid format %dHz/%dch", ErrUnavailable, sampleRate, channels)
	}
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	<-ready
	return &OtoPlayer{timer: NewTimerPlayer(), ctx: ctx}, nil
}

// Play implements Player.
func (p *OtoPlayer) Play(clip Clip) error {
	if len(clip.Data) == 0 {
		return ErrNothingToPlay
	}
	if clip.Duration <= 0 {
		clip.Duration = pcmDuration(len(clip.Data), clip.SampleRate, clip.Channels)
	}
	if err := p.timer.Play(clip); err != nil {
		return err
	}
	p.data = clip.Data
	p.player = p.ctx.NewPlayer(bytes.NewReader(p.data))
	p.player.Play()
	return nil
}

// Pause implements Player.
func (p *OtoPlayer) Pause() error {
	if err := p.timer.Pause(); err != nil {
		return err
	}
	p.player.Pause()
	return nil
}

// Resume implements Player.
func (p *OtoPlayer) Resume() error {
	if err := p.timer.Resume(); err != nil {
		return err
	}
	p.player.Play()
	return nil
}

// Stop implements Player.
func (p *OtoPlayer) Stop() error {
	if p.player != nil {
		p.player.Pause()
		if err := p.player.Close(); err != nil {
			return err
		}
		p.player = nil
		p.data = nil
	}
	return p.timer.Stop()
}

// Seek implements Player.
func (p *OtoPlayer) Seek(pos time.Duration) error {
	if p.player == nil {
		return ErrNotPlaying
	}
	clip := p.timer.Duration()
	if pos < 0 {
		pos = 0
	}
	if pos > clip {
		pos = clip
	}
	offset := pcmOffset(pos, len(p.data), clip)
	if _, err := p.player.Seek(offset, 0); err != nil {
		return err
	}
	return p.timer.Seek(pos)
}

// Position implements Player.
func (p *OtoPlayer) Position() time.Duration { return p.timer.Position() }

// Duration implements Player.
func (p *OtoPlayer) Duration() time.Duration { return p.timer.Duration() }

// IsPlaying implements Player.
func (p *OtoPlayer) IsPlaying() bool { return p.timer.IsPlaying() }

// Done implements Player.
func (p *OtoPlayer) Done() <-chan struct{} { return p.timer.Done() }

// pcmDuration derives a clip duration from its PCM byte length.
func pcmDuration(byteLen, sampleRate, channels int) time.Duration {
	if sampleRate <= 0 || channels <= 0 {
		return 0
	}
	samples := byteLen / (2 * channels)
	return time.Duration(samples) * time.Second / time.Duration(sampleRate)
}

// pcmOffset maps a position to a frame-aligned byte offset.
func pcmOffset(pos time.Duration, byteLen int, total time.Duration) int64 {
	if total <= 0 {
		return 0
	}
	offset := int64(float64(byteLen) * float64(pos) / float64(total))
	return offset - offset%4
}
