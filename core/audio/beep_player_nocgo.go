//go:build !((linux && cgo) || windows || darwin)

package audio

import (
	"context"
	"time"
)

// AudioAvailable indicates whether audio playback is supported in this
// build. The speaker backend needs cgo for the native sound libraries.
const AudioAvailable = false

// BeepPlayer is a no-op player for builds without audio support. The
// session works normally, just silently.
type BeepPlayer struct {
	source TrackSource
}

// NewBeepPlayer creates a no-op player.
func NewBeepPlayer(source TrackSource) *BeepPlayer {
	return &BeepPlayer{source: source}
}

func (p *BeepPlayer) Play(ctx context.Context, trackID int64, onFinished func()) error {
	return nil
}

func (p *BeepPlayer) Pause() {}

func (p *BeepPlayer) Resume() {}

func (p *BeepPlayer) Stop() {}

func (p *BeepPlayer) Seek(pos time.Duration) error {
	return nil
}

func (p *BeepPlayer) SetVolume(v float64) {}

func (p *BeepPlayer) Position() time.Duration {
	return 0
}

func (p *BeepPlayer) Duration() time.Duration {
	return 0
}

func (p *BeepPlayer) IsPlaying() bool {
	return false
}

func (p *BeepPlayer) Close() error {
	return nil
}
