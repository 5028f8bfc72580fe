//go:build (linux && cgo) || windows || darwin

package audio

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
)

// AudioAvailable indicates whether audio playback is supported in this build.
const AudioAvailable = true

// BeepPlayer plays mp3 preview streams through the system speaker.
type BeepPlayer struct {
	mu sync.Mutex

	source      TrackSource
	sampleRate  beep.SampleRate
	initialized bool

	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	volume   *effects.Volume

	level float64 // last requested volume in [0,1]
}

// NewBeepPlayer creates a player that resolves track audio through the
// given source.
func NewBeepPlayer(source TrackSource) *BeepPlayer {
	return &BeepPlayer{
		source:     source,
		sampleRate: beep.SampleRate(44100),
		level:      1.0,
	}
}

// Play fetches, decodes and starts the track. It returns once samples
// are flowing; onFinished fires when the stream runs out.
func (p *BeepPlayer) Play(ctx context.Context, trackID int64, onFinished func()) error {
	rc, err := p.source.Open(ctx, trackID)
	if err != nil {
		return fmt.Errorf("failed to open track %d: %w", trackID, err)
	}

	streamer, format, err := mp3.Decode(rc)
	if err != nil {
		rc.Close()
		return fmt.Errorf("failed to decode track %d: %w", trackID, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	if !p.initialized {
		if err := speaker.Init(p.sampleRate, p.sampleRate.N(time.Second/10)); err != nil {
			streamer.Close()
			return fmt.Errorf("failed to initialize speaker: %w", err)
		}
		p.initialized = true
	}

	p.streamer = streamer
	p.format = format

	resampled := beep.Resample(4, format.SampleRate, p.sampleRate, streamer)
	p.ctrl = &beep.Ctrl{Streamer: resampled}
	p.volume = &effects.Volume{
		Streamer: p.ctrl,
		Base:     2,
		Volume:   volumeGain(p.level),
		Silent:   p.level == 0,
	}

	speaker.Play(beep.Seq(p.volume, beep.Callback(func() {
		if onFinished != nil {
			// Run in its own goroutine: the callback fires while the
			// speaker lock is held and typically starts the next track.
			go onFinished()
		}
	})))

	return nil
}

// volumeGain maps a [0,1] level to a base-2 gain for effects.Volume.
func volumeGain(level float64) float64 {
	if level <= 0 {
		return 0
	}
	return math.Log2(level)
}

// Pause pauses playback.
func (p *BeepPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl != nil {
		speaker.Lock()
		p.ctrl.Paused = true
		speaker.Unlock()
	}
}

// Resume resumes paused playback.
func (p *BeepPlayer) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl != nil {
		speaker.Lock()
		p.ctrl.Paused = false
		speaker.Unlock()
	}
}

// Stop stops playback and releases the stream.
func (p *BeepPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *BeepPlayer) stopLocked() {
	if p.ctrl != nil {
		speaker.Lock()
		p.ctrl.Paused = true
		speaker.Unlock()
	}
	if p.streamer != nil {
		p.streamer.Close()
		p.streamer = nil
	}
	p.ctrl = nil
	p.volume = nil
}

// Seek sets the playback position.
func (p *BeepPlayer) Seek(pos time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.streamer == nil {
		return ErrNothingLoaded
	}

	speaker.Lock()
	defer speaker.Unlock()
	return p.streamer.Seek(p.format.SampleRate.N(pos))
}

// SetVolume sets the output level in [0,1]. Zero silences the output.
func (p *BeepPlayer) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.level = v

	if p.volume != nil {
		speaker.Lock()
		p.volume.Volume = volumeGain(v)
		p.volume.Silent = v == 0
		speaker.Unlock()
	}
}

// Position returns the current playback position.
func (p *BeepPlayer) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.streamer == nil {
		return 0
	}

	speaker.Lock()
	pos := p.streamer.Position()
	speaker.Unlock()
	return p.format.SampleRate.D(pos)
}

// Duration returns the total duration of the loaded track.
func (p *BeepPlayer) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.streamer == nil {
		return 0
	}
	return p.format.SampleRate.D(p.streamer.Len())
}

// IsPlaying reports whether a track is loaded and not paused.
func (p *BeepPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ctrl == nil {
		return false
	}
	speaker.Lock()
	paused := p.ctrl.Paused
	speaker.Unlock()
	return !paused
}

// Close stops playback.
func (p *BeepPlayer) Close() error {
	p.Stop()
	return nil
}
