package audio

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MockPlayer simulates playback in memory for tests: no audio device, no
// decoding. FinishCurrent drives the onFinished callback by hand.
type MockPlayer struct {
	mu sync.Mutex

	current    int64
	playing    bool
	loaded     bool
	position   time.Duration
	duration   time.Duration
	level      float64
	onFinished func()

	failPlay bool
	played   []int64 // every track id passed to Play, in order
}

// NewMockPlayer creates a mock player with a 30s default track duration.
func NewMockPlayer() *MockPlayer {
	return &MockPlayer{duration: 30 * time.Second, level: 1.0}
}

// SetFailPlay makes subsequent Play calls fail.
func (p *MockPlayer) SetFailPlay(fail bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failPlay = fail
}

// Played returns every track id Play was called with.
func (p *MockPlayer) Played() []int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]int64, len(p.played))
	copy(out, p.played)
	return out
}

// Current returns the loaded track id, or 0.
func (p *MockPlayer) Current() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// FinishCurrent simulates the track running to its end.
func (p *MockPlayer) FinishCurrent() {
	p.mu.Lock()
	cb := p.onFinished
	p.playing = false
	p.loaded = false
	p.current = 0
	p.onFinished = nil
	p.mu.Unlock()

	if cb != nil {
		cb()
	}
}

func (p *MockPlayer) Play(ctx context.Context, trackID int64, onFinished func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failPlay {
		return errors.New("mock: play failed")
	}

	p.current = trackID
	p.playing = true
	p.loaded = true
	p.position = 0
	p.onFinished = onFinished
	p.played = append(p.played, trackID)
	return nil
}

func (p *MockPlayer) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loaded {
		p.playing = false
	}
}

func (p *MockPlayer) Resume() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loaded {
		p.playing = true
	}
}

func (p *MockPlayer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.playing = false
	p.loaded = false
	p.current = 0
	p.onFinished = nil
}

func (p *MockPlayer) Seek(pos time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.loaded {
		return ErrNothingLoaded
	}
	p.position = pos
	return nil
}

func (p *MockPlayer) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.level = v
}

func (p *MockPlayer) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position
}

func (p *MockPlayer) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.loaded {
		return 0
	}
	return p.duration
}

func (p *MockPlayer) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

func (p *MockPlayer) Close() error {
	p.Stop()
	return nil
}
