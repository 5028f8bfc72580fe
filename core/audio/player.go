package audio

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrNothingLoaded is returned by operations that need a loaded track.
	ErrNothingLoaded = errors.New("no track loaded")
)

// TrackSource opens the audio stream behind a track identifier. The API
// client's preview endpoint implements it; tests use an in-memory source.
type TrackSource interface {
	Open(ctx context.Context, trackID int64) (io.ReadCloser, error)
}

// Player is the playback primitive: it plays one track at a time and
// owns no business state beyond the transient position.
//
// Play returns only after playback has actually started, and onFinished
// fires when the track runs to its natural end. Callers sequence on
// these signals; there is no fixed settle delay anywhere in the
// contract.
type Player interface {
	Play(ctx context.Context, trackID int64, onFinished func()) error
	Pause()
	Resume()
	Stop()
	Seek(pos time.Duration) error
	SetVolume(v float64)
	Position() time.Duration
	Duration() time.Duration
	IsPlaying() bool
	Close() error
}
