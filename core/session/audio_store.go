package session

import "sync"

// PlaybackStatus is the coarse player status.
type PlaybackStatus string

const (
	StatusIdle    PlaybackStatus = "idle"
	StatusPlaying PlaybackStatus = "playing"
	StatusPaused  PlaybackStatus = "paused"
	StatusEnded   PlaybackStatus = "ended"
)

// minUnmuteVolume is the floor applied when unmuting: a user who muted
// from zero still gets an audible level back.
const minUnmuteVolume = 0.05

// VolumeState is the persisted slice of the audio state. Product id and
// status are transient and reset on restart.
type VolumeState struct {
	Volume     float64 `json:"volume"`
	Muted      bool    `json:"muted"`
	LastVolume float64 `json:"lastVolume"`
}

// AudioStore holds the current track id, coarse playback status and the
// volume/mute state. It maintains two invariants on every mutation:
// volume == 0 exactly when muted, and IsPlaying exactly when the status
// is StatusPlaying.
type AudioStore struct {
	mu sync.RWMutex

	productID int64 // 0 when nothing is loaded
	status    PlaybackStatus
	isPlaying bool

	volume     float64
	muted      bool
	lastVolume float64

	onVolumeChange func(VolumeState)
}

// NewAudioStore creates an idle store at full volume.
func NewAudioStore() *AudioStore {
	return &AudioStore{
		status:     StatusIdle,
		volume:     1.0,
		lastVolume: 1.0,
	}
}

// OnVolumeChange installs a hook invoked (outside the lock) after every
// volume or mute mutation. Used for local persistence.
func (s *AudioStore) OnVolumeChange(fn func(VolumeState)) {
	s.mu.Lock()
	s.onVolumeChange = fn
	s.mu.Unlock()
}

// RestoreVolume loads a persisted volume state, re-establishing the
// volume/mute invariant for values written by older versions.
func (s *AudioStore) RestoreVolume(v VolumeState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.volume = clamp01(v.Volume)
	s.lastVolume = clamp01(v.LastVolume)
	s.muted = s.volume == 0
	if s.lastVolume == 0 {
		s.lastVolume = 1.0
	}
}

// SetProductID records the track loaded in the player; 0 clears it.
func (s *AudioStore) SetProductID(id int64) {
	s.mu.Lock()
	s.productID = id
	s.mu.Unlock()
}

// ProductID returns the loaded track id, or 0.
func (s *AudioStore) ProductID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.productID
}

// SetStatus sets the coarse status and recomputes IsPlaying.
func (s *AudioStore) SetStatus(status PlaybackStatus) {
	s.mu.Lock()
	s.status = status
	s.isPlaying = status == StatusPlaying
	s.mu.Unlock()
}

// Status returns the coarse status.
func (s *AudioStore) Status() PlaybackStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// SetPlaying sets the boolean view and recomputes the status as
// playing/paused.
func (s *AudioStore) SetPlaying(playing bool) {
	s.mu.Lock()
	s.isPlaying = playing
	if playing {
		s.status = StatusPlaying
	} else {
		s.status = StatusPaused
	}
	s.mu.Unlock()
}

// IsPlaying reports whether the status is StatusPlaying.
func (s *AudioStore) IsPlaying() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isPlaying
}

// SetVolume sets the level in [0,1]. Setting zero mutes; any other level
// unmutes and is remembered as the restore point.
func (s *AudioStore) SetVolume(v float64) {
	s.mu.Lock()
	v = clamp01(v)
	s.volume = v
	if v == 0 {
		s.muted = true
	} else {
		s.muted = false
		s.lastVolume = v
	}
	state := s.volumeStateLocked()
	fn := s.onVolumeChange
	s.mu.Unlock()

	if fn != nil {
		fn(state)
	}
}

// ToggleMute mutes to zero, or restores the last non-zero volume with a
// minimum floor.
func (s *AudioStore) ToggleMute() {
	s.mu.Lock()
	if s.muted {
		restored := s.lastVolume
		if restored < minUnmuteVolume {
			restored = minUnmuteVolume
		}
		s.volume = restored
		s.muted = false
	} else {
		if s.volume > 0 {
			s.lastVolume = s.volume
		}
		s.volume = 0
		s.muted = true
	}
	state := s.volumeStateLocked()
	fn := s.onVolumeChange
	s.mu.Unlock()

	if fn != nil {
		fn(state)
	}
}

// Volume returns the current level.
func (s *AudioStore) Volume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volume
}

// Muted reports whether output is muted.
func (s *AudioStore) Muted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.muted
}

// VolumeSnapshot returns the persisted slice of the state.
func (s *AudioStore) VolumeSnapshot() VolumeState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volumeStateLocked()
}

func (s *AudioStore) volumeStateLocked() VolumeState {
	return VolumeState{Volume: s.volume, Muted: s.muted, LastVolume: s.lastVolume}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
