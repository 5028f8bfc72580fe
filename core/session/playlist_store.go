// Package session implements the client-side playback session: the
// playlist queue, the audio state, their local persistence, the sync
// service that reconciles them with the server, and the orchestrator
// that ties user actions to the playback primitive.
package session

import (
	"errors"
	"sync"

	"hbcplayer/model"
)

// ErrIndexOutOfRange is returned when a requested queue position does
// not exist.
var ErrIndexOutOfRange = errors.New("playlist index out of range")

// PlaylistStore holds the playback queue: an ordered list of track ids
// and a pointer at the current position. Duplicates are allowed; the
// pointer is always kept inside [0, len) while the queue is non-empty.
//
// Next and Prev clamp at the boundaries and report whether the pointer
// moved. Out-of-range positions handed to SetIndex are an error, never
// silently accepted.
type PlaylistStore struct {
	mu           sync.RWMutex
	trackIDs     []int64
	currentIndex int

	onChange func(model.Playlist)
}

// NewPlaylistStore creates an empty queue.
func NewPlaylistStore() *PlaylistStore {
	return &PlaylistStore{}
}

// OnChange installs a hook invoked (outside the lock) with a snapshot
// after every mutation. Used for local persistence.
func (s *PlaylistStore) OnChange(fn func(model.Playlist)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *PlaylistStore) notify(snapshot model.Playlist, fn func(model.Playlist)) {
	if fn != nil {
		fn(snapshot)
	}
}

// SetTracks replaces the whole queue. The index is clamped into range;
// pass 0 to start from the top.
func (s *PlaylistStore) SetTracks(trackIDs []int64, currentIndex int) {
	s.mu.Lock()
	s.trackIDs = append([]int64(nil), trackIDs...)
	s.currentIndex = currentIndex
	s.clampLocked()
	snapshot := s.snapshotLocked()
	fn := s.onChange
	s.mu.Unlock()

	s.notify(snapshot, fn)
}

// SetIndex moves the pointer to an existing position.
func (s *PlaylistStore) SetIndex(i int) error {
	s.mu.Lock()
	if i < 0 || i >= len(s.trackIDs) {
		s.mu.Unlock()
		return ErrIndexOutOfRange
	}
	s.currentIndex = i
	snapshot := s.snapshotLocked()
	fn := s.onChange
	s.mu.Unlock()

	s.notify(snapshot, fn)
	return nil
}

// Next advances the pointer by one, clamped at the end. Returns whether
// the pointer moved.
func (s *PlaylistStore) Next() bool {
	s.mu.Lock()
	if s.currentIndex+1 >= len(s.trackIDs) {
		s.mu.Unlock()
		return false
	}
	s.currentIndex++
	snapshot := s.snapshotLocked()
	fn := s.onChange
	s.mu.Unlock()

	s.notify(snapshot, fn)
	return true
}

// Prev moves the pointer back by one, clamped at the start. Returns
// whether the pointer moved.
func (s *PlaylistStore) Prev() bool {
	s.mu.Lock()
	if s.currentIndex <= 0 || len(s.trackIDs) == 0 {
		s.mu.Unlock()
		return false
	}
	s.currentIndex--
	snapshot := s.snapshotLocked()
	fn := s.onChange
	s.mu.Unlock()

	s.notify(snapshot, fn)
	return true
}

// Append adds a track to the end of the queue (no de-duplication) and
// returns its position.
func (s *PlaylistStore) Append(trackID int64) int {
	s.mu.Lock()
	s.trackIDs = append(s.trackIDs, trackID)
	idx := len(s.trackIDs) - 1
	snapshot := s.snapshotLocked()
	fn := s.onChange
	s.mu.Unlock()

	s.notify(snapshot, fn)
	return idx
}

// Remove deletes the track at the given position and re-clamps the
// pointer.
func (s *PlaylistStore) Remove(i int) error {
	s.mu.Lock()
	if i < 0 || i >= len(s.trackIDs) {
		s.mu.Unlock()
		return ErrIndexOutOfRange
	}
	s.trackIDs = append(s.trackIDs[:i], s.trackIDs[i+1:]...)
	if i < s.currentIndex {
		s.currentIndex--
	}
	s.clampLocked()
	snapshot := s.snapshotLocked()
	fn := s.onChange
	s.mu.Unlock()

	s.notify(snapshot, fn)
	return nil
}

// Reset empties the queue.
func (s *PlaylistStore) Reset() {
	s.SetTracks(nil, 0)
}

// IndexOf returns the first position of the track id in the queue.
func (s *PlaylistStore) IndexOf(trackID int64) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, id := range s.trackIDs {
		if id == trackID {
			return i, true
		}
	}
	return 0, false
}

// Len returns the queue length.
func (s *PlaylistStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.trackIDs)
}

// CurrentIndex returns the pointer position.
func (s *PlaylistStore) CurrentIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentIndex
}

// CurrentTrackID returns the track id under the pointer; ok is false on
// an empty queue.
func (s *PlaylistStore) CurrentTrackID() (int64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.trackIDs) == 0 {
		return 0, false
	}
	return s.trackIDs[s.currentIndex], true
}

// Snapshot returns a copy of the queue state.
func (s *PlaylistStore) Snapshot() model.Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *PlaylistStore) snapshotLocked() model.Playlist {
	return model.Playlist{
		TrackIDs:     append([]int64(nil), s.trackIDs...),
		CurrentIndex: s.currentIndex,
	}
}

func (s *PlaylistStore) clampLocked() {
	if len(s.trackIDs) == 0 {
		s.currentIndex = 0
		return
	}
	if s.currentIndex < 0 {
		s.currentIndex = 0
	}
	if s.currentIndex >= len(s.trackIDs) {
		s.currentIndex = len(s.trackIDs) - 1
	}
}
