package model

import "fmt"

// MaxPlaylistTracks caps the number of track ids a playlist may carry,
// both client-side and on the wire.
const MaxPlaylistTracks = 100

// Playlist is the persisted playback queue: an ordered list of track ids
// plus a pointer at the current position. Duplicates are allowed.
// CurrentIndex is meaningful only when TrackIDs is non-empty.
type Playlist struct {
	TrackIDs     []int64 `json:"trackIds"`
	CurrentIndex int     `json:"currentIndex"`
}

// IsEmpty reports whether the playlist has no tracks.
func (p Playlist) IsEmpty() bool { return len(p.TrackIDs) == 0 }

// CurrentTrackID returns the track id at the current index.
// ok is false when the playlist is empty or the index is out of range.
func (p Playlist) CurrentTrackID() (int64, bool) {
	if p.CurrentIndex < 0 || p.CurrentIndex >= len(p.TrackIDs) {
		return 0, false
	}
	return p.TrackIDs[p.CurrentIndex], true
}

// Clamp forces CurrentIndex into [0, len(TrackIDs)). On an empty list the
// index is reset to 0.
func (p *Playlist) Clamp() {
	if len(p.TrackIDs) == 0 {
		p.CurrentIndex = 0
		return
	}
	if p.CurrentIndex < 0 {
		p.CurrentIndex = 0
	}
	if p.CurrentIndex >= len(p.TrackIDs) {
		p.CurrentIndex = len(p.TrackIDs) - 1
	}
}

// Validate checks the wire-level constraints: at most MaxPlaylistTracks
// ids, non-negative index. An index past the end is allowed here and
// clamped by the receiver.
func (p Playlist) Validate() error {
	if len(p.TrackIDs) > MaxPlaylistTracks {
		return fmt.Errorf("playlist exceeds %d tracks: %d", MaxPlaylistTracks, len(p.TrackIDs))
	}
	if p.CurrentIndex < 0 {
		return fmt.Errorf("currentIndex must be >= 0, got %d", p.CurrentIndex)
	}
	return nil
}

// PlaylistTracksResponse is the wire shape of auto/manual playlist
// resolution: just the ordered track ids.
type PlaylistTracksResponse struct {
	TrackIDs []int64 `json:"trackIds"`
}

// ManualPlaylistRequest carries an explicit, user-curated id list.
type ManualPlaylistRequest struct {
	TrackIDs []int64 `json:"trackIds"`
}
