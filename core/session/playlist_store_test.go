package session

import (
	"testing"

	"hbcplayer/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaylistStore_SetTracksClampsIndex(t *testing.T) {
	s := NewPlaylistStore()

	s.SetTracks([]int64{1, 2, 3}, 7)
	assert.Equal(t, 2, s.CurrentIndex())

	s.SetTracks([]int64{1, 2, 3}, -4)
	assert.Equal(t, 0, s.CurrentIndex())

	s.SetTracks(nil, 5)
	assert.Equal(t, 0, s.CurrentIndex())
	assert.Equal(t, 0, s.Len())
}

func TestPlaylistStore_SetIndexRejectsOutOfRange(t *testing.T) {
	s := NewPlaylistStore()
	s.SetTracks([]int64{10, 20}, 0)

	require.NoError(t, s.SetIndex(1))
	assert.Equal(t, 1, s.CurrentIndex())

	assert.ErrorIs(t, s.SetIndex(2), ErrIndexOutOfRange)
	assert.ErrorIs(t, s.SetIndex(-1), ErrIndexOutOfRange)
	assert.Equal(t, 1, s.CurrentIndex())
}

func TestPlaylistStore_NextPrevClampAtBounds(t *testing.T) {
	s := NewPlaylistStore()
	s.SetTracks([]int64{10, 20, 30}, 0)

	assert.True(t, s.Next())
	assert.True(t, s.Next())
	assert.Equal(t, 2, s.CurrentIndex())

	// At the end the pointer stays put.
	assert.False(t, s.Next())
	assert.Equal(t, 2, s.CurrentIndex())

	assert.True(t, s.Prev())
	assert.True(t, s.Prev())
	assert.Equal(t, 0, s.CurrentIndex())

	assert.False(t, s.Prev())
	assert.Equal(t, 0, s.CurrentIndex())
}

func TestPlaylistStore_NextPrevOnEmptyQueue(t *testing.T) {
	s := NewPlaylistStore()
	assert.False(t, s.Next())
	assert.False(t, s.Prev())
	assert.Equal(t, 0, s.CurrentIndex())
}

func TestPlaylistStore_AppendAllowsDuplicates(t *testing.T) {
	s := NewPlaylistStore()
	assert.Equal(t, 0, s.Append(7))
	assert.Equal(t, 1, s.Append(7))
	assert.Equal(t, 2, s.Len())
}

func TestPlaylistStore_RemoveAdjustsPointer(t *testing.T) {
	s := NewPlaylistStore()
	s.SetTracks([]int64{1, 2, 3, 4}, 2)

	// Removing before the pointer shifts it left with the track it points at.
	require.NoError(t, s.Remove(0))
	assert.Equal(t, 1, s.CurrentIndex())
	id, ok := s.CurrentTrackID()
	require.True(t, ok)
	assert.Equal(t, int64(3), id)

	// Removing the last element while pointing at it clamps back.
	require.NoError(t, s.SetIndex(2))
	require.NoError(t, s.Remove(2))
	assert.Equal(t, 1, s.CurrentIndex())

	assert.ErrorIs(t, s.Remove(9), ErrIndexOutOfRange)
}

func TestPlaylistStore_IndexOfFindsFirstOccurrence(t *testing.T) {
	s := NewPlaylistStore()
	s.SetTracks([]int64{5, 6, 5}, 0)

	i, ok := s.IndexOf(5)
	assert.True(t, ok)
	assert.Equal(t, 0, i)

	_, ok = s.IndexOf(99)
	assert.False(t, ok)
}

func TestPlaylistStore_OnChangeFiresWithSnapshot(t *testing.T) {
	s := NewPlaylistStore()

	var calls int
	var last []int64
	s.OnChange(func(p model.Playlist) {
		calls++
		last = p.TrackIDs
	})

	s.SetTracks([]int64{1, 2}, 0)
	s.Append(3)
	require.NoError(t, s.SetIndex(2))

	assert.Equal(t, 3, calls)
	assert.Equal(t, []int64{1, 2, 3}, last)

	// The snapshot must be a copy, not the live slice.
	last[0] = 99
	snap := s.Snapshot()
	assert.Equal(t, int64(1), snap.TrackIDs[0])
}

func TestPlaylistStore_CurrentTrackIDOnEmpty(t *testing.T) {
	s := NewPlaylistStore()
	_, ok := s.CurrentTrackID()
	assert.False(t, ok)
}
