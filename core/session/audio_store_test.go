package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAudioStore_VolumeZeroMeansMuted(t *testing.T) {
	s := NewAudioStore()

	s.SetVolume(0.6)
	assert.False(t, s.Muted())
	assert.Equal(t, 0.6, s.Volume())

	s.SetVolume(0)
	assert.True(t, s.Muted())
	assert.Equal(t, 0.0, s.Volume())

	s.SetVolume(0.3)
	assert.False(t, s.Muted())
	assert.Equal(t, 0.3, s.Volume())
}

func TestAudioStore_SetVolumeClamps(t *testing.T) {
	s := NewAudioStore()

	s.SetVolume(1.7)
	assert.Equal(t, 1.0, s.Volume())

	s.SetVolume(-0.2)
	assert.Equal(t, 0.0, s.Volume())
	assert.True(t, s.Muted())
}

func TestAudioStore_ToggleMuteRestoresLastVolume(t *testing.T) {
	s := NewAudioStore()
	s.SetVolume(0.8)

	s.ToggleMute()
	assert.True(t, s.Muted())
	assert.Equal(t, 0.0, s.Volume())

	s.ToggleMute()
	assert.False(t, s.Muted())
	assert.Equal(t, 0.8, s.Volume())
}

func TestAudioStore_UnmuteFloor(t *testing.T) {
	s := NewAudioStore()

	// Muting via SetVolume(0) keeps whatever lastVolume was; force it
	// tiny through RestoreVolume to hit the floor.
	s.RestoreVolume(VolumeState{Volume: 0, LastVolume: 0.01})
	assert.True(t, s.Muted())

	s.ToggleMute()
	assert.False(t, s.Muted())
	assert.Equal(t, minUnmuteVolume, s.Volume())
}

func TestAudioStore_RestoreVolumeReestablishesInvariant(t *testing.T) {
	s := NewAudioStore()

	// Inconsistent persisted state: volume 0 but not flagged muted.
	s.RestoreVolume(VolumeState{Volume: 0, Muted: false, LastVolume: 0})
	assert.True(t, s.Muted())
	assert.Equal(t, 1.0, s.VolumeSnapshot().LastVolume)

	s.RestoreVolume(VolumeState{Volume: 0.4, Muted: true, LastVolume: 0.4})
	assert.False(t, s.Muted())
}

func TestAudioStore_StatusDrivesIsPlaying(t *testing.T) {
	s := NewAudioStore()
	assert.Equal(t, StatusIdle, s.Status())
	assert.False(t, s.IsPlaying())

	s.SetStatus(StatusPlaying)
	assert.True(t, s.IsPlaying())

	s.SetStatus(StatusEnded)
	assert.False(t, s.IsPlaying())

	s.SetPlaying(true)
	assert.Equal(t, StatusPlaying, s.Status())
	s.SetPlaying(false)
	assert.Equal(t, StatusPaused, s.Status())
}

func TestAudioStore_OnVolumeChangeHook(t *testing.T) {
	s := NewAudioStore()

	var states []VolumeState
	s.OnVolumeChange(func(v VolumeState) { states = append(states, v) })

	s.SetVolume(0.5)
	s.ToggleMute()

	assert.Len(t, states, 2)
	assert.Equal(t, VolumeState{Volume: 0.5, Muted: false, LastVolume: 0.5}, states[0])
	assert.Equal(t, VolumeState{Volume: 0, Muted: true, LastVolume: 0.5}, states[1])
}
