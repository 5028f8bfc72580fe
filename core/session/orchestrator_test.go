package session

import (
	"context"
	"testing"

	"hbcplayer/core/audio"
	"hbcplayer/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrchestrator(t *testing.T) (*Orchestrator, *PlaylistStore, *AudioStore, *audio.MockPlayer, *fakeAPI) {
	t.Helper()
	api := &fakeAPI{}
	store := NewPlaylistStore()
	audioStore := NewAudioStore()
	player := audio.NewMockPlayer()
	svc := NewSyncService(api, store, true)
	orch := NewOrchestrator(store, audioStore, svc, player)
	return orch, store, audioStore, player, api
}

func TestOrchestrator_PlayNewTrackAppendsAndStarts(t *testing.T) {
	orch, store, audioStore, player, _ := newTestOrchestrator(t)

	require.NoError(t, orch.PlayTrack(context.Background(), 42))

	snap := store.Snapshot()
	assert.Equal(t, []int64{42}, snap.TrackIDs)
	assert.Equal(t, 0, snap.CurrentIndex)
	assert.Equal(t, int64(42), audioStore.ProductID())
	assert.Equal(t, StatusPlaying, audioStore.Status())
	assert.Equal(t, int64(42), player.Current())
}

func TestOrchestrator_PlayExistingTrackJumpsWithoutDuplicate(t *testing.T) {
	orch, store, audioStore, _, _ := newTestOrchestrator(t)
	store.SetTracks([]int64{1, 2, 3}, 0)

	require.NoError(t, orch.PlayTrack(context.Background(), 3))

	snap := store.Snapshot()
	assert.Equal(t, []int64{1, 2, 3}, snap.TrackIDs)
	assert.Equal(t, 2, snap.CurrentIndex)
	assert.Equal(t, int64(3), audioStore.ProductID())
	assert.True(t, audioStore.IsPlaying())
}

func TestOrchestrator_PlayCurrentTrackToggles(t *testing.T) {
	orch, _, audioStore, player, _ := newTestOrchestrator(t)

	require.NoError(t, orch.PlayTrack(context.Background(), 7))
	require.True(t, audioStore.IsPlaying())

	// Second click pauses.
	require.NoError(t, orch.PlayTrack(context.Background(), 7))
	assert.False(t, audioStore.IsPlaying())
	assert.False(t, player.IsPlaying())
	assert.Equal(t, StatusPaused, audioStore.Status())

	// Third click resumes: two clicks always restore the playing state.
	require.NoError(t, orch.PlayTrack(context.Background(), 7))
	assert.True(t, audioStore.IsPlaying())
	assert.True(t, player.IsPlaying())

	// The track was only ever started once.
	assert.Equal(t, []int64{7}, player.Played())
}

func TestOrchestrator_PlayEndedTrackRestarts(t *testing.T) {
	orch, _, audioStore, player, _ := newTestOrchestrator(t)

	require.NoError(t, orch.PlayTrack(context.Background(), 7))
	player.FinishCurrent()
	require.Equal(t, StatusEnded, audioStore.Status())

	require.NoError(t, orch.PlayTrack(context.Background(), 7))
	assert.Equal(t, StatusPlaying, audioStore.Status())
	assert.Equal(t, []int64{7, 7}, player.Played())
}

func TestOrchestrator_PlayFailureLeavesAudioStateUntouched(t *testing.T) {
	orch, store, audioStore, player, _ := newTestOrchestrator(t)
	player.SetFailPlay(true)

	err := orch.PlayTrack(context.Background(), 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "재생에 실패했습니다")

	assert.Equal(t, int64(0), audioStore.ProductID())
	assert.Equal(t, StatusIdle, audioStore.Status())
	// The queue mutation stands; only the audio state is rolled back.
	assert.Equal(t, []int64{42}, store.Snapshot().TrackIDs)
}

func TestOrchestrator_PlayIgnoresBogusID(t *testing.T) {
	orch, store, _, player, _ := newTestOrchestrator(t)

	require.NoError(t, orch.PlayTrack(context.Background(), 0))
	require.NoError(t, orch.PlayTrack(context.Background(), -3))
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, player.Played())
}

func TestOrchestrator_FinishedTrackAdvances(t *testing.T) {
	orch, store, audioStore, player, _ := newTestOrchestrator(t)
	store.SetTracks([]int64{1, 2}, 0)

	require.NoError(t, orch.PlayCurrent(context.Background()))
	player.FinishCurrent()

	assert.Equal(t, 1, store.CurrentIndex())
	assert.Equal(t, int64(2), audioStore.ProductID())
	assert.Equal(t, StatusPlaying, audioStore.Status())
	assert.Equal(t, []int64{1, 2}, player.Played())
}

func TestOrchestrator_FinishedLastTrackEnds(t *testing.T) {
	orch, store, audioStore, player, _ := newTestOrchestrator(t)
	store.SetTracks([]int64{1}, 0)

	require.NoError(t, orch.PlayCurrent(context.Background()))
	player.FinishCurrent()

	assert.Equal(t, StatusEnded, audioStore.Status())
	assert.Equal(t, 0, store.CurrentIndex())
}

func TestOrchestrator_StaleFinishCallbackIgnored(t *testing.T) {
	orch, store, audioStore, _, _ := newTestOrchestrator(t)
	store.SetTracks([]int64{1, 2, 3}, 0)

	require.NoError(t, orch.PlayCurrent(context.Background()))
	require.NoError(t, orch.PlayTrack(context.Background(), 3))

	// Simulate the replaced track's callback arriving late: a fresh
	// generation was issued for track 3, so an old-generation callback
	// must not advance the queue.
	orch.onTrackFinished(1)

	assert.Equal(t, 2, store.CurrentIndex())
	assert.Equal(t, int64(3), audioStore.ProductID())
}

func TestOrchestrator_NextPrevClampAtEnds(t *testing.T) {
	orch, store, _, player, _ := newTestOrchestrator(t)
	store.SetTracks([]int64{1, 2}, 1)

	// Already on the last track: Next is a quiet no-op.
	require.NoError(t, orch.Next(context.Background()))
	assert.Empty(t, player.Played())

	require.NoError(t, orch.Prev(context.Background()))
	assert.Equal(t, []int64{1}, player.Played())

	require.NoError(t, orch.Prev(context.Background()))
	assert.Equal(t, []int64{1}, player.Played())
}

func TestOrchestrator_TogglePauseWithoutTrack(t *testing.T) {
	orch, _, audioStore, _, _ := newTestOrchestrator(t)

	orch.TogglePause()
	assert.Equal(t, StatusIdle, audioStore.Status())
}

func TestOrchestrator_SetVolumeMirrorsToPlayer(t *testing.T) {
	orch, _, audioStore, _, _ := newTestOrchestrator(t)
	require.NoError(t, orch.PlayTrack(context.Background(), 1))

	orch.SetVolume(0.3)
	assert.Equal(t, 0.3, audioStore.Volume())

	orch.ToggleMute()
	assert.True(t, audioStore.Muted())
	assert.Equal(t, 0.0, audioStore.Volume())

	orch.ToggleMute()
	assert.Equal(t, 0.3, audioStore.Volume())
}

func TestOrchestrator_PlayFromListStartsAtClickedCard(t *testing.T) {
	api := &fakeAPI{autoIDs: []int64{10, 11, 12}}
	store := NewPlaylistStore()
	audioStore := NewAudioStore()
	player := audio.NewMockPlayer()
	svc := NewSyncService(api, store, true)
	orch := NewOrchestrator(store, audioStore, svc, player)

	req := model.AutoPlaylistRequest{Type: model.AutoPlaylistMain}
	require.NoError(t, orch.PlayFromList(context.Background(), req, 1))

	assert.Equal(t, []int64{10, 11, 12}, store.Snapshot().TrackIDs)
	assert.Equal(t, 1, store.CurrentIndex())
	assert.Equal(t, int64(11), audioStore.ProductID())
	assert.Equal(t, StatusPlaying, audioStore.Status())
}
