package session

import (
	"context"
	"fmt"
	"sync"

	"hbcplayer/core/audio"
	"hbcplayer/logger"
	"hbcplayer/model"
)

// playbackFailedMsg is the user-facing playback failure message.
const playbackFailedMsg = "재생에 실패했습니다"

// Orchestrator translates "the user acted on this track" into coordinated
// mutations of the queue, the audio state and the playback primitive.
//
// PlayTrack decides between three branches:
//   - the clicked track is the current one: toggle pause/resume, no
//     queue mutation;
//   - the clicked track already sits in the queue at position j: move
//     the pointer to j and start it;
//   - otherwise: append it, move the pointer to the end, start it.
//
// Ordering between "queue updated" and "playback started" is carried by
// the player's own signals (Play returns once started, onFinished fires
// at the natural end); there is no fixed settle delay. A generation
// counter makes completion callbacks from replaced tracks inert.
type Orchestrator struct {
	mu sync.Mutex

	playlist *PlaylistStore
	audioSt  *AudioStore
	sync     *SyncService
	player   audio.Player

	generation uint64
}

// NewOrchestrator wires the orchestrator. sync may be nil when running
// without a server (pure local playback).
func NewOrchestrator(playlist *PlaylistStore, audioStore *AudioStore, syncSvc *SyncService, player audio.Player) *Orchestrator {
	return &Orchestrator{
		playlist: playlist,
		audioSt:  audioStore,
		sync:     syncSvc,
		player:   player,
	}
}

// PlayTrack handles a click on a track. On failure the audio state is
// left untouched and the error carries the user-facing message.
func (o *Orchestrator) PlayTrack(ctx context.Context, trackID int64) error {
	if trackID <= 0 {
		// Mirrors the play guard: an absent or bogus id is ignored.
		return nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	// Same track: toggle, no queue mutation.
	if o.audioSt.ProductID() == trackID {
		if o.audioSt.Status() == StatusEnded {
			return o.startLocked(ctx, trackID)
		}
		if o.player.IsPlaying() {
			o.player.Pause()
			o.audioSt.SetPlaying(false)
		} else {
			o.player.Resume()
			o.audioSt.SetPlaying(true)
		}
		return nil
	}

	// Already queued: jump, no duplicate append.
	if j, ok := o.playlist.IndexOf(trackID); ok {
		if err := o.playlist.SetIndex(j); err != nil {
			return fmt.Errorf("%s: %w", playbackFailedMsg, err)
		}
		return o.startLocked(ctx, trackID)
	}

	// New track: append and play from the end.
	idx := o.playlist.Append(trackID)
	if err := o.playlist.SetIndex(idx); err != nil {
		return fmt.Errorf("%s: %w", playbackFailedMsg, err)
	}
	if o.sync != nil {
		o.sync.PushToServer(ctx)
	}
	return o.startLocked(ctx, trackID)
}

// PlayFromList replaces the queue with the resolved auto playlist and
// starts playback at the clicked position. Used by drop targets and card
// clicks inside rendered lists.
func (o *Orchestrator) PlayFromList(ctx context.Context, req model.AutoPlaylistRequest, trackIndex int) error {
	if o.sync == nil {
		return fmt.Errorf("%s: no sync service", playbackFailedMsg)
	}

	trackID, err := o.sync.CreateAutoPlaylistAndPlay(ctx, req, trackIndex)
	if err != nil {
		return fmt.Errorf("%s: %w", playbackFailedMsg, err)
	}
	if trackID == 0 {
		// Superseded by a newer context switch.
		return nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	return o.startLocked(ctx, trackID)
}

// PlayCurrent starts the track under the queue pointer.
func (o *Orchestrator) PlayCurrent(ctx context.Context) error {
	id, ok := o.playlist.CurrentTrackID()
	if !ok {
		return nil
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	return o.startLocked(ctx, id)
}

// Next advances to the next queued track, clamped at the end.
func (o *Orchestrator) Next(ctx context.Context) error {
	if !o.playlist.Next() {
		return nil
	}
	return o.PlayCurrent(ctx)
}

// Prev moves to the previous queued track, clamped at the start.
func (o *Orchestrator) Prev(ctx context.Context) error {
	if !o.playlist.Prev() {
		return nil
	}
	return o.PlayCurrent(ctx)
}

// TogglePause flips playback of the loaded track.
func (o *Orchestrator) TogglePause() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.audioSt.ProductID() == 0 {
		return
	}
	if o.player.IsPlaying() {
		o.player.Pause()
		o.audioSt.SetPlaying(false)
	} else {
		o.player.Resume()
		o.audioSt.SetPlaying(true)
	}
}

// SetVolume updates both the store (with its mute bookkeeping) and the
// player output.
func (o *Orchestrator) SetVolume(v float64) {
	o.audioSt.SetVolume(v)
	o.player.SetVolume(o.audioSt.Volume())
}

// ToggleMute flips mute on the store and mirrors the level to the player.
func (o *Orchestrator) ToggleMute() {
	o.audioSt.ToggleMute()
	o.player.SetVolume(o.audioSt.Volume())
}

// startLocked starts playback of trackID. Caller holds o.mu. The audio
// store is only touched after the player reports a successful start, so
// a failure leaves the session state exactly as it was.
func (o *Orchestrator) startLocked(ctx context.Context, trackID int64) error {
	o.generation++
	gen := o.generation

	if err := o.player.Play(ctx, trackID, func() { o.onTrackFinished(gen) }); err != nil {
		logger.Error("Playback failed",
			logger.Int64("trackId", trackID), logger.ErrorField(err))
		return fmt.Errorf("%s: %w", playbackFailedMsg, err)
	}

	o.audioSt.SetProductID(trackID)
	o.audioSt.SetStatus(StatusPlaying)
	return nil
}

// onTrackFinished runs when a track plays to its natural end. Stale
// generations — the user already switched tracks — are ignored.
func (o *Orchestrator) onTrackFinished(gen uint64) {
	o.mu.Lock()
	if gen != o.generation {
		o.mu.Unlock()
		return
	}

	if o.playlist.Next() {
		id, _ := o.playlist.CurrentTrackID()
		err := o.startLockedBackground(id)
		o.mu.Unlock()
		if err != nil {
			logger.Error("Failed to advance to next track", logger.ErrorField(err))
		}
		return
	}

	o.audioSt.SetStatus(StatusEnded)
	o.mu.Unlock()
}

// startLockedBackground is startLocked without a caller-supplied
// context, used for automatic advancement.
func (o *Orchestrator) startLockedBackground(trackID int64) error {
	o.generation++
	gen := o.generation

	if err := o.player.Play(context.Background(), trackID, func() { o.onTrackFinished(gen) }); err != nil {
		o.audioSt.SetStatus(StatusEnded)
		return err
	}

	o.audioSt.SetProductID(trackID)
	o.audioSt.SetStatus(StatusPlaying)
	return nil
}
