package session

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"hbcplayer/logger"
	"hbcplayer/model"
)

// SyncStatus is the coarse state of the last server interaction.
type SyncStatus string

const (
	SyncIdle    SyncStatus = "idle"
	SyncSyncing SyncStatus = "syncing"
	SyncError   SyncStatus = "error"
)

// API is the slice of the server the sync service needs. Implemented by
// *client.Client.
type API interface {
	FetchPlaylist(ctx context.Context) (model.Playlist, error)
	SavePlaylist(ctx context.Context, playlist model.Playlist) error
	ResolveAutoPlaylist(ctx context.Context, req model.AutoPlaylistRequest) ([]int64, error)
	ResolveManualPlaylist(ctx context.Context, trackIDs []int64) ([]int64, error)
}

// SyncService reconciles the three possible playlist origins: the guest
// local queue, the server-persisted queue of a logged-in user, and a
// freshly resolved automatic playlist for the current page context.
//
// Every operation that replaces the queue from the network takes a
// monotonic sequence token first; if a newer operation started while the
// response was in flight, the stale result is discarded instead of
// overwriting the newer one.
type SyncService struct {
	api      API
	playlist *PlaylistStore

	preserveGuestPlaylist bool

	seq atomic.Uint64

	mu       sync.RWMutex
	loggedIn bool
	status   SyncStatus
}

// NewSyncService creates a sync service over the given store and API.
// preserveGuestPlaylist selects the login merge policy: when true, a
// non-empty guest queue overwrites the server copy on login.
func NewSyncService(api API, playlist *PlaylistStore, preserveGuestPlaylist bool) *SyncService {
	return &SyncService{
		api:                   api,
		playlist:              playlist,
		preserveGuestPlaylist: preserveGuestPlaylist,
		status:                SyncIdle,
	}
}

// Status returns the coarse sync status.
func (s *SyncService) Status() SyncStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *SyncService) setStatus(st SyncStatus) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

// IsLoggedIn reports the current login state as last told to HandleLogin.
func (s *SyncService) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn
}

// CurrentPlayableTrackID returns the track id under the queue pointer.
func (s *SyncService) CurrentPlayableTrackID() (int64, bool) {
	return s.playlist.CurrentTrackID()
}

// HandleLogin records a login-state change and runs the merge policy on
// the guest-to-authenticated edge: a non-empty guest queue overwrites
// the server copy when preservation is on; otherwise the server copy is
// pulled down. Repeat calls with the same state are no-ops, and both
// operations are idempotent overwrites anyway.
func (s *SyncService) HandleLogin(ctx context.Context, loggedIn bool) error {
	s.mu.Lock()
	wasLoggedIn := s.loggedIn
	s.loggedIn = loggedIn
	s.mu.Unlock()

	if loggedIn == wasLoggedIn {
		return nil
	}
	if !loggedIn {
		// Logout clears the queue; the server copy stays put.
		s.playlist.Reset()
		return nil
	}

	if s.preserveGuestPlaylist && s.playlist.Len() > 0 {
		return s.OverwriteServerWithGuestPlaylist(ctx)
	}
	return s.InitializePlaylist(ctx)
}

// InitializePlaylist pulls the server's stored playlist into the local
// store, discarding local-only state.
func (s *SyncService) InitializePlaylist(ctx context.Context) error {
	token := s.seq.Add(1)
	s.setStatus(SyncSyncing)

	playlist, err := s.api.FetchPlaylist(ctx)
	if err != nil {
		s.setStatus(SyncError)
		logger.Error("Failed to fetch server playlist", logger.ErrorField(err))
		return fmt.Errorf("failed to fetch playlist: %w", err)
	}
	if s.seq.Load() != token {
		logger.Debug("Discarding superseded playlist fetch")
		return nil
	}

	s.playlist.SetTracks(playlist.TrackIDs, playlist.CurrentIndex)
	s.setStatus(SyncIdle)
	return nil
}

// OverwriteServerWithGuestPlaylist pushes the local queue to the server,
// replacing whatever was stored there. Guest state is authoritative at
// the moment of login: a queue built anonymously must survive logging in
// even if that discards a stale server copy from an earlier session.
func (s *SyncService) OverwriteServerWithGuestPlaylist(ctx context.Context) error {
	s.setStatus(SyncSyncing)

	if err := s.api.SavePlaylist(ctx, s.playlist.Snapshot()); err != nil {
		s.setStatus(SyncError)
		logger.Error("Failed to overwrite server playlist", logger.ErrorField(err))
		return fmt.Errorf("failed to overwrite server playlist: %w", err)
	}

	s.setStatus(SyncIdle)
	return nil
}

// CreateAutoPlaylist resolves a context request into a queue, starting
// at the top. It refuses to clobber a queue the user already has: with a
// non-empty local queue it does nothing.
func (s *SyncService) CreateAutoPlaylist(ctx context.Context, req model.AutoPlaylistRequest) error {
	if s.playlist.Len() > 0 {
		return nil
	}

	ids, err := s.resolveAuto(ctx, req)
	if err != nil || ids == nil {
		return err
	}

	s.playlist.SetTracks(ids, 0)
	s.pushIfLoggedIn(ctx)
	return nil
}

// CreateAutoPlaylistAndPlay resolves a context request into a queue
// positioned at trackIndex, replacing the current queue. This is the
// "clicked the Nth card inside a rendered list" path: the whole list
// becomes the queue, cued at that card. The id to start playing comes
// back to the caller; starting playback is the orchestrator's job.
func (s *SyncService) CreateAutoPlaylistAndPlay(ctx context.Context, req model.AutoPlaylistRequest, trackIndex int) (int64, error) {
	ids, err := s.resolveAuto(ctx, req)
	if err != nil {
		return 0, err
	}
	if ids == nil {
		// Superseded mid-flight; nothing to play.
		return 0, nil
	}
	if len(ids) == 0 {
		return 0, fmt.Errorf("auto playlist %s resolved to no tracks", req.Type)
	}

	if trackIndex < 0 || trackIndex >= len(ids) {
		trackIndex = 0
	}
	s.playlist.SetTracks(ids, trackIndex)
	s.pushIfLoggedIn(ctx)

	id, _ := s.playlist.CurrentTrackID()
	return id, nil
}

// resolveAuto runs the context resolution under a sequence token.
// A nil, nil return means the result was superseded and discarded.
func (s *SyncService) resolveAuto(ctx context.Context, req model.AutoPlaylistRequest) ([]int64, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	token := s.seq.Add(1)
	s.setStatus(SyncSyncing)

	ids, err := s.api.ResolveAutoPlaylist(ctx, req)
	if err != nil {
		s.setStatus(SyncError)
		logger.Error("Failed to resolve auto playlist",
			logger.String("type", string(req.Type)), logger.ErrorField(err))
		return nil, fmt.Errorf("failed to resolve %s playlist: %w", req.Type, err)
	}
	if s.seq.Load() != token {
		logger.Debug("Discarding superseded auto playlist",
			logger.String("type", string(req.Type)))
		return nil, nil
	}

	s.setStatus(SyncIdle)
	if ids == nil {
		ids = []int64{}
	}
	return ids, nil
}

// CreateManualPlaylist sets an explicit user-curated queue, validated by
// the server (unknown ids dropped).
func (s *SyncService) CreateManualPlaylist(ctx context.Context, trackIDs []int64) error {
	token := s.seq.Add(1)
	s.setStatus(SyncSyncing)

	ids, err := s.api.ResolveManualPlaylist(ctx, trackIDs)
	if err != nil {
		s.setStatus(SyncError)
		logger.Error("Failed to resolve manual playlist", logger.ErrorField(err))
		return fmt.Errorf("failed to resolve manual playlist: %w", err)
	}
	if s.seq.Load() != token {
		logger.Debug("Discarding superseded manual playlist")
		return nil
	}

	s.playlist.SetTracks(ids, 0)
	s.setStatus(SyncIdle)
	s.pushIfLoggedIn(ctx)
	return nil
}

// AddTrack appends a track to the queue (duplicates allowed) and pushes
// the new queue to the server for logged-in users.
func (s *SyncService) AddTrack(ctx context.Context, trackID int64) {
	s.playlist.Append(trackID)
	s.pushIfLoggedIn(ctx)
}

// PlayTrackAtIndex moves the queue pointer.
func (s *SyncService) PlayTrackAtIndex(i int) error {
	return s.playlist.SetIndex(i)
}

// PushToServer writes the current queue to the server if logged in.
func (s *SyncService) PushToServer(ctx context.Context) {
	s.pushIfLoggedIn(ctx)
}

// pushIfLoggedIn persists the queue server-side, best effort: a failed
// push is logged, the local queue stays as-is, and the next
// user-triggered sync becomes the retry.
func (s *SyncService) pushIfLoggedIn(ctx context.Context) {
	if !s.IsLoggedIn() {
		return
	}
	if err := s.api.SavePlaylist(ctx, s.playlist.Snapshot()); err != nil {
		logger.Warn("Failed to push playlist to server", logger.ErrorField(err))
	}
}
