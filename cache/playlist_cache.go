package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"hbcplayer/model"

	"github.com/go-redis/redis/v8"
)

// PlaylistRepo stores one playlist document per user in Redis. The
// document is the whole {trackIds, currentIndex} pair written as JSON;
// writes replace the previous value (last writer wins, which is exactly
// the guest-merge semantics the login flow relies on).
type PlaylistRepo struct {
	rdb *redis.Client
}

// NewPlaylistRepo creates a PlaylistRepo on the given client.
func NewPlaylistRepo(rdb *redis.Client) *PlaylistRepo {
	return &PlaylistRepo{rdb: rdb}
}

// playlistKey builds the Redis key for a user's playlist document.
func playlistKey(userID int64) string {
	return fmt.Sprintf("playlist:%d", userID)
}

// Get returns the user's playlist. found is false when the user has no
// stored playlist yet.
func (r *PlaylistRepo) Get(ctx context.Context, userID int64) (model.Playlist, bool, error) {
	if r.rdb == nil {
		return model.Playlist{}, false, fmt.Errorf("Redis client not initialized")
	}

	raw, err := r.rdb.Get(ctx, playlistKey(userID)).Result()
	if err == redis.Nil {
		return model.Playlist{}, false, nil
	}
	if err != nil {
		return model.Playlist{}, false, fmt.Errorf("failed to get playlist: %w", err)
	}

	var playlist model.Playlist
	if err := json.Unmarshal([]byte(raw), &playlist); err != nil {
		return model.Playlist{}, false, fmt.Errorf("failed to unmarshal playlist: %w", err)
	}
	return playlist, true, nil
}

// Put replaces the user's playlist document. The playlist is expected to
// be validated and clamped by the caller; no TTL is set because the
// playlist is durable per-user state, not a cache entry.
func (r *PlaylistRepo) Put(ctx context.Context, userID int64, playlist model.Playlist) error {
	if r.rdb == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	raw, err := json.Marshal(playlist)
	if err != nil {
		return fmt.Errorf("failed to marshal playlist: %w", err)
	}

	if err := r.rdb.Set(ctx, playlistKey(userID), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to store playlist: %w", err)
	}
	return nil
}

// Clear removes the user's playlist document.
func (r *PlaylistRepo) Clear(ctx context.Context, userID int64) error {
	if r.rdb == nil {
		return fmt.Errorf("Redis client not initialized")
	}

	if err := r.rdb.Del(ctx, playlistKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to clear playlist: %w", err)
	}
	return nil
}
