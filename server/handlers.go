package server

import (
	"context"
	"encoding/json"
	"net/http"

	"hbcplayer/cache"
	"hbcplayer/config"
	"hbcplayer/logger"
	"hbcplayer/model"
	"hbcplayer/repository"
)

// PlaylistStore is the persistence the playlist handlers write to.
// Satisfied by *cache.PlaylistRepo; handler tests substitute a fake.
type PlaylistStore interface {
	Get(ctx context.Context, userID int64) (model.Playlist, bool, error)
	Put(ctx context.Context, userID int64, playlist model.Playlist) error
	Clear(ctx context.Context, userID int64) error
}

var _ PlaylistStore = (*cache.PlaylistRepo)(nil)

// APIHandler handles all API requests.
type APIHandler struct {
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	playlists   PlaylistStore
	hub         *SyncHub
	cfg         *config.Config
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	userRepo repository.UserRepository,
	productRepo repository.ProductRepository,
	playlists PlaylistStore,
	hub *SyncHub,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		userRepo:    userRepo,
		productRepo: productRepo,
		playlists:   playlists,
		hub:         hub,
		cfg:         cfg,
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode JSON response", logger.ErrorField(err))
	}
}

// writeError writes a JSON error body with the given status code.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
