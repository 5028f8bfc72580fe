package server

import (
	"encoding/json"
	"net/http"

	"hbcplayer/logger"
	"hbcplayer/model"
)

// GetMyPlaylistHandler returns the authenticated user's stored playlist.
// A user with no stored playlist gets an empty one, not a 404.
func (h *APIHandler) GetMyPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	playlist, found, err := h.playlists.Get(r.Context(), userID)
	if err != nil {
		logger.Error("Failed to get playlist", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to get playlist")
		return
	}
	if !found {
		playlist = model.Playlist{TrackIDs: []int64{}}
	}
	if playlist.TrackIDs == nil {
		playlist.TrackIDs = []int64{}
	}

	writeJSON(w, http.StatusOK, playlist)
}

// PutMyPlaylistHandler replaces the authenticated user's stored playlist.
// The whole document is overwritten: last writer wins, which is what the
// guest-merge flow on login depends on. An index past the end of the
// list is clamped; a negative index or an over-long list is rejected.
func (h *APIHandler) PutMyPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var playlist model.Playlist
	if err := json.NewDecoder(r.Body).Decode(&playlist); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := playlist.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	playlist.Clamp()
	if playlist.TrackIDs == nil {
		playlist.TrackIDs = []int64{}
	}

	if err := h.playlists.Put(r.Context(), userID, playlist); err != nil {
		logger.Error("Failed to store playlist", logger.Int64("userId", userID), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to store playlist")
		return
	}

	// Tell the user's other devices about the new queue. The writing
	// device identifies itself via header so it is not echoed.
	if h.hub != nil {
		h.hub.BroadcastPlaylistUpdated(userID, r.Header.Get("X-Device-ID"), playlist)
	}

	writeJSON(w, http.StatusOK, playlist)
}

// AutoPlaylistHandler resolves an auto-playlist request to a track-id
// list. FOLLOWING, LIKED and CART require authentication; the other
// variants only use it when present.
func (h *APIHandler) AutoPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	var req model.AutoPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var (
		ids []int64
		err error
	)
	switch req.Type {
	case model.AutoPlaylistMain:
		ids, err = h.productRepo.MainTrackIDs(req.Category, model.MaxPlaylistTracks)
	case model.AutoPlaylistSearch:
		ids, err = h.productRepo.SearchTrackIDs(req.Query, model.MaxPlaylistTracks)
	case model.AutoPlaylistArtist:
		ids, err = h.productRepo.ArtistTrackIDs(req.ArtistID, req.PublicOnly, model.MaxPlaylistTracks)
	case model.AutoPlaylistFollowing, model.AutoPlaylistLiked, model.AutoPlaylistCart:
		userID, authErr := GetUserIDFromContext(r.Context())
		if authErr != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		switch req.Type {
		case model.AutoPlaylistFollowing:
			ids, err = h.productRepo.FollowingTrackIDs(userID, model.MaxPlaylistTracks)
		case model.AutoPlaylistLiked:
			ids, err = h.productRepo.LikedTrackIDs(userID, model.MaxPlaylistTracks)
		default:
			ids, err = h.productRepo.CartTrackIDs(userID, model.MaxPlaylistTracks)
		}
	}
	if err != nil {
		logger.Error("Failed to resolve auto playlist",
			logger.String("type", string(req.Type)), logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to resolve playlist")
		return
	}

	if ids == nil {
		ids = []int64{}
	}
	writeJSON(w, http.StatusOK, model.PlaylistTracksResponse{TrackIDs: ids})
}

// ManualPlaylistHandler validates an explicit track-id list: unknown ids
// are dropped, order preserved, capped at the playlist maximum.
func (h *APIHandler) ManualPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	var req model.ManualPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if len(req.TrackIDs) == 0 {
		writeError(w, http.StatusBadRequest, "Track IDs list cannot be empty")
		return
	}
	if len(req.TrackIDs) > model.MaxPlaylistTracks {
		req.TrackIDs = req.TrackIDs[:model.MaxPlaylistTracks]
	}

	ids, err := h.productRepo.FilterExisting(req.TrackIDs)
	if err != nil {
		logger.Error("Failed to validate manual playlist", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to resolve playlist")
		return
	}

	if ids == nil {
		ids = []int64{}
	}
	writeJSON(w, http.StatusOK, model.PlaylistTracksResponse{TrackIDs: ids})
}
