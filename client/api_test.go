package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"hbcplayer/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_LoginInstallsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/login", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "kim", req["username"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"token": "tok-123",
			"user":  model.User{ID: 9, Username: "kim"},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	user, err := c.Login(context.Background(), "kim", "secret")
	require.NoError(t, err)
	assert.Equal(t, int64(9), user.ID)
	assert.Equal(t, "tok-123", c.Token())
}

func TestClient_FetchAndSavePlaylist(t *testing.T) {
	var savedAuth, savedDevice string
	var saved model.Playlist

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/users/me/playlist", r.URL.Path)
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(model.Playlist{TrackIDs: []int64{1, 2}, CurrentIndex: 1})
		case http.MethodPut:
			savedAuth = r.Header.Get("Authorization")
			savedDevice = r.Header.Get("X-Device-ID")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&saved))
			json.NewEncoder(w).Encode(saved)
		}
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetToken("tok")

	playlist, err := c.FetchPlaylist(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, playlist.TrackIDs)
	assert.Equal(t, 1, playlist.CurrentIndex)

	want := model.Playlist{TrackIDs: []int64{5, 7}, CurrentIndex: 0}
	require.NoError(t, c.SavePlaylist(context.Background(), want))
	assert.Equal(t, want, saved)
	assert.Equal(t, "Bearer tok", savedAuth)
	assert.Equal(t, c.DeviceID(), savedDevice)
}

func TestClient_ResolveAutoPlaylist(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/playlists/auto", r.URL.Path)

		var req model.AutoPlaylistRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, model.AutoPlaylistArtist, req.Type)
		assert.Equal(t, int64(7), req.ArtistID)

		json.NewEncoder(w).Encode(model.PlaylistTracksResponse{TrackIDs: []int64{21, 22}})
	}))
	defer srv.Close()

	c := New(srv.URL)
	ids, err := c.ResolveAutoPlaylist(context.Background(), model.AutoPlaylistRequest{
		Type:       model.AutoPlaylistArtist,
		ArtistID:   7,
		PublicOnly: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{21, 22}, ids)
}

func TestClient_ErrorCarriesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":"playlist exceeds 100 tracks"}`)
	}))
	defer srv.Close()

	c := New(srv.URL)
	err := c.SavePlaylist(context.Background(), model.Playlist{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "exceeds 100 tracks")
}

func TestClient_OpenStreamsPreview(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/products/42/preview", r.URL.Path)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	c := New(srv.URL)
	rc, err := c.Open(context.Background(), 42)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "mp3-bytes", string(data))
}

func TestClient_OpenPropagatesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Open(context.Background(), 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}
