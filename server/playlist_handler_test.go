package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"hbcplayer/core/auth"
	"hbcplayer/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlaylistStore keeps playlists in a map, standing in for Redis.
type fakePlaylistStore struct {
	docs map[int64]model.Playlist
	err  error
}

func newFakePlaylistStore() *fakePlaylistStore {
	return &fakePlaylistStore{docs: make(map[int64]model.Playlist)}
}

func (f *fakePlaylistStore) Get(ctx context.Context, userID int64) (model.Playlist, bool, error) {
	if f.err != nil {
		return model.Playlist{}, false, f.err
	}
	p, ok := f.docs[userID]
	return p, ok, nil
}

func (f *fakePlaylistStore) Put(ctx context.Context, userID int64, playlist model.Playlist) error {
	if f.err != nil {
		return f.err
	}
	f.docs[userID] = playlist
	return nil
}

func (f *fakePlaylistStore) Clear(ctx context.Context, userID int64) error {
	delete(f.docs, userID)
	return nil
}

// fakeProductRepo serves canned id lists per auto-playlist context.
type fakeProductRepo struct {
	main      []int64
	search    []int64
	artist    []int64
	following []int64
	liked     []int64
	cart      []int64
	existing  map[int64]bool
}

func (f *fakeProductRepo) GetProductByID(id int64) (*model.Product, error) {
	if f.existing[id] {
		return &model.Product{ID: id}, nil
	}
	return nil, nil
}

func (f *fakeProductRepo) MainTrackIDs(category string, limit int) ([]int64, error) {
	return capIDs(f.main, limit), nil
}

func (f *fakeProductRepo) SearchTrackIDs(query string, limit int) ([]int64, error) {
	return capIDs(f.search, limit), nil
}

func (f *fakeProductRepo) ArtistTrackIDs(artistID int64, publicOnly bool, limit int) ([]int64, error) {
	return capIDs(f.artist, limit), nil
}

func (f *fakeProductRepo) FollowingTrackIDs(userID int64, limit int) ([]int64, error) {
	return capIDs(f.following, limit), nil
}

func (f *fakeProductRepo) LikedTrackIDs(userID int64, limit int) ([]int64, error) {
	return capIDs(f.liked, limit), nil
}

func (f *fakeProductRepo) CartTrackIDs(userID int64, limit int) ([]int64, error) {
	return capIDs(f.cart, limit), nil
}

func (f *fakeProductRepo) FilterExisting(ids []int64) ([]int64, error) {
	var out []int64
	for _, id := range ids {
		if f.existing[id] {
			out = append(out, id)
		}
	}
	return out, nil
}

func capIDs(ids []int64, limit int) []int64 {
	if len(ids) > limit {
		return ids[:limit]
	}
	return ids
}

func newTestHandler(store *fakePlaylistStore, repo *fakeProductRepo) *APIHandler {
	if store == nil {
		store = newFakePlaylistStore()
	}
	if repo == nil {
		repo = &fakeProductRepo{}
	}
	return &APIHandler{productRepo: repo, playlists: store}
}

func authedRequest(method, target string, body []byte, userID int64) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	ctx := context.WithValue(req.Context(), userIDKey, userID)
	return req.WithContext(ctx)
}

func decodePlaylist(t *testing.T, rec *httptest.ResponseRecorder) model.Playlist {
	t.Helper()
	var p model.Playlist
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func TestGetMyPlaylist_EmptyIsNotAnError(t *testing.T) {
	h := newTestHandler(nil, nil)

	rec := httptest.NewRecorder()
	h.GetMyPlaylistHandler(rec, authedRequest(http.MethodGet, "/api/users/me/playlist", nil, 1))

	require.Equal(t, http.StatusOK, rec.Code)
	p := decodePlaylist(t, rec)
	assert.NotNil(t, p.TrackIDs)
	assert.Empty(t, p.TrackIDs)
}

func TestGetMyPlaylist_RequiresAuth(t *testing.T) {
	h := newTestHandler(nil, nil)

	rec := httptest.NewRecorder()
	h.GetMyPlaylistHandler(rec, httptest.NewRequest(http.MethodGet, "/api/users/me/playlist", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPutMyPlaylist_StoresDocument(t *testing.T) {
	store := newFakePlaylistStore()
	h := newTestHandler(store, nil)

	body, _ := json.Marshal(model.Playlist{TrackIDs: []int64{5, 7, 9}, CurrentIndex: 1})
	rec := httptest.NewRecorder()
	h.PutMyPlaylistHandler(rec, authedRequest(http.MethodPut, "/api/users/me/playlist", body, 1))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.Playlist{TrackIDs: []int64{5, 7, 9}, CurrentIndex: 1}, store.docs[1])
}

func TestPutMyPlaylist_RejectsOverlongList(t *testing.T) {
	h := newTestHandler(nil, nil)

	over := make([]int64, model.MaxPlaylistTracks+1)
	body, _ := json.Marshal(model.Playlist{TrackIDs: over})
	rec := httptest.NewRecorder()
	h.PutMyPlaylistHandler(rec, authedRequest(http.MethodPut, "/api/users/me/playlist", body, 1))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPutMyPlaylist_RejectsNegativeIndex(t *testing.T) {
	h := newTestHandler(nil, nil)

	body := []byte(`{"trackIds":[1,2],"currentIndex":-1}`)
	rec := httptest.NewRecorder()
	h.PutMyPlaylistHandler(rec, authedRequest(http.MethodPut, "/api/users/me/playlist", body, 1))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPutMyPlaylist_ClampsIndexPastEnd(t *testing.T) {
	store := newFakePlaylistStore()
	h := newTestHandler(store, nil)

	body := []byte(`{"trackIds":[1,2],"currentIndex":9}`)
	rec := httptest.NewRecorder()
	h.PutMyPlaylistHandler(rec, authedRequest(http.MethodPut, "/api/users/me/playlist", body, 1))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, store.docs[1].CurrentIndex)
	assert.Equal(t, 1, decodePlaylist(t, rec).CurrentIndex)
}

func TestPutMyPlaylist_LastWriterWins(t *testing.T) {
	store := newFakePlaylistStore()
	h := newTestHandler(store, nil)

	first, _ := json.Marshal(model.Playlist{TrackIDs: []int64{1, 2, 3}})
	second, _ := json.Marshal(model.Playlist{TrackIDs: []int64{5, 7, 9}, CurrentIndex: 1})

	rec := httptest.NewRecorder()
	h.PutMyPlaylistHandler(rec, authedRequest(http.MethodPut, "/api/users/me/playlist", first, 1))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.PutMyPlaylistHandler(rec, authedRequest(http.MethodPut, "/api/users/me/playlist", second, 1))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, []int64{5, 7, 9}, store.docs[1].TrackIDs)
}

func TestAutoPlaylist_MainNeedsNoAuth(t *testing.T) {
	h := newTestHandler(nil, &fakeProductRepo{main: []int64{10, 11}})

	body := []byte(`{"type":"MAIN"}`)
	rec := httptest.NewRecorder()
	h.AutoPlaylistHandler(rec, httptest.NewRequest(http.MethodPost, "/api/playlists/auto", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.PlaylistTracksResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []int64{10, 11}, resp.TrackIDs)
}

func TestAutoPlaylist_LikedRequiresAuth(t *testing.T) {
	h := newTestHandler(nil, &fakeProductRepo{liked: []int64{4}})

	body := []byte(`{"type":"LIKED"}`)
	rec := httptest.NewRecorder()
	h.AutoPlaylistHandler(rec, httptest.NewRequest(http.MethodPost, "/api/playlists/auto", bytes.NewReader(body)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	h.AutoPlaylistHandler(rec, authedRequest(http.MethodPost, "/api/playlists/auto", body, 1))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp model.PlaylistTracksResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []int64{4}, resp.TrackIDs)
}

func TestAutoPlaylist_GuestResolvesMainThroughMiddleware(t *testing.T) {
	h := newTestHandler(nil, &fakeProductRepo{main: []int64{10, 11}})
	handler := h.OptionalAuthMiddleware(h.AutoPlaylistHandler)

	// No Authorization header at all: the guest flow.
	body := []byte(`{"type":"MAIN"}`)
	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/api/playlists/auto", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.PlaylistTracksResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []int64{10, 11}, resp.TrackIDs)
}

func TestOptionalAuth_TokenPopulatesUser(t *testing.T) {
	auth.SetSecret("test-secret")
	token, err := auth.GenerateToken(1, "kim")
	require.NoError(t, err)

	h := newTestHandler(nil, &fakeProductRepo{liked: []int64{4}})
	handler := h.OptionalAuthMiddleware(h.AutoPlaylistHandler)

	body := []byte(`{"type":"LIKED"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/playlists/auto", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.PlaylistTracksResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []int64{4}, resp.TrackIDs)
}

func TestOptionalAuth_InvalidTokenStillRejected(t *testing.T) {
	auth.SetSecret("test-secret")

	h := newTestHandler(nil, &fakeProductRepo{main: []int64{10}})
	handler := h.OptionalAuthMiddleware(h.AutoPlaylistHandler)

	body := []byte(`{"type":"MAIN"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/playlists/auto", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAutoPlaylist_RejectsMixedVariantFields(t *testing.T) {
	h := newTestHandler(nil, nil)

	body := []byte(`{"type":"SEARCH","query":"lofi","artistId":3}`)
	rec := httptest.NewRecorder()
	h.AutoPlaylistHandler(rec, httptest.NewRequest(http.MethodPost, "/api/playlists/auto", bytes.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAutoPlaylist_EmptyResolutionGivesEmptyList(t *testing.T) {
	h := newTestHandler(nil, &fakeProductRepo{})

	body := []byte(`{"type":"SEARCH","query":"no such thing"}`)
	rec := httptest.NewRecorder()
	h.AutoPlaylistHandler(rec, httptest.NewRequest(http.MethodPost, "/api/playlists/auto", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.PlaylistTracksResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotNil(t, resp.TrackIDs)
	assert.Empty(t, resp.TrackIDs)
}

func TestManualPlaylist_DropsUnknownIDsKeepsOrder(t *testing.T) {
	h := newTestHandler(nil, &fakeProductRepo{existing: map[int64]bool{1: true, 3: true}})

	body := []byte(`{"trackIds":[3,2,1]}`)
	rec := httptest.NewRecorder()
	h.ManualPlaylistHandler(rec, httptest.NewRequest(http.MethodPost, "/api/playlists/manual", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp model.PlaylistTracksResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []int64{3, 1}, resp.TrackIDs)
}

func TestManualPlaylist_RejectsEmptyList(t *testing.T) {
	h := newTestHandler(nil, nil)

	body := []byte(`{"trackIds":[]}`)
	rec := httptest.NewRecorder()
	h.ManualPlaylistHandler(rec, httptest.NewRequest(http.MethodPost, "/api/playlists/manual", bytes.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
