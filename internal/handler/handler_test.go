package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjjvault/video-gateway/internal/apperr"
	"github.com/bjjvault/video-gateway/internal/metrics"
	"github.com/bjjvault/video-gateway/internal/middleware"
	"github.com/bjjvault/video-gateway/internal/models"
	"github.com/bjjvault/video-gateway/internal/provider"
	"github.com/bjjvault/video-gateway/internal/service"
	"github.com/bjjvault/video-gateway/internal/store"
	"github.com/bjjvault/video-gateway/internal/validation"
	"github.com/bjjvault/video-gateway/pkg/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.InitNop()
}

// stubYouTube is a canned youtube provider.
type stubYouTube struct {
	videos        []models.VideoSummary
	searchErr     error
	transcription models.Transcription
	lastQuery     string
}

func (s *stubYouTube) ID() models.ProviderID { return models.ProviderYouTube }

func (s *stubYouTube) Search(_ context.Context, query string) ([]models.VideoSummary, error) {
	s.lastQuery = query
	return s.videos, s.searchErr
}

func (s *stubYouTube) Transcription(_ context.Context, _ string) models.Transcription {
	return s.transcription
}

type testServer struct {
	router *gin.Engine
	yt     *stubYouTube
	store  *store.FileStore
	dir    string
}

func newTestServer(t *testing.T, apiKeys ...string) *testServer {
	t.Helper()

	yt := &stubYouTube{}
	v := validation.New(0)
	registry := provider.NewRegistry(yt, provider.NewVimeo(), provider.NewBilibili())
	gateway := service.NewVideoGateway(registry, v, false)

	dir := t.TempDir()
	st, err := store.NewFileStore(dir)
	require.NoError(t, err)
	library := service.NewSavedVideoService(st, v, nil, nil)

	router := NewRouter(Handlers{
		Videos:  NewVideoHandler(gateway),
		Saved:   NewSavedVideoHandler(library),
		Health:  NewHealthHandler(library, nil, nil),
		Auth:    middleware.NewAPIKeyAuth(apiKeys),
		Metrics: metrics.New(),
	})
	return &testServer{router: router, yt: yt, store: st, dir: dir}
}

func (s *testServer) do(method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestVideoHandler_Search(t *testing.T) {
	s := newTestServer(t)
	s.yt.videos = []models.VideoSummary{
		{ID: "vid1", Provider: models.ProviderYouTube, Title: "Armbar", ViewCount: "1,234", Link: "https://youtube.com/watch?v=vid1"},
	}

	w := s.do(http.MethodGet, "/api/videos/search?q=armbar", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var videos []models.VideoSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &videos))
	require.Len(t, videos, 1)
	assert.Equal(t, "vid1", videos[0].ID)
	assert.Equal(t, "armbar", s.yt.lastQuery)
}

func TestVideoHandler_Search_Errors(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		searchErr  error
		wantStatus int
		wantMsg    string
	}{
		{name: "missing query", path: "/api/videos/search", wantStatus: http.StatusBadRequest, wantMsg: "Search query is required"},
		{name: "blank query", path: "/api/videos/search?q=%20%20", wantStatus: http.StatusBadRequest},
		{name: "unknown provider", path: "/api/videos/search?q=armbar&provider=tiktok", wantStatus: http.StatusBadRequest},
		{
			name:       "upstream failure",
			path:       "/api/videos/search?q=armbar",
			searchErr:  apperr.Upstream("API key not valid", errors.New("400")),
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "API key not valid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			s.yt.searchErr = tt.searchErr

			w := s.do(http.MethodGet, tt.path, nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, http.StatusText(tt.wantStatus), resp.Error)
			assert.Equal(t, "/api/videos/search", resp.Path)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, resp.Message)
			}
		})
	}
}

func TestVideoHandler_Search_PlaceholderProvider(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/videos/search?q=armbar&provider=vimeo", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestVideoHandler_Transcription(t *testing.T) {
	s := newTestServer(t)
	s.yt.transcription = models.Transcription{
		Text:   "Transcription is available for this video. Select a track below:",
		Tracks: []models.CaptionTrack{{ID: "t1", Language: "en", Name: "EN", TrackKind: "standard"}},
	}

	w := s.do(http.MethodGet, "/api/videos/youtube/vid1/transcription", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var got models.Transcription
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, s.yt.transcription.Text, got.Text)
	assert.Len(t, got.Tracks, 1)
}

func TestVideoHandler_Transcription_Degraded(t *testing.T) {
	s := newTestServer(t)
	s.yt.transcription = models.Transcription{Text: "placeholder text", Degraded: true}

	w := s.do(http.MethodGet, "/api/videos/youtube/unknownVideoId123/transcription", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"text":"placeholder text"}`, w.Body.String())
}

func TestVideoHandler_Transcription_PlaceholderAndInvalid(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/videos/bilibili/BV1xx/transcription", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"text":"Transcription not available for Bilibili yet."}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/videos/tiktok/vid1/transcription", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestVideoHandler_Providers(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/videos/providers", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"providers":["bilibili","vimeo","youtube"]}`, w.Body.String())
}

func TestSavedVideoHandler_Lifecycle(t *testing.T) {
	s := newTestServer(t)
	video := models.VideoSummary{ID: "abc123", Provider: models.ProviderYouTube, Title: "Armbar"}

	w := s.do(http.MethodGet, "/api/users/user1/videos", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = s.do(http.MethodGet, "/api/users/user1/videos/youtube/abc123/exists", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"exists":false}`, w.Body.String())

	w = s.do(http.MethodPost, "/api/users/user1/videos", video)
	require.Equal(t, http.StatusCreated, w.Code)
	var saved models.VideoSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.True(t, saved.Saved)
	assert.Equal(t, "https://youtube.com/watch?v=abc123", saved.Link)

	w = s.do(http.MethodPost, "/api/users/user1/videos", video)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "This video is already saved.", decodeError(t, w).Message)

	w = s.do(http.MethodGet, "/api/users/user1/videos/youtube/abc123/exists", nil)
	assert.JSONEq(t, `{"exists":true}`, w.Body.String())

	w = s.do(http.MethodGet, "/api/users/user1/videos", nil)
	var videos []models.VideoSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &videos))
	assert.Len(t, videos, 1)

	w = s.do(http.MethodDelete, "/api/users/user1/videos/youtube/abc123", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodDelete, "/api/users/user1/videos/youtube/abc123", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSavedVideoHandler_GetAndUpdate(t *testing.T) {
	s := newTestServer(t)
	video := models.VideoSummary{ID: "abc123", Provider: models.ProviderYouTube, Title: "Armbar"}

	w := s.do(http.MethodGet, "/api/users/user1/videos/youtube/abc123", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPut, "/api/users/user1/videos/youtube/abc123", map[string]string{"transcription": "text"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/api/users/user1/videos", video)
	require.Equal(t, http.StatusCreated, w.Code)

	update := map[string]any{
		"title":         "Armbar",
		"transcription": "Transcription for: Armbar",
		"captionTracks": []map[string]string{{"id": "c1", "language": "en", "name": "EN", "trackKind": "standard"}},
	}
	w = s.do(http.MethodPut, "/api/users/user1/videos/youtube/abc123", update)
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.VideoSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	assert.Equal(t, "abc123", updated.ID)
	assert.True(t, updated.Saved)
	assert.Equal(t, "Transcription for: Armbar", updated.Transcription)

	w = s.do(http.MethodGet, "/api/users/user1/videos/YouTube/abc123", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got models.VideoSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Transcription for: Armbar", got.Transcription)
	require.Len(t, got.CaptionTracks, 1)
	assert.Equal(t, "c1", got.CaptionTracks[0].ID)
}

func TestSavedVideoHandler_ProviderPathIsCaseInsensitive(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodPost, "/api/users/user1/videos",
		models.VideoSummary{ID: "v1", Provider: models.ProviderYouTube, Title: "Kimura"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodGet, "/api/users/user1/videos/YouTube/v1/exists", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"exists":true}`, w.Body.String())

	w = s.do(http.MethodDelete, "/api/users/user1/videos/YouTube/v1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSavedVideoHandler_LocalScopeIsReserved(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/users/local/videos", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/users/local/videos",
		models.VideoSummary{ID: "v1", Provider: models.ProviderYouTube})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	_, err := os.Stat(filepath.Join(s.dir, "local"))
	assert.True(t, os.IsNotExist(err))
}

func TestSavedVideoHandler_Add_InvalidBody(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body any
	}{
		{name: "missing id", body: map[string]string{"provider": "youtube"}},
		{name: "missing provider", body: map[string]string{"id": "abc"}},
		{name: "unknown provider", body: map[string]string{"id": "abc", "provider": "tiktok"}},
		{name: "not an object", body: []string{"abc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(http.MethodPost, "/api/users/user1/videos", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestSavedVideoHandler_InvalidUserID(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/users/bad.user/videos", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSavedVideoHandler_StorageFailureHidesDetails(t *testing.T) {
	s := newTestServer(t)
	_, err := s.store.Add(context.Background(), store.Owner{UserID: "user1"},
		models.VideoSummary{ID: "abc", Provider: models.ProviderYouTube})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(s.dir, "user1", "videos.json"), []byte("{broken"), 0o644))

	w := s.do(http.MethodGet, "/api/users/user1/videos", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "Failed to access saved videos", resp.Message)
	assert.NotContains(t, w.Body.String(), "invalid character")
}

func TestRouter_APIKeyGuard(t *testing.T) {
	s := newTestServer(t, "secret")

	w := s.do(http.MethodGet, "/api/videos/search?q=armbar", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/videos/search?q=armbar", nil)
	req.Header.Set("X-API-Key", "secret")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	w = s.do(http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_Metrics(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodGet, "/api/videos/search?q=armbar", nil)

	w := s.do(http.MethodGet, "/metrics", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `route="/api/videos/search"`)
}
