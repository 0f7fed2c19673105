package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethanwheatthin/lib-reader/internal/entities"
	"github.com/ethanwheatthin/lib-reader/internal/reading"
)

func jsonRequest(t *testing.T, method, url string, payload any) *http.Request {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	req, _ := http.NewRequest(method, url, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func seedDocument(t *testing.T, server *testServer) *entities.Document {
	t.Helper()
	doc := &entities.Document{Title: "Test Book", Type: entities.DocumentTypeEPUB, TotalPages: 100}
	require.NoError(t, server.documents.Create(doc, "/library/test.epub", "application/epub+zip"))
	return doc
}

func TestProgressController_UpdateProgress(t *testing.T) {
	t.Run("merges page, location and fraction", func(t *testing.T) {
		server, cleanup := setupTestServer(t)
		defer cleanup()
		doc := seedDocument(t, server)

		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, jsonRequest(t, "PATCH", "/api/documents/"+doc.ID+"/progress", map[string]any{
			"page": 42, "location": "epubcfi(/6/4!/4/2/1:0)", "fraction": 0.42,
		}))

		require.Equal(t, http.StatusOK, w.Code)

		stored, err := server.documents.GetByID(doc.ID)
		require.NoError(t, err)
		assert.Equal(t, 42, stored.CurrentPage)
		assert.Equal(t, "epubcfi(/6/4!/4/2/1:0)", stored.CurrentLocation)
		require.NotNil(t, stored.ReadingProgressPercent)
		assert.Equal(t, 42, *stored.ReadingProgressPercent)
		require.NotNil(t, stored.LastOpened)
	})

	t.Run("update without estimate never regresses percent", func(t *testing.T) {
		server, cleanup := setupTestServer(t)
		defer cleanup()
		doc := seedDocument(t, server)

		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, jsonRequest(t, "PATCH", "/api/documents/"+doc.ID+"/progress", map[string]any{
			"page": 50, "fraction": 0.5,
		}))
		require.Equal(t, http.StatusOK, w.Code)

		w = httptest.NewRecorder()
		server.router.ServeHTTP(w, jsonRequest(t, "PATCH", "/api/documents/"+doc.ID+"/progress", map[string]any{
			"page": 51,
		}))
		require.Equal(t, http.StatusOK, w.Code)

		stored, err := server.documents.GetByID(doc.ID)
		require.NoError(t, err)
		assert.Equal(t, 51, stored.CurrentPage)
		require.NotNil(t, stored.ReadingProgressPercent)
		assert.Equal(t, 50, *stored.ReadingProgressPercent)
	})

	t.Run("prefers a stored page index over the fraction", func(t *testing.T) {
		server, cleanup := setupTestServer(t)
		defer cleanup()
		doc := seedDocument(t, server)

		require.NoError(t, server.cache.Put(doc.ID, reading.PageIndex(101)))

		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, jsonRequest(t, "PATCH", "/api/documents/"+doc.ID+"/progress", map[string]any{
			"page": 25, "location": "25", "fraction": 0.9,
		}))
		require.Equal(t, http.StatusOK, w.Code)

		stored, err := server.documents.GetByID(doc.ID)
		require.NoError(t, err)
		require.NotNil(t, stored.ReadingProgressPercent)
		assert.Equal(t, 24, *stored.ReadingProgressPercent, "index position (24/100) beats the fraction")
	})

	t.Run("empty update yields 400", func(t *testing.T) {
		server, cleanup := setupTestServer(t)
		defer cleanup()
		doc := seedDocument(t, server)

		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, jsonRequest(t, "PATCH", "/api/documents/"+doc.ID+"/progress", map[string]any{}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown document yields 404", func(t *testing.T) {
		server, cleanup := setupTestServer(t)
		defer cleanup()

		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, jsonRequest(t, "PATCH", "/api/documents/missing/progress", map[string]any{"page": 1}))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestProgressController_RecordSession(t *testing.T) {
	t.Run("records a session above the floor", func(t *testing.T) {
		server, cleanup := setupTestServer(t)
		defer cleanup()
		doc := seedDocument(t, server)

		started := time.Now().Add(-10 * time.Minute)
		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, jsonRequest(t, "POST", "/api/documents/"+doc.ID+"/sessions", map[string]any{
			"startedAt": started.Format(time.RFC3339),
			"endedAt":   started.Add(6 * time.Minute).Format(time.RFC3339),
			"startPage": 10,
			"endPage":   18,
		}))

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Recorded bool `json:"recorded"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Recorded)

		stats, err := server.stats.GetByDocument(doc.ID)
		require.NoError(t, err)
		require.Len(t, stats.Sessions, 1)
		assert.Equal(t, 8, stats.Sessions[0].PagesRead)
		assert.Equal(t, int64(6*60*1000), stats.Sessions[0].Duration)
	})

	t.Run("discards sessions below the floor", func(t *testing.T) {
		server, cleanup := setupTestServer(t)
		defer cleanup()
		doc := seedDocument(t, server)

		started := time.Now().Add(-time.Minute)
		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, jsonRequest(t, "POST", "/api/documents/"+doc.ID+"/sessions", map[string]any{
			"startedAt": started.Format(time.RFC3339),
			"endedAt":   started.Add(4999 * time.Millisecond).Format(time.RFC3339),
			"startPage": 10,
			"endPage":   11,
		}))

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Recorded bool `json:"recorded"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Recorded)

		stats, err := server.stats.GetByDocument(doc.ID)
		require.NoError(t, err)
		assert.Empty(t, stats.Sessions)
	})

	t.Run("rejects a session ending before it starts", func(t *testing.T) {
		server, cleanup := setupTestServer(t)
		defer cleanup()
		doc := seedDocument(t, server)

		now := time.Now()
		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, jsonRequest(t, "POST", "/api/documents/"+doc.ID+"/sessions", map[string]any{
			"startedAt": now.Format(time.RFC3339),
			"endedAt":   now.Add(-time.Minute).Format(time.RFC3339),
		}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
