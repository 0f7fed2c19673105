package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sourceResponse struct {
	ID                     string `json:"id"`
	Name                   string `json:"name"`
	PollingEnabled         bool   `json:"pollingEnabled"`
	PollingIntervalSeconds int    `json:"pollingIntervalSeconds"`
	TotalFilesFound        int    `json:"totalFilesFound"`
	LastScannedAt          string `json:"lastScannedAt"`
	Paths                  []struct {
		ID        string `json:"id"`
		Path      string `json:"path"`
		FileCount int    `json:"fileCount"`
	} `json:"paths"`
}

func TestSourcesController_Create(t *testing.T) {
	t.Run("creates with defaults", func(t *testing.T) {
		server, cleanup := setupTestServer(t)
		defer cleanup()

		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, jsonRequest(t, "POST", "/api/library-sources", map[string]any{
			"name":  "Home Library",
			"paths": []string{"/books"},
		}))

		require.Equal(t, http.StatusCreated, w.Code)

		var resp sourceResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, "Home Library", resp.Name)
		assert.True(t, resp.PollingEnabled)
		assert.Equal(t, 300, resp.PollingIntervalSeconds)
		require.Len(t, resp.Paths, 1)
		assert.Equal(t, "/books", resp.Paths[0].Path)
	})

	t.Run("missing name or paths yields 400", func(t *testing.T) {
		server, cleanup := setupTestServer(t)
		defer cleanup()

		w := httptest.NewRecorder()
		server.router.ServeHTTP(w, jsonRequest(t, "POST", "/api/library-sources", map[string]any{
			"name": "No Paths",
		}))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestSourcesController_Update(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	created, err := server.sources.Create("Library", []string{"/keep", "/drop"}, true, 300)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	server.router.ServeHTTP(w, jsonRequest(t, "PUT", "/api/library-sources/"+created.ID, map[string]any{
		"name":  "Renamed",
		"paths": []string{"/keep", "/new"},
	}))

	require.Equal(t, http.StatusOK, w.Code)

	var resp sourceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Renamed", resp.Name)
	require.Len(t, resp.Paths, 2)

	paths := []string{resp.Paths[0].Path, resp.Paths[1].Path}
	assert.Contains(t, paths, "/keep")
	assert.Contains(t, paths, "/new")
}

func TestSourcesController_Delete(t *testing.T) {
	server, cleanup := setupTestServer(t)
	defer cleanup()

	created, err := server.sources.Create("Doomed", []string{"/a"}, true, 300)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/api/library-sources/"+created.ID, nil)
	server.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("DELETE", "/api/library-sources/"+created.ID, nil)
	server.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSourcesController_Scan(t *testing.T) {
	t.Run("imports new files and stamps the source", func(t *testing.T) {
		server, cleanup := setupTestServer(t)
		defer cleanup()

		libDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(libDir, "book.epub"), make([]byte, 500), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(libDir, "paper.pdf"), make([]byte, 300), 0644))

		created, err := server.sources.Create("Scan Me", []string{libDir}, true, 300)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/library-sources/"+created.ID+"/scan", nil)
		server.router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Source   sourceResponse `json:"source"`
			Imported []struct {
				ID       string `json:"id"`
				Title    string `json:"title"`
				Type     string `json:"type"`
				FilePath string `json:"filePath"`
			} `json:"imported"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Len(t, resp.Imported, 2)
		assert.Equal(t, 2, resp.Source.TotalFilesFound)
		assert.NotEmpty(t, resp.Source.LastScannedAt)

		// Rescan is idempotent
		w = httptest.NewRecorder()
		req, _ = http.NewRequest("POST", "/api/library-sources/"+created.ID+"/scan", nil)
		server.router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Empty(t, resp.Imported)

		docs, err := server.documents.List()
		require.NoError(t, err)
		assert.Len(t, docs, 2)
	})

	t.Run("unknown source yields 404", func(t *testing.T) {
		server, cleanup := setupTestServer(t)
		defer cleanup()

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("POST", "/api/library-sources/missing/scan", nil)
		server.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
