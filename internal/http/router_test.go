package http

import (
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ethanwheatthin/lib-reader/internal/database"
	"github.com/ethanwheatthin/lib-reader/internal/database/bookmarks"
	"github.com/ethanwheatthin/lib-reader/internal/database/documents"
	"github.com/ethanwheatthin/lib-reader/internal/database/sources"
	"github.com/ethanwheatthin/lib-reader/internal/database/stats"
	"github.com/ethanwheatthin/lib-reader/internal/pageindex"
	"github.com/ethanwheatthin/lib-reader/internal/reading"
	"github.com/ethanwheatthin/lib-reader/internal/scanner"
)

// testServer bundles the router with direct repository access so tests can
// seed and verify state without going through HTTP.
type testServer struct {
	router    *gin.Engine
	db        *database.Database
	documents *documents.Repository
	bookmarks *bookmarks.Repository
	stats     *stats.Repository
	sources   *sources.Repository
	cache     *pageindex.Cache
	dataDir   string
}

func setupTestServer(t *testing.T) (*testServer, func()) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := "./test_http_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"
	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	docRepo := documents.NewRepository(db.DB)
	bookmarkRepo := bookmarks.NewRepository(db.DB)
	statsRepo := stats.NewRepository(db.DB)
	sourceRepo := sources.NewRepository(db.DB)

	cache, err := pageindex.NewCache(t.TempDir())
	require.NoError(t, err)

	dataDir := t.TempDir()

	router := NewRouter(RouterConfig{
		Database:       db,
		DocumentStore:  docRepo,
		BookmarkStore:  bookmarkRepo,
		StatsStore:     statsRepo,
		SourceStore:    sourceRepo,
		Tracker:        reading.NewTracker(docRepo),
		Recorder:       reading.NewRecorder(statsRepo),
		PageIndexCache: cache,
		Scanner:        scanner.New(docRepo, sourceRepo),
		DataDir:        dataDir,
		Version:        "test",
	})

	server := &testServer{
		router:    router,
		db:        db,
		documents: docRepo,
		bookmarks: bookmarkRepo,
		stats:     statsRepo,
		sources:   sourceRepo,
		cache:     cache,
		dataDir:   dataDir,
	}

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}
	return server, cleanup
}
