package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability
// and reducing parameter count.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Create controllers with appropriate interfaces
	health := NewHealthController(cfg.Database, cfg.Version)
	documents := NewDocumentsController(cfg.DocumentStore, cfg.PageIndexCache, cfg.TaskClient, cfg.DataDir)
	progress := NewProgressController(cfg.DocumentStore, cfg.Tracker, cfg.Recorder, cfg.PageIndexCache)
	bookmarks := NewBookmarksController(cfg.BookmarkStore)
	stats := NewStatsController(cfg.DocumentStore, cfg.StatsStore)
	pageIndex := NewPageIndexController(cfg.DocumentStore, cfg.Tracker, cfg.PageIndexCache)
	sources := NewSourcesController(cfg.SourceStore, cfg.Scanner)
	filesystem := NewFilesystemController()

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Document endpoints
	router.GET("/api/documents", documents.List)
	router.POST("/api/documents", documents.Upload)
	router.GET("/api/documents/:id", documents.Get)
	router.DELETE("/api/documents/:id", documents.Delete)
	router.GET("/api/documents/:id/file", documents.Download)

	// Reading position and sessions
	router.PATCH("/api/documents/:id/progress", progress.UpdateProgress)
	router.POST("/api/documents/:id/sessions", progress.RecordSession)

	// Bookmarks
	router.GET("/api/documents/:id/bookmarks", bookmarks.List)
	router.POST("/api/documents/:id/bookmarks/toggle", bookmarks.Toggle)
	router.DELETE("/api/documents/:id/bookmarks/:bookmarkId", bookmarks.Remove)

	// Stats and goals
	router.GET("/api/documents/:id/stats", stats.GetStats)
	router.GET("/api/documents/:id/goal", stats.GetGoal)
	router.PUT("/api/documents/:id/goal", stats.SetGoal)

	// Page index
	router.GET("/api/documents/:id/page-index", pageIndex.Get)
	router.PUT("/api/documents/:id/page-index", pageIndex.Put)

	// Library sources
	router.GET("/api/library-sources", sources.List)
	router.POST("/api/library-sources", sources.Create)
	router.GET("/api/library-sources/:id", sources.Get)
	router.PUT("/api/library-sources/:id", sources.Update)
	router.DELETE("/api/library-sources/:id", sources.Delete)
	router.POST("/api/library-sources/:id/scan", sources.Scan)

	// Filesystem browsing for the source-path picker
	router.GET("/api/filesystem/browse", filesystem.Browse)

	return router
}
