package http

import (
	"github.com/ethanwheatthin/lib-reader/internal/database"
	"github.com/ethanwheatthin/lib-reader/internal/pageindex"
	"github.com/ethanwheatthin/lib-reader/internal/reading"
	"github.com/ethanwheatthin/lib-reader/internal/scanner"
	"github.com/ethanwheatthin/lib-reader/internal/tasks"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router. This replaces the long parameter list
// in NewRouter for better maintainability.
type RouterConfig struct {
	// Core dependencies
	Database *database.Database

	// Per-concern stores
	DocumentStore DocumentStore
	BookmarkStore BookmarkStore
	StatsStore    StatsStore
	SourceStore   SourceStore

	// Reading core
	Tracker  *reading.Tracker
	Recorder *reading.Recorder

	// Page index caching
	PageIndexCache *pageindex.Cache

	// Library scanning
	Scanner *scanner.Scanner

	// Task queue client (optional)
	TaskClient *tasks.Client

	// DataDir is where uploaded files are stored
	DataDir string

	// Application info
	Version string
}
