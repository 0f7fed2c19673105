package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/ethanwheatthin/lib-reader/internal/database/bookmarks"
	"github.com/ethanwheatthin/lib-reader/internal/database/documents"
	"github.com/ethanwheatthin/lib-reader/internal/database/sources"
	"github.com/ethanwheatthin/lib-reader/internal/database/stats"
	"github.com/ethanwheatthin/lib-reader/internal/http"
	"github.com/ethanwheatthin/lib-reader/internal/reading"
	"github.com/ethanwheatthin/lib-reader/internal/scanner"
	"github.com/ethanwheatthin/lib-reader/internal/scheduler"
	"github.com/ethanwheatthin/lib-reader/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// DocumentStore implementations
var _ http.DocumentStore = (*documents.Repository)(nil)

// BookmarkStore implementations
var _ http.BookmarkStore = (*bookmarks.Repository)(nil)

// StatsStore implementations
var _ http.StatsStore = (*stats.Repository)(nil)

// SourceStore implementations
var _ http.SourceStore = (*sources.Repository)(nil)

// =============================================================================
// Reading Pipeline
// =============================================================================

// ProgressStore / SessionStore implementations
var _ reading.ProgressStore = (*documents.Repository)(nil)
var _ reading.SessionStore = (*stats.Repository)(nil)

// =============================================================================
// Scanner and Background Work
// =============================================================================

// Scanner store implementations
var _ scanner.DocumentImporter = (*documents.Repository)(nil)
var _ scanner.SourceUpdater = (*sources.Repository)(nil)

// Poller dependencies
var _ scheduler.SourceLister = (*sources.Repository)(nil)
var _ scheduler.SourceScanner = (*scanner.Scanner)(nil)

// Task queue store implementations
var _ tasks.IndexDocumentStore = (*documents.Repository)(nil)
