// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - DocumentStore: Document CRUD (internal/http/documents.go)
//   - BookmarkStore: Bookmark toggling and listing (internal/http/bookmarks.go)
//   - StatsStore: Reading stats and goals (internal/http/stats.go)
//   - SourceStore: Library-source management (internal/http/sources.go)
//
// ## Reading Pipeline Interfaces
//
//   - ProgressStore: Merged position persistence (internal/reading/tracker.go)
//   - SessionStore: Completed session persistence (internal/reading/session.go)
//
// ## Scanner and Background Work Interfaces
//
//   - DocumentImporter / SourceUpdater: Scan-time stores (internal/scanner/scanner.go)
//   - SourceLister / SourceScanner: Poller dependencies (internal/scheduler/scan_poller.go)
//   - IndexDocumentStore: Metadata-extraction task store (internal/tasks/index_document.go)
//
// # Adding a New Database Domain
//
// To add a new data domain:
//
//  1. Create sub-package: internal/database/<domain>/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Implement interface methods
//
//  4. Add a compile-time check in checks.go:
//
//     var _ SomeStore = (*Repository)(nil)
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full set.
package interfaces
