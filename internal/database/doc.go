// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations
//	├── documents/       # Document CRUD and reading-progress updates
//	├── bookmarks/       # Bookmark toggle/remove per document
//	├── stats/           # Reading sessions, stats, goals
//	└── sources/         # Library sources and watched paths
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	// Initialize database connection
//	db, err := database.NewDatabase("./library.db")
//
//	// Create domain-specific repositories
//	docsRepo := documents.NewRepository(db.DB)
//	marksRepo := bookmarks.NewRepository(db.DB)
//
//	// Use repositories
//	doc, err := docsRepo.GetByID("3f6c...")
//	mark, removed, err := marksRepo.Toggle("3f6c...", "epubcfi(/6/4!/4/2/1:0)", "Chapter 3", "")
//
// # Concurrency
//
// The documents, bookmarks and stats repositories serialize mutations per
// document with keyed mutexes: concurrent progress patches, bookmark toggles
// or session appends against the same document never interleave their
// read-then-write sections. Operations on different documents proceed in
// parallel.
package database
