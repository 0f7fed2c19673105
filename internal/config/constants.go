package config

// Default filesystem locations
const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./lib-reader.db"

	// DefaultDataDir is the default directory for uploaded document files
	DefaultDataDir = "./data"
)
