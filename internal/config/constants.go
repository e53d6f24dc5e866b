package config

// Default paths for databases
const (
	// DefaultDatabasePath is the default path for the relational SQLite database
	DefaultDatabasePath = "./rentals.db"

	// DefaultSearchIndexPath is the default path for the search index database
	DefaultSearchIndexPath = "./rentals-index.db"

	// DefaultTasksDatabasePath is the default path for the task queue database
	DefaultTasksDatabasePath = "./rentals-tasks.db"
)
