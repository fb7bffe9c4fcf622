package sqlite

import "strings"

// Config holds SQLite repository configuration derived from storage.Config.
type Config struct {
	// DSN is a SQLite connection string or file path, e.g.:
	//   "file:profile.db?_pragma=busy_timeout(5000)"
	//   ":memory:"
	DSN string

	// Table is the target table for inserts. Dotted names such as
	// "main.events" are quoted segment by segment.
	Table string

	// Columns is the ordered list of destination columns.
	Columns []string
}

// inMemory reports whether the DSN names a private in-memory database. Each
// connection to such a DSN sees its own empty database.
func (c Config) inMemory() bool {
	return strings.Contains(c.DSN, ":memory:") || strings.Contains(c.DSN, "mode=memory")
}
