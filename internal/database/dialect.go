// Package database opens the optional SQL store (Postgres or SQLite) used in
// place of Supabase PostgREST, and hides the placeholder and error-code
// differences between the two drivers.
package database

import (
	"database/sql"
	"regexp"
	"strconv"
)

// Dialect defines the interface for database-specific operations
type Dialect interface {
	// Name is the store driver name used in configuration
	Name() string

	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN normalises the configured data source name
	DSN(dsn string) string

	// RewriteQuery converts placeholder syntax if needed (e.g., ? to $1 for postgres)
	RewriteQuery(query string) string

	// ConfigureConnection applies any database-specific connection settings
	ConfigureConnection(db *sql.DB) error

	// Schema returns the DDL applied on open
	Schema() (string, error)

	// IsUniqueViolation reports whether err is a primary key or unique constraint failure
	IsUniqueViolation(err error) bool
}

// placeholderRegexp matches ? placeholders
var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(match string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}
