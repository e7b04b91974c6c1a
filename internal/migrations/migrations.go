// Package migrations embeds the goose SQL migrations for every supported
// durable store dialect.
package migrations

import "embed"

// Directories inside Migrations, one per dialect.
const (
	SQLiteDir   = "sqlite"
	PostgresDir = "postgres"
)

//go:embed sqlite/*.sql postgres/*.sql
var Migrations embed.FS
