// Package migrations embeds the schema migrations of each SQL dialect.
package migrations

import "embed"

// Sqlite holds sqlite/*.sql.
//
//go:embed sqlite/*.sql
var Sqlite embed.FS

// Postgres holds postgres/*.sql.
//
//go:embed postgres/*.sql
var Postgres embed.FS
