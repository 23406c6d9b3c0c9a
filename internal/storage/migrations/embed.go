// Package migrations embeds the SQL schema applied with goose.
package migrations

import "embed"

// PostgresFS embeds all PostgreSQL migration files.
//
//go:embed postgres/*.sql
var PostgresFS embed.FS

// PostgresDir is the directory inside PostgresFS passed to goose.
const PostgresDir = "postgres"
