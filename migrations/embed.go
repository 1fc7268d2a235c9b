// Package migrations embeds the SQL schema migrations so binaries can apply
// them without shipping the .sql files alongside the executable.
package migrations

import "embed"

// FS holds the migration files.
//
//go:embed *.sql
var FS embed.FS
