package migrations

import "embed"

// FS contains embedded SQLite migrations for coffee store storage.
//
//go:embed *.sql
var FS embed.FS
