// Package migrations embeds the SQL schema migrations of the key/value store.
// The statements are valid for both PostgreSQL and SQLite.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
