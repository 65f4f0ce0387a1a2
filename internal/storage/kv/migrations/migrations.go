// Package migrations embeds the schema of the local SQLite key-value store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
