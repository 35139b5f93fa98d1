// Package migrations embeds the SQL schema migrations for the staffdesk
// SQLite store.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
