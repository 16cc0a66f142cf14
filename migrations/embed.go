// Package migrations embeds the SQL schema migrations applied at startup.
package migrations

import "embed"

// FS holds the embedded SQL migration files, consumed by the iofs
// migration source in internal/database.
//
//go:embed *.sql
var FS embed.FS
