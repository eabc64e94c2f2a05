// Package migrations holds the goose schema migrations for the local store.
// SQL migrations are embedded; Go migrations register themselves on import.
package migrations

import "embed"

// FS contains the SQL migration files.
//
//go:embed *.sql
var FS embed.FS
