// Package migrations embebe los scripts goose del esquema.
package migrations

import "embed"

// FS migraciones SQL en orden de versión.
//
//go:embed *.sql
var FS embed.FS
