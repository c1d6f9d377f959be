// Package migrations embebe los SQL de goose para el binario de la API y cmd/migrate.
package migrations

import "embed"

// FS migraciones goose (YYYYMMDDHHMMSS_nombre.sql).
//
//go:embed *.sql
var FS embed.FS

// Dir raíz de las migraciones dentro de FS.
const Dir = "."
