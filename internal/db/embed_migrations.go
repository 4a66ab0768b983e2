package db

import "embed"

// MigrationFS contiene las migraciones SQL aplicadas por internal/db/migrate.
//
//go:embed migrations/*.sql
var MigrationFS embed.FS
