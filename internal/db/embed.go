package db

import "embed"

// migrationsFS holds the goose SQL migrations, shared by sqlite and postgres.
//
//go:embed migrations/*.sql
var migrationsFS embed.FS
