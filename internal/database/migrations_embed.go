package database

import (
	"embed"
	"io/fs"
)

//go:embed migrations/*.up.sql
var migrationsFS embed.FS

// MigrationsFS returns the compiled-in migration files so binaries can run
// schema migrations without the source tree present.
func MigrationsFS() fs.FS {
	return migrationsFS
}

// MigrationsPath is the directory inside MigrationsFS holding *.up.sql files.
const MigrationsPath = "migrations"
