package postgres

import (
	"embed"
	"io/fs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// MigrationsDir is the directory inside Migrations() that holds the goose files.
const MigrationsDir = "migrations"

// Migrations returns the embedded goose migration files.
func Migrations() fs.FS {
	return migrationFiles
}
