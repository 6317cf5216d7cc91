// Package db embeds the SQL migrations applied at startup.
package db

import "embed"

// Migrations holds the goose migrations under "migrations/".
//
//go:embed migrations/*.sql
var Migrations embed.FS
