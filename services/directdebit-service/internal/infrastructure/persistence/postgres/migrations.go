package postgres

import "embed"

// Migrations holds the schema migrations for the direct debit store, in
// golang-migrate file naming.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsPath is the directory inside Migrations holding the files.
const MigrationsPath = "migrations"
