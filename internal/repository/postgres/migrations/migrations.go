// Package migrations embeds the schema migrations applied by postgres.RunMigrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
