package proposals

import (
	"embed"
	"io/fs"

	"github.com/goliatone/go-proposals/migrations"
)

// MigrationsFS contains SQL migrations for both PostgreSQL and SQLite.
//
// The migrations are organized in a dialect-aware structure:
//   - Root files (data/sql/migrations/*.sql) contain PostgreSQL migrations
//   - SQLite overrides are in data/sql/migrations/sqlite/*.sql
//
// Importing this package registers them with the migrations package.
//
// Usage:
//
//	import "io/fs"
//	import proposals "github.com/goliatone/go-proposals"
//
//	migrationsFS, _ := fs.Sub(proposals.MigrationsFS, "data/sql/migrations")
//	client.RegisterDialectMigrations(migrationsFS)
//
//go:embed data/sql/migrations/*.sql data/sql/migrations/sqlite/*.sql
var MigrationsFS embed.FS

func init() {
	coreFS, err := fs.Sub(MigrationsFS, "data/sql/migrations")
	if err != nil {
		return
	}
	migrations.Register(coreFS)
}
