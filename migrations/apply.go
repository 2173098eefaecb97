package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// Dialect names the SQL flavour of a migration set.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

// Execer is satisfied by *sql.DB, *sql.Tx, *bun.DB and bun.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Apply runs every registered "up" migration for dialect in file name order.
// It is meant for tests, examples and single-binary deployments; hosts with a
// migration runner should use Filesystems instead.
func Apply(ctx context.Context, db Execer, dialect Dialect) error {
	for _, fsys := range Filesystems() {
		if err := ApplyFS(ctx, db, fsys, dialect); err != nil {
			return err
		}
	}
	return nil
}

// ApplyFS runs the "up" migrations of a single filesystem.
func ApplyFS(ctx context.Context, db Execer, fsys fs.FS, dialect Dialect) error {
	pattern := "*.up.sql"
	if dialect == DialectSQLite {
		pattern = path.Join("sqlite", pattern)
	}
	files, err := fs.Glob(fsys, pattern)
	if err != nil {
		return err
	}
	sort.Strings(files)
	for _, file := range files {
		body, err := fs.ReadFile(fsys, file)
		if err != nil {
			return err
		}
		for _, stmt := range SplitStatements(string(body)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migrations: %s: %w", file, err)
			}
		}
	}
	return nil
}

// SplitStatements breaks a migration file on semicolons, dropping "--"
// comment lines and blank statements.
func SplitStatements(sql string) []string {
	var body strings.Builder
	for _, line := range strings.Split(sql, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		body.WriteString(line)
		body.WriteString("\n")
	}
	parts := strings.Split(body.String(), ";")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
