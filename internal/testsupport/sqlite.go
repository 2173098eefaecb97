// Package testsupport opens SQLite databases with the module migrations
// applied.
package testsupport

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/goliatone/go-proposals/migrations"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var dbSeq atomic.Int64

// Options tunes the database returned by Open.
type Options struct {
	// File places the database under t.TempDir instead of shared-cache memory.
	File         bool
	MaxOpenConns int
	ForeignKeys  bool
}

// NewDB returns a single-connection in-memory database with every SQLite
// up migration applied.
func NewDB(t testing.TB) *bun.DB {
	t.Helper()
	return Open(t, Options{MaxOpenConns: 1})
}

// NewFileDB returns a file-backed database that allows maxConns concurrent
// connections and enforces foreign keys.
func NewFileDB(t testing.TB, maxConns int) *bun.DB {
	t.Helper()
	return Open(t, Options{File: true, MaxOpenConns: maxConns, ForeignKeys: true})
}

// Open returns a migrated database configured by opts.
func Open(t testing.TB, opts Options) *bun.DB {
	t.Helper()
	var dsn string
	if opts.File {
		dsn = fmt.Sprintf("file:%s?_busy_timeout=5000", filepath.Join(t.TempDir(), "proposals.db"))
	} else {
		dsn = fmt.Sprintf("file:proposals_%d?mode=memory&cache=shared", dbSeq.Add(1))
	}
	if opts.ForeignKeys {
		dsn += "&_foreign_keys=1"
	}
	sqldb, err := sql.Open("sqlite3", dsn)
	require.NoError(t, err)
	if opts.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(opts.MaxOpenConns)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
		_ = sqldb.Close()
	})
	ApplyMigrations(t, db)
	return db
}

// ApplyMigrations runs the SQLite up migrations through the same path hosts
// use.
func ApplyMigrations(t testing.TB, db *bun.DB) {
	t.Helper()
	err := migrations.ApplyFS(context.Background(), db, os.DirFS(MigrationsDir(t)), migrations.DialectSQLite)
	require.NoError(t, err)
}

// MigrationsDir locates data/sql/migrations relative to this file.
func MigrationsDir(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "..", "..", "data", "sql", "migrations")
}
