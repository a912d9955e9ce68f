// Package notestore provides the SQLite-backed note collection with live
// (observable) queries.
package notestore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/starford/notesapp/internal/live"
	"github.com/starford/notesapp/internal/models"
)

//go:embed migrations/*.sql
var migrations embed.FS

// DB wraps a sql.DB with note operations and the live query registry.
type DB struct {
	conn *sql.DB
	path string

	// mu serializes writers.
	mu sync.Mutex

	live *live.Registry[[]models.Note]

	hookMu sync.RWMutex
	hooks  []EventCallback
}

// Open opens (or creates) the SQLite database and applies migrations.
func Open(dsn string) (*DB, error) {
	return OpenWithLogger(dsn, slog.Default())
}

// OpenWithLogger is Open with an explicit logger for live query failures.
func OpenWithLogger(dsn string, logger *slog.Logger) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("notestore: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("notestore: ping: %w", err)
	}
	if err := migrate(context.Background(), conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("notestore: migrate: %w", err)
	}
	// One connection: writes are serialized anyway, and PRAGMA data_version
	// then only moves when another process commits.
	conn.SetMaxOpenConns(1)

	return &DB{
		conn: conn,
		path: dsn,
		live: live.NewRegistry[[]models.Note](logger),
	}, nil
}

func migrate(ctx context.Context, conn *sql.DB) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return err
	}
	p, err := goose.NewProvider(goose.DialectSQLite3, conn, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Path returns the database file path the store was opened with.
func (db *DB) Path() string {
	return db.path
}

// Close disposes live subscriptions and closes the connection.
func (db *DB) Close() error {
	db.live.Close()
	return db.conn.Close()
}
