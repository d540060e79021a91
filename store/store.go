// Package store persists named templates (markup plus rule set) in SQLite.
//
//	import _ "modernc.org/sqlite"
//	st, err := store.Open("data/domfill.db")
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
)

// Store is the template database handle.
type Store struct {
	DB    *sql.DB
	newID func() string
}

type config struct {
	driver      string
	busyTimeout int
	mkdirAll    bool
	newID       func() string
}

// Option customises Open.
type Option func(*config)

// WithDriver sets the database/sql driver name. Default: "sqlite".
func WithDriver(name string) Option { return func(c *config) { c.driver = name } }

// WithBusyTimeout sets PRAGMA busy_timeout in milliseconds. Default: 10000.
func WithBusyTimeout(ms int) Option { return func(c *config) { c.busyTimeout = ms } }

// WithMkdirAll creates the parent directory of the database file.
func WithMkdirAll() Option { return func(c *config) { c.mkdirAll = true } }

// WithIDGenerator overrides template ID generation.
func WithIDGenerator(gen func() string) Option { return func(c *config) { c.newID = gen } }

func newTemplateID() string {
	return "tpl_" + uuid.Must(uuid.NewV7()).String()
}

// Open opens (or creates) the database at path, applies pragmas and the
// schema. The caller blank-imports the driver.
func Open(path string, opts ...Option) (*Store, error) {
	cfg := config{driver: "sqlite", busyTimeout: 10_000, newID: newTemplateID}
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.mkdirAll && path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("store: mkdir: %w", err)
		}
	}

	db, err := sql.Open(cfg.driver, path)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if path == ":memory:" {
		// Each connection to ":memory:" is a separate database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.busyTimeout),
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: %s: %w", p, err)
		}
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: schema: %w", err)
	}
	return &Store{DB: db, newID: cfg.newID}, nil
}

// OpenMemory opens an in-memory store for tests; t.Cleanup closes it.
func OpenMemory(t testing.TB, opts ...Option) *Store {
	t.Helper()
	s, err := Open(":memory:", opts...)
	if err != nil {
		t.Fatalf("store.OpenMemory: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}
