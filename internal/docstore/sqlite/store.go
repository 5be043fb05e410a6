package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitual/internal/docstore/sqlstore"
	"github.com/julianstephens/habitual/internal/logger"
	"github.com/julianstephens/habitual/internal/migration"
	"github.com/julianstephens/habitual/migrations"
)

// ErrNotInitialized is returned by Load when the database file is missing.
var ErrNotInitialized = errors.New("storage not initialized, run 'habitual init' first")

// Store is the embedded sqlite document store.
type Store struct {
	*sqlstore.Store
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

// Init creates the database file if needed and applies migrations.
func (s *Store) Init(ctx context.Context) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	db, err := s.open()
	if err != nil {
		return err
	}

	runner, err := newRunner(db)
	if err != nil {
		db.Close()
		return err
	}
	if _, err := runner.Apply(ctx, func(msg string) { logger.Info(msg, "store", "sqlite") }); err != nil {
		db.Close()
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	s.Store = sqlstore.New(db, sqlstore.QuestionMark)
	return nil
}

// Load opens an initialized database and checks its schema version.
func (s *Store) Load(ctx context.Context) error {
	if s.Store != nil {
		return nil
	}
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return ErrNotInitialized
	}

	db, err := s.open()
	if err != nil {
		return err
	}
	runner, err := newRunner(db)
	if err != nil {
		db.Close()
		return err
	}
	if err := runner.ValidateVersion(ctx); err != nil {
		db.Close()
		return err
	}

	s.Store = sqlstore.New(db, sqlstore.QuestionMark)
	return nil
}

func (s *Store) Close() error {
	if s.Store == nil {
		return nil
	}
	return s.Store.Close()
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Describe returns a non-sensitive identifier for diagnostics.
func (s *Store) Describe() string { return "sqlite:" + s.path }

// SchemaRunner returns a migration runner for diagnostics. Load or Init must
// have been called.
func (s *Store) SchemaRunner() (*migration.Runner, error) {
	if s.Store == nil {
		return nil, ErrNotInitialized
	}
	return newRunner(s.DB())
}

func (s *Store) open() (*sql.DB, error) {
	db, err := sql.Open("sqlite", s.path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite has a single writer; concurrent tasks share one connection.
	db.SetMaxOpenConns(1)
	return db, nil
}

func newRunner(db *sql.DB) (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(db, subFS, migration.SQLite), nil
}
