// Package sqlstore implements docstore.Store over a single documents table.
// The sqlite and postgres backends share it and differ only in placeholder
// syntax and how they open and migrate the database.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/habitual/internal/docstore"
)

// Dialect controls placeholder rewriting.
type Dialect int

const (
	QuestionMark Dialect = iota // sqlite
	Dollar                      // postgres
)

const (
	getQuery      = `SELECT body FROM documents WHERE path = ?`
	upsertQuery   = `INSERT INTO documents (path, parent, key, body, updated_at) VALUES (?, ?, ?, ?, ?) ON CONFLICT (path) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`
	deleteQuery   = `DELETE FROM documents WHERE path = ?`
	childrenQuery = `SELECT key, body FROM documents WHERE parent = ? ORDER BY key`
)

// Store is a docstore.Store backed by database/sql.
type Store struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

// New wraps an open database whose schema has been migrated.
func New(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect, now: time.Now}
}

// DB returns the underlying connection.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) bind(query string) string {
	if s.dialect != Dollar {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *Store) Get(ctx context.Context, path docstore.Path) (docstore.Document, error) {
	if err := path.Validate(); err != nil {
		return nil, err
	}
	var body []byte
	err := s.db.QueryRowContext(ctx, s.bind(getQuery), path.String()).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, docstore.ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	return docstore.Document(body), nil
}

func (s *Store) Set(ctx context.Context, path docstore.Path, doc docstore.Document) error {
	if err := path.Validate(); err != nil {
		return err
	}
	updatedAt := s.now().UTC().Format(time.RFC3339Nano)
	_, err := s.db.ExecContext(ctx, s.bind(upsertQuery),
		path.String(), path.Parent().String(), path.Base(), string(doc), updatedAt)
	if err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, path docstore.Path) error {
	if err := path.Validate(); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, s.bind(deleteQuery), path.String()); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

func (s *Store) Children(ctx context.Context, parent docstore.Path) ([]docstore.Entry, error) {
	if err := parent.Validate(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, s.bind(childrenQuery), parent.String())
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", parent, err)
	}
	defer rows.Close()

	var entries []docstore.Entry
	for rows.Next() {
		var key string
		var body []byte
		if err := rows.Scan(&key, &body); err != nil {
			return nil, fmt.Errorf("list %s: %w", parent, err)
		}
		entries = append(entries, docstore.Entry{Key: key, Doc: docstore.Document(body)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", parent, err)
	}
	return entries, nil
}

func (s *Store) GenerateID(ctx context.Context, parent docstore.Path) (string, error) {
	return docstore.NewID()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}
