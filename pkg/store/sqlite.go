package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS matters (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	region TEXT NOT NULL,
	name TEXT NOT NULL,
	title TEXT NOT NULL,
	values_json TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_matters_region ON matters(region);
`

// SQLite stores matters in a SQLite database. The full value record is kept
// as JSON next to a few indexed columns.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and migrates) the database at dsn. A blank dsn or
// ":memory:" keeps the database in memory.
func OpenSQLite(dsn string) (*SQLite, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = ":memory:"
	}
	if dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("store: create directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	// A memory database lives per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Save(ctx context.Context, m Matter) error {
	if m.ID == "" {
		return fmt.Errorf("store: matter id is required")
	}
	payload, err := json.Marshal(m.Values)
	if err != nil {
		return fmt.Errorf("store: encode values: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO matters (id, region, name, title, values_json, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.Values.Region, m.Values.Name, m.Values.Title, string(payload), m.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("store: insert matter: %w", err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, id string) (Matter, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, values_json, created_at FROM matters WHERE id = ?`, id)
	m, err := scanMatter(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Matter{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m, err
}

func (s *SQLite) List(ctx context.Context) ([]Matter, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, values_json, created_at FROM matters ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("store: list matters: %w", err)
	}
	defer rows.Close()

	var out []Matter
	for rows.Next() {
		m, err := scanMatter(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: list matters: %w", err)
	}
	return out, nil
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMatter(row scanner) (Matter, error) {
	var (
		m       Matter
		payload string
		created string
	)
	if err := row.Scan(&m.ID, &payload, &created); err != nil {
		return Matter{}, err
	}
	if err := json.Unmarshal([]byte(payload), &m.Values); err != nil {
		return Matter{}, fmt.Errorf("store: decode values: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Matter{}, fmt.Errorf("store: decode timestamp: %w", err)
	}
	m.CreatedAt = ts
	return m, nil
}
