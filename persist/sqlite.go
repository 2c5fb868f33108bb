package persist

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLite persists export documents as keyed save rows. Unlike File it keeps
// a save history, so a corrupted latest save does not take the session
// with it; Prune keeps the table bounded.
type SQLite struct {
	db    *sql.DB
	owned bool
}

// NewSQLite wraps an existing database handle. The caller keeps ownership
// of db.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db}
}

// OpenSQLite opens (creating if needed) a save database at path and
// prepares the schema.
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open save database: %w", err)
	}

	s := &SQLite{db: db, owned: true}
	if err := s.Init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Init creates the save table if it does not exist.
func (s *SQLite) Init(ctx context.Context) error {
	const schema = `
		CREATE TABLE IF NOT EXISTS timeline_saves (
			id         TEXT PRIMARY KEY,
			created_at INTEGER NOT NULL,
			doc        BLOB NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_timeline_saves_created_at
			ON timeline_saves (created_at);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create save table: %w", err)
	}
	return nil
}

// Save implements timeline.Sink by appending a new save row.
func (s *SQLite) Save(ctx context.Context, data []byte) error {
	const query = `INSERT INTO timeline_saves (id, created_at, doc) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, uuid.NewString(), time.Now().UnixNano(), data)
	if err != nil {
		return fmt.Errorf("insert save row: %w", err)
	}
	return nil
}

// Load returns the most recent save. Returns ErrNoSaves if the table is
// empty.
func (s *SQLite) Load(ctx context.Context) ([]byte, error) {
	const query = `SELECT doc FROM timeline_saves ORDER BY created_at DESC LIMIT 1`

	var data []byte
	err := s.db.QueryRowContext(ctx, query).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNoSaves
	}
	if err != nil {
		return nil, fmt.Errorf("load save row: %w", err)
	}
	return data, nil
}

// Prune deletes all but the keep most recent saves and returns the number
// removed.
func (s *SQLite) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}

	const query = `
		DELETE FROM timeline_saves WHERE id NOT IN (
			SELECT id FROM timeline_saves ORDER BY created_at DESC LIMIT ?
		)
	`
	res, err := s.db.ExecContext(ctx, query, keep)
	if err != nil {
		return 0, fmt.Errorf("prune save rows: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune save rows: %w", err)
	}
	return int(removed), nil
}

// Close closes the database handle if this sink opened it.
func (s *SQLite) Close() error {
	if s.owned && s.db != nil {
		return s.db.Close()
	}
	return nil
}
