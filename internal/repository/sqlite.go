package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"

	"twin-agent/internal/domain"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS messages (
	session_id TEXT    NOT NULL,
	seq        INTEGER NOT NULL,
	role       TEXT    NOT NULL,
	content    TEXT    NOT NULL,
	created_at TEXT    NOT NULL,
	PRIMARY KEY (session_id, seq)
);`

// SQLiteStore persists histories in a local SQLite database, one row per
// message keyed by (session_id, seq). Append rewrites the session's rows in
// a single transaction, which keeps the stored record and its order exactly
// what the caller handed over.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) the database at path and applies the
// schema. Use ":memory:" for a throwaway database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("repository: sqlite path must not be empty")
	}
	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("repository: open sqlite %q: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("repository: apply sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

type messageRow struct {
	SessionID string `db:"session_id"`
	Seq       int    `db:"seq"`
	Role      string `db:"role"`
	Content   string `db:"content"`
	CreatedAt string `db:"created_at"`
}

func (s *SQLiteStore) Load(ctx context.Context, sessionID string) ([]domain.Message, error) {
	var rows []messageRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT session_id, seq, role, content, created_at FROM messages WHERE session_id = ? ORDER BY seq ASC`,
		sessionID)
	if err != nil {
		return nil, fmt.Errorf("repository: load session %q: %w: %w", sessionID, ErrUnavailable, err)
	}
	history := make([]domain.Message, 0, len(rows))
	for _, r := range rows {
		ts, err := time.Parse(time.RFC3339Nano, r.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("repository: session %q seq %d timestamp: %w: %w", sessionID, r.Seq, ErrCorrupt, err)
		}
		msg := domain.Message{Role: domain.Role(r.Role), Content: r.Content, Timestamp: ts}
		if err := msg.Validate(); err != nil {
			return nil, fmt.Errorf("repository: session %q seq %d: %w: %w", sessionID, r.Seq, ErrCorrupt, err)
		}
		history = append(history, msg)
	}
	return history, nil
}

func (s *SQLiteStore) Append(ctx context.Context, sessionID string, history []domain.Message) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("repository: begin append session %q: %w: %w", sessionID, ErrUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("repository: clear session %q: %w: %w", sessionID, ErrUnavailable, err)
	}
	for i, m := range history {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO messages (session_id, seq, role, content, created_at) VALUES (?, ?, ?, ?, ?)`,
			sessionID, i, string(m.Role), m.Content, m.Timestamp.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("repository: insert session %q seq %d: %w: %w", sessionID, i, ErrUnavailable, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("repository: commit session %q: %w: %w", sessionID, ErrUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) Sessions(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.SelectContext(ctx, &ids, `SELECT DISTINCT session_id FROM messages ORDER BY session_id`)
	if err != nil {
		return nil, fmt.Errorf("repository: list sessions: %w: %w", ErrUnavailable, err)
	}
	return ids, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
