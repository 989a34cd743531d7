package session

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/parlancehq/parlance/internal/connector"
)

//go:embed schema.sql
var schemaSQL string

// SQLiteStorage persists sessions in a SQLite database, using WAL mode for
// concurrent reads during writes.
type SQLiteStorage struct {
	db *sql.DB
}

// OpenSQLite creates or opens a session database at the given path, applying
// pragmas and the schema. Idempotent: safe to call on an existing database.
func OpenSQLite(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY under concurrent saves.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStorage) Load(ctx context.Context, id string) (*Session, error) {
	result := &Session{ID: id}

	var updatedAt string
	err := s.db.QueryRowContext(ctx, `SELECT updated_at FROM sessions WHERE id = ?`, id).Scan(&updatedAt)
	if err == sql.ErrNoRows {
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	if t, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		result.UpdatedAt = t
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, lifespan FROM session_contexts WHERE session_id = ? ORDER BY name`, id)
	if err != nil {
		return nil, fmt.Errorf("load session %s contexts: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		var lifespan int
		if err := rows.Scan(&name, &lifespan); err != nil {
			return nil, fmt.Errorf("load session %s contexts: %w", id, err)
		}
		result.Contexts = append(result.Contexts, connector.ActiveContext{Name: name, Lifespan: lifespan})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load session %s contexts: %w", id, err)
	}
	return result, nil
}

func (s *SQLiteStorage) Save(ctx context.Context, sess *Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, updated_at) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET updated_at = excluded.updated_at`,
		sess.ID, now); err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM session_contexts WHERE session_id = ?`, sess.ID); err != nil {
		return fmt.Errorf("save session %s: %w", sess.ID, err)
	}
	for _, c := range sess.Contexts {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO session_contexts (session_id, name, lifespan) VALUES (?, ?, ?)`,
			sess.ID, c.Name, c.Lifespan); err != nil {
			return fmt.Errorf("save session %s context %s: %w", sess.ID, c.Name, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStorage) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete session %s: %w", id, err)
	}
	return nil
}
