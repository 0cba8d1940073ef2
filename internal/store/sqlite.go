package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"robora/internal/question"
)

// SQLite implements Provider on a single-file embedded database.
type SQLite struct {
	db   *sql.DB
	path string
}

// NewSQLite opens (or creates) the database file at path and bootstraps the
// schema. The parent directory is created if missing.
func NewSQLite(path string) (*SQLite, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Single writer; SQLite serializes writes anyway and one connection
	// avoids SQLITE_BUSY churn under the worker pool.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal_mode: %w", err)
	}
	// NORMAL is safe with WAL and much faster than FULL for the
	// per-answer write pattern.
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set synchronous: %w", err)
	}

	s := &SQLite{db: db, path: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS answers (
		fingerprint  TEXT PRIMARY KEY,
		template     TEXT NOT NULL,
		bindings     TEXT NOT NULL,
		schema_kind  TEXT NOT NULL,
		payload      TEXT NOT NULL,
		citations    TEXT NOT NULL DEFAULT '[]',
		retrieved_at DATETIME NOT NULL
	);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Exists reports whether the fingerprint already has a persisted answer.
func (s *SQLite) Exists(ctx context.Context, fingerprint string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM answers WHERE fingerprint = ?", fingerprint).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("existence check: %w", err)
	}
	return true, nil
}

// Put persists one answer. Re-writing an identical payload is a no-op;
// a different payload for the same fingerprint returns ErrConflict.
func (s *SQLite) Put(ctx context.Context, ans *question.Answer) error {
	payload := ans.Payload
	bindings, err := json.Marshal(ans.Question.Bindings)
	if err != nil {
		return fmt.Errorf("marshal bindings: %w", err)
	}
	citations, err := json.Marshal(ans.Citations)
	if err != nil {
		return fmt.Errorf("marshal citations: %w", err)
	}
	if ans.Citations == nil {
		citations = []byte("[]")
	}

	fp := ans.Question.Fingerprint()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin put: %w", err)
	}
	defer tx.Rollback()

	var existing []byte
	err = tx.QueryRowContext(ctx,
		"SELECT payload FROM answers WHERE fingerprint = ?", fp).Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
		_, err = tx.ExecContext(ctx, `
			INSERT INTO answers (fingerprint, template, bindings, schema_kind, payload, citations, retrieved_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			fp, ans.Question.Template, string(bindings), ans.Question.Schema,
			string(payload), string(citations), ans.RetrievedAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("insert answer: %w", err)
		}
	case err != nil:
		return fmt.Errorf("conflict check: %w", err)
	default:
		if !bytes.Equal(existing, payload) {
			return fmt.Errorf("%w (fingerprint %s)", ErrConflict, fp)
		}
		// Identical payload: no-op.
		return nil
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit put: %w", err)
	}
	return nil
}

// All returns every persisted answer in insertion-independent fingerprint
// order. Each call runs a fresh query.
func (s *SQLite) All(ctx context.Context) ([]question.Answer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT template, bindings, schema_kind, payload, citations, retrieved_at
		FROM answers ORDER BY fingerprint`)
	if err != nil {
		return nil, fmt.Errorf("enumerate answers: %w", err)
	}
	defer rows.Close()

	var answers []question.Answer
	for rows.Next() {
		var template, bindingsJSON, kind, payload, citationsJSON, retrievedAtRaw string
		if err := rows.Scan(&template, &bindingsJSON, &kind, &payload, &citationsJSON, &retrievedAtRaw); err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		retrievedAt, err := time.Parse(time.RFC3339Nano, retrievedAtRaw)
		if err != nil {
			return nil, fmt.Errorf("decode retrieved_at: %w", err)
		}

		var bindings map[string]string
		if err := json.Unmarshal([]byte(bindingsJSON), &bindings); err != nil {
			return nil, fmt.Errorf("decode bindings: %w", err)
		}
		var citations []string
		if err := json.Unmarshal([]byte(citationsJSON), &citations); err != nil {
			return nil, fmt.Errorf("decode citations: %w", err)
		}

		answers = append(answers, question.Answer{
			Question: question.Question{
				Template: template,
				Bindings: bindings,
				Schema:   kind,
			},
			Payload:     []byte(payload),
			Citations:   citations,
			RetrievedAt: retrievedAt,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("enumerate answers: %w", err)
	}
	return answers, nil
}

// Count returns the number of persisted answers.
func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM answers").Scan(&n); err != nil {
		return 0, fmt.Errorf("count answers: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
