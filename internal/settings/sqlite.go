package settings

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore is the default single-process backend, keeping the ChatSettings
// table in a local file.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteStore, error) {
	dsn := path + "?_journal=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS chat_settings (
			chat_id INTEGER PRIMARY KEY,
			language_codes TEXT,
			language_names TEXT,
			updated_at TEXT
		)`)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, chatID int64) (*ChatSettings, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT chat_id, language_codes, language_names, updated_at
		FROM chat_settings WHERE chat_id = ?`, chatID)

	var out ChatSettings
	var updatedAt string
	err := row.Scan(&out.ChatID, &out.LanguageCodes, &out.LanguageNames, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	if ts, err := time.Parse(time.RFC3339, updatedAt); err == nil {
		out.UpdatedAt = ts
	}
	return &out, nil
}

func (s *SQLiteStore) Upsert(ctx context.Context, in ChatSettings) error {
	_, err := s.db.ExecContext(ctx, `
		REPLACE INTO chat_settings (chat_id, language_codes, language_names, updated_at)
		VALUES (?, ?, ?, ?)`,
		in.ChatID, in.LanguageCodes, in.LanguageNames, in.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, chatID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM chat_settings WHERE chat_id = ?`, chatID)
	if err != nil {
		return fmt.Errorf("delete settings: %w", err)
	}
	return nil
}

func (s *SQLiteStore) DumpAll(ctx context.Context) ([]ChatSettings, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT chat_id, language_codes, language_names, updated_at
		FROM chat_settings ORDER BY chat_id`)
	if err != nil {
		return nil, fmt.Errorf("dump settings: %w", err)
	}
	defer rows.Close()

	var out []ChatSettings
	for rows.Next() {
		var row ChatSettings
		var updatedAt string
		if err := rows.Scan(&row.ChatID, &row.LanguageCodes, &row.LanguageNames, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan settings row: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339, updatedAt); err == nil {
			row.UpdatedAt = ts
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
