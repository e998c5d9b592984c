package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore backs the settings table with Postgres, selected when
// DATABASE_URL is set.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS chat_settings (
			chat_id BIGINT PRIMARY KEY,
			language_codes TEXT,
			language_names TEXT,
			updated_at TIMESTAMPTZ
		)`)
	if err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, chatID int64) (*ChatSettings, error) {
	var out ChatSettings
	err := s.pool.QueryRow(ctx, `
		SELECT chat_id, language_codes, language_names, updated_at
		FROM chat_settings WHERE chat_id = $1`, chatID,
	).Scan(&out.ChatID, &out.LanguageCodes, &out.LanguageNames, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &out, nil
}

func (s *PostgresStore) Upsert(ctx context.Context, in ChatSettings) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO chat_settings (chat_id, language_codes, language_names, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (chat_id) DO UPDATE SET
			language_codes = EXCLUDED.language_codes,
			language_names = EXCLUDED.language_names,
			updated_at = EXCLUDED.updated_at`,
		in.ChatID, in.LanguageCodes, in.LanguageNames, in.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, chatID int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM chat_settings WHERE chat_id = $1`, chatID)
	if err != nil {
		return fmt.Errorf("delete settings: %w", err)
	}
	return nil
}

func (s *PostgresStore) DumpAll(ctx context.Context) ([]ChatSettings, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT chat_id, language_codes, language_names, updated_at
		FROM chat_settings ORDER BY chat_id`)
	if err != nil {
		return nil, fmt.Errorf("dump settings: %w", err)
	}
	defer rows.Close()

	var out []ChatSettings
	for rows.Next() {
		var row ChatSettings
		if err := rows.Scan(&row.ChatID, &row.LanguageCodes, &row.LanguageNames, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan settings row: %w", err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
