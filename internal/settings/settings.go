// Package settings persists per-chat language preferences across process
// restarts. The relay only gets, upserts and deletes records; callers decide
// what the language strings mean.
package settings

import (
	"context"
	"time"
)

// ChatSettings is one chat's saved language configuration.
type ChatSettings struct {
	ChatID        int64     `json:"chat_id"`
	LanguageCodes string    `json:"language_codes"`
	LanguageNames string    `json:"language_names"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Store is the persistence contract. Get returns (nil, nil) for a chat with
// no saved settings.
type Store interface {
	Get(ctx context.Context, chatID int64) (*ChatSettings, error)
	Upsert(ctx context.Context, s ChatSettings) error
	Delete(ctx context.Context, chatID int64) error
	DumpAll(ctx context.Context) ([]ChatSettings, error)
	Close() error
}
