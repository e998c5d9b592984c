// Package convstate holds the in-memory per-chat conversation sessions that
// bind a Telegram chat to a remote Direct Line conversation.
package convstate

import (
	"encoding/json"
	"fmt"
	"time"
)

// Mode is the conversation state machine position for a chat.
type Mode string

const (
	ModeInitialSetup       Mode = "initial_setup"
	ModeReset              Mode = "reset"
	ModeTranslation        Mode = "translation"
	ModeContextRestoration Mode = "context_restoration"
)

// Session is the per-chat relay state. SessionID is immutable after creation;
// everything else is updated through Store.Update.
type Session struct {
	ChatID                    int64     `json:"chat_id"`
	SessionID                 string    `json:"id"`
	Token                     string    `json:"token"`
	Watermark                 string    `json:"watermark"`
	Mode                      Mode      `json:"mode"`
	SetupComplete             bool      `json:"setup_complete"`
	ContextRestored           bool      `json:"context_restored"`
	AwaitingSetupConfirmation bool      `json:"awaiting_setup_confirmation"`
	IsPolling                 bool      `json:"is_polling"`
	UserFromID                string    `json:"user_from_id"`
	LastInteraction           time.Time `json:"last_interaction"`
}

// Migrate decodes a stored session record, tolerating the legacy shape that
// predates the mode and restoration fields. Missing fields default to a
// steady-state translation session with the newer booleans unset.
func Migrate(data []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return Session{}, fmt.Errorf("decode session record: %w", err)
	}
	normalize(&s)
	return s, nil
}

func normalize(s *Session) {
	if s.Mode == "" {
		s.Mode = ModeTranslation
	}
	if s.LastInteraction.IsZero() {
		s.LastInteraction = time.Now()
	}
}
