// Package telegram delivers outbound messages to chats through the Bot API.
// Delivery is best-effort: the relay logs failures and moves on.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

type Sender struct {
	apiBase string
	token   string
	client  *http.Client
	logger  *slog.Logger
}

func NewSender(apiBase, token string, logger *slog.Logger) *Sender {
	return &Sender{
		apiBase: apiBase,
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

// SendText posts a text message to the chat. Returns false on any failure.
func (s *Sender) SendText(ctx context.Context, chatID int64, text string) bool {
	err := s.call(ctx, "sendMessage", map[string]any{
		"chat_id": chatID,
		"text":    text,
	})
	if err != nil {
		s.logger.Error("failed to send telegram message", "chat_id", chatID, "error", err)
		return false
	}
	return true
}

// SendTyping shows the "typing…" indicator while the agent is thinking.
func (s *Sender) SendTyping(ctx context.Context, chatID int64) {
	err := s.call(ctx, "sendChatAction", map[string]any{
		"chat_id": chatID,
		"action":  "typing",
	})
	if err != nil {
		s.logger.Debug("failed to send typing action", "chat_id", chatID, "error", err)
	}
}

func (s *Sender) call(ctx context.Context, method string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", s.apiBase, s.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram %s: %w", method, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram %s: status %d: %s", method, resp.StatusCode, truncate(respBody))
	}

	var apiResp struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram %s: %s", method, apiResp.Description)
	}
	return nil
}

func truncate(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
