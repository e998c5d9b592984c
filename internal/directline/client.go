package directline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// ErrNoConversationID is returned when conversation creation succeeds at the
// HTTP level but the response carries no conversation identifier. The caller
// cannot proceed with such a session.
var ErrNoConversationID = errors.New("directline: response missing conversation id")

// ErrNoActivityID is returned when posting an activity succeeds at the HTTP
// level but the response carries no activity identifier.
var ErrNoActivityID = errors.New("directline: response missing activity id")

// Activity is one message-like event in a conversation's stream.
type Activity struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	From struct {
		ID string `json:"id"`
	} `json:"from"`
	Text string `json:"text"`
}

type Client struct {
	base   string
	secret string
	client *http.Client
	logger *slog.Logger
}

func NewClient(base, secret string, logger *slog.Logger) *Client {
	return &Client{
		base:   base,
		secret: secret,
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// CreateSession starts a new conversation and returns its id and the token to
// use for subsequent calls. Direct Line deployments differ in response shape;
// both the token-generate form ({conversationId, token}) and the conversation
// resource form ({conversation: {id}}) are accepted. When no per-session
// token is issued, the shared secret is reused and a warning is logged.
func (c *Client) CreateSession(ctx context.Context) (sessionID, token string, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/tokens/generate", nil)
	if err != nil {
		return "", "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secret)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("start conversation: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", "", fmt.Errorf("start conversation: status %d: %s", resp.StatusCode, truncate(body))
	}

	var parsed struct {
		ConversationID string `json:"conversationId"`
		Token          string `json:"token"`
		Conversation   struct {
			ID string `json:"id"`
		} `json:"conversation"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", "", fmt.Errorf("parse response: %w", err)
	}

	sessionID = parsed.ConversationID
	if sessionID == "" {
		sessionID = parsed.Conversation.ID
	}
	if sessionID == "" {
		return "", "", ErrNoConversationID
	}

	token = parsed.Token
	if token == "" {
		c.logger.Warn("no per-session token issued, falling back to shared secret", "session_id", sessionID)
		token = c.secret
	}

	return sessionID, token, nil
}

// SendText posts a single message activity to the conversation and returns
// the activity id assigned by the remote.
func (c *Client) SendText(ctx context.Context, sessionID, token, text, fromID string) (string, error) {
	payload, err := json.Marshal(map[string]any{
		"type": "message",
		"from": map[string]string{"id": fromID},
		"text": text,
	})
	if err != nil {
		return "", fmt.Errorf("marshal activity: %w", err)
	}

	endpoint := fmt.Sprintf("%s/conversations/%s/activities", c.base, url.PathEscape(sessionID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send activity: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("send activity: status %d: %s", resp.StatusCode, truncate(body))
	}

	var parsed struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if parsed.ID == "" {
		return "", ErrNoActivityID
	}

	return parsed.ID, nil
}

// FetchSince returns agent activities newer than the watermark, excluding
// echoes of the user's own messages and activities without text. Failures are
// non-fatal: the caller gets an empty batch and the watermark it passed in,
// and the next poll tries again.
func (c *Client) FetchSince(ctx context.Context, sessionID, token, watermark, fromID string) ([]Activity, string) {
	endpoint := fmt.Sprintf("%s/conversations/%s/activities", c.base, url.PathEscape(sessionID))
	if watermark != "" {
		endpoint += "?watermark=" + url.QueryEscape(watermark)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		c.logger.Error("failed to build poll request", "session_id", sessionID, "error", err)
		return nil, watermark
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Error("poll failed", "session_id", sessionID, "error", err)
		return nil, watermark
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("failed to read poll response", "session_id", sessionID, "error", err)
		return nil, watermark
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("poll failed", "session_id", sessionID, "status", resp.StatusCode, "body", truncate(body))
		return nil, watermark
	}

	var parsed struct {
		Activities []Activity `json:"activities"`
		Watermark  string     `json:"watermark"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		c.logger.Error("failed to parse poll response", "session_id", sessionID, "error", err)
		return nil, watermark
	}

	var out []Activity
	for _, act := range parsed.Activities {
		if act.From.ID == fromID || act.Text == "" {
			continue
		}
		out = append(out, act)
	}

	newWatermark := parsed.Watermark
	if newWatermark == "" {
		newWatermark = watermark
	}
	return out, newWatermark
}

// truncate bounds response bodies before they reach a log line or error
// message, so upstream error pages cannot flood logs or leak payloads.
func truncate(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
