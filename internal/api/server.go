// Package api exposes the HTTP surface: the Telegram webhook and a couple of
// operational endpoints.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/glotbridge/glotbridge/internal/settings"
)

// Relay is the message-handling surface the webhook drives.
type Relay interface {
	HandleMessage(ctx context.Context, chatID, userID int64, text string) error
}

// Update is the inbound Telegram webhook payload, trimmed to the fields the
// relay cares about.
type Update struct {
	UpdateID int64 `json:"update_id"`
	Message  *struct {
		MessageID int64 `json:"message_id"`
		Chat      struct {
			ID   int64  `json:"id"`
			Type string `json:"type"`
		} `json:"chat"`
		From struct {
			ID int64 `json:"id"`
		} `json:"from"`
		Text string `json:"text"`
	} `json:"message"`
}

type Server struct {
	router          *chi.Mux
	port            int
	relay           Relay
	store           settings.Store
	logger          *slog.Logger
	enableGroupChat bool
}

func NewServer(port int, relay Relay, store settings.Store, enableGroupChat bool, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router:          router,
		port:            port,
		relay:           relay,
		store:           store,
		logger:          logger,
		enableGroupChat: enableGroupChat,
	}

	router.Post("/webhook", s.webhook)
	router.Get("/health", s.health)
	router.Get("/dump-settings", s.dumpSettings)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("webhook server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// Handler exposes the router, mainly for tests and for callers that manage
// the http.Server lifecycle themselves.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) webhook(w http.ResponseWriter, r *http.Request) {
	var update Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.logger.Warn("failed to decode webhook payload", "error", err)
		http.Error(w, `{"success":false}`, http.StatusBadRequest)
		return
	}

	msg := update.Message
	if msg == nil || strings.TrimSpace(msg.Text) == "" {
		// Edits, stickers, joins and the like are acknowledged and ignored.
		writeSuccess(w, true)
		return
	}

	if s.skipGroupMessage(msg.Chat.Type, msg.Text) {
		s.logger.Debug("skipping group message", "chat_id", msg.Chat.ID, "chat_type", msg.Chat.Type)
		writeSuccess(w, true)
		return
	}

	err := s.relay.HandleMessage(r.Context(), msg.Chat.ID, msg.From.ID, msg.Text)
	if err != nil {
		s.logger.Error("failed to handle message", "chat_id", msg.Chat.ID, "error", err)
	}
	writeSuccess(w, err == nil)
}

// skipGroupMessage suppresses group chatter unless group processing is
// enabled; commands always get through so the bot can be configured in-place.
func (s *Server) skipGroupMessage(chatType, text string) bool {
	if chatType != "group" && chatType != "supergroup" {
		return false
	}
	if s.enableGroupChat {
		return false
	}
	return !strings.HasPrefix(strings.TrimSpace(text), "/")
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok", "message": "alive"})
}

func (s *Server) dumpSettings(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.DumpAll(r.Context())
	if err != nil {
		s.logger.Error("failed to dump settings", "error", err)
		http.Error(w, `{"error":"dump failed"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"count": len(rows),
		"rows":  rows,
	})
}

func writeSuccess(w http.ResponseWriter, ok bool) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]bool{"success": ok})
}
