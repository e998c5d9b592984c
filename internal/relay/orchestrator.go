// Package relay owns the per-chat conversation lifecycle: session creation,
// command handling, the post-send poll, and the hand-off to a background
// watcher when the agent answers late.
package relay

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/glotbridge/glotbridge/internal/convstate"
	"github.com/glotbridge/glotbridge/internal/dedup"
	"github.com/glotbridge/glotbridge/internal/directline"
	"github.com/glotbridge/glotbridge/internal/events"
	"github.com/glotbridge/glotbridge/internal/settings"
	"github.com/glotbridge/glotbridge/internal/setup"
)

const (
	msgConnectFailed = "Sorry, I couldn't connect to the translation service. Please try again."
	msgSendFailed    = "Sorry, that didn't go through. The session may have expired, please resend your message."
)

// AgentClient is the session-oriented remote agent surface.
type AgentClient interface {
	CreateSession(ctx context.Context) (sessionID, token string, err error)
	SendText(ctx context.Context, sessionID, token, text, fromID string) (activityID string, err error)
	FetchSince(ctx context.Context, sessionID, token, watermark, fromID string) ([]directline.Activity, string)
}

// ChatSender delivers text back to the chat front-end.
type ChatSender interface {
	SendText(ctx context.Context, chatID int64, text string) bool
	SendTyping(ctx context.Context, chatID int64)
}

// Options tune the relay's timing; zero values take the production defaults.
type Options struct {
	ResponseDelay   time.Duration // wait before the synchronous poll
	WatcherTimeout  time.Duration // total budget for a background watcher
	WatcherInterval time.Duration // pause between watcher polls
	TypingDelay     time.Duration // wait before showing the typing indicator
}

func (o *Options) applyDefaults() {
	if o.ResponseDelay == 0 {
		o.ResponseDelay = 1200 * time.Millisecond
	}
	if o.WatcherTimeout == 0 {
		o.WatcherTimeout = 120 * time.Second
	}
	if o.WatcherInterval == 0 {
		o.WatcherInterval = time.Second
	}
	if o.TypingDelay == 0 {
		o.TypingDelay = time.Second
	}
}

// Orchestrator drives the conversation state machine for every chat.
type Orchestrator struct {
	sessions *convstate.Store
	dedup    *dedup.Cache
	store    settings.Store
	agent    AgentClient
	sender   ChatSender
	events   *events.Publisher
	logger   *slog.Logger
	opts     Options

	mu       sync.Mutex
	watchers map[int64]context.CancelFunc
	wg       sync.WaitGroup
}

func New(sessions *convstate.Store, cache *dedup.Cache, store settings.Store, agent AgentClient, sender ChatSender, pub *events.Publisher, opts Options, logger *slog.Logger) *Orchestrator {
	opts.applyDefaults()
	return &Orchestrator{
		sessions: sessions,
		dedup:    cache,
		store:    store,
		agent:    agent,
		sender:   sender,
		events:   pub,
		logger:   logger,
		opts:     opts,
		watchers: make(map[int64]context.CancelFunc),
	}
}

// HandleMessage processes one inbound text message for a chat. The returned
// error indicates the user was (or should have been) asked to resend; all
// other failures are absorbed internally.
func (o *Orchestrator) HandleMessage(ctx context.Context, chatID, userID int64, text string) error {
	fromID := strconv.FormatInt(userID, 10)

	switch setup.ClassifyMessage(text) {
	case setup.StartCommand:
		return o.restart(ctx, chatID, fromID)
	case setup.ResetCommand:
		if err := o.store.Delete(ctx, chatID); err != nil {
			o.logger.Error("failed to delete settings on reset", "chat_id", chatID, "error", err)
		}
		o.sessions.Delete(chatID)
		o.dedup.Clear(chatID)
		o.logger.Info("chat reset", "chat_id", chatID)
		return o.restart(ctx, chatID, fromID)
	default:
		return o.relayText(ctx, chatID, fromID, text)
	}
}

// restart discards any existing session and begins a fresh initial setup.
func (o *Orchestrator) restart(ctx context.Context, chatID int64, fromID string) error {
	o.sessions.Delete(chatID)

	sess, err := o.createSession(ctx, chatID, fromID, convstate.ModeInitialSetup)
	if err != nil {
		return err
	}
	return o.deliver(ctx, sess, "start")
}

// relayText is the steady-state path: ensure a session exists, forward the
// text, then collect the agent's answer.
func (o *Orchestrator) relayText(ctx context.Context, chatID int64, fromID, text string) error {
	sess, ok := o.sessions.Get(chatID)
	if !ok {
		saved := o.savedLanguages(ctx, chatID)
		if saved != "" {
			restored, err := o.createSession(ctx, chatID, fromID, convstate.ModeContextRestoration)
			if err != nil {
				return err
			}
			// Quick-setup shortcut: replay the saved preferences so the agent
			// skips its questionnaire, then forward the user's actual message.
			if err := o.send(ctx, restored, restoreMessage(saved)); err != nil {
				return err
			}
			return o.deliver(ctx, restored, text)
		}

		fresh, err := o.createSession(ctx, chatID, fromID, convstate.ModeInitialSetup)
		if err != nil {
			return err
		}
		return o.deliver(ctx, fresh, text)
	}

	return o.deliver(ctx, sess, text)
}

func (o *Orchestrator) createSession(ctx context.Context, chatID int64, fromID string, mode convstate.Mode) (convstate.Session, error) {
	sessionID, token, err := o.agent.CreateSession(ctx)
	if err != nil {
		o.logger.Error("failed to create session", "chat_id", chatID, "error", err)
		o.sender.SendText(ctx, chatID, msgConnectFailed)
		return convstate.Session{}, fmt.Errorf("create session: %w", err)
	}

	sess := o.sessions.Create(chatID, sessionID, token, mode, fromID)
	if mode == convstate.ModeInitialSetup || mode == convstate.ModeContextRestoration {
		o.sessions.Update(chatID, func(s *convstate.Session) { s.AwaitingSetupConfirmation = true })
		sess.AwaitingSetupConfirmation = true
	}

	o.logger.Info("session created", "chat_id", chatID, "session_id", sessionID, "mode", mode)
	o.events.Publish(events.SubjectSessionCreated, map[string]any{
		"chat_id":    chatID,
		"session_id": sessionID,
		"mode":       string(mode),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
	return sess, nil
}

// send forwards text to the agent. A failure is treated as an expired
// session: drop it and ask the user to resend.
func (o *Orchestrator) send(ctx context.Context, sess convstate.Session, text string) error {
	if _, err := o.agent.SendText(ctx, sess.SessionID, sess.Token, text, sess.UserFromID); err != nil {
		o.logger.Error("failed to send to agent, dropping session",
			"chat_id", sess.ChatID, "session_id", sess.SessionID, "error", err)
		o.sessions.Delete(sess.ChatID)
		o.sender.SendText(ctx, sess.ChatID, msgSendFailed)
		return fmt.Errorf("send to agent: %w", err)
	}
	return nil
}

// deliver sends the text and then runs the response cycle: a short wait for a
// synchronous answer, one poll, and a watcher hand-off when nothing came back.
func (o *Orchestrator) deliver(ctx context.Context, sess convstate.Session, text string) error {
	if err := o.send(ctx, sess, text); err != nil {
		return err
	}

	go o.typingSoon(sess.ChatID)

	// Give the agent a moment to answer within this request.
	select {
	case <-time.After(o.opts.ResponseDelay):
	case <-ctx.Done():
		return ctx.Err()
	}

	current, ok := o.sessions.Get(sess.ChatID)
	if !ok {
		// A concurrent /reset removed the session while we waited.
		return nil
	}

	acts, watermark := o.agent.FetchSince(ctx, current.SessionID, current.Token, current.Watermark, current.UserFromID)
	o.sessions.Update(sess.ChatID, func(s *convstate.Session) { s.Watermark = watermark })

	if len(acts) > 0 {
		for _, act := range acts {
			o.processActivity(ctx, sess.ChatID, act)
		}
		return nil
	}

	if !current.IsPolling {
		o.startWatcher(current)
	}
	return nil
}

// processActivity forwards one agent activity to the chat, once. While the
// chat is in a setup phase the reply is also run through the confirmation
// parser so accepted languages get persisted.
func (o *Orchestrator) processActivity(ctx context.Context, chatID int64, act directline.Activity) {
	if o.dedup.Seen(chatID, act.ID) {
		return
	}
	o.dedup.Record(chatID, act.ID)

	sess, ok := o.sessions.Get(chatID)
	if ok && (sess.Mode == convstate.ModeInitialSetup || sess.Mode == convstate.ModeContextRestoration) {
		kind := setup.ClassifyResponse(act.Text)
		o.logger.Debug("agent reply during setup", "chat_id", chatID, "activity_id", act.ID, "kind", kind)
		if kind == setup.ResponseSetupConfirmation {
			if confirmed, languages := setup.Parse(act.Text); confirmed {
				o.acceptSetup(ctx, chatID, sess, languages)
			}
		}
	}

	o.sender.SendText(ctx, chatID, act.Text)
}

func (o *Orchestrator) acceptSetup(ctx context.Context, chatID int64, sess convstate.Session, languages string) {
	err := o.store.Upsert(ctx, settings.ChatSettings{
		ChatID:        chatID,
		LanguageNames: languages,
		UpdatedAt:     time.Now().UTC(),
	})
	if err != nil {
		o.logger.Error("failed to persist settings", "chat_id", chatID, "error", err)
	}

	wasRestoration := sess.Mode == convstate.ModeContextRestoration
	o.sessions.Update(chatID, func(s *convstate.Session) {
		s.SetupComplete = true
		s.Mode = convstate.ModeTranslation
		s.AwaitingSetupConfirmation = false
		if wasRestoration {
			s.ContextRestored = true
		}
	})

	o.logger.Info("setup confirmed", "chat_id", chatID, "languages", languages, "restored", wasRestoration)
	o.events.Publish(events.SubjectSetupConfirmed, map[string]any{
		"chat_id":   chatID,
		"languages": languages,
		"restored":  wasRestoration,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// savedLanguages looks up persisted settings; a store error reads as "none",
// which only costs the user a fresh setup round.
func (o *Orchestrator) savedLanguages(ctx context.Context, chatID int64) string {
	saved, err := o.store.Get(ctx, chatID)
	if err != nil {
		o.logger.Error("failed to load settings", "chat_id", chatID, "error", err)
		return ""
	}
	if saved == nil {
		return ""
	}
	return saved.LanguageNames
}

// restoreMessage builds the synthetic setup message for a returning chat.
func restoreMessage(saved string) string {
	if saved == "" || saved == setup.SentinelConfigured {
		return "start"
	}
	return "My languages are: " + saved
}

// typingSoon shows the typing indicator if the agent is still thinking after
// a short moment.
func (o *Orchestrator) typingSoon(chatID int64) {
	time.Sleep(o.opts.TypingDelay)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	o.sender.SendTyping(ctx, chatID)
}

// Close cancels all running watchers and waits for them to finish.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	for _, cancel := range o.watchers {
		cancel()
	}
	o.mu.Unlock()
	o.wg.Wait()
}
