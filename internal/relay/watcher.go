package relay

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/glotbridge/glotbridge/internal/convstate"
)

// startWatcher launches the background long-poll task for a chat. The
// is_polling flag is best-effort mutual exclusion: two rapid inbound messages
// can still race a second watcher into existence, and the dedup cache absorbs
// the duplicate forwards that would otherwise result.
func (o *Orchestrator) startWatcher(sess convstate.Session) {
	ctx, cancel := context.WithTimeout(context.Background(), o.opts.WatcherTimeout)

	o.mu.Lock()
	o.watchers[sess.ChatID] = cancel
	o.mu.Unlock()

	o.sessions.Update(sess.ChatID, func(s *convstate.Session) { s.IsPolling = true })

	o.wg.Add(1)
	go o.watch(ctx, cancel, sess)
}

// watch polls until the first non-empty batch or the timeout, and in every
// case releases the chat's polling slot. A watcher never escalates: timing
// out simply means the user gets no reply.
func (o *Orchestrator) watch(ctx context.Context, cancel context.CancelFunc, sess convstate.Session) {
	watchID := uuid.NewString()[:8]
	chatID := sess.ChatID

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("watcher panicked", "chat_id", chatID, "watch_id", watchID, "panic", r)
		}
		o.sessions.Update(chatID, func(s *convstate.Session) { s.IsPolling = false })
		o.mu.Lock()
		delete(o.watchers, chatID)
		o.mu.Unlock()
		cancel()
		o.wg.Done()
	}()

	o.logger.Debug("watcher started", "chat_id", chatID, "watch_id", watchID, "session_id", sess.SessionID)

	ticker := time.NewTicker(o.opts.WatcherInterval)
	defer ticker.Stop()

	watermark := sess.Watermark
	for {
		acts, newWatermark := o.agent.FetchSince(ctx, sess.SessionID, sess.Token, watermark, sess.UserFromID)
		if newWatermark != watermark {
			watermark = newWatermark
			o.sessions.Update(chatID, func(s *convstate.Session) { s.Watermark = newWatermark })
		}

		if len(acts) > 0 {
			// Forwarding must not be cut short by the watcher deadline.
			deliverCtx, deliverCancel := context.WithTimeout(context.Background(), 30*time.Second)
			for _, act := range acts {
				o.processActivity(deliverCtx, chatID, act)
			}
			deliverCancel()
			o.logger.Debug("watcher delivered", "chat_id", chatID, "watch_id", watchID, "count", len(acts))
			return
		}

		select {
		case <-ctx.Done():
			o.logger.Debug("watcher timed out", "chat_id", chatID, "watch_id", watchID)
			return
		case <-ticker.C:
		}
	}
}
