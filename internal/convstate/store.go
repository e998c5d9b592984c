package convstate

import (
	"sync"
	"time"
)

// Store is a concurrency-safe map of chat id to session. Reads return copies;
// mutations go through Update so the lock always covers the read-modify-write.
type Store struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[int64]*Session)}
}

// Create registers a fresh session for the chat, replacing any existing one.
func (s *Store) Create(chatID int64, sessionID, token string, mode Mode, userFromID string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := &Session{
		ChatID:          chatID,
		SessionID:       sessionID,
		Token:           token,
		Mode:            mode,
		UserFromID:      userFromID,
		LastInteraction: time.Now(),
	}
	s.sessions[chatID] = sess
	return *sess
}

// Get returns a copy of the chat's session, normalized in case it was seeded
// from a legacy record.
func (s *Store) Get(chatID int64) (Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[chatID]
	if !ok {
		return Session{}, false
	}
	copy := *sess
	normalize(&copy)
	return copy, true
}

// Update applies fn to the chat's session under the store lock and bumps
// LastInteraction. Returns false when no session exists for the chat.
func (s *Store) Update(chatID int64, fn func(*Session)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[chatID]
	if !ok {
		return false
	}
	fn(sess)
	sess.LastInteraction = time.Now()
	return true
}

// Delete removes the chat's session if present.
func (s *Store) Delete(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, chatID)
}

// Seed installs an already-built session, used when restoring legacy records.
func (s *Store) Seed(sess Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	normalize(&sess)
	s.sessions[sess.ChatID] = &sess
}

// Len reports the number of tracked chats.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
