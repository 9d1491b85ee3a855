package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/neuvia/backend/internal/infrastructure/observability"
	apperrors "github.com/neuvia/backend/pkg/errors"
)

// ChatSessionManager owns the open chat sessions of this process
type ChatSessionManager struct {
	classifier MessageClassifier
	opts       ChatSessionOptions
	ttl        time.Duration

	mu       sync.RWMutex
	sessions map[string]*ChatSession
}

// NewChatSessionManager creates a session manager. Sessions idle longer than
// ttl are closed by SweepIdle; a non-positive ttl disables expiry.
func NewChatSessionManager(classifier MessageClassifier, opts ChatSessionOptions, ttl time.Duration) *ChatSessionManager {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ChatSessionManager{
		classifier: classifier,
		opts:       opts,
		ttl:        ttl,
		sessions:   make(map[string]*ChatSession),
	}
}

// Create opens a new session for userID with the greeting already in place
func (m *ChatSessionManager) Create(ctx context.Context, userID string) *ChatSession {
	session := NewChatSession(uuid.New().String(), userID, m.classifier, m.opts)
	session.Start()

	m.mu.Lock()
	m.sessions[session.ID()] = session
	m.mu.Unlock()

	observability.RecordChatSessions(ctx, m.opts.Metrics, 1)
	observability.LoggerFromContext(ctx).Info().
		Str("session_id", session.ID()).
		Str("user_id", userID).
		Msg("Chat session opened")

	return session
}

// Get returns an open session
func (m *ChatSessionManager) Get(id string) (*ChatSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("chat session not found")
	}
	return session, nil
}

// Close closes and forgets a session
func (m *ChatSessionManager) Close(ctx context.Context, id string) error {
	m.mu.Lock()
	session, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return apperrors.NewNotFoundError("chat session not found")
	}

	session.Close()
	observability.RecordChatSessions(ctx, m.opts.Metrics, -1)
	return nil
}

// Len returns the number of open sessions
func (m *ChatSessionManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// SweepIdle closes sessions with no activity for longer than the TTL.
// Sessions answering a message are left alone. It returns the number closed.
func (m *ChatSessionManager) SweepIdle(ctx context.Context) int {
	if m.ttl <= 0 {
		return 0
	}
	cutoff := m.opts.Now().Add(-m.ttl)

	var expired []*ChatSession
	m.mu.Lock()
	for id, s := range m.sessions {
		if !s.Busy() && s.LastActive().Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		observability.RecordChatSessions(ctx, m.opts.Metrics, -int64(len(expired)))
		observability.LoggerFromContext(ctx).Info().Int("count", len(expired)).Msg("Closed idle chat sessions")
	}
	return len(expired)
}

// Run sweeps idle sessions every interval until ctx is done, then closes every session
func (m *ChatSessionManager) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return
		case <-ticker.C:
			m.SweepIdle(ctx)
		}
	}
}

func (m *ChatSessionManager) closeAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*ChatSession)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
