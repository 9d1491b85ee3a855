package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/neuvia/backend/internal/domain/entities"
	"github.com/neuvia/backend/internal/domain/providers"
	"github.com/neuvia/backend/internal/infrastructure/observability"
	apperrors "github.com/neuvia/backend/pkg/errors"
)

// ChatState is the lifecycle state of a chat session
type ChatState string

const (
	ChatStateIdle          ChatState = "idle"
	ChatStateAwaitingInput ChatState = "awaiting_input"
	ChatStateMatching      ChatState = "matching"
	ChatStateResponding    ChatState = "responding"
	ChatStateClosed        ChatState = "closed"
)

var (
	// ErrSessionBusy is returned when a message arrives while the previous one is still being answered
	ErrSessionBusy = apperrors.NewConflictError("chat session is still answering the previous message")

	// ErrSessionClosed is returned for submissions to, or replies from, a closed session
	ErrSessionClosed = apperrors.NewGoneError("chat session is closed")

	// ErrBlankMessage is returned for empty or whitespace-only messages
	ErrBlankMessage = apperrors.NewValidationError("message text is blank")
)

const alertPublishTimeout = 2 * time.Second

// MessageClassifier triages free text
type MessageClassifier interface {
	Classify(text string) entities.TriageResult
}

// AlertPublisher receives alert events raised by chat sessions
type AlertPublisher interface {
	Publish(ctx context.Context, channel string, event *entities.TriageAlertEvent) error
}

// ChatSessionOptions tunes a chat session
type ChatSessionOptions struct {
	// ReplyDelay is the pause before an answer is appended
	ReplyDelay time.Duration
	// Alerts, when set, receives an event for every alert reply
	Alerts  AlertPublisher
	Metrics *observability.Metrics
	Now     func() time.Time
}

// ChatSession is one patient conversation with the wellness assistant.
// At most one message is answered at a time; the history always alternates
// a user message with its reply.
type ChatSession struct {
	id         string
	userID     string
	classifier MessageClassifier
	opts       ChatSessionOptions

	mu         sync.Mutex
	state      ChatState
	history    []entities.ChatMessage
	lastActive time.Time

	ctx    context.Context
	cancel context.CancelFunc
}

// NewChatSession creates an idle session. Start seeds the greeting.
func NewChatSession(id, userID string, classifier MessageClassifier, opts ChatSessionOptions) *ChatSession {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ChatSession{
		id:         id,
		userID:     userID,
		classifier: classifier,
		opts:       opts,
		state:      ChatStateIdle,
		lastActive: opts.Now(),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// ID returns the session ID
func (s *ChatSession) ID() string { return s.id }

// UserID returns the owning user
func (s *ChatSession) UserID() string { return s.userID }

// Start appends the greeting and waits for input. It is a no-op unless the session is idle.
func (s *ChatSession) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startLocked()
}

func (s *ChatSession) startLocked() {
	if s.state != ChatStateIdle {
		return
	}
	s.history = append(s.history, entities.NewChatMessage(entities.ChatRoleAssistant, ChatGreeting, s.opts.Now()))
	s.state = ChatStateAwaitingInput
}

// Submit appends the user message, classifies it and, after the reply
// delay, appends and returns the assistant reply. Cancelling ctx skips the
// remaining delay but still answers; closing the session discards the reply.
func (s *ChatSession) Submit(ctx context.Context, text string) (entities.ChatMessage, error) {
	if strings.TrimSpace(text) == "" {
		return entities.ChatMessage{}, ErrBlankMessage
	}

	s.mu.Lock()
	switch s.state {
	case ChatStateClosed:
		s.mu.Unlock()
		return entities.ChatMessage{}, ErrSessionClosed
	case ChatStateMatching, ChatStateResponding:
		s.mu.Unlock()
		return entities.ChatMessage{}, ErrSessionBusy
	case ChatStateIdle:
		s.startLocked()
	}
	now := s.opts.Now()
	s.history = append(s.history, entities.NewChatMessage(entities.ChatRoleUser, text, now))
	s.state = ChatStateMatching
	s.lastActive = now
	s.mu.Unlock()

	result := s.classifier.Classify(text)
	observability.RecordClassification(ctx, s.opts.Metrics, string(result.Kind))

	if !s.transition(ChatStateMatching, ChatStateResponding) {
		return entities.ChatMessage{}, ErrSessionClosed
	}

	if !s.pause(ctx) {
		return entities.ChatMessage{}, ErrSessionClosed
	}

	s.mu.Lock()
	if s.state == ChatStateClosed {
		s.mu.Unlock()
		return entities.ChatMessage{}, ErrSessionClosed
	}
	reply := entities.NewChatMessage(entities.ChatRoleAssistant, ComposeReply(result), s.opts.Now())
	reply.Classification = result.Classification()
	s.history = append(s.history, reply)
	s.state = ChatStateAwaitingInput
	s.lastActive = reply.CreatedAt
	s.mu.Unlock()

	logger := observability.LoggerFromContext(ctx)
	logger.Debug().
		Str("session_id", s.id).
		Str("kind", string(result.Kind)).
		Msg("Chat message answered")

	if result.Kind == entities.ClassificationAlert {
		s.publishAlert(ctx, result)
	}

	return reply.Clone(), nil
}

func (s *ChatSession) transition(from, to ChatState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != from {
		return false
	}
	s.state = to
	return true
}

// pause waits out the reply delay. It returns false if the session was torn down meanwhile.
func (s *ChatSession) pause(ctx context.Context) bool {
	if s.opts.ReplyDelay <= 0 {
		return s.ctx.Err() == nil
	}

	timer := time.NewTimer(s.opts.ReplyDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	case <-s.ctx.Done():
		return false
	}
	return s.ctx.Err() == nil
}

func (s *ChatSession) publishAlert(ctx context.Context, result entities.TriageResult) {
	if s.opts.Alerts == nil {
		return
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), alertPublishTimeout)
	defer cancel()

	event := entities.NewTriageAlertEvent(s.id, s.userID, result, s.opts.Now())
	logger := observability.LoggerFromContext(ctx)

	channels := []string{providers.EventChannelTriageAlerts}
	if s.userID != "" {
		channels = append(channels, providers.GetUserChannel(s.userID))
	}
	for _, ch := range channels {
		if err := s.opts.Alerts.Publish(pubCtx, ch, event); err != nil {
			logger.Warn().Err(err).
				Str("session_id", s.id).
				Str("channel", ch).
				Msg("Failed to publish triage alert")
		}
	}
}

// Close tears the session down: history is discarded and any pending reply is dropped
func (s *ChatSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == ChatStateClosed {
		return
	}
	s.state = ChatStateClosed
	s.history = nil
	s.cancel()
}

// History returns a deep copy of the conversation so far
func (s *ChatSession) History() []entities.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entities.ChatMessage, len(s.history))
	for i, m := range s.history {
		out[i] = m.Clone()
	}
	return out
}

// State returns the current state
func (s *ChatSession) State() ChatState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Busy reports whether a message is being answered
func (s *ChatSession) Busy() bool {
	st := s.State()
	return st == ChatStateMatching || st == ChatStateResponding
}

// LastActive returns the time of the last message
func (s *ChatSession) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}
