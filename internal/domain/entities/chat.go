package entities

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// ChatRole identifies the author of a chat message
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ClassificationKind is the triage signal attached to a message
type ClassificationKind string

const (
	ClassificationAlert   ClassificationKind = "alert"
	ClassificationRemedy  ClassificationKind = "remedy"
	ClassificationGeneral ClassificationKind = "general"
)

// MessageClassification records how a user message was triaged
type MessageClassification struct {
	Kind              ClassificationKind `json:"kind"`
	MatchedConditions []ConditionName    `json:"matched_conditions,omitempty"`
}

// Clone returns a copy that shares no memory with c
func (c *MessageClassification) Clone() *MessageClassification {
	if c == nil {
		return nil
	}
	out := *c
	out.MatchedConditions = slices.Clone(c.MatchedConditions)
	return &out
}

// ChatMessage is one entry in a chat session history. Messages are not
// modified after they are appended.
type ChatMessage struct {
	ID             string                 `json:"id"`
	Role           ChatRole               `json:"role"`
	Text           string                 `json:"text"`
	CreatedAt      time.Time              `json:"created_at"`
	Classification *MessageClassification `json:"classification,omitempty"`
}

// Clone returns a deep copy of the message
func (m ChatMessage) Clone() ChatMessage {
	m.Classification = m.Classification.Clone()
	return m
}

// NewChatMessage creates a chat message with a fresh ID
func NewChatMessage(role ChatRole, text string, at time.Time) ChatMessage {
	return ChatMessage{
		ID:        uuid.New().String(),
		Role:      role,
		Text:      text,
		CreatedAt: at,
	}
}
