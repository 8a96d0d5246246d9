package entity

import (
	"time"

	"grant-insight-be/pkg/chatcontext"
)

// ConversationTurn is one message in a concierge session, either side.
// Analysis fields are only set on user turns; accounting fields only on
// assistant turns.
type ConversationTurn struct {
	Id              uint
	SessionId       string
	UserId          *string
	Role            string // "user" or "assistant"
	Message         string
	ContextSnapshot *chatcontext.Context
	EmotionScore    *float64
	Intent          *string
	Confidence      *float64
	ResponseTime    *float64 // seconds, assistant turns
	TokensUsed      *int
	CreatedAt       time.Time
}

// SessionStats aggregates a session's activity.
type SessionStats struct {
	SessionId         string
	StartedAt         time.Time
	LastActivity      time.Time
	MessageCount      int64
	UserMessages      int64
	AssistantMessages int64
}
