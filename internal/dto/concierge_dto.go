package dto

import "time"

// ChatRequest is the inbound payload for a concierge conversation turn.
type ChatRequest struct {
	Message   string `json:"message" validate:"required,max=1000"`
	SessionID string `json:"session_id"`
}

// RelatedGrant is a compact grant reference attached to a chat answer.
type RelatedGrant struct {
	ID     uint   `json:"id"`
	Title  string `json:"title"`
	Link   string `json:"link,omitempty"`
	Amount string `json:"amount,omitempty"`
}

type ChatResponse struct {
	Response       string         `json:"response"`
	SessionID      string         `json:"session_id"`
	Intent         string         `json:"intent"`
	Confidence     float64        `json:"confidence"`
	Emotion        EmotionInfo    `json:"emotion"`
	RelatedGrants  []RelatedGrant `json:"related_grants"`
	Suggestions    []string       `json:"suggestions"`
	ResponseTimeMs int64          `json:"response_time"`
	TokensUsed     int            `json:"tokens_used"`
	ContextUpdated bool           `json:"context_updated"`
}

type EmotionInfo struct {
	Interpretation string  `json:"interpretation"`
	Score          float64 `json:"score"`
	Urgency        float64 `json:"urgency"`
	ResponseStyle  string  `json:"response_style"`
}

// SearchRequest runs a synonym-expanded grant search.
type SearchRequest struct {
	Query       string   `json:"query" validate:"required,max=200"`
	Categories  []string `json:"categories"`
	Prefectures []string `json:"prefectures"`
	Statuses    []string `json:"statuses" validate:"dive,max=32"`
	AmountMin   int64    `json:"amount_min" validate:"min=0"`
	AmountMax   int64    `json:"amount_max" validate:"min=0"`
	Page        int      `json:"page" validate:"min=0"`
	PerPage     int      `json:"per_page" validate:"min=0,max=20"`
}

type SearchResultItem struct {
	ID             uint    `json:"id"`
	Title          string  `json:"title"`
	Excerpt        string  `json:"excerpt"`
	RelevanceScore float64 `json:"relevance_score"`
}

type SearchResponse struct {
	Results       []SearchResultItem `json:"results"`
	Total         int64              `json:"total"`
	Page          int                `json:"page"`
	PerPage       int                `json:"per_page"`
	OriginalQuery string             `json:"original_query"`
	ExpandedTerms []string           `json:"expanded_terms"`
}

// SuggestionsRequest asks for query completions for a partial input.
type SuggestionsRequest struct {
	Query string `query:"q" validate:"required,min=2,max=100"`
	Limit int    `query:"limit" validate:"min=0,max=10"`
}

type SuggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

// FeedbackRequest rates a previous assistant answer.
type FeedbackRequest struct {
	SessionID    string `json:"session_id" validate:"required"`
	MessageID    uint   `json:"message_id" validate:"required"`
	FeedbackType string `json:"feedback_type" validate:"required,oneof=helpful not_helpful partially_helpful"`
	Rating       int    `json:"rating" validate:"required,min=1,max=5"`
	Comment      string `json:"comment" validate:"max=500"`
}

// TurnRecordedEventType identifies an answered chat turn on the event bus.
const TurnRecordedEventType = "CONCIERGE_TURN_RECORDED"

// TurnRecordedMessage is the async payload emitted after each answered chat
// turn and consumed by the learning pipeline. It satisfies events.Event so
// the publisher can stamp type and timestamp metadata.
type TurnRecordedMessage struct {
	Query      string    `json:"query"`
	Response   string    `json:"response"`
	Intent     string    `json:"intent"`
	RecordedAt time.Time `json:"-"`
}

func (m TurnRecordedMessage) EventType() string {
	return TurnRecordedEventType
}

func (m TurnRecordedMessage) Payload() map[string]interface{} {
	return map[string]interface{}{
		"query":    m.Query,
		"response": m.Response,
		"intent":   m.Intent,
	}
}

func (m TurnRecordedMessage) Timestamp() time.Time {
	return m.RecordedAt
}

type UsageReportResponse struct {
	Date             string  `json:"date"`
	TokensUsed       int64   `json:"tokens_used"`
	DailyLimit       int     `json:"daily_limit"`
	UsageRatio       float64 `json:"usage_ratio"`
	EmergencyStopped bool    `json:"emergency_stopped"`
}
