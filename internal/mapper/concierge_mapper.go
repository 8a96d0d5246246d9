package mapper

import (
	"encoding/json"

	"gorm.io/datatypes"

	"grant-insight-be/internal/entity"
	"grant-insight-be/internal/model"
	"grant-insight-be/pkg/chatcontext"
	"grant-insight-be/pkg/learning"
)

type ConciergeMapper struct{}

func NewConciergeMapper() *ConciergeMapper {
	return &ConciergeMapper{}
}

// Conversation turn mappers

func (m *ConciergeMapper) TurnToEntity(t *model.ConversationTurn) *entity.ConversationTurn {
	if t == nil {
		return nil
	}

	var snapshot *chatcontext.Context
	if len(t.Context) > 0 {
		var decoded chatcontext.Context
		if err := json.Unmarshal(t.Context, &decoded); err == nil {
			snapshot = &decoded
		}
	}

	return &entity.ConversationTurn{
		Id:              t.Id,
		SessionId:       t.SessionId,
		UserId:          t.UserId,
		Role:            t.Role,
		Message:         t.Message,
		ContextSnapshot: snapshot,
		EmotionScore:    t.EmotionScore,
		Intent:          t.Intent,
		Confidence:      t.Confidence,
		ResponseTime:    t.ResponseTime,
		TokensUsed:      t.TokensUsed,
		CreatedAt:       t.CreatedAt,
	}
}

func (m *ConciergeMapper) TurnToModel(t *entity.ConversationTurn) *model.ConversationTurn {
	if t == nil {
		return nil
	}

	var snapshot datatypes.JSON
	if t.ContextSnapshot != nil {
		if raw, err := json.Marshal(t.ContextSnapshot); err == nil {
			snapshot = raw
		}
	}

	return &model.ConversationTurn{
		Id:           t.Id,
		SessionId:    t.SessionId,
		UserId:       t.UserId,
		Role:         t.Role,
		Message:      t.Message,
		Context:      snapshot,
		EmotionScore: t.EmotionScore,
		Intent:       t.Intent,
		Confidence:   t.Confidence,
		ResponseTime: t.ResponseTime,
		TokensUsed:   t.TokensUsed,
		CreatedAt:    t.CreatedAt,
	}
}

// Learning record mappers

func (m *ConciergeMapper) LearningToRecord(r *model.LearningRecord) *learning.Record {
	if r == nil {
		return nil
	}
	return &learning.Record{
		ID:             r.Id,
		QueryHash:      r.QueryHash,
		OriginalQuery:  r.OriginalQuery,
		ProcessedQuery: r.ProcessedQuery,
		Intent:         r.Intent,
		Response:       r.Response,
		UsageCount:     r.UsageCount,
		FeedbackScore:  r.FeedbackScore,
		LastUsed:       r.LastUsed,
		CreatedAt:      r.CreatedAt,
	}
}

func (m *ConciergeMapper) LearningToModel(r *learning.Record) *model.LearningRecord {
	if r == nil {
		return nil
	}
	return &model.LearningRecord{
		Id:             r.ID,
		QueryHash:      r.QueryHash,
		OriginalQuery:  r.OriginalQuery,
		ProcessedQuery: r.ProcessedQuery,
		Intent:         r.Intent,
		Response:       r.Response,
		UsageCount:     r.UsageCount,
		FeedbackScore:  r.FeedbackScore,
		LastUsed:       r.LastUsed,
		CreatedAt:      r.CreatedAt,
	}
}

// Analytics mappers

func (m *ConciergeMapper) AnalyticsToModel(a *entity.DailyAnalytics) *model.DailyAnalytics {
	if a == nil {
		return nil
	}

	topIntents, _ := json.Marshal(a.TopIntents)
	popularQueries, _ := json.Marshal(a.PopularQueries)

	return &model.DailyAnalytics{
		Date:               a.Date,
		TotalConversations: a.TotalConversations,
		TotalMessages:      a.TotalMessages,
		AvgResponseTime:    a.AvgResponseTime,
		SatisfactionScore:  a.SatisfactionScore,
		TopIntents:         topIntents,
		PopularQueries:     popularQueries,
		TokensUsed:         a.TokensUsed,
		CreatedAt:          a.CreatedAt,
	}
}

func (m *ConciergeMapper) AnalyticsToEntity(a *model.DailyAnalytics) *entity.DailyAnalytics {
	if a == nil {
		return nil
	}

	var topIntents []entity.IntentCount
	_ = json.Unmarshal(a.TopIntents, &topIntents)
	var popularQueries []entity.QueryCount
	_ = json.Unmarshal(a.PopularQueries, &popularQueries)

	return &entity.DailyAnalytics{
		Date:               a.Date,
		TotalConversations: a.TotalConversations,
		TotalMessages:      a.TotalMessages,
		AvgResponseTime:    a.AvgResponseTime,
		SatisfactionScore:  a.SatisfactionScore,
		TopIntents:         topIntents,
		PopularQueries:     popularQueries,
		TokensUsed:         a.TokensUsed,
		CreatedAt:          a.CreatedAt,
	}
}

// Grant mappers

func (m *ConciergeMapper) GrantToEntity(g *model.Grant) *entity.Grant {
	if g == nil {
		return nil
	}

	var categories []string
	_ = json.Unmarshal(g.Categories, &categories)
	var prefectures []string
	_ = json.Unmarshal(g.Prefectures, &prefectures)

	return &entity.Grant{
		Id:               g.Id,
		Title:            g.Title,
		Excerpt:          g.Excerpt,
		Permalink:        g.Permalink,
		Organization:     g.Organization,
		Target:           g.Target,
		EligibleExpenses: g.EligibleExpenses,
		Amount:           g.Amount,
		AmountNumeric:    g.AmountNumeric,
		Deadline:         g.Deadline,
		Status:           g.Status,
		Difficulty:       g.Difficulty,
		SuccessRate:      g.SuccessRate,
		Categories:       categories,
		Prefectures:      prefectures,
	}
}
