package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"

	"grant-insight-be/internal/entity"
	"grant-insight-be/internal/mapper"
	"grant-insight-be/internal/model"
	"grant-insight-be/internal/repository/contract"
	"grant-insight-be/internal/repository/specification"
	"grant-insight-be/pkg/chatcontext"
)

type ConversationTurnRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConciergeMapper
}

func NewConversationTurnRepository(db *gorm.DB) contract.ConversationTurnRepository {
	return &ConversationTurnRepositoryImpl{
		db:     db,
		mapper: mapper.NewConciergeMapper(),
	}
}

func (r *ConversationTurnRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ConversationTurnRepositoryImpl) Create(ctx context.Context, turn *entity.ConversationTurn) error {
	m := r.mapper.TurnToModel(turn)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*turn = *r.mapper.TurnToEntity(m)
	return nil
}

func (r *ConversationTurnRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ConversationTurn, error) {
	var m model.ConversationTurn
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.TurnToEntity(&m), nil
}

func (r *ConversationTurnRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationTurn, error) {
	var models []*model.ConversationTurn
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ConversationTurn, len(models))
	for i, m := range models {
		entities[i] = r.mapper.TurnToEntity(m)
	}
	return entities, nil
}

func (r *ConversationTurnRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ConversationTurn{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ConversationTurnRepositoryImpl) SetFeedback(ctx context.Context, sessionID string, turnID uint, rating int, feedbackType, comment string) error {
	var m model.ConversationTurn
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND id = ?", sessionID, turnID).
		First(&m).Error
	if err != nil {
		return err
	}

	snapshot := map[string]interface{}{}
	if len(m.Context) > 0 {
		_ = json.Unmarshal(m.Context, &snapshot)
	}
	snapshot["rating"] = rating
	snapshot["feedback_type"] = feedbackType
	snapshot["feedback_comment"] = comment
	snapshot["feedback_at"] = time.Now().Format(time.RFC3339)

	raw, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Model(&model.ConversationTurn{}).
		Where("id = ?", m.Id).
		Update("context", raw).Error
}

func (r *ConversationTurnRepositoryImpl) LatestContextSnapshot(ctx context.Context, sessionID string) (*chatcontext.Context, error) {
	var m model.ConversationTurn
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND context IS NOT NULL", sessionID).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var snapshot chatcontext.Context
	if err := json.Unmarshal(m.Context, &snapshot); err != nil {
		return nil, nil // unreadable snapshot degrades to the default context
	}
	return &snapshot, nil
}

func (r *ConversationTurnRepositoryImpl) DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&model.ConversationTurn{})
	return result.RowsAffected, result.Error
}

func (r *ConversationTurnRepositoryImpl) SessionStats(ctx context.Context, sessionID string) (*entity.SessionStats, error) {
	var stats entity.SessionStats
	err := r.db.WithContext(ctx).
		Model(&model.ConversationTurn{}).
		Select(`session_id,
			MIN(created_at) AS started_at,
			MAX(created_at) AS last_activity,
			COUNT(*) AS message_count,
			COUNT(*) FILTER (WHERE role = 'user') AS user_messages,
			COUNT(*) FILTER (WHERE role = 'assistant') AS assistant_messages`).
		Where("session_id = ?", sessionID).
		Group("session_id").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	if stats.SessionId == "" {
		return nil, nil
	}
	return &stats, nil
}

func (r *ConversationTurnRepositoryImpl) DailyStats(ctx context.Context, date string) (*entity.DailyAnalytics, error) {
	var row struct {
		Conversations     int64
		Messages          int64
		AvgResponseTime   float64
		SatisfactionScore float64
	}
	err := r.db.WithContext(ctx).
		Model(&model.ConversationTurn{}).
		Select(`COUNT(DISTINCT session_id) AS conversations,
			COUNT(*) AS messages,
			COALESCE(AVG(response_time), 0) AS avg_response_time,
			COALESCE(AVG((context ->> 'rating')::numeric), 0) AS satisfaction_score`).
		Where("DATE(created_at) = ?", date).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}

	return &entity.DailyAnalytics{
		Date:               date,
		TotalConversations: row.Conversations,
		TotalMessages:      row.Messages,
		AvgResponseTime:    row.AvgResponseTime,
		SatisfactionScore:  row.SatisfactionScore,
	}, nil
}

func (r *ConversationTurnRepositoryImpl) TopIntents(ctx context.Context, date string, limit int) ([]entity.IntentCount, error) {
	var rows []entity.IntentCount
	err := r.db.WithContext(ctx).
		Model(&model.ConversationTurn{}).
		Select("intent, COUNT(*) AS count").
		Where("DATE(created_at) = ? AND intent IS NOT NULL", date).
		Group("intent").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *ConversationTurnRepositoryImpl) PopularMessages(ctx context.Context, date string, limit int) ([]entity.QueryCount, error) {
	var rows []entity.QueryCount
	err := r.db.WithContext(ctx).
		Model(&model.ConversationTurn{}).
		Select("message AS query, COUNT(*) AS count").
		Where("DATE(created_at) = ? AND role = 'user'", date).
		Group("message").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}
