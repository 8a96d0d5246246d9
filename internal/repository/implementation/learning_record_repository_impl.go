package implementation

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"grant-insight-be/internal/mapper"
	"grant-insight-be/internal/model"
	"grant-insight-be/pkg/learning"
)

type LearningRecordRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConciergeMapper
}

func NewLearningRecordRepository(db *gorm.DB) learning.Repository {
	return &LearningRecordRepositoryImpl{
		db:     db,
		mapper: mapper.NewConciergeMapper(),
	}
}

func (r *LearningRecordRepositoryImpl) FindByHash(ctx context.Context, hash string) (*learning.Record, error) {
	var m model.LearningRecord
	err := r.db.WithContext(ctx).Where("query_hash = ?", hash).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.LearningToRecord(&m), nil
}

func (r *LearningRecordRepositoryImpl) Insert(ctx context.Context, record *learning.Record) error {
	m := r.mapper.LearningToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.LearningToRecord(m)
	return nil
}

func (r *LearningRecordRepositoryImpl) Update(ctx context.Context, record *learning.Record) error {
	m := r.mapper.LearningToModel(record)
	return r.db.WithContext(ctx).Save(m).Error
}

func (r *LearningRecordRepositoryImpl) SetFeedback(ctx context.Context, hash string, rating int) error {
	return r.db.WithContext(ctx).
		Model(&model.LearningRecord{}).
		Where("query_hash = ?", hash).
		Update("feedback_score", rating).Error
}

func (r *LearningRecordRepositoryImpl) DeleteStale(ctx context.Context, before time.Time, maxUsage, maxFeedback int) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("last_used < ? AND usage_count <= ? AND (feedback_score IS NULL OR feedback_score <= ?)",
			before, maxUsage, maxFeedback).
		Delete(&model.LearningRecord{})
	return result.RowsAffected, result.Error
}

func (r *LearningRecordRepositoryImpl) FindPopular(ctx context.Context, minUsage, minFeedback, limit int) ([]learning.Record, error) {
	var models []*model.LearningRecord
	err := r.db.WithContext(ctx).
		Where("usage_count >= ? AND (feedback_score IS NULL OR feedback_score >= ?)", minUsage, minFeedback).
		Order("usage_count DESC, feedback_score DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	records := make([]learning.Record, len(models))
	for i, m := range models {
		records[i] = *r.mapper.LearningToRecord(m)
	}
	return records, nil
}

func (r *LearningRecordRepositoryImpl) SearchByQuery(ctx context.Context, partial string, limit int) ([]learning.Record, error) {
	var models []*model.LearningRecord
	err := r.db.WithContext(ctx).
		Where("original_query ILIKE ?", "%"+partial+"%").
		Order("usage_count DESC, last_used DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	records := make([]learning.Record, len(models))
	for i, m := range models {
		records[i] = *r.mapper.LearningToRecord(m)
	}
	return records, nil
}
