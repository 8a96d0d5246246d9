package implementation

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"grant-insight-be/internal/entity"
	"grant-insight-be/internal/mapper"
	"grant-insight-be/internal/model"
	"grant-insight-be/internal/repository/contract"
)

type DailyAnalyticsRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConciergeMapper
}

func NewDailyAnalyticsRepository(db *gorm.DB) contract.DailyAnalyticsRepository {
	return &DailyAnalyticsRepositoryImpl{
		db:     db,
		mapper: mapper.NewConciergeMapper(),
	}
}

func (r *DailyAnalyticsRepositoryImpl) Upsert(ctx context.Context, analytics *entity.DailyAnalytics) error {
	m := r.mapper.AnalyticsToModel(analytics)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}},
			UpdateAll: true,
		}).
		Create(m).Error
}

func (r *DailyAnalyticsRepositoryImpl) FindByDate(ctx context.Context, date string) (*entity.DailyAnalytics, error) {
	var m model.DailyAnalytics
	err := r.db.WithContext(ctx).Where("date = ?", date).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.AnalyticsToEntity(&m), nil
}
