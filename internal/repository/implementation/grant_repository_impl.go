package implementation

import (
	"context"

	"gorm.io/gorm"

	"grant-insight-be/internal/entity"
	"grant-insight-be/internal/mapper"
	"grant-insight-be/internal/model"
	"grant-insight-be/internal/repository/contract"
	"grant-insight-be/pkg/search"
)

type GrantRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ConciergeMapper
}

func NewGrantRepository(db *gorm.DB) contract.GrantRepository {
	return &GrantRepositoryImpl{
		db:     db,
		mapper: mapper.NewConciergeMapper(),
	}
}

const publishedStatus = "published"

func (r *GrantRepositoryImpl) Search(ctx context.Context, terms []string, filters search.Filters, limit, offset int) ([]*entity.Grant, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Grant{})

	if len(terms) > 0 {
		// Any expanded variant may match any of the searchable text fields.
		textMatch := r.db.Session(&gorm.Session{NewDB: true})
		for i, term := range terms {
			pattern := "%" + term + "%"
			condition := r.db.Session(&gorm.Session{NewDB: true}).
				Where("title ILIKE ?", pattern).
				Or("excerpt ILIKE ?", pattern).
				Or("organization ILIKE ?", pattern).
				Or("target ILIKE ?", pattern).
				Or("eligible_expenses ILIKE ?", pattern)
			if i == 0 {
				textMatch = textMatch.Where(condition)
			} else {
				textMatch = textMatch.Or(condition)
			}
		}
		query = query.Where(textMatch)
	}

	if len(filters.Categories) > 0 {
		query = query.Where(r.jsonContainsAny("categories", filters.Categories))
	}
	if len(filters.Prefectures) > 0 {
		query = query.Where(r.jsonContainsAny("prefectures", filters.Prefectures))
	}
	if len(filters.Statuses) > 0 {
		query = query.Where("status IN ?", filters.Statuses)
	}
	switch {
	case filters.AmountMin > 0 && filters.AmountMax > 0:
		query = query.Where("amount_numeric BETWEEN ? AND ?", filters.AmountMin, filters.AmountMax)
	case filters.AmountMin > 0:
		query = query.Where("amount_numeric >= ?", filters.AmountMin)
	case filters.AmountMax > 0:
		query = query.Where("amount_numeric <= ?", filters.AmountMax)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var models []*model.Grant
	if err := query.Limit(limit).Offset(offset).Find(&models).Error; err != nil {
		return nil, 0, err
	}

	grants := make([]*entity.Grant, len(models))
	for i, m := range models {
		grants[i] = r.mapper.GrantToEntity(m)
	}
	return grants, total, nil
}

// jsonContainsAny matches a jsonb string array column against any of the
// given values. Plain text matching keeps the query portable across gorm's
// placeholder handling, which trips over the jsonb ?| operator.
func (r *GrantRepositoryImpl) jsonContainsAny(column string, values []string) *gorm.DB {
	cond := r.db.Session(&gorm.Session{NewDB: true})
	for i, value := range values {
		pattern := `%"` + value + `"%`
		if i == 0 {
			cond = cond.Where(column+"::text ILIKE ?", pattern)
		} else {
			cond = cond.Or(column+"::text ILIKE ?", pattern)
		}
	}
	return cond
}

func (r *GrantRepositoryImpl) FindRelated(ctx context.Context, target, prefecture string, limit int) ([]*entity.Grant, error) {
	query := r.db.WithContext(ctx).Model(&model.Grant{}).Where("status = ?", publishedStatus)

	if target != "" {
		query = query.Where("target ILIKE ?", "%"+target+"%")
	}
	if prefecture != "" {
		query = query.Where("prefectures::text ILIKE ?", "%"+prefecture+"%")
	}

	var models []*model.Grant
	if err := query.Limit(limit).Find(&models).Error; err != nil {
		return nil, err
	}

	grants := make([]*entity.Grant, len(models))
	for i, m := range models {
		grants[i] = r.mapper.GrantToEntity(m)
	}
	return grants, nil
}

func (r *GrantRepositoryImpl) Titles(ctx context.Context, limit int) ([]string, error) {
	var titles []string
	err := r.db.WithContext(ctx).
		Model(&model.Grant{}).
		Where("status = ?", publishedStatus).
		Order("LENGTH(title) DESC").
		Limit(limit).
		Pluck("title", &titles).Error
	return titles, err
}

func (r *GrantRepositoryImpl) SearchTitles(ctx context.Context, partial string, limit int) ([]string, error) {
	var titles []string
	err := r.db.WithContext(ctx).
		Model(&model.Grant{}).
		Where("status = ? AND title ILIKE ?", publishedStatus, "%"+partial+"%").
		Order("created_at DESC").
		Limit(limit).
		Pluck("title", &titles).Error
	return titles, err
}
