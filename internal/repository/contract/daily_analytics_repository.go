package contract

import (
	"context"

	"grant-insight-be/internal/entity"
)

type DailyAnalyticsRepository interface {
	// Upsert replaces the row for the entity's date.
	Upsert(ctx context.Context, analytics *entity.DailyAnalytics) error
	FindByDate(ctx context.Context, date string) (*entity.DailyAnalytics, error)
}
