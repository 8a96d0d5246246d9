package unitofwork

import (
	"context"

	"grant-insight-be/internal/repository/contract"
	"grant-insight-be/pkg/learning"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ConversationTurnRepository() contract.ConversationTurnRepository
	LearningRecordRepository() learning.Repository
	DailyAnalyticsRepository() contract.DailyAnalyticsRepository
	GrantRepository() contract.GrantRepository
}
