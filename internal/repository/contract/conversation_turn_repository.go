package contract

import (
	"context"
	"time"

	"grant-insight-be/internal/entity"
	"grant-insight-be/internal/repository/specification"
	"grant-insight-be/pkg/chatcontext"
)

type ConversationTurnRepository interface {
	Create(ctx context.Context, turn *entity.ConversationTurn) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ConversationTurn, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ConversationTurn, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// SetFeedback stores a rating payload onto one turn's context column.
	SetFeedback(ctx context.Context, sessionID string, turnID uint, rating int, feedbackType, comment string) error

	// DeleteCreatedBefore hard-deletes turns older than the cutoff and
	// returns how many rows went away.
	DeleteCreatedBefore(ctx context.Context, cutoff time.Time) (int64, error)

	SessionStats(ctx context.Context, sessionID string) (*entity.SessionStats, error)

	// LatestContextSnapshot rebuilds session context from the newest turn
	// that carries one. Satisfies chatcontext.SnapshotStore.
	LatestContextSnapshot(ctx context.Context, sessionID string) (*chatcontext.Context, error)

	// Daily aggregation for analytics.
	DailyStats(ctx context.Context, date string) (*entity.DailyAnalytics, error)
	TopIntents(ctx context.Context, date string, limit int) ([]entity.IntentCount, error)
	PopularMessages(ctx context.Context, date string, limit int) ([]entity.QueryCount, error)
}
