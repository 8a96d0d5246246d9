package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grant-insight-be/internal/constant"
	"grant-insight-be/internal/entity"
	"grant-insight-be/internal/repository/memory"
	"grant-insight-be/pkg/cache"
	"grant-insight-be/pkg/learning"
	"grant-insight-be/pkg/usage"
)

type fakeAnalyticsRepo struct {
	upserted []*entity.DailyAnalytics
}

func (r *fakeAnalyticsRepo) Upsert(_ context.Context, analytics *entity.DailyAnalytics) error {
	r.upserted = append(r.upserted, analytics)
	return nil
}

func (r *fakeAnalyticsRepo) FindByDate(_ context.Context, date string) (*entity.DailyAnalytics, error) {
	for _, a := range r.upserted {
		if a.Date == date {
			return a, nil
		}
	}
	return nil, nil
}

func TestRunOnce_CleansUpAndAggregates(t *testing.T) {
	ctx := context.Background()
	store := cache.NewMemoryCache()
	turnRepo := &fakeTurnRepo{}
	analyticsRepo := &fakeAnalyticsRepo{}
	learningRepo := memory.NewLearningRepository()
	uow := &fakeUnitOfWork{
		turnRepo:      turnRepo,
		grantRepo:     &fakeGrantRepo{},
		learningRepo:  learningRepo,
		analyticsRepo: analyticsRepo,
	}
	tracker := usage.NewTracker(store, nil, nopLogger{}, 100000, 200000)
	learningStore := learning.NewStore(learningRepo, store, nopLogger{})

	// One expired turn and one recent turn.
	require.NoError(t, turnRepo.Create(ctx, &entity.ConversationTurn{
		SessionId: constant.SessionPrefix + "old",
		Role:      constant.RoleUser,
		Message:   "昔の質問",
		CreatedAt: time.Now().Add(-45 * 24 * time.Hour),
	}))
	require.NoError(t, turnRepo.Create(ctx, &entity.ConversationTurn{
		SessionId: constant.SessionPrefix + "new",
		Role:      constant.RoleUser,
		Message:   "最近の質問",
		CreatedAt: time.Now(),
	}))

	// One stale learning record.
	require.NoError(t, learningRepo.Insert(ctx, &learning.Record{
		QueryHash:     "stale",
		OriginalQuery: "古い質問",
		UsageCount:    1,
		LastUsed:      time.Now().Add(-60 * 24 * time.Hour),
	}))

	// An emergency stop left over from yesterday.
	require.NoError(t, tracker.RecordUsage(ctx, 200000))
	require.True(t, tracker.IsEmergencyStopped(ctx))

	svc := NewMaintenanceService(&fakeFactory{uow: uow}, learningStore, tracker, nopLogger{})
	require.NoError(t, svc.RunOnce(ctx))

	// Expired conversation removed, recent one kept.
	require.Len(t, turnRepo.turns, 1)
	assert.Equal(t, "最近の質問", turnRepo.turns[0].Message)

	// Stale learning record pruned.
	gone, err := learningRepo.FindByHash(ctx, "stale")
	require.NoError(t, err)
	assert.Nil(t, gone)

	// Yesterday's analytics written.
	require.Len(t, analyticsRepo.upserted, 1)
	assert.Equal(t, time.Now().AddDate(0, 0, -1).Format("2006-01-02"), analyticsRepo.upserted[0].Date)

	// Emergency stop cleared for the new budget day.
	assert.False(t, tracker.IsEmergencyStopped(ctx))
}
