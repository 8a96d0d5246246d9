package learning_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grant-insight-be/internal/repository/memory"
	"grant-insight-be/pkg/cache"
	"grant-insight-be/pkg/learning"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

func newStore() (*learning.Store, *memory.LearningRepository) {
	repo := memory.NewLearningRepository()
	return learning.NewStore(repo, cache.NewMemoryCache(), nopLogger{}), repo
}

func TestRecordInteraction_UpsertBumpsUsage(t *testing.T) {
	store, repo := newStore()
	ctx := context.Background()

	require.NoError(t, store.RecordInteraction(ctx, "IT導入補助金について", "回答A", "search_grants"))
	require.NoError(t, store.RecordInteraction(ctx, "IT導入補助金について", "回答B", "search_grants"))

	record, err := repo.FindByHash(ctx, learning.HashQuery("IT導入補助金について"))
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, 2, record.UsageCount)
	assert.Equal(t, "回答B", record.Response)
	assert.Equal(t, "IT導入補助金について", record.OriginalQuery)
}

func TestRecordFeedback_AttachesRating(t *testing.T) {
	store, repo := newStore()
	ctx := context.Background()

	require.NoError(t, store.RecordInteraction(ctx, "締切について", "回答", "deadline_inquiry"))
	require.NoError(t, store.RecordFeedback(ctx, "締切について", 5))

	record, err := repo.FindByHash(ctx, learning.HashQuery("締切について"))
	require.NoError(t, err)
	require.NotNil(t, record.FeedbackScore)
	assert.Equal(t, 5, *record.FeedbackScore)
}

func TestPrune_RemovesOnlyStaleUnlovedRecords(t *testing.T) {
	store, repo := newStore()
	ctx := context.Background()

	old := time.Now().Add(-45 * 24 * time.Hour)
	highRating := 5

	stale := &learning.Record{QueryHash: "stale", OriginalQuery: "a", UsageCount: 1, LastUsed: old}
	wellUsed := &learning.Record{QueryHash: "used", OriginalQuery: "b", UsageCount: 10, LastUsed: old}
	wellRated := &learning.Record{QueryHash: "rated", OriginalQuery: "c", UsageCount: 1, LastUsed: old, FeedbackScore: &highRating}
	fresh := &learning.Record{QueryHash: "fresh", OriginalQuery: "d", UsageCount: 1, LastUsed: time.Now()}
	for _, r := range []*learning.Record{stale, wellUsed, wellRated, fresh} {
		require.NoError(t, repo.Insert(ctx, r))
	}

	deleted, err := store.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	gone, _ := repo.FindByHash(ctx, "stale")
	assert.Nil(t, gone)
	for _, hash := range []string{"used", "rated", "fresh"} {
		kept, _ := repo.FindByHash(ctx, hash)
		assert.NotNil(t, kept, hash)
	}
}

func TestPopularQueries_ServedFromSnapshot(t *testing.T) {
	store, _ := newStore()
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		require.NoError(t, store.RecordInteraction(ctx, "人気の質問", "回答", "general_question"))
	}
	require.NoError(t, store.RecordInteraction(ctx, "一度だけの質問", "回答", "general_question"))

	require.NoError(t, store.RefreshPopular(ctx))

	popular, err := store.PopularQueries(ctx, 10)
	require.NoError(t, err)
	require.Len(t, popular, 1)
	assert.Equal(t, "人気の質問", popular[0].OriginalQuery)
}

func TestSuggestQueries_MatchesPartial(t *testing.T) {
	store, _ := newStore()
	ctx := context.Background()

	require.NoError(t, store.RecordInteraction(ctx, "ものづくり補助金の申請", "回答", "application_help"))
	require.NoError(t, store.RecordInteraction(ctx, "持続化給付金", "回答", "search_grants"))

	matches, err := store.SuggestQueries(ctx, "補助金", 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "ものづくり補助金の申請", matches[0].OriginalQuery)
}
