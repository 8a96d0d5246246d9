package chatcontext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"grant-insight-be/pkg/cache"
	"grant-insight-be/pkg/intent"
)

type fakeSnapshots struct {
	snapshot *Context
}

func (f *fakeSnapshots) LatestContextSnapshot(_ context.Context, _ string) (*Context, error) {
	return f.snapshot, nil
}

func TestGetContext_DefaultsWhenNothingStored(t *testing.T) {
	manager := NewManager(cache.NewMemoryCache(), &fakeSnapshots{})

	got := manager.GetContext(context.Background(), "gi_session_abc")

	assert.Equal(t, "gi_session_abc", got.SessionID)
	assert.Empty(t, got.BusinessType)
	assert.Empty(t, got.Location)
}

func TestGetContext_FallsBackToSnapshot(t *testing.T) {
	snapshot := &Context{SessionID: "gi_session_abc", BusinessType: "製造業", Location: "大阪府"}
	manager := NewManager(cache.NewMemoryCache(), &fakeSnapshots{snapshot: snapshot})

	got := manager.GetContext(context.Background(), "gi_session_abc")
	assert.Equal(t, "製造業", got.BusinessType)
	assert.Equal(t, "大阪府", got.Location)

	// Second read must come from cache even if the store forgets.
	manager.store = &fakeSnapshots{}
	again := manager.GetContext(context.Background(), "gi_session_abc")
	assert.Equal(t, "製造業", again.BusinessType)
}

func TestUpdateContext_MergeKeepsEarlierAnswers(t *testing.T) {
	manager := NewManager(cache.NewMemoryCache(), &fakeSnapshots{})
	ctx := context.Background()

	current := manager.GetContext(ctx, "gi_session_abc")
	current = manager.UpdateContext(ctx, current, "東京都でIT導入の助成金を探しています", intent.SearchGrants)
	assert.Equal(t, "IT業", current.BusinessType)
	assert.Equal(t, "東京都", current.Location)

	// A follow-up that only mentions the deadline must not wipe the profile.
	current = manager.UpdateContext(ctx, current, "締切はいつまでですか", intent.DeadlineInquiry)
	assert.Equal(t, "IT業", current.BusinessType)
	assert.Equal(t, "東京都", current.Location)
	assert.Equal(t, "締切確認", current.CurrentFocus)
}

func TestUpdateContext_FocusPrefersTopicKeywords(t *testing.T) {
	manager := NewManager(cache.NewMemoryCache(), &fakeSnapshots{})
	ctx := context.Background()

	current := defaultContext("gi_session_x", manager.now())
	current = manager.UpdateContext(ctx, current, "従業員の研修に使える制度はありますか", intent.GeneralQuestion)

	assert.Equal(t, "人材育成", current.CurrentFocus)
}

func TestUpdateContext_NoSessionSkipsPersist(t *testing.T) {
	store := cache.NewMemoryCache()
	manager := NewManager(store, &fakeSnapshots{})
	ctx := context.Background()

	current := defaultContext("", manager.now())
	manager.UpdateContext(ctx, current, "製造業です", intent.GeneralQuestion)

	_, found := store.Get(ctx, cacheKey(""))
	assert.False(t, found)
}

func TestExtractBusinessInfo(t *testing.T) {
	tests := []struct {
		message  string
		wantType string
		wantSize string
		wantLoc  string
	}{
		{"北海道で農家をしています", "農業", "", "北海道"},
		{"個人事業主でカフェを経営", "飲食業", "個人事業主", ""},
		{"中小企業向けのシステム開発", "IT業", "中小企業", ""},
		{"特に情報なし", "", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.message, func(t *testing.T) {
			info := ExtractBusinessInfo(tc.message)
			assert.Equal(t, tc.wantType, info.BusinessType)
			assert.Equal(t, tc.wantSize, info.BusinessSize)
			assert.Equal(t, tc.wantLoc, info.Location)
		})
	}
}

func TestDetermineFocus_DefaultsToGeneralConsultation(t *testing.T) {
	assert.Equal(t, "一般相談", DetermineFocus(intent.GeneralQuestion, "こんにちは"))
	assert.Equal(t, "助成金検索", DetermineFocus(intent.SearchGrants, "こんにちは"))
}
