package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		message       string
		wantIntent    string
		minConfidence float64
	}{
		{
			name:          "grant search with keyword and pattern",
			message:       "東京都でIT導入の助成金を探しています",
			wantIntent:    SearchGrants,
			minConfidence: 0.3,
		},
		{
			name:          "application procedure question",
			message:       "申請の方法と必要な書類を教えてください",
			wantIntent:    ApplicationHelp,
			minConfidence: 0.5,
		},
		{
			name:          "eligibility question",
			message:       "うちの会社が対象かどうか条件を確認したい",
			wantIntent:    EligibilityCheck,
			minConfidence: 0.5,
		},
		{
			name:          "deadline question",
			message:       "締切はいつまでですか",
			wantIntent:    DeadlineInquiry,
			minConfidence: 0.5,
		},
		{
			name:          "amount question",
			message:       "最大でいくらもらえるのか金額を教えて",
			wantIntent:    AmountInquiry,
			minConfidence: 0.5,
		},
		{
			name:          "no signal falls back",
			message:       "こんにちは",
			wantIntent:    GeneralQuestion,
			minConfidence: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Classify(tc.message)
			assert.Equal(t, tc.wantIntent, result.Intent)
			assert.GreaterOrEqual(t, result.Confidence, tc.minConfidence)
			assert.LessOrEqual(t, result.Confidence, 1.0)
		})
	}
}

func TestClassify_ConfidenceClamped(t *testing.T) {
	// Every search keyword plus two patterns stacks far past 1.0 raw score.
	result := Classify("助成金と補助金と支援金を探す、検索で見つける、助成金を探している、支援の制度")
	assert.Equal(t, SearchGrants, result.Intent)
	assert.Equal(t, 1.0, result.Confidence)
}

func TestClassify_AlternativesRankedAndCapped(t *testing.T) {
	// Hits search, application, eligibility, deadline and amount at once.
	result := Classify("助成金の申請の対象条件と締切、金額を教えて")

	assert.LessOrEqual(t, len(result.Alternatives), 3)
	for i := 1; i < len(result.Alternatives); i++ {
		assert.GreaterOrEqual(t, result.Alternatives[i-1].Confidence, result.Alternatives[i].Confidence)
	}
	for _, alt := range result.Alternatives {
		assert.NotEqual(t, result.Intent, alt.Intent)
		assert.Greater(t, alt.Confidence, 0.0)
	}
}

func TestClassify_EmptyMessage(t *testing.T) {
	result := Classify("")
	assert.Equal(t, GeneralQuestion, result.Intent)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Empty(t, result.Alternatives)
}
