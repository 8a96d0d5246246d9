package emotion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name         string
		message      string
		wantInterp   string
		wantStyle    string
		wantScoreSgn int // -1, 0, 1
	}{
		{
			name:         "grateful message",
			message:      "ありがとうございます、とても助かる情報で満足です",
			wantInterp:   Positive,
			wantStyle:    StyleEnthusiastic,
			wantScoreSgn: 1,
		},
		{
			name:         "anxious message",
			message:      "無理かもしれない、不安で心配、諦めそう",
			wantInterp:   Confused,
			wantStyle:    StyleCompassionate,
			wantScoreSgn: -1,
		},
		{
			name:         "urgent deadline panic",
			message:      "至急！締切に間に合わないかも、すぐに教えてほしい、無理、不安",
			wantInterp:   Stressed,
			wantStyle:    StyleUrgentHelpful,
			wantScoreSgn: -1,
		},
		{
			name:         "plain inquiry",
			message:      "制度について調べています",
			wantInterp:   Neutral,
			wantStyle:    StyleProfessional,
			wantScoreSgn: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := Analyze(tc.message)
			assert.Equal(t, tc.wantInterp, result.Interpretation)
			assert.Equal(t, tc.wantStyle, result.ResponseStyle)
			switch tc.wantScoreSgn {
			case 1:
				assert.Greater(t, result.Score, 0.0)
			case -1:
				assert.Less(t, result.Score, 0.0)
			}
			assert.GreaterOrEqual(t, result.Score, -1.0)
			assert.LessOrEqual(t, result.Score, 1.0)
		})
	}
}

func TestAnalyze_ScoreClamped(t *testing.T) {
	// Stacks every positive keyword past the +1 ceiling.
	result := Analyze("ありがとう、嬉しい、助かる、良い、素晴らしい、期待、楽しみ、満足、安心、希望です")
	assert.Equal(t, 1.0, result.Score)
	assert.LessOrEqual(t, result.Confidence, 1.0)
}

func TestAnalyze_QuestionAndPoliteBoost(t *testing.T) {
	bare := Analyze("締切を知りたい")
	polite := Analyze("締切を教えていただけますでしょうか？")

	assert.Greater(t, polite.Score, bare.Score)
}

func TestAnalyze_UrgencyAccumulates(t *testing.T) {
	mild := Analyze("締切について")
	severe := Analyze("至急、急いでいます、締切に間に合わないのですぐに")

	assert.InDelta(t, 0.2, mild.Urgency, 0.001)
	assert.Equal(t, 1.0, severe.Urgency)
}

func TestAnalyze_DetectedEmotionsRecorded(t *testing.T) {
	result := Analyze("困っています、教えてください")

	types := map[string]bool{}
	for _, d := range result.DetectedEmotions {
		types[d.Type] = true
	}
	assert.True(t, types["negative"])
	assert.True(t, types["neutral"])
}
