package openai

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreQuality(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    float64
	}{
		{
			name:    "natural japanese answer",
			content: "小規模事業者持続化補助金は、販路開拓に取り組む小規模事業者を支援する制度です。申請には事業計画書の作成が必要になります。",
			want:    1.0,
		},
		{
			name:    "too short",
			content: "はい。",
			want:    0.4, // short penalty plus all-hiragana script penalty
		},
		{
			name:    "refusal phrase",
			content: "申し訳ございませんが、お答えできませんので、別の質問をお願いいたします。ご不便をおかけして恐縮です。",
			want:    0.8,
		},
		{
			name:    "empty",
			content: "",
			want:    0.5, // only the short penalty applies to non-Japanese text
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ScoreQuality(tc.content)
			assert.InDelta(t, tc.want, got, 0.01)
		})
	}
}

func TestScoreQuality_RepeatedSentences(t *testing.T) {
	sentence := "こちらの補助金制度についてご案内いたします。"
	content := strings.Repeat(sentence, 4)

	looped := ScoreQuality(content)
	clean := ScoreQuality("こちらの補助金制度についてご案内いたします。対象は中小企業で、上限額は200万円です。申請は電子申請システムから行えます。")

	assert.Less(t, looped, clean)
}

func TestScoreQuality_NeverBelowZero(t *testing.T) {
	score := ScoreQuality("申し訳ございませんが、お答えできません")
	assert.GreaterOrEqual(t, score, 0.0)
	assert.LessOrEqual(t, score, 1.0)
}
