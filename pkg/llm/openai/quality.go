package openai

import (
	"strings"
	"unicode/utf8"
)

// Phrases that signal the model refused or dodged instead of answering.
var refusalPhrases = []string{
	"申し訳ございませんが、お答えできません",
	"I cannot",
	"I'm sorry",
	"As an AI",
	"I don't have access",
}

// ScoreQuality rates a completion between 0 and 1. It catches the failure
// modes seen in production: truncated answers, the model looping on itself,
// refusals, and responses whose script mix reads unnaturally in Japanese.
func ScoreQuality(content string) float64 {
	score := 1.0

	if utf8.RuneCountInString(strings.TrimSpace(content)) < 10 {
		score -= 0.5
	}

	if hasRepeatedSentences(content) {
		score -= 0.3
	}

	lower := strings.ToLower(content)
	for _, phrase := range refusalPhrases {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			score -= 0.2
		}
	}

	if containsJapanese(content) {
		ratio := hiraganaRatio(content)
		if ratio < 0.3 || ratio > 0.8 {
			score -= 0.1
		}
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// hasRepeatedSentences reports whether any sentence of at least 10 runes
// occurs three or more times.
func hasRepeatedSentences(content string) bool {
	sentences := strings.FieldsFunc(content, func(r rune) bool {
		return r == '。' || r == '\n' || r == '.' || r == '!' || r == '?'
	})

	counts := make(map[string]int)
	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) < 10 {
			continue
		}
		counts[s]++
		if counts[s] >= 3 {
			return true
		}
	}
	return false
}

// hiraganaRatio is the share of hiragana among Japanese-script runes.
// Natural Japanese prose sits roughly between 0.3 and 0.8; far outside that
// range the text is usually kanji soup or romanized filler.
func hiraganaRatio(content string) float64 {
	hiragana := 0
	japanese := 0
	for _, r := range content {
		switch {
		case r >= 0x3040 && r <= 0x309F:
			hiragana++
			japanese++
		case (r >= 0x30A0 && r <= 0x30FF) || (r >= 0x4E00 && r <= 0x9FFF):
			japanese++
		}
	}
	if japanese == 0 {
		return 0
	}
	return float64(hiragana) / float64(japanese)
}
