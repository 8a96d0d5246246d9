package emotion

import "strings"

// Interpretation labels.
const (
	Positive = "positive"
	Stressed = "stressed"
	Confused = "confused"
	Urgent   = "urgent"
	Neutral  = "neutral"
)

// Response style labels consumed by the prompt builder.
const (
	StyleUrgentHelpful = "urgent_helpful"
	StyleCompassionate = "compassionate"
	StyleEnthusiastic  = "enthusiastic"
	StyleProfessional  = "professional"
)

type DetectedEmotion struct {
	Keyword string  `json:"keyword"`
	Type    string  `json:"type"`
	Weight  float64 `json:"weight"`
}

type Result struct {
	Score            float64           `json:"score"`
	Confidence       float64           `json:"confidence"`
	Urgency          float64           `json:"urgency"`
	DetectedEmotions []DetectedEmotion `json:"detected_emotions"`
	Interpretation   string            `json:"interpretation"`
	ResponseStyle    string            `json:"response_style"`
}

type weightedKeyword struct {
	keyword string
	weight  float64
}

var positiveKeywords = []weightedKeyword{
	{"ありがとう", 0.8},
	{"嬉しい", 0.7},
	{"助かる", 0.6},
	{"良い", 0.5},
	{"素晴らしい", 0.9},
	{"期待", 0.6},
	{"楽しみ", 0.7},
	{"満足", 0.8},
	{"安心", 0.6},
	{"希望", 0.7},
}

var negativeKeywords = []weightedKeyword{
	{"困っ", -0.6},
	{"分からない", -0.4},
	{"難しい", -0.5},
	{"不安", -0.7},
	{"心配", -0.6},
	{"大変", -0.5},
	{"厳しい", -0.6},
	{"無理", -0.8},
	{"諦め", -0.9},
	{"ダメ", -0.7},
}

// Neutral keywords carry no weight but still count as detected evidence.
var neutralKeywords = []weightedKeyword{
	{"教え", 0.0},
	{"確認", 0.0},
	{"質問", 0.0},
	{"聞き", 0.0},
	{"知り", 0.0},
	{"調べ", 0.0},
}

var questionMarkers = []string{"？", "?", "でしょうか", "ですか", "ますか"}
var politeMarkers = []string{"です", "ます", "ございます", "お願い"}
var urgencyMarkers = []string{"急い", "至急", "すぐに", "早く", "間に合", "締切"}

// Analyze scores the emotional tone of a message on [-1, 1] together with an
// urgency signal on [0, 1]. Question and polite forms nudge the score up
// slightly since they signal engagement rather than frustration.
func Analyze(message string) Result {
	lower := strings.ToLower(message)

	score := 0.0
	confidence := 0.0
	detected := []DetectedEmotion{}

	scan := func(emotionType string, keywords []weightedKeyword) {
		for _, kw := range keywords {
			if strings.Contains(lower, kw.keyword) {
				score += kw.weight
				confidence += 0.1
				detected = append(detected, DetectedEmotion{
					Keyword: kw.keyword,
					Type:    emotionType,
					Weight:  kw.weight,
				})
			}
		}
	}
	scan("positive", positiveKeywords)
	scan("negative", negativeKeywords)
	scan("neutral", neutralKeywords)

	for _, marker := range questionMarkers {
		if strings.Contains(message, marker) {
			score += 0.1
			confidence += 0.05
		}
	}

	for _, marker := range politeMarkers {
		if strings.Contains(message, marker) {
			score += 0.1
			confidence += 0.05
		}
	}

	urgency := 0.0
	for _, marker := range urgencyMarkers {
		if strings.Contains(lower, marker) {
			urgency += 0.2
		}
	}

	score = clamp(score, -1.0, 1.0)
	confidence = clamp(confidence, 0.0, 1.0)
	urgency = clamp(urgency, 0.0, 1.0)

	return Result{
		Score:            score,
		Confidence:       confidence,
		Urgency:          urgency,
		DetectedEmotions: detected,
		Interpretation:   interpret(score, urgency),
		ResponseStyle:    responseStyle(score, urgency),
	}
}

func interpret(score, urgency float64) string {
	switch {
	case score > 0.5:
		return Positive
	case score < -0.5:
		if urgency > 0.5 {
			return Stressed
		}
		return Confused
	case urgency > 0.5:
		return Urgent
	default:
		return Neutral
	}
}

func responseStyle(score, urgency float64) string {
	switch {
	case urgency > 0.7:
		return StyleUrgentHelpful
	case score < -0.5:
		return StyleCompassionate
	case score > 0.5:
		return StyleEnthusiastic
	default:
		return StyleProfessional
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
