package entity

import "time"

type IntentCount struct {
	Intent string `json:"intent"`
	Count  int64  `json:"count"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// DailyAnalytics is one day's aggregated conversation statistics, keyed by
// date so re-running maintenance overwrites rather than duplicates.
type DailyAnalytics struct {
	Date               string // YYYY-MM-DD
	TotalConversations int64
	TotalMessages      int64
	AvgResponseTime    float64
	SatisfactionScore  float64
	TopIntents         []IntentCount
	PopularQueries     []QueryCount
	TokensUsed         int64
	CreatedAt          time.Time
}
