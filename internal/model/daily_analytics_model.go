package model

import (
	"time"

	"gorm.io/datatypes"
)

type DailyAnalytics struct {
	Date               string `gorm:"type:date;primaryKey"`
	TotalConversations int64
	TotalMessages      int64
	AvgResponseTime    float64
	SatisfactionScore  float64
	TopIntents         datatypes.JSON `gorm:"type:jsonb"`
	PopularQueries     datatypes.JSON `gorm:"type:jsonb"`
	TokensUsed         int64
	CreatedAt          time.Time `gorm:"autoCreateTime"`
}

func (DailyAnalytics) TableName() string {
	return "daily_analytics"
}
