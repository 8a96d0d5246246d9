package model

import "time"

type LearningRecord struct {
	Id             uint   `gorm:"primaryKey;autoIncrement"`
	QueryHash      string `gorm:"type:char(32);not null;uniqueIndex"`
	OriginalQuery  string `gorm:"type:text;not null"`
	ProcessedQuery string `gorm:"type:text"`
	Intent         string `gorm:"type:varchar(32)"`
	Response       string `gorm:"type:text"`
	UsageCount     int    `gorm:"not null;default:1"`
	FeedbackScore  *int
	LastUsed       time.Time `gorm:"index"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (LearningRecord) TableName() string {
	return "learning_records"
}
