package model

import (
	"time"

	"gorm.io/datatypes"
)

type ConversationTurn struct {
	Id           uint           `gorm:"primaryKey;autoIncrement"`
	SessionId    string         `gorm:"type:varchar(64);not null;index"`
	UserId       *string        `gorm:"type:varchar(64);index"`
	Role         string         `gorm:"type:varchar(16);not null"`
	Message      string         `gorm:"type:text;not null"`
	Context      datatypes.JSON `gorm:"type:jsonb"`
	EmotionScore *float64
	Intent       *string `gorm:"type:varchar(32);index"`
	Confidence   *float64
	ResponseTime *float64
	TokensUsed   *int
	CreatedAt    time.Time `gorm:"autoCreateTime;index"`
}

func (ConversationTurn) TableName() string {
	return "conversation_turns"
}
