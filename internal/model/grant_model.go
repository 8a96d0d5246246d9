package model

import (
	"time"

	"gorm.io/datatypes"
)

type Grant struct {
	Id               uint   `gorm:"primaryKey;autoIncrement"`
	Title            string `gorm:"type:text;not null;index"`
	Excerpt          string `gorm:"type:text"`
	Permalink        string `gorm:"type:text"`
	Organization     string `gorm:"type:text"`
	Target           string `gorm:"type:text"`
	EligibleExpenses string `gorm:"type:text"`
	Amount           string `gorm:"type:varchar(64)"`
	AmountNumeric    int64  `gorm:"index"`
	Deadline         string `gorm:"type:varchar(32)"`
	Status           string `gorm:"type:varchar(32);index"`
	Difficulty       string `gorm:"type:varchar(32)"`
	SuccessRate      int
	Categories       datatypes.JSON `gorm:"type:jsonb"`
	Prefectures      datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt        time.Time      `gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime"`
}

func (Grant) TableName() string {
	return "grants"
}
