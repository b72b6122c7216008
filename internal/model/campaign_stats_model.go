package model

import (
	"time"
)

// CampaignStatsModel 众筹统计读模型
type CampaignStatsModel struct {
	CampaignId uint64    `json:"campaign_id" gorm:"primaryKey;autoIncrement:false"`
	UpdatedAt  time.Time `json:"updated_at"`

	Contributions int64  `json:"contributions" gorm:"not null"`
	Refunds       int64  `json:"refunds" gorm:"not null"`
	Pledged       string `json:"pledged" gorm:"type:numeric(78,0);not null"`
	Refunded      string `json:"refunded" gorm:"type:numeric(78,0);not null"`
	Withdrawn     string `json:"withdrawn" gorm:"type:numeric(78,0);not null"`
	LastEventId   uint64 `json:"last_event_id"`
}

// TableName 自定义表名
func (CampaignStatsModel) TableName() string {
	return "campaign_stats"
}
