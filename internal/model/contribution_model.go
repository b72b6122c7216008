package model

import (
	"time"
)

// ContributionModel 出资人累计出资
type ContributionModel struct {
	Id        uint64    `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId uint64 `json:"campaign_id" gorm:"not null;uniqueIndex:idx_contribution_campaign_pledger"`
	Pledger    string `json:"pledger" gorm:"size:42;not null;uniqueIndex:idx_contribution_campaign_pledger"`
	Amount     string `json:"amount" gorm:"type:numeric(78,0);not null"`
}

// TableName 自定义表名
func (ContributionModel) TableName() string {
	return "contribution"
}
