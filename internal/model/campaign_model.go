package model

import (
	"time"
)

// CampaignModel 众筹账本
//
// 状态不落库，每次调用按 deadline/target/total_raised 推导
type CampaignModel struct {
	Id        uint64    `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	Title       string `json:"title"`
	Description string `json:"description" gorm:"type:text"`

	// 不可变参数
	Owner    string `json:"owner" gorm:"size:42;not null;index"`
	Target   string `json:"target" gorm:"type:numeric(78,0);not null"`
	Deadline uint64 `json:"deadline" gorm:"not null;index"`

	// 账本
	Custody     string `json:"custody" gorm:"size:42"`
	TotalRaised string `json:"total_raised" gorm:"type:numeric(78,0);not null"`
	Claimed     bool   `json:"claimed"`
	OpenedAt    uint64 `json:"opened_at"` // 宿主时间
}

// TableName 自定义表名
func (CampaignModel) TableName() string {
	return "campaign"
}
