package model

import (
	"time"
)

// EventModel 账本事件，与账本变更在同一事务内写入
type EventModel struct {
	Id        uint64    `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId uint64 `json:"campaign_id" gorm:"not null;index"`
	EventType  string `json:"event_type" gorm:"size:32;not null"`
	Account    string `json:"account" gorm:"size:42;not null"`
	Amount     string `json:"amount" gorm:"type:numeric(78,0);not null"`
	Timestamp  uint64 `json:"timestamp" gorm:"not null"`
	Processed  bool   `json:"processed" gorm:"not null;index"`
}

// TableName 自定义表名
func (EventModel) TableName() string {
	return "event"
}
