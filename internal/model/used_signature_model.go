package model

import (
	"time"
)

// UsedSignatureModel 已使用的调用签名，过期前拒绝重放
type UsedSignatureModel struct {
	Hash      string    `json:"hash" gorm:"primaryKey;size:66"`
	CreatedAt time.Time `json:"created_at"`

	Caller    string `json:"caller" gorm:"size:42;not null"`
	ExpiresAt int64  `json:"expires_at" gorm:"not null;index"` // unix 秒
}

// TableName 自定义表名
func (UsedSignatureModel) TableName() string {
	return "used_signature"
}
