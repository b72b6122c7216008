package model

import (
	"time"
)

// AccountModel 宿主账户余额，含各众筹的托管地址
type AccountModel struct {
	Address   string    `json:"address" gorm:"primaryKey;size:42"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Balance string `json:"balance" gorm:"type:numeric(78,0);not null"`
}

// TableName 自定义表名
func (AccountModel) TableName() string {
	return "account"
}
