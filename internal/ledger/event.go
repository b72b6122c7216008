package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// EventType 账本事件类型
type EventType string

const (
	EventCampaignCreated      EventType = "CampaignCreated"
	EventContributionReceived EventType = "ContributionReceived"
	EventFundsWithdrawn       EventType = "FundsWithdrawn"
	EventRefundIssued         EventType = "RefundIssued"
)

// Event 随调用一起提交的账本事件
type Event struct {
	ID         uint64
	CampaignID uint64
	Type       EventType
	Account    common.Address
	Amount     *big.Int
	Timestamp  uint64
}
