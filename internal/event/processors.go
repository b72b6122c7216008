package event

import (
	"fmt"
	"math/big"

	"github.com/blues/crowdfund/internal/ledger"
	"github.com/blues/crowdfund/internal/logger"
)

// CreatedProcessor 众筹创建事件处理器
type CreatedProcessor struct{}

// NewCreatedProcessor 创建众筹创建事件处理器
func NewCreatedProcessor() *CreatedProcessor {
	return &CreatedProcessor{}
}

func (p *CreatedProcessor) GetEventType() ledger.EventType {
	return ledger.EventCampaignCreated
}

// Process 只记录日志，统计行由 ApplyEvent 惰性创建
func (p *CreatedProcessor) Process(e ledger.Event) (StatsDelta, error) {
	logger.Info("Campaign %d created by %s, target: %s", e.CampaignID, e.Account.Hex(), e.Amount)
	return StatsDelta{}, nil
}

// ContributeProcessor 出资事件处理器
type ContributeProcessor struct{}

// NewContributeProcessor 创建出资事件处理器
func NewContributeProcessor() *ContributeProcessor {
	return &ContributeProcessor{}
}

func (p *ContributeProcessor) GetEventType() ledger.EventType {
	return ledger.EventContributionReceived
}

// Process 处理出资事件
func (p *ContributeProcessor) Process(e ledger.Event) (StatsDelta, error) {
	if err := requireAmount(e); err != nil {
		return StatsDelta{}, err
	}

	logger.Info("Processed contribution: %s from %s to campaign %d", e.Amount, e.Account.Hex(), e.CampaignID)
	return StatsDelta{
		Contributions: 1,
		Pledged:       new(big.Int).Set(e.Amount),
	}, nil
}

// WithdrawProcessor 所有者提取事件处理器
type WithdrawProcessor struct{}

// NewWithdrawProcessor 创建提取事件处理器
func NewWithdrawProcessor() *WithdrawProcessor {
	return &WithdrawProcessor{}
}

func (p *WithdrawProcessor) GetEventType() ledger.EventType {
	return ledger.EventFundsWithdrawn
}

func (p *WithdrawProcessor) Process(e ledger.Event) (StatsDelta, error) {
	if err := requireAmount(e); err != nil {
		return StatsDelta{}, err
	}

	logger.Info("Processed withdrawal: %s to owner %s of campaign %d", e.Amount, e.Account.Hex(), e.CampaignID)
	return StatsDelta{Withdrawn: new(big.Int).Set(e.Amount)}, nil
}

// RefundProcessor 退款事件处理器
type RefundProcessor struct{}

// NewRefundProcessor 创建退款事件处理器
func NewRefundProcessor() *RefundProcessor {
	return &RefundProcessor{}
}

func (p *RefundProcessor) GetEventType() ledger.EventType {
	return ledger.EventRefundIssued
}

// Process 处理退款事件
func (p *RefundProcessor) Process(e ledger.Event) (StatsDelta, error) {
	if err := requireAmount(e); err != nil {
		return StatsDelta{}, err
	}

	logger.Info("Processed refund: %s to %s for campaign %d", e.Amount, e.Account.Hex(), e.CampaignID)
	return StatsDelta{
		Refunds:  1,
		Refunded: new(big.Int).Set(e.Amount),
	}, nil
}

func requireAmount(e ledger.Event) error {
	if e.Amount == nil || e.Amount.Sign() < 0 {
		return fmt.Errorf("event %d (%s) has invalid amount", e.ID, e.Type)
	}
	return nil
}
