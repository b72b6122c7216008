package logic

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/blues/crowdfund/internal/ledger"
	"github.com/blues/crowdfund/internal/logger"
	"github.com/ethereum/go-ethereum/common"
)

// ErrInvalidParams 请求参数校验失败
var ErrInvalidParams = errors.New("invalid params")

const maxTitleLength = 200

// CampaignView 众筹详情及查询时刻的状态
type CampaignView struct {
	Campaign *ledger.Campaign
	Status   ledger.Status
}

// CampaignLogic 众筹业务逻辑
type CampaignLogic struct {
	ledger *ledger.Ledger
	serial *Serializer
}

// NewCampaignLogic 创建众筹业务逻辑
func NewCampaignLogic(l *ledger.Ledger, serial *Serializer) *CampaignLogic {
	return &CampaignLogic{ledger: l, serial: serial}
}

// CreateCampaign 创建众筹
func (c *CampaignLogic) CreateCampaign(ctx context.Context, caller common.Address, params ledger.CampaignParams) (*ledger.Campaign, error) {
	if err := c.validateCampaign(params); err != nil {
		return nil, err
	}

	var created *ledger.Campaign
	err := c.serial.Do(func() error {
		var err error
		created, err = c.ledger.CreateCampaign(ctx, caller, params)
		return err
	})
	if err != nil {
		logger.Warn("Create campaign by %s rejected: %v", caller.Hex(), err)
		return nil, err
	}

	logger.Info("Campaign %d created by %s, target: %s, deadline: %d, custody: %s",
		created.ID, caller.Hex(), created.Target, created.Deadline, created.Custody.Hex())
	return created, nil
}

// Pledge 出资
func (c *CampaignLogic) Pledge(ctx context.Context, id uint64, caller common.Address, amount *big.Int) error {
	err := c.serial.Do(func() error {
		return c.ledger.Pledge(ctx, id, caller, amount)
	})
	if err != nil {
		logger.Warn("Pledge of %s to campaign %d by %s rejected: %v", amount, id, caller.Hex(), err)
		return err
	}

	logger.Info("Pledged %s to campaign %d by %s", amount, id, caller.Hex())
	return nil
}

// Claim 所有者提取资金
func (c *CampaignLogic) Claim(ctx context.Context, id uint64, caller common.Address) (*big.Int, error) {
	var paid *big.Int
	err := c.serial.Do(func() error {
		var err error
		paid, err = c.ledger.Claim(ctx, id, caller)
		return err
	})
	if err != nil {
		logger.Warn("Claim of campaign %d by %s rejected: %v", id, caller.Hex(), err)
		return nil, err
	}

	logger.Info("Campaign %d claimed by owner %s, amount: %s", id, caller.Hex(), paid)
	return paid, nil
}

// Refund 出资人退款
func (c *CampaignLogic) Refund(ctx context.Context, id uint64, caller common.Address) (*big.Int, error) {
	var refunded *big.Int
	err := c.serial.Do(func() error {
		var err error
		refunded, err = c.ledger.Refund(ctx, id, caller)
		return err
	})
	if err != nil {
		logger.Warn("Refund of campaign %d by %s rejected: %v", id, caller.Hex(), err)
		return nil, err
	}

	logger.Info("Refunded %s to %s from campaign %d", refunded, caller.Hex(), id)
	return refunded, nil
}

// GetCampaign 获取众筹详情
func (c *CampaignLogic) GetCampaign(ctx context.Context, id uint64) (*CampaignView, error) {
	var view CampaignView
	err := c.serial.Do(func() error {
		var err error
		view.Campaign, view.Status, err = c.ledger.Snapshot(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// GetStatus 获取众筹状态
func (c *CampaignLogic) GetStatus(ctx context.Context, id uint64) (ledger.Status, error) {
	var status ledger.Status
	err := c.serial.Do(func() error {
		var err error
		status, err = c.ledger.Status(ctx, id)
		return err
	})
	return status, err
}

// GetContributions 获取众筹的出资记录
func (c *CampaignLogic) GetContributions(ctx context.Context, id uint64) ([]ledger.Contribution, error) {
	var list []ledger.Contribution
	err := c.serial.Do(func() error {
		var err error
		list, err = c.ledger.Contributions(ctx, id)
		return err
	})
	return list, err
}

// GetContribution 获取单个出资人的出资
func (c *CampaignLogic) GetContribution(ctx context.Context, id uint64, pledger common.Address) (*big.Int, error) {
	var amount *big.Int
	err := c.serial.Do(func() error {
		var err error
		amount, err = c.ledger.Contribution(ctx, id, pledger)
		return err
	})
	return amount, err
}

// validateCampaign 验证众筹数据
func (c *CampaignLogic) validateCampaign(params ledger.CampaignParams) error {
	if params.Title == "" {
		return fmt.Errorf("%w: 众筹标题不能为空", ErrInvalidParams)
	}
	if utf8.RuneCountInString(params.Title) > maxTitleLength {
		return fmt.Errorf("%w: 众筹标题不能超过%d个字符", ErrInvalidParams, maxTitleLength)
	}
	return nil
}
