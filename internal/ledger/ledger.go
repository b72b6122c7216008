package ledger

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Ledger 众筹账本状态机
//
// 调用的串行化由宿主保证。每个操作在一个存储事务内完成：
// 先更新账本，再执行转账，任何一步失败都整体回滚。
type Ledger struct {
	store    Store
	clock    Clock
	transfer Transferor
	contract common.Address
}

// New 创建账本，contract 为合约地址，用于派生各众筹的托管地址
func New(store Store, clock Clock, transfer Transferor, contract common.Address) *Ledger {
	return &Ledger{
		store:    store,
		clock:    clock,
		transfer: transfer,
		contract: contract,
	}
}

// CreateCampaign 创建众筹，调用者即所有者
func (l *Ledger) CreateCampaign(ctx context.Context, caller common.Address, params CampaignParams) (*Campaign, error) {
	if caller == (common.Address{}) {
		return nil, ErrInvalidOwner
	}
	if params.Target == nil || params.Target.Sign() <= 0 {
		return nil, ErrInvalidTarget
	}

	now, err := l.now(ctx)
	if err != nil {
		return nil, err
	}
	if params.Deadline <= now {
		return nil, ErrInvalidDeadline
	}

	var created *Campaign
	err = l.store.Atomic(ctx, func(tx Tx) error {
		c := &Campaign{
			Config: Config{
				Owner:    caller,
				Target:   new(big.Int).Set(params.Target),
				Deadline: params.Deadline,
			},
			Title:       params.Title,
			Description: params.Description,
			TotalRaised: new(big.Int),
			CreatedAt:   now,
		}
		if err := tx.InsertCampaign(c); err != nil {
			return err
		}

		c.Custody = CustodyAddress(l.contract, c.ID)
		if err := tx.UpdateCampaign(c); err != nil {
			return err
		}

		if err := tx.AppendEvent(&Event{
			CampaignID: c.ID,
			Type:       EventCampaignCreated,
			Account:    caller,
			Amount:     new(big.Int).Set(c.Target),
			Timestamp:  now,
		}); err != nil {
			return err
		}

		created = c.Clone()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Pledge 出资，资金从调用者转入托管地址
func (l *Ledger) Pledge(ctx context.Context, id uint64, caller common.Address, amount *big.Int) error {
	now, err := l.now(ctx)
	if err != nil {
		return err
	}

	return l.store.Atomic(ctx, func(tx Tx) error {
		c, err := tx.Campaign(id)
		if err != nil {
			return err
		}
		if now >= c.Deadline {
			return ErrDeadlinePassed
		}
		if amount == nil || amount.Sign() <= 0 {
			return ErrZeroAmount
		}

		balance, err := tx.Contribution(id, caller)
		if err != nil {
			return err
		}
		if err := tx.SetContribution(id, caller, new(big.Int).Add(balance, amount)); err != nil {
			return err
		}

		c.TotalRaised = new(big.Int).Add(c.TotalRaised, amount)
		if err := tx.UpdateCampaign(c); err != nil {
			return err
		}

		if err := l.move(ctx, tx, caller, c.Custody, amount); err != nil {
			return err
		}

		return tx.AppendEvent(&Event{
			CampaignID: id,
			Type:       EventContributionReceived,
			Account:    caller,
			Amount:     new(big.Int).Set(amount),
			Timestamp:  now,
		})
	})
}

// Claim 所有者在众筹成功后一次性提取全部资金
func (l *Ledger) Claim(ctx context.Context, id uint64, caller common.Address) (*big.Int, error) {
	now, err := l.now(ctx)
	if err != nil {
		return nil, err
	}

	var paid *big.Int
	err = l.store.Atomic(ctx, func(tx Tx) error {
		c, err := tx.Campaign(id)
		if err != nil {
			return err
		}
		if caller != c.Owner {
			return ErrNotOwner
		}
		switch c.Status(now) {
		case StatusFunding:
			return ErrFundingStillOpen
		case StatusFailed:
			return ErrTargetNotReached
		}
		if c.Claimed {
			return ErrAlreadyClaimed
		}

		amount := new(big.Int).Set(c.TotalRaised)
		c.Claimed = true
		if err := tx.UpdateCampaign(c); err != nil {
			return err
		}

		if err := l.move(ctx, tx, c.Custody, c.Owner, amount); err != nil {
			return err
		}

		if err := tx.AppendEvent(&Event{
			CampaignID: id,
			Type:       EventFundsWithdrawn,
			Account:    c.Owner,
			Amount:     new(big.Int).Set(amount),
			Timestamp:  now,
		}); err != nil {
			return err
		}

		paid = amount
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paid, nil
}

// Refund 出资人在众筹失败后取回自己的全部出资
func (l *Ledger) Refund(ctx context.Context, id uint64, caller common.Address) (*big.Int, error) {
	now, err := l.now(ctx)
	if err != nil {
		return nil, err
	}

	var refunded *big.Int
	err = l.store.Atomic(ctx, func(tx Tx) error {
		c, err := tx.Campaign(id)
		if err != nil {
			return err
		}
		switch c.Status(now) {
		case StatusFunding:
			return ErrFundingStillOpen
		case StatusSuccessful:
			return ErrCampaignSucceeded
		}

		balance, err := tx.Contribution(id, caller)
		if err != nil {
			return err
		}
		if balance.Sign() <= 0 {
			return ErrNoContribution
		}

		if err := tx.SetContribution(id, caller, new(big.Int)); err != nil {
			return err
		}
		c.TotalRaised = new(big.Int).Sub(c.TotalRaised, balance)
		if err := tx.UpdateCampaign(c); err != nil {
			return err
		}

		if err := l.move(ctx, tx, c.Custody, caller, balance); err != nil {
			return err
		}

		if err := tx.AppendEvent(&Event{
			CampaignID: id,
			Type:       EventRefundIssued,
			Account:    caller,
			Amount:     new(big.Int).Set(balance),
			Timestamp:  now,
		}); err != nil {
			return err
		}

		refunded = balance
		return nil
	})
	if err != nil {
		return nil, err
	}
	return refunded, nil
}

// Status 查询众筹状态，不修改任何数据
func (l *Ledger) Status(ctx context.Context, id uint64) (Status, error) {
	_, status, err := l.Snapshot(ctx, id)
	return status, err
}

// Snapshot 返回众筹快照及同一时刻计算出的状态
func (l *Ledger) Snapshot(ctx context.Context, id uint64) (*Campaign, Status, error) {
	now, err := l.now(ctx)
	if err != nil {
		return nil, "", err
	}

	var c *Campaign
	err = l.store.View(ctx, func(tx Tx) error {
		var err error
		c, err = tx.Campaign(id)
		return err
	})
	if err != nil {
		return nil, "", err
	}
	return c.Clone(), c.Status(now), nil
}

// Contributions 列出众筹的所有出资记录
func (l *Ledger) Contributions(ctx context.Context, id uint64) ([]Contribution, error) {
	var list []Contribution
	err := l.store.View(ctx, func(tx Tx) error {
		if _, err := tx.Campaign(id); err != nil {
			return err
		}
		var err error
		list, err = tx.Contributions(id)
		return err
	})
	return list, err
}

// Contribution 查询单个出资人的累计出资
func (l *Ledger) Contribution(ctx context.Context, id uint64, pledger common.Address) (*big.Int, error) {
	var amount *big.Int
	err := l.store.View(ctx, func(tx Tx) error {
		if _, err := tx.Campaign(id); err != nil {
			return err
		}
		var err error
		amount, err = tx.Contribution(id, pledger)
		return err
	})
	return amount, err
}

func (l *Ledger) now(ctx context.Context) (uint64, error) {
	now, err := l.clock.Now(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read host time: %w", err)
	}
	return now, nil
}

// move 调用宿主转账，失败统一包装为 ErrTransferFailed
func (l *Ledger) move(ctx context.Context, tx Tx, from, to common.Address, amount *big.Int) error {
	if err := l.transfer.Transfer(ctx, tx, from, to, amount); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	return nil
}
