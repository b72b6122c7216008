package logic

import (
	"context"
	"math/big"

	"github.com/blues/crowdfund/internal/host"
	"github.com/blues/crowdfund/internal/ledger"
	"github.com/blues/crowdfund/internal/logger"
	"github.com/ethereum/go-ethereum/common"
)

// AccountLogic 宿主账户业务逻辑
type AccountLogic struct {
	store  ledger.Store
	bank   *host.Bank
	serial *Serializer
}

// NewAccountLogic 创建账户业务逻辑
func NewAccountLogic(store ledger.Store, bank *host.Bank, serial *Serializer) *AccountLogic {
	return &AccountLogic{store: store, bank: bank, serial: serial}
}

// GetBalance 获取账户余额
func (a *AccountLogic) GetBalance(ctx context.Context, addr common.Address) (*big.Int, error) {
	var balance *big.Int
	err := a.serial.Do(func() error {
		return a.store.View(ctx, func(tx ledger.Tx) error {
			var err error
			balance, err = tx.Balance(addr)
			return err
		})
	})
	return balance, err
}

// Mint 水龙头发放
func (a *AccountLogic) Mint(ctx context.Context, to common.Address, amount *big.Int) (*big.Int, error) {
	var balance *big.Int
	err := a.serial.Do(func() error {
		return a.store.Atomic(ctx, func(tx ledger.Tx) error {
			if err := a.bank.Mint(tx, to, amount); err != nil {
				return err
			}
			var err error
			balance, err = tx.Balance(to)
			return err
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Minted %s to %s, balance: %s", amount, to.Hex(), balance)
	return balance, nil
}
