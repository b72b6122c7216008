package host

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/blues/crowdfund/internal/ledger"
	"github.com/ethereum/go-ethereum/common"
)

var (
	ErrInvalidAmount       = errors.New("invalid transfer amount")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrTransferRejected    = errors.New("receiver rejected transfer")
)

// Bank 宿主转账原语，余额保存在存储的账户表中
type Bank struct {
	rejecting map[common.Address]struct{}
}

// NewBank 创建转账原语，rejecting 中的地址拒收任何转入
func NewBank(rejecting []common.Address) *Bank {
	b := &Bank{rejecting: make(map[common.Address]struct{}, len(rejecting))}
	for _, addr := range rejecting {
		b.rejecting[addr] = struct{}{}
	}
	return b
}

// Transfer 实现 ledger.Transferor
func (b *Bank) Transfer(_ context.Context, book ledger.AccountBook, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	if _, ok := b.rejecting[to]; ok {
		return fmt.Errorf("%w: %s", ErrTransferRejected, to.Hex())
	}

	fromBalance, err := book.Balance(from)
	if err != nil {
		return fmt.Errorf("failed to read balance of %s: %w", from.Hex(), err)
	}
	if fromBalance.Cmp(amount) < 0 {
		return fmt.Errorf("%w: %s has %s, needs %s", ErrInsufficientBalance, from.Hex(), fromBalance, amount)
	}
	if from == to {
		return nil
	}

	if err := book.SetBalance(from, new(big.Int).Sub(fromBalance, amount)); err != nil {
		return fmt.Errorf("failed to debit %s: %w", from.Hex(), err)
	}
	toBalance, err := book.Balance(to)
	if err != nil {
		return fmt.Errorf("failed to read balance of %s: %w", to.Hex(), err)
	}
	if err := book.SetBalance(to, new(big.Int).Add(toBalance, amount)); err != nil {
		return fmt.Errorf("failed to credit %s: %w", to.Hex(), err)
	}
	return nil
}

// Mint 水龙头，直接给账户增加余额
func (b *Bank) Mint(book ledger.AccountBook, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	balance, err := book.Balance(to)
	if err != nil {
		return fmt.Errorf("failed to read balance of %s: %w", to.Hex(), err)
	}
	return book.SetBalance(to, new(big.Int).Add(balance, amount))
}
