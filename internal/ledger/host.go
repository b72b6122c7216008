package ledger

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Clock 宿主时间源，账本从不自行读取墙上时钟
type Clock interface {
	Now(ctx context.Context) (uint64, error)
}

// AccountBook 宿主账户余额
type AccountBook interface {
	Balance(addr common.Address) (*big.Int, error)
	SetBalance(addr common.Address, amount *big.Int) error
}

// Transferor 宿主转账原语，在调用方的存储事务内执行，失败即整笔回滚
type Transferor interface {
	Transfer(ctx context.Context, book AccountBook, from, to common.Address, amount *big.Int) error
}

// Tx 存储事务视图，按众筹ID和出资人地址读写
type Tx interface {
	AccountBook

	// InsertCampaign 写入新众筹并回填 ID
	InsertCampaign(c *Campaign) error
	// Campaign 不存在时返回 ErrCampaignNotFound
	Campaign(id uint64) (*Campaign, error)
	UpdateCampaign(c *Campaign) error

	// Contribution 未出资返回 0
	Contribution(id uint64, pledger common.Address) (*big.Int, error)
	SetContribution(id uint64, pledger common.Address, amount *big.Int) error
	Contributions(id uint64) ([]Contribution, error)

	AppendEvent(e *Event) error
}

// Store 持久化存储
type Store interface {
	// Atomic fn 返回错误时，所有写入都不生效
	Atomic(ctx context.Context, fn func(tx Tx) error) error
	// View 只读访问
	View(ctx context.Context, fn func(tx Tx) error) error
}
