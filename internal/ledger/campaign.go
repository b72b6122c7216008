package ledger

import (
	"encoding/binary"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Status 众筹状态，始终由 (时间, 目标, 已筹金额) 推导，不落库
type Status string

const (
	StatusFunding    Status = "Funding"    // 募集中
	StatusSuccessful Status = "Successful" // 成功
	StatusFailed     Status = "Failed"     // 失败
)

// Config 众筹参数，创建后不可变
type Config struct {
	Owner    common.Address // 成功后可提取资金的账户
	Target   *big.Int       // 目标金额（最小货币单位）
	Deadline uint64         // 截止时间（unix 秒）
}

// Campaign 众筹账本
type Campaign struct {
	ID uint64
	Config

	Title       string
	Description string

	// Custody 托管地址，资金在 claim/refund 之前归合约所有
	Custody     common.Address
	TotalRaised *big.Int
	Claimed     bool
	CreatedAt   uint64
}

// Status 根据当前时间计算状态
func (c *Campaign) Status(now uint64) Status {
	if now < c.Deadline {
		return StatusFunding
	}
	if c.TotalRaised.Cmp(c.Target) >= 0 {
		return StatusSuccessful
	}
	return StatusFailed
}

// Clone 深拷贝，避免调用方修改存储中的金额
func (c *Campaign) Clone() *Campaign {
	cp := *c
	cp.Target = new(big.Int).Set(c.Target)
	cp.TotalRaised = new(big.Int).Set(c.TotalRaised)
	return &cp
}

// Contribution 单个出资人的累计出资
type Contribution struct {
	CampaignID uint64
	Pledger    common.Address
	Amount     *big.Int
}

// CampaignParams 创建众筹的参数
type CampaignParams struct {
	Title       string
	Description string
	Target      *big.Int
	Deadline    uint64
}

// CustodyAddress 派生众筹的托管地址: keccak256(contract ‖ id)[12:]
func CustodyAddress(contract common.Address, id uint64) common.Address {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], id)
	return common.BytesToAddress(crypto.Keccak256(contract.Bytes(), buf[:])[12:])
}
