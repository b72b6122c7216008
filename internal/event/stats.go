package event

import (
	"context"
	"math/big"

	"github.com/blues/crowdfund/internal/ledger"
)

// Stats 众筹统计读模型，由事件驱动更新，账本从不读取
type Stats struct {
	CampaignID    uint64   `json:"campaignId"`
	Contributions int64    `json:"contributions"`
	Refunds       int64    `json:"refunds"`
	Pledged       *big.Int `json:"pledged"`
	Refunded      *big.Int `json:"refunded"`
	Withdrawn     *big.Int `json:"withdrawn"`
	LastEventID   uint64   `json:"lastEventId"`
}

// NewStats 创建空统计
func NewStats(campaignID uint64) *Stats {
	return &Stats{
		CampaignID: campaignID,
		Pledged:    new(big.Int),
		Refunded:   new(big.Int),
		Withdrawn:  new(big.Int),
	}
}

// StatsDelta 单个事件对统计的增量
type StatsDelta struct {
	Contributions int64
	Refunds       int64
	Pledged       *big.Int
	Refunded      *big.Int
	Withdrawn     *big.Int
}

// Apply 累加增量
func (s *Stats) Apply(eventID uint64, d StatsDelta) {
	s.Contributions += d.Contributions
	s.Refunds += d.Refunds
	if d.Pledged != nil {
		s.Pledged = new(big.Int).Add(s.Pledged, d.Pledged)
	}
	if d.Refunded != nil {
		s.Refunded = new(big.Int).Add(s.Refunded, d.Refunded)
	}
	if d.Withdrawn != nil {
		s.Withdrawn = new(big.Int).Add(s.Withdrawn, d.Withdrawn)
	}
	if eventID > s.LastEventID {
		s.LastEventID = eventID
	}
}

// Log 事件日志存储
type Log interface {
	// PendingEvents 按 ID 升序返回未处理事件
	PendingEvents(ctx context.Context, limit int) ([]ledger.Event, error)
	// ApplyEvent 原子地累加统计并标记事件已处理，已处理的事件直接忽略
	ApplyEvent(ctx context.Context, e ledger.Event, delta StatsDelta) error
	// Stats 没有统计时返回空统计
	Stats(ctx context.Context, campaignID uint64) (*Stats, error)
}
