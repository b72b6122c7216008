package logic

import (
	"context"
	"fmt"
	"math"

	"github.com/blues/crowdfund/internal/event"
	"github.com/blues/crowdfund/internal/ledger"
)

// EventSource 事件与统计的读取接口，由存储实现
type EventSource interface {
	Events(ctx context.Context, campaignID uint64, offset, limit int) ([]ledger.Event, int64, error)
	Stats(ctx context.Context, campaignID uint64) (*event.Stats, error)
}

// EventLogic 事件业务逻辑
type EventLogic struct {
	source EventSource
	ledger *ledger.Ledger
}

// NewEventLogic 创建事件业务逻辑
func NewEventLogic(source EventSource, l *ledger.Ledger) *EventLogic {
	return &EventLogic{source: source, ledger: l}
}

// GetEvents 分页获取众筹事件
func (e *EventLogic) GetEvents(ctx context.Context, campaignID uint64, page, pageSize int) ([]ledger.Event, int64, error) {
	if _, err := e.ledger.Status(ctx, campaignID); err != nil {
		return nil, 0, err
	}

	events, total, err := e.source.Events(ctx, campaignID, pageOffset(page, pageSize), pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("获取事件列表失败: %w", err)
	}
	return events, total, nil
}

// pageOffset 计算分页偏移，溢出时取 math.MaxInt
func pageOffset(page, pageSize int) int {
	if page < 1 || pageSize < 1 {
		return 0
	}
	if page-1 > math.MaxInt/pageSize {
		return math.MaxInt
	}
	return (page - 1) * pageSize
}

// GetStats 获取众筹统计信息
func (e *EventLogic) GetStats(ctx context.Context, campaignID uint64) (*event.Stats, error) {
	if _, err := e.ledger.Status(ctx, campaignID); err != nil {
		return nil, err
	}

	stats, err := e.source.Stats(ctx, campaignID)
	if err != nil {
		return nil, fmt.Errorf("获取众筹统计信息失败: %w", err)
	}
	return stats, nil
}
