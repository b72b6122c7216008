package event

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/blues/crowdfund/internal/ledger"
	"github.com/blues/crowdfund/internal/logger"
	"github.com/panjf2000/ants/v2"
)

// Dispatcher 事件分发器，把账本提交的事件交给处理器并更新统计
type Dispatcher struct {
	log       Log
	manager   *ProcessorManager
	batchSize int
	workers   int
}

// NewDispatcher 创建事件分发器
func NewDispatcher(log Log, manager *ProcessorManager, batchSize, workers int) *Dispatcher {
	if batchSize <= 0 {
		batchSize = 100
	}
	if workers <= 0 {
		workers = 4
	}
	return &Dispatcher{
		log:       log,
		manager:   manager,
		batchSize: batchSize,
		workers:   workers,
	}
}

// Run 处理一批待处理事件，返回成功处理的事件数
//
// 事件按众筹分组，组间并发、组内按 ID 顺序处理。某个事件失败时
// 该组剩余事件留待下一轮，保证同一众筹的统计按序累加。
func (d *Dispatcher) Run(ctx context.Context) (int, error) {
	events, err := d.log.PendingEvents(ctx, d.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch pending events: %w", err)
	}
	if len(events) == 0 {
		return 0, nil
	}

	groups := groupByCampaign(events)
	logger.Debug("Dispatching %d events in %d campaign groups", len(events), len(groups))

	pool, err := ants.NewPool(min(len(groups), d.workers))
	if err != nil {
		return 0, fmt.Errorf("failed to create pool for %d groups: %w", len(groups), err)
	}
	defer pool.Release()

	var (
		wg        sync.WaitGroup
		processed atomic.Int64
	)
	for campaignID, group := range groups {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			processed.Add(int64(d.processGroup(ctx, group)))
		})
		if err != nil {
			wg.Done()
			logger.Error("Failed to submit events of campaign %d to pool: %v", campaignID, err)
		}
	}
	wg.Wait()

	return int(processed.Load()), nil
}

// processGroup 顺序处理同一众筹的事件
func (d *Dispatcher) processGroup(ctx context.Context, events []ledger.Event) int {
	done := 0
	for _, e := range events {
		if ctx.Err() != nil {
			return done
		}

		delta, err := d.manager.ProcessEvent(e)
		if err != nil {
			logger.Error("Error processing event %d of campaign %d: %v", e.ID, e.CampaignID, err)
			return done
		}
		if err := d.log.ApplyEvent(ctx, e, delta); err != nil {
			logger.Error("Failed to apply event %d of campaign %d: %v", e.ID, e.CampaignID, err)
			return done
		}
		done++
	}
	return done
}

func groupByCampaign(events []ledger.Event) map[uint64][]ledger.Event {
	groups := make(map[uint64][]ledger.Event)
	for _, e := range events {
		groups[e.CampaignID] = append(groups[e.CampaignID], e)
	}
	return groups
}
