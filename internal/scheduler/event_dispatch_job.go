package scheduler

import (
	"context"
	"time"

	"github.com/blues/crowdfund/internal/event"
	"github.com/blues/crowdfund/internal/logger"
	"github.com/go-co-op/gocron/v2"
)

// EventDispatchJob 账本事件分发任务
type EventDispatchJob struct {
	dispatcher *event.Dispatcher
	interval   time.Duration
	timeout    time.Duration
}

// NewEventDispatchJob 创建事件分发任务
func NewEventDispatchJob(dispatcher *event.Dispatcher, interval time.Duration) *EventDispatchJob {
	return &EventDispatchJob{
		dispatcher: dispatcher,
		interval:   interval,
		timeout:    interval * 5,
	}
}

// GetName 获取任务名称
func (j *EventDispatchJob) GetName() string {
	return "ledger_event_dispatcher"
}

// GetSchedule 获取调度配置
func (j *EventDispatchJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

// Execute 执行任务
func (j *EventDispatchJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	n, err := j.dispatcher.Run(ctx)
	if err != nil {
		logger.Error("Event dispatch failed: %v", err)
		return
	}
	if n > 0 {
		logger.Info("Event dispatch completed. Processed %d events", n)
	}
}
