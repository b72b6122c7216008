package scheduler

import (
	"context"
	"time"

	"github.com/blues/crowdfund/internal/logger"
	"github.com/go-co-op/gocron/v2"
)

// SignaturePruner 清理过期签名记录
type SignaturePruner interface {
	PruneSignatures(ctx context.Context, before int64) (int64, error)
}

// SignaturePruneJob 过期签名清理任务
type SignaturePruneJob struct {
	pruner   SignaturePruner
	interval time.Duration
	now      func() time.Time
}

// NewSignaturePruneJob 创建过期签名清理任务
func NewSignaturePruneJob(pruner SignaturePruner, interval time.Duration) *SignaturePruneJob {
	return &SignaturePruneJob{
		pruner:   pruner,
		interval: interval,
		now:      time.Now,
	}
}

// GetName 获取任务名称
func (j *SignaturePruneJob) GetName() string {
	return "used_signature_pruner"
}

// GetSchedule 获取调度配置
func (j *SignaturePruneJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(j.interval)
}

// Execute 执行任务
func (j *SignaturePruneJob) Execute() {
	ctx, cancel := context.WithTimeout(context.Background(), j.interval)
	defer cancel()

	n, err := j.pruner.PruneSignatures(ctx, j.now().Unix())
	if err != nil {
		logger.Error("Signature prune failed: %v", err)
		return
	}
	if n > 0 {
		logger.Info("Signature prune completed. Removed %d signatures", n)
	}
}
