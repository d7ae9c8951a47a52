package job

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// runTimeout 单次任务执行超时
const runTimeout = 2 * time.Minute

// PriorityRefresher 截止事项优先级重算（由 DeadlineService 实现）
type PriorityRefresher interface {
	RefreshPriorities(ctx context.Context) (int64, error)
}

// Scheduler 后台定时任务
type Scheduler struct {
	cron      *cron.Cron
	deadlines PriorityRefresher
	logger    *zap.Logger
}

// NewScheduler 创建调度器；同一任务上一轮未结束时跳过本轮
func NewScheduler(deadlines PriorityRefresher, logger *zap.Logger) *Scheduler {
	cl := cronLogger{logger.Sugar()}
	return &Scheduler{
		cron:      cron.New(cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)), cron.WithLogger(cl)),
		deadlines: deadlines,
		logger:    logger,
	}
}

// Start 注册任务并启动；deadlineCron 为标准 5 段 cron 表达式
func (s *Scheduler) Start(deadlineCron string) error {
	if _, err := s.cron.AddFunc(deadlineCron, s.RefreshDeadlines); err != nil {
		return fmt.Errorf("注册截止事项刷新任务失败: %w", err)
	}
	s.cron.Start()
	s.logger.Info("定时任务已启动", zap.String("deadline_refresh_cron", deadlineCron))
	return nil
}

// Stop 停止调度并等待运行中的任务结束（最多等到 ctx 超时）
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("等待定时任务结束超时")
	}
}

// RefreshDeadlines 按当前时间重算所有未完成事项的优先级
func (s *Scheduler) RefreshDeadlines() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	start := time.Now()
	n, err := s.deadlines.RefreshPriorities(ctx)
	if err != nil {
		s.logger.Error("刷新截止事项优先级失败", zap.Error(err))
		return
	}
	s.logger.Info("截止事项优先级已刷新",
		zap.Int64("updated", n),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// cronLogger 将 cron 内部日志转到 zap
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
