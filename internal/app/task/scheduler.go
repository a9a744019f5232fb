/*
 * @Description: 定时任务调度器，同时提供一次性任务的后台派发
 * @Author: yzcheng90
 * @Date: 2025-11-18 16:09:46
 * @LastEditTime: 2025-11-22 18:20:00
 * @LastEditors: yzcheng90
 */
package task

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/robfig/cron/v3"
)

const dispatchQueueSize = 16

// Scheduler 封装了 cron 实例和一个单 worker 的派发队列。
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	refresher PhotoRefresher
	queue     chan Job
	wg        sync.WaitGroup
	stopOnce  sync.Once
}

// NewScheduler 是 Scheduler 的构造函数。
func NewScheduler(refresher PhotoRefresher) *Scheduler {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With("system", "cron")
	return newScheduler(refresher, logger)
}

func newScheduler(refresher PhotoRefresher, logger *slog.Logger) *Scheduler {
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(
			NewPanicRecoveryWrapper(logger),
			NewLoggingWrapper(logger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		),
	)
	s := &Scheduler{
		cron:      c,
		logger:    logger,
		refresher: refresher,
		queue:     make(chan Job, dispatchQueueSize),
	}
	s.wg.Add(1)
	go s.work()
	return s
}

// RegisterJobs 注册照片列表刷新任务，spec 为空时不注册
func (s *Scheduler) RegisterJobs(relistSpec string) error {
	if relistSpec == "" {
		s.logger.Info("Photo relist job disabled")
		return nil
	}
	if _, err := s.cron.AddJob(relistSpec, NewPhotoRelistJob(s.refresher)); err != nil {
		s.logger.Error("Failed to add 'PhotoRelistJob'", slog.Any("error", err))
		return fmt.Errorf("注册照片列表刷新任务失败: %w", err)
	}
	s.logger.Info("-> Successfully registered 'PhotoRelistJob'", "schedule", relistSpec)
	return nil
}

// DispatchRelist 立即在后台刷新一次照片列表，队列已满时丢弃
func (s *Scheduler) DispatchRelist() bool {
	return s.Dispatch(NewPhotoRelistJob(s.refresher))
}

// Dispatch 派发一次性任务，经过与定时任务相同的装饰器
func (s *Scheduler) Dispatch(job Job) (queued bool) {
	defer func() {
		// Stop 之后队列已关闭
		if recover() != nil {
			queued = false
		}
	}()
	select {
	case s.queue <- job:
		return true
	default:
		s.logger.Warn("Dispatch queue is full, dropping job", "job_name", job.Name())
		return false
	}
}

func (s *Scheduler) work() {
	defer s.wg.Done()
	wrapped := cron.NewChain(NewPanicRecoveryWrapper(s.logger), NewLoggingWrapper(s.logger))
	for job := range s.queue {
		wrapped.Then(job).Run()
	}
}

// Start 启动 cron 调度器。
func (s *Scheduler) Start() {
	s.logger.Info("Cron scheduler started.")
	s.cron.Start()
}

// Stop 等待正在运行的定时任务和已派发的任务结束。
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping cron scheduler...")
		<-s.cron.Stop().Done()
		close(s.queue)
		s.wg.Wait()
		s.logger.Info("Cron scheduler gracefully stopped.")
	})
}
