package cron

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobFunc 定时任务
type JobFunc func(ctx context.Context) error

type dailyJob struct {
	name   string
	hour   int
	minute int
	run    JobFunc
}

// Scheduler 每日固定时刻（UTC）执行任务
type Scheduler struct {
	jobs     []*dailyJob
	log      *zap.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
}

func NewScheduler(log *zap.Logger) *Scheduler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		log:      log,
		stopChan: make(chan struct{}),
	}
}

// AddDaily 注册任务，at 为 HH:MM
func (s *Scheduler) AddDaily(name, at string, run JobFunc) error {
	hour, minute, err := ParseClock(at)
	if err != nil {
		return fmt.Errorf("job %s: %w", name, err)
	}
	s.jobs = append(s.jobs, &dailyJob{name: name, hour: hour, minute: minute, run: run})
	return nil
}

// Start 启动所有任务
func (s *Scheduler) Start(ctx context.Context) {
	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(ctx, job)
	}
	s.log.Info("scheduler started", zap.Int("jobs", len(s.jobs)))
}

// Stop 停止并等待正在执行的任务结束
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
	s.log.Info("scheduler stopped")
}

// RunNow 立即执行指定任务（手动触发）
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.name == name {
			return job.run(ctx)
		}
	}
	return fmt.Errorf("unknown job: %s", name)
}

func (s *Scheduler) loop(ctx context.Context, job *dailyJob) {
	defer s.wg.Done()

	for {
		now := time.Now().UTC()
		next := NextRun(now, job.hour, job.minute)
		timer := time.NewTimer(next.Sub(now))
		s.log.Info("job scheduled", zap.String("job", job.name), zap.Time("next_run", next))

		select {
		case <-s.stopChan:
			timer.Stop()
			return
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			start := time.Now()
			if err := job.run(ctx); err != nil {
				s.log.Error("job failed", zap.String("job", job.name), zap.Error(err))
			} else {
				s.log.Info("job finished", zap.String("job", job.name), zap.Duration("elapsed", time.Since(start)))
			}
		}
	}
}

// NextRun 返回严格晚于 now 的下一个 hour:minute（UTC）
func NextRun(now time.Time, hour, minute int) time.Time {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// ParseClock 解析 HH:MM
func ParseClock(s string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q, want HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}
