package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/qs3c/predict_admin_server/internal/pkg/email"
	"github.com/qs3c/predict_admin_server/internal/pkg/queue"
)

// popTimeout 单次阻塞等待时长，超时后重新检查 ctx
const popTimeout = 5 * time.Second

// JobSource 邮件任务来源，*queue.Queue 实现
type JobSource interface {
	Pop(ctx context.Context, timeout time.Duration) (*queue.EmailJob, error)
}

// ResultRecorder 回写发送结果，*service.NotificationService 实现
type ResultRecorder interface {
	MarkEmailResult(ctx context.Context, id string, sendErr error) error
}

// Processor 邮件任务处理器
type Processor struct {
	sender  email.Sender
	results ResultRecorder
	log     *zap.Logger
}

// NewProcessor 创建任务处理器
func NewProcessor(sender email.Sender, results ResultRecorder, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{
		sender:  sender,
		results: results,
		log:     log,
	}
}

// Process 发送一封通知邮件并回写结果。发送失败记录到通知上，不作为处理错误返回
func (p *Processor) Process(ctx context.Context, job *queue.EmailJob) error {
	msg := &email.Message{
		Subject: job.Subject,
		HTML:    email.RenderNotification(job.Subject, job.Message, job.ImageURL),
	}

	sendErr := p.sender.Send(ctx, msg)
	if sendErr != nil {
		p.log.Warn("email send failed",
			zap.String("notification_id", job.NotificationID),
			zap.Error(sendErr),
		)
	} else {
		p.log.Info("email sent",
			zap.String("notification_id", job.NotificationID),
			zap.Duration("queued_for", time.Since(job.EnqueuedAt)),
		)
	}

	if err := p.results.MarkEmailResult(ctx, job.NotificationID, sendErr); err != nil {
		return fmt.Errorf("failed to record email result: %w", err)
	}
	return nil
}

// Run 启动 workers 个消费协程，ctx 取消后全部退出才返回
func (p *Processor) Run(ctx context.Context, source JobSource, workers int) {
	if workers <= 0 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			p.loop(ctx, source, workerID)
		}(i)
	}
	wg.Wait()
}

func (p *Processor) loop(ctx context.Context, source JobSource, workerID int) {
	log := p.log.With(zap.Int("worker", workerID))
	for {
		select {
		case <-ctx.Done():
			log.Info("worker shutting down")
			return
		default:
		}

		job, err := source.Pop(ctx, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error("failed to pop job", zap.Error(err))
			// 避免 Redis 不可用时空转
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		if job == nil {
			continue // 超时，继续等待
		}

		if err := p.Process(ctx, job); err != nil {
			log.Error("job failed", zap.String("notification_id", job.NotificationID), zap.Error(err))
		}
	}
}
