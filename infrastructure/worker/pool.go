package worker

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
	"reelshare/infrastructure/logger"
)

var ErrQueueFull = errors.New("worker queue is full")

// Pool runs submitted tasks on a fixed number of goroutines. Submit never blocks.
type Pool struct {
	tasks       chan func(ctx context.Context)
	concurrency int
	taskTimeout time.Duration
}

func NewPool(queueSize, concurrency int, taskTimeout time.Duration) *Pool {
	if queueSize <= 0 {
		queueSize = 256
	}
	if concurrency <= 0 {
		concurrency = 4
	}
	if taskTimeout <= 0 {
		taskTimeout = 2 * time.Minute
	}
	return &Pool{
		tasks:       make(chan func(ctx context.Context), queueSize),
		concurrency: concurrency,
		taskTimeout: taskTimeout,
	}
}

func (p *Pool) Submit(task func(ctx context.Context)) error {
	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pending is the number of queued tasks not yet picked up.
func (p *Pool) Pending() int {
	return len(p.tasks)
}

// Run drains the queue until ctx is done. A task already started is allowed
// to finish within its own timeout even after ctx is cancelled.
func (p *Pool) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < p.concurrency; i++ {
		g.Go(func() error {
			for {
				select {
				case <-gctx.Done():
					return nil
				case task := <-p.tasks:
					p.run(gctx, task)
				}
			}
		})
	}
	logger.GetLogger().WithField("concurrency", p.concurrency).Info("Worker pool started")
	return g.Wait()
}

func (p *Pool) run(ctx context.Context, task func(ctx context.Context)) {
	taskCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.taskTimeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			logger.GetLogger().WithField("panic", r).Error("Worker task panicked")
		}
	}()
	task(taskCtx)
}

// Inline runs each task synchronously on the caller's goroutine.
type Inline struct{}

func (Inline) Submit(task func(ctx context.Context)) error {
	task(context.Background())
	return nil
}
