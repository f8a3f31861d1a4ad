package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

// A small worker pool that runs submitted tasks; webhook processing rides on
// it so the HTTP handler can acknowledge before the work happens.

type Task func(ctx context.Context) error

type Pool struct {
	wg     sync.WaitGroup
	jobs   chan Task
	quit   chan struct{}
	n      int
	logger zerolog.Logger
}

func NewPool(workers, queueSize int, logger zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if queueSize <= 0 {
		queueSize = workers * 4
	}
	return &Pool{
		jobs:   make(chan Task, queueSize),
		quit:   make(chan struct{}),
		n:      workers,
		logger: logger.With().Str("component", "worker_pool").Logger(),
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-p.quit:
					return
				case task := <-p.jobs:
					if task == nil {
						continue
					}
					if err := task(ctx); err != nil {
						p.logger.Error().Err(err).Int("worker", id).Msg("task failed")
					}
				}
			}
		}(i)
	}
}

func (p *Pool) Stop() {
	close(p.quit)
	p.wg.Wait()
}

var ErrQueueFull = errors.New("worker queue full")

func (p *Pool) Submit(task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	select {
	case p.jobs <- task:
		return nil
	default:
		// drop when saturated to avoid back-pressure
		return ErrQueueFull
	}
}
