// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"errors"
	"runtime"
	"sync"

	"course-cover-generator/internal/domain"
)

// A very small worker pool that runs submitted tasks with bounded
// concurrency. Tasks report their own results (the orchestrator passes each
// task a result channel), so the pool stays oblivious to outcome types.

type Task func(ctx context.Context)

type Pool struct {
	wg   sync.WaitGroup
	jobs chan Task
	quit chan struct{}
	stop sync.Once
	n    int
}

func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{jobs: make(chan Task, workers*4), quit: make(chan struct{}), n: workers}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func() {
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
					task(ctx)
				}
			}
		}()
	}
}

// Stop is idempotent and waits for in-flight tasks to finish. Tasks still
// queued when the workers exit are never run; callers that need one result
// per task must account for them (see the batch orchestrator).
func (p *Pool) Stop() {
	p.stop.Do(func() { close(p.quit) })
	p.wg.Wait()
}

// Submit blocks until a worker can take the task, the context is done, or
// the pool is stopped. Blocking beats dropping here: every work item must
// produce exactly one outcome.
func (p *Pool) Submit(ctx context.Context, task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	select {
	case p.jobs <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.quit:
		return domain.ErrPoolStopped
	}
}
