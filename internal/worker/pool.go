// Package worker provides a fixed-size pool for scoring and other CPU-bound
// tasks submitted by the engine.
package worker

import (
	"sync"

	"github.com/rs/zerolog"
)

// Task is a unit of work executed by the pool.
type Task func()

// Pool manages a set of workers draining a buffered task queue.
type Pool struct {
	tasks  chan Task
	wg     sync.WaitGroup
	logger zerolog.Logger
}

// NewPool creates a pool with the given queue size.
func NewPool(queueSize int, logger zerolog.Logger) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{
		tasks:  make(chan Task, queueSize),
		logger: logger.With().Str("component", "worker").Logger(),
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for task := range p.tasks {
				task()
			}
		}()
	}
}

// Stop waits for workers to finish after closing the queue.
func (p *Pool) Stop() {
	close(p.tasks)
	p.wg.Wait()
}

// Run queues a task, blocking until the queue accepts it. Used for work
// whose results are awaited, where dropping is not an option.
func (p *Pool) Run(task Task) {
	p.tasks <- task
}

// TrySubmit queues a task without blocking and reports whether it was
// accepted. Dropped tasks are logged.
func (p *Pool) TrySubmit(task Task) bool {
	select {
	case p.tasks <- task:
		return true
	default:
		p.logger.Warn().Msg("dropping task: queue full")
		return false
	}
}
