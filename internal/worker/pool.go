// Package worker provides background processing for analysis runs.
package worker

import (
	"context"
	"errors"
	"log"
	"sync"
)

var ErrQueueFull = errors.New("worker: queue full")

// Runner executes queued runs. services.Orchestrator satisfies it.
type Runner interface {
	Execute(ctx context.Context, runID string) error
	MarkFailed(ctx context.Context, runID string, reason string) error
}

// Job represents one queued analysis run.
type Job struct {
	RunID string
}

// Pool manages background workers for async jobs.
type Pool struct {
	runner Runner
	jobs   chan Job
	wg     sync.WaitGroup
}

// NewPool creates a worker pool with the given queue size.
func NewPool(runner Runner, queueSize int) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{runner: runner, jobs: make(chan Job, queueSize)}
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
			for job := range p.jobs {
				p.processJob(job)
			}
		}()
	}
}

// Stop waits for workers to drain the queue after closing it.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
}

// Submit queues a job without blocking. A job that does not fit is
// dropped and its run marked failed.
func (p *Pool) Submit(job Job) error {
	select {
	case p.jobs <- job:
		return nil
	default:
	}
	log.Printf("WARN worker: dropping run %s", job.RunID)
	if err := p.runner.MarkFailed(context.Background(), job.RunID, ErrQueueFull.Error()); err != nil {
		log.Printf("WARN worker: failed to mark run %s failed: %v", job.RunID, err)
	}
	return ErrQueueFull
}

func (p *Pool) processJob(job Job) {
	if err := p.runner.Execute(context.Background(), job.RunID); err != nil {
		log.Printf("WARN worker: run %s failed: %v", job.RunID, err)
		return
	}
	log.Printf("Processed run %s", job.RunID)
}
