package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chronoflow/chronoflow/internal/logger"
)

// WorkerPool runs Tasks on a fixed number of goroutines. Submit blocks
// once the queue is full, which is the pool's only form of backpressure
// (spec: "block the dispatcher briefly" rather than drop).
type WorkerPool struct {
	taskQueue chan Task
	workers   int
	handler   Handler
	wg        sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
	logger    *logger.Logger

	mu      sync.Mutex
	metrics PoolMetrics
}

// NewPool creates a pool of workers goroutines with the given queue depth.
// handler is invoked once per submitted Task.
func NewPool(workers, bufferSize int, log *logger.Logger, handler Handler) *WorkerPool {
	if workers <= 0 {
		workers = DefaultPoolSize
	}
	if bufferSize <= 0 {
		bufferSize = DefaultQueueSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &WorkerPool{
		taskQueue: make(chan Task, bufferSize),
		workers:   workers,
		handler:   handler,
		ctx:       ctx,
		cancel:    cancel,
		logger:    log,
	}
}

// Start launches the worker goroutines.
func (p *WorkerPool) Start() {
	p.logger.Info("starting worker pool",
		logger.Field{Key: "workers", Value: p.workers},
		logger.Field{Key: "buffer_size", Value: cap(p.taskQueue)})

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case task := <-p.taskQueue:
			p.runTask(id, task)
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *WorkerPool) runTask(workerID int, task Task) {
	start := time.Now()

	execCtx := p.ctx
	if task.Context != nil {
		execCtx = task.Context
	}

	err := p.runWithRecover(execCtx, task)
	duration := time.Since(start)

	p.mu.Lock()
	if err != nil {
		p.metrics.TasksFailed++
	} else {
		p.metrics.TasksCompleted++
	}
	p.metrics.TotalDuration += duration
	p.mu.Unlock()

	if err != nil {
		p.logger.ErrorCtx(p.ctx, "job execution task failed", err,
			logger.Field{Key: "worker_id", Value: workerID},
			logger.Field{Key: "job_id", Value: task.JobID})
	}
}

// runWithRecover isolates a single task's panic so it cannot kill the
// worker goroutine and silently shrink the pool.
func (p *WorkerPool) runWithRecover(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during job execution: %v", r)
		}
	}()
	return p.handler(ctx, task)
}

// Submit enqueues task, blocking if the queue is full.
func (p *WorkerPool) Submit(task Task) {
	p.mu.Lock()
	p.metrics.TasksSubmitted++
	p.mu.Unlock()

	p.taskQueue <- task
}

// Metrics returns a snapshot of the pool's counters.
func (p *WorkerPool) Metrics() PoolMetrics {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.metrics
}

// Stop signals all workers and waits for in-flight tasks to finish.
func (p *WorkerPool) Stop() {
	p.cancel()
	p.wg.Wait()

	m := p.Metrics()
	p.logger.Info("worker pool stopped",
		logger.Field{Key: "tasks_submitted", Value: m.TasksSubmitted},
		logger.Field{Key: "tasks_completed", Value: m.TasksCompleted},
		logger.Field{Key: "tasks_failed", Value: m.TasksFailed})
}
