// Package swarm is the adaptive worker pool behind every fanout in the
// pipeline: backtesting patterns across corpora and compiling independent
// documents. Work units are pure, so the pool makes no ordering promises;
// callers that need completion track it with their own WaitGroup.
package swarm

import (
	"context"
	"runtime"
	"sync"
	"time"
)

// Task is one unit of pool work.
type Task func(ctx context.Context) error

// pressureLatency marks a task as a sign of host oversubscription.
const pressureLatency = 200 * time.Millisecond

// Engine manages the worker pool and its adaptive concurrency.
type Engine struct {
	aimd     *AIMD
	tasks    chan Task
	wg       sync.WaitGroup
	quit     chan struct{}
	stopOnce sync.Once

	mu        sync.Mutex
	active    int
	completed int64
	failed    int64
}

// Stats is a point-in-time snapshot of pool state.
type Stats struct {
	Active    int
	Limit     int
	Completed int64
	Failed    int64
}

// Option configures an Engine.
type Option func(*Engine)

// WithLimits overrides the AIMD start/min/max worker counts.
func WithLimits(start, min, max int) Option {
	return func(e *Engine) { e.aimd = NewAIMD(start, min, max) }
}

// NewEngine returns a pool sized for the host: starting at the CPU count
// and allowed to grow to four times that when tasks stay fast.
func NewEngine(opts ...Option) *Engine {
	cpus := runtime.NumCPU()
	e := &Engine{
		aimd:  NewAIMD(cpus, 1, 4*cpus),
		tasks: make(chan Task, 1000),
		quit:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start begins the dispatch loop.
func (e *Engine) Start(ctx context.Context) {
	go e.loop(ctx)
}

// Submit queues a task. Blocks only when the queue buffer is full.
func (e *Engine) Submit(t Task) {
	e.tasks <- t
}

// Stop ends dispatch and waits for running workers to finish their current
// task. Queued but unstarted tasks are dropped; callers waiting on their own
// WaitGroup must drain before stopping.
func (e *Engine) Stop() {
	e.stopOnce.Do(func() {
		close(e.quit)
	})
	e.wg.Wait()
}

// Snapshot returns current pool statistics.
func (e *Engine) Snapshot() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Stats{
		Active:    e.active,
		Limit:     e.aimd.Limit(),
		Completed: e.completed,
		Failed:    e.failed,
	}
}

func (e *Engine) loop(ctx context.Context) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-e.quit:
			return
		case <-ticker.C:
			target := e.aimd.Limit()
			if current := e.activeCount(); current < target {
				for i := current; i < target; i++ {
					e.wg.Add(1)
					go e.worker(ctx)
				}
			}
			// Excess workers retire themselves after their next task.
		}
	}
}

func (e *Engine) activeCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

func (e *Engine) worker(ctx context.Context) {
	e.mu.Lock()
	e.active++
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.active--
		e.mu.Unlock()
		e.wg.Done()
	}()

	for {
		if e.activeCount() > e.aimd.Limit() {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-e.quit:
			return
		case task := <-e.tasks:
			start := time.Now()
			err := task(ctx)
			latency := time.Since(start)

			e.aimd.Feedback(latency, latency > pressureLatency)

			e.mu.Lock()
			e.completed++
			if err != nil {
				e.failed++
			}
			e.mu.Unlock()
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
}
