package swarm

import (
	"sync"
	"time"
)

// AIMD adjusts pool concurrency the way TCP adjusts its window: additive
// growth while tasks complete quickly, multiplicative backoff when a task
// reports pressure. For CPU-bound rule evaluation, pressure means tasks
// running long because the host is oversubscribed.
type AIMD struct {
	mu         sync.Mutex
	limit      int
	min        int
	max        int
	lastChange time.Time
}

// healthyLatency is the per-task duration under which the pool is allowed
// to grow.
const healthyLatency = 100 * time.Millisecond

// dampingWindow suppresses limit oscillation between adjustments.
const dampingWindow = 100 * time.Millisecond

func NewAIMD(start, min, max int) *AIMD {
	return &AIMD{
		limit:      start,
		min:        min,
		max:        max,
		lastChange: time.Now(),
	}
}

// Limit returns the current concurrency target.
func (a *AIMD) Limit() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.limit
}

// Feedback reports one finished task. A pressured task halves the limit;
// fast tasks grow it one worker at a time.
func (a *AIMD) Feedback(latency time.Duration, pressure bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := time.Now()
	if now.Sub(a.lastChange) < dampingWindow {
		return
	}

	if pressure {
		a.limit /= 2
		if a.limit < a.min {
			a.limit = a.min
		}
		a.lastChange = now
		return
	}

	if latency < healthyLatency {
		a.limit++
		if a.limit > a.max {
			a.limit = a.max
		}
		a.lastChange = now
	}
}
