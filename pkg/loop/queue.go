package loop

import (
	"log/slog"
	"sync"
)

// DefaultMicrotaskBudget bounds one Drain. Microtasks queued past the budget
// stay queued for the next Drain.
const DefaultMicrotaskBudget = 1024

// Queue is a FIFO of microtasks drained explicitly by its owner.
// It is safe to enqueue from any goroutine.
type Queue struct {
	mu    sync.Mutex
	tasks []func()

	budget int
	logger *slog.Logger
}

// NewQueue creates a queue with the default budget.
func NewQueue() *Queue {
	return &Queue{budget: DefaultMicrotaskBudget}
}

// QueueMicrotask appends fn.
func (q *Queue) QueueMicrotask(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()
}

// Len returns the number of queued microtasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Drain runs queued microtasks in FIFO order, including ones queued while
// draining, until the queue is empty or the budget is spent. It returns the
// number run. A panicking microtask propagates to the caller; it has already
// been removed and the rest stay queued.
func (q *Queue) Drain() int {
	budget := q.budget
	if budget <= 0 {
		budget = DefaultMicrotaskBudget
	}

	ran := 0
	for ran < budget {
		fn, ok := q.pop()
		if !ok {
			return ran
		}
		ran++
		fn()
	}

	if n := q.Len(); n > 0 && q.logger != nil {
		q.logger.Warn("microtask budget exhausted", "ran", ran, "remaining", n)
	}
	return ran
}

func (q *Queue) pop() (func(), bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.tasks) == 0 {
		return nil, false
	}
	fn := q.tasks[0]
	q.tasks[0] = nil
	q.tasks = q.tasks[1:]
	return fn, true
}
