package loop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/joeycumines/go-eventloop"

	"github.com/vango-dev/hookscope/internal/goid"
)

var (
	// ErrLoopAlreadyRunning is returned when Run is called twice.
	ErrLoopAlreadyRunning = eventloop.ErrLoopAlreadyRunning

	// ErrLoopTerminated is returned by Submit after the loop stopped.
	ErrLoopTerminated = eventloop.ErrLoopTerminated

	// ErrLoopOverloaded is returned by Submit when QueueSize tasks are
	// already waiting.
	ErrLoopOverloaded = errors.New("loop: task queue full")

	// ErrReentrantRun is returned when Run is called from the loop goroutine.
	ErrReentrantRun = eventloop.ErrReentrantRun
)

// DefaultQueueSize bounds the tasks waiting to run.
const DefaultQueueSize = 256

// Loop runs submitted tasks one at a time on a single goroutine and drains
// microtasks after every task. It is backed by an eventloop.Loop; Loop adds
// the waiting-task bound, the per-task microtask budget and slog reporting
// of recovered panics.
type Loop struct {
	ev *eventloop.Loop

	queueSize int
	budget    int
	pending   atomic.Int64

	// ran counts microtasks run since the current task started. Touched only
	// on the loop goroutine.
	ran int

	logger  *slog.Logger
	onPanic func(any)

	running  atomic.Bool
	stopping atomic.Bool
	loopGID  atomic.Uint64
	exitOnce sync.Once
	exited   chan struct{}
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger sets the logger used for recovered panics. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithQueueSize bounds how many submitted tasks may wait to run.
func WithQueueSize(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.queueSize = n
		}
	}
}

// WithMicrotaskBudget bounds how many microtasks run after one task.
// Microtasks past the budget run as a later task.
func WithMicrotaskBudget(n int) Option {
	return func(l *Loop) {
		l.budget = n
	}
}

// WithPanicHandler is called with the recovered value of a panicking task or
// microtask, after it has been logged.
func WithPanicHandler(fn func(any)) Option {
	return func(l *Loop) {
		l.onPanic = fn
	}
}

// New creates a loop. Call Run to start it.
func New(opts ...Option) (*Loop, error) {
	l := &Loop{
		queueSize: DefaultQueueSize,
		budget:    DefaultMicrotaskBudget,
		logger:    slog.Default(),
		exited:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}

	ev, err := eventloop.New(eventloop.WithQueuePressureHandler(func() {
		l.logger.Debug("loop: tasks carried over to the next tick", "pending", l.pending.Load())
	}))
	if err != nil {
		return nil, fmt.Errorf("loop: %w", err)
	}
	l.ev = ev
	return l, nil
}

// Run processes tasks until ctx is cancelled or Stop is called. Stop makes
// Run return nil.
func (l *Loop) Run(ctx context.Context) error {
	if l.isLoopGoroutine() {
		return ErrReentrantRun
	}
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopAlreadyRunning
	}
	l.loopGID.Store(goid.Current())
	defer func() {
		l.loopGID.Store(0)
		l.exitOnce.Do(func() { close(l.exited) })
	}()

	err := l.ev.Run(ctx)
	if l.stopping.Load() && (err == nil || errors.Is(err, ErrLoopTerminated)) {
		return nil
	}
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return ctx.Err()
	}
	return err
}

// Submit queues fn to run on the loop goroutine.
func (l *Loop) Submit(fn func()) error {
	if l.stopping.Load() {
		return ErrLoopTerminated
	}
	if l.pending.Add(1) > int64(l.queueSize) {
		l.pending.Add(-1)
		return ErrLoopOverloaded
	}
	err := l.ev.Submit(func() {
		l.pending.Add(-1)
		l.runTask(fn)
	})
	if err != nil {
		l.pending.Add(-1)
		return err
	}
	return nil
}

// Do submits fn and waits for it and the microtasks it queued to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	err := l.Submit(func() {
		// Queued last, so it runs after fn's own microtasks.
		defer l.QueueMicrotask(func() { close(finished) })
		fn()
	})
	if err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.exited:
		return ErrLoopTerminated
	}
}

// QueueMicrotask schedules fn to run after the current task. It may be
// called from any goroutine; off the loop it runs after the task in
// progress, or wakes an idle loop.
func (l *Loop) QueueMicrotask(fn func()) {
	if fn == nil {
		return
	}
	if err := l.ev.ScheduleMicrotask(func() { l.runMicrotask(fn) }); err != nil {
		l.logger.Warn("loop: microtask dropped", "error", err)
	}
}

// Stop terminates the loop. Waiting tasks are discarded.
func (l *Loop) Stop() {
	if !l.stopping.CompareAndSwap(false, true) {
		return
	}
	if l.isLoopGoroutine() {
		// Close is rejected from inside a callback; Shutdown takes effect once
		// the current task returns.
		_ = l.ev.Shutdown(context.Background())
		return
	}
	if err := l.ev.Close(); err != nil && !errors.Is(err, ErrLoopTerminated) {
		l.logger.Warn("loop: close", "error", err)
	}
}

// Done is closed once the loop has terminated.
func (l *Loop) Done() <-chan struct{} {
	return l.ev.Done()
}

func (l *Loop) runTask(fn func()) {
	l.ran = 0
	l.safeExecute("task", fn)
}

func (l *Loop) runMicrotask(fn func()) {
	if l.budget > 0 && l.ran >= l.budget {
		// Budget spent; come back after any waiting task. Later microtasks
		// of this checkpoint take the same path, so order is kept.
		if err := l.ev.Submit(func() { l.runTask(fn) }); err != nil {
			l.logger.Warn("loop: microtask dropped", "error", err)
		}
		return
	}
	l.ran++
	l.safeExecute("microtask", fn)
}

// safeExecute runs fn, isolating panics so the loop survives.
func (l *Loop) safeExecute(kind string, fn func()) {
	if fn == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			l.reportPanic(kind, r)
		}
	}()
	fn()
}

func (l *Loop) reportPanic(kind string, r any) {
	l.logger.Error("loop: "+kind+" panicked", "panic", fmt.Sprint(r))
	if l.onPanic != nil {
		l.onPanic(r)
	}
}

func (l *Loop) isLoopGoroutine() bool {
	gid := l.loopGID.Load()
	return gid != 0 && gid == goid.Current()
}
