package hooks

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/vango-dev/hookscope/pkg/loop"
	"github.com/vango-dev/hookscope/pkg/reactive"
)

// Scheduler runs a function after the current synchronous work completes.
// loop.Queue and loop.Loop implement it.
type Scheduler interface {
	QueueMicrotask(fn func())
}

// Runtime owns per-host storage and the collaborators used to build cells
// and schedule effect flushes.
type Runtime struct {
	provider   reactive.Provider
	scheduler  Scheduler
	queue      *loop.Queue
	observer   Observer
	checkOrder bool

	mu    sync.Mutex
	hosts map[any]*hostState
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithProvider sets the reactive provider for this runtime. Without it the
// process-wide provider from reactive.Register is used.
func WithProvider(p reactive.Provider) Option {
	return func(rt *Runtime) {
		rt.provider = p
	}
}

// WithScheduler sets where effect flushes are queued. Without it the runtime
// queues them on its own microtask queue drained by Drain.
func WithScheduler(s Scheduler) Option {
	return func(rt *Runtime) {
		rt.scheduler = s
	}
}

// WithObserver adds an observer. Observers are called in the order added.
func WithObserver(o Observer) Option {
	return func(rt *Runtime) {
		if o == nil {
			return
		}
		if _, nop := rt.observer.(NopObserver); nop || rt.observer == nil {
			rt.observer = o
			return
		}
		rt.observer = MultiObserver{rt.observer, o}
	}
}

// WithLogger logs host lifecycle, render passes and flushes at debug level.
func WithLogger(logger *slog.Logger) Option {
	return WithObserver(NewLogObserver(logger))
}

// WithHookOrderCheck enables hook order validation.
func WithHookOrderCheck(enabled bool) Option {
	return func(rt *Runtime) {
		rt.checkOrder = enabled
	}
}

// NewRuntime creates a runtime.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		queue:    loop.NewQueue(),
		observer: NopObserver{},
		hosts:    make(map[any]*hostState),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

var defaultRuntime atomic.Pointer[Runtime]

// Default returns the process-wide runtime used by Establish and the other
// package-level entry points.
func Default() *Runtime {
	if rt := defaultRuntime.Load(); rt != nil {
		return rt
	}
	defaultRuntime.CompareAndSwap(nil, NewRuntime())
	return defaultRuntime.Load()
}

// SetDefault replaces the process-wide runtime.
func SetDefault(rt *Runtime) {
	defaultRuntime.Store(rt)
}

// Drain runs effect flushes queued on the runtime's own queue and returns
// how many ran. It does nothing when a Scheduler was configured.
func (rt *Runtime) Drain() int {
	return rt.queue.Drain()
}

// Stats is a snapshot of runtime storage.
type Stats struct {
	// Hosts is the number of hosts with live storage.
	Hosts int
}

// Stats returns a snapshot of runtime storage.
func (rt *Runtime) Stats() Stats {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return Stats{Hosts: len(rt.hosts)}
}

func (rt *Runtime) resolveProvider(op string) reactive.Provider {
	p, err := reactive.Resolve(rt.provider)
	if err != nil {
		panic(newError("H002", op, reactive.ErrNoProvider))
	}
	return p
}

func (rt *Runtime) schedule(fn func()) {
	if rt.scheduler != nil {
		rt.scheduler.QueueMicrotask(fn)
		return
	}
	rt.queue.QueueMicrotask(fn)
}

func (rt *Runtime) lookup(key any) *hostState {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.hosts[key]
}

// attach creates storage for host. The GC cleanup drops it once the host is
// unreachable.
func attach[H any](rt *Runtime, key any, host *H) *hostState {
	st := &hostState{id: nextID(), key: key}

	rt.mu.Lock()
	rt.hosts[key] = st
	rt.mu.Unlock()

	st.gcCleanup = runtime.AddCleanup(host, rt.collect, key)
	rt.observer.HostCreated(st.id)
	return st
}

func (rt *Runtime) collect(key any) {
	rt.mu.Lock()
	st, ok := rt.hosts[key]
	if ok {
		delete(rt.hosts, key)
	}
	rt.mu.Unlock()

	if ok {
		st.disposed.Store(true)
		rt.observer.HostReleased(st.id, ReleaseCollected)
	}
}
