package signal

import (
	"sync"
	"sync/atomic"
)

// Memo is a lazily computed derived value. When a dependency changes the
// memo is invalidated and recomputes on the next read.
type Memo[T any] struct {
	base signalBase

	compute func() T

	value   T
	valueMu sync.RWMutex

	// valid is false until the first computation and after invalidation.
	valid atomic.Bool

	sources   []*signalBase
	sourcesMu sync.Mutex

	// computing guards against circular dependencies.
	computing atomic.Bool
}

// NewMemo creates a memo. compute runs on the first Get, not here.
func NewMemo[T any](compute func() T) *Memo[T] {
	return &Memo[T]{
		base:    signalBase{id: nextID()},
		compute: compute,
	}
}

// Get returns the memo's value, recomputing if necessary, and subscribes the
// current listener.
func (m *Memo[T]) Get() T {
	m.base.track()
	return m.Peek()
}

// Peek returns the value without subscribing. It still recomputes an invalid
// memo.
func (m *Memo[T]) Peek() T {
	if !m.valid.Load() {
		m.recompute()
	}
	m.valueMu.RLock()
	defer m.valueMu.RUnlock()
	return m.value
}

// MarkDirty invalidates the memo and propagates to its subscribers. The memo
// also leaves its sources; the next recompute subscribes again, so a memo
// that is never read again holds no subscription.
func (m *Memo[T]) MarkDirty() {
	if m.valid.CompareAndSwap(true, false) {
		m.releaseSources()
		m.base.notifySubscribers()
	}
}

// ID returns the unique identifier for this memo.
func (m *Memo[T]) ID() uint64 {
	return m.base.id
}

func (m *Memo[T]) addSource(source *signalBase) {
	m.sourcesMu.Lock()
	defer m.sourcesMu.Unlock()
	for _, s := range m.sources {
		if s == source {
			return
		}
	}
	m.sources = append(m.sources, source)
}

func (m *Memo[T]) releaseSources() {
	m.sourcesMu.Lock()
	sources := m.sources
	m.sources = nil
	m.sourcesMu.Unlock()

	for _, source := range sources {
		source.unsubscribe(m)
	}
}

func (m *Memo[T]) recompute() {
	if m.computing.Swap(true) {
		return
	}
	defer m.computing.Store(false)

	m.releaseSources()

	var next T
	WithListener(m, func() {
		next = m.compute()
	})

	m.valueMu.Lock()
	m.value = next
	m.valueMu.Unlock()
	m.valid.Store(true)
}

var _ sourceTracker = (*Memo[int])(nil)
