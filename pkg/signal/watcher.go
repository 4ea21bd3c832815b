package signal

import (
	"sync"
	"sync/atomic"
)

// Watcher observes the signals read inside Track and calls onDirty once when
// any of them changes. A further notification requires another Track.
type Watcher struct {
	id      uint64
	onDirty func()

	sources   []*signalBase
	sourcesMu sync.Mutex

	dirty   atomic.Bool
	stopped atomic.Bool
}

// NewWatcher creates a watcher that calls onDirty on invalidation.
func NewWatcher(onDirty func()) *Watcher {
	return &Watcher{id: nextID(), onDirty: onDirty}
}

// Track runs fn with the watcher as the current listener, replacing the
// previously tracked set of sources.
func (w *Watcher) Track(fn func()) {
	w.unsubscribeAll()
	w.dirty.Store(false)
	WithListener(w, fn)
}

// MarkDirty implements Listener.
func (w *Watcher) MarkDirty() {
	if w.stopped.Load() {
		return
	}
	if w.dirty.CompareAndSwap(false, true) && w.onDirty != nil {
		w.onDirty()
	}
}

// ID implements Listener.
func (w *Watcher) ID() uint64 {
	return w.id
}

// Dirty reports whether a tracked source changed since the last Track.
func (w *Watcher) Dirty() bool {
	return w.dirty.Load()
}

// Stop unsubscribes from every source. A stopped watcher never fires.
func (w *Watcher) Stop() {
	w.stopped.Store(true)
	w.unsubscribeAll()
}

func (w *Watcher) addSource(source *signalBase) {
	w.sourcesMu.Lock()
	defer w.sourcesMu.Unlock()
	for _, s := range w.sources {
		if s == source {
			return
		}
	}
	w.sources = append(w.sources, source)
}

func (w *Watcher) unsubscribeAll() {
	w.sourcesMu.Lock()
	sources := w.sources
	w.sources = nil
	w.sourcesMu.Unlock()

	for _, s := range sources {
		s.unsubscribe(w)
	}
}

var _ sourceTracker = (*Watcher)(nil)
