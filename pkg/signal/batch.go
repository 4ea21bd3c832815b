package signal

// Batch groups signal updates so each affected listener is notified once,
// after the outermost batch returns.
//
//	signal.Batch(func() {
//	    first.Set("Ada")
//	    last.Set("Lovelace")
//	})
func Batch(fn func()) {
	incrementBatchDepth()
	defer func() {
		if decrementBatchDepth() {
			processPendingUpdates()
		}
	}()
	fn()
}

// processPendingUpdates deduplicates and notifies all pending listeners.
func processPendingUpdates() {
	updates := drainPendingUpdates()
	if len(updates) == 0 {
		return
	}

	seen := make(map[uint64]bool, len(updates))
	for _, l := range updates {
		id := l.ID()
		if seen[id] {
			continue
		}
		seen[id] = true
		l.MarkDirty()
	}
}

// Untracked runs fn without subscribing the current listener to its reads.
func Untracked(fn func()) {
	WithListener(nil, fn)
}
