// Package signal is a fine-grained reactive primitive library and the
// default reactive provider for hookscope.
//
// Dependencies are tracked automatically at runtime: reading a Signal while a
// listener (a Memo computation or a Watcher) is active subscribes that
// listener to the signal's changes.
//
//	count := signal.New(0)
//	doubled := signal.NewMemo(func() int { return count.Get() * 2 })
//	count.Set(5)
//	doubled.Get() // 10, recomputed lazily
//
// Watcher re-runs nothing by itself; it reports that something it read has
// changed, which is how a host schedules its next render pass:
//
//	w := signal.NewWatcher(func() { loop.Submit(rerender) })
//	w.Track(func() { view = render() })
//
// # Thread Safety
//
// Values are guarded by mutexes. The tracking context is per-goroutine, so a
// listener only observes reads made on the goroutine that runs it.
package signal
