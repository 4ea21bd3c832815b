package hooks

// Cleanup is returned by an effect body and recorded for DisposeHost.
type Cleanup func()

// effectRecord is one queued effect and the cleanup its run produced.
type effectRecord struct {
	run     func() Cleanup
	cleanup Cleanup
}

// UseEffect queues fn to run after the current pass. A non-nil Cleanup
// returned by fn is recorded on the host. Effects of one pass run in call
// order.
func UseEffect(fn func() Cleanup) {
	queueEffect("UseEffect", fn)
}

// OnMount queues fn as an effect with no cleanup.
func OnMount(fn func()) {
	queueEffect("OnMount", func() Cleanup {
		fn()
		return nil
	})
}

// OnCleanup records fn as a cleanup. fn does not run at flush time.
func OnCleanup(fn func()) {
	queueEffect("OnCleanup", func() Cleanup {
		return fn
	})
}

func queueEffect(op string, fn func() Cleanup) {
	sc := mustScope(op)
	sc.track(op, HookEffect)
	st := sc.state()
	st.effects = append(st.effects, &effectRecord{run: fn})
}

// flush runs the host's queued effects in insertion order. The queue is
// emptied before the first run, so effects queued by a render pass started
// from inside an effect wait for that pass's own flush. A panicking effect
// stops the flush; the records after it are dropped.
func (rt *Runtime) flush(st *hostState) {
	if st.disposed.Load() || len(st.effects) == 0 {
		return
	}

	records := st.effects
	st.effects = nil

	info := FlushInfo{HostID: st.id, Queued: len(records)}
	panicking := true
	defer func() {
		if panicking {
			info.Panic = recover()
		}
		rt.observer.EffectsFlushed(info)
		if info.Panic != nil {
			panic(info.Panic)
		}
	}()

	for _, rec := range records {
		info.Ran++
		if c := rec.run(); c != nil {
			rec.cleanup = c
			st.cleanups = append(st.cleanups, c)
		}
	}
	panicking = false
}
