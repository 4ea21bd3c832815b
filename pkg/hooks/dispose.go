package hooks

// DisposeHost releases host's storage on the default runtime. See
// Runtime.Dispose.
func DisposeHost[H any](host *H) bool {
	return DisposeIn(Default(), host)
}

// DisposeIn runs every cleanup recorded for host, newest first, then drops
// its slots, context stack and pending effects. It reports whether host had
// storage. A later pass on host starts from empty storage.
func DisposeIn[H any](rt *Runtime, host *H) bool {
	if host == nil {
		return false
	}
	return rt.dispose(hostKey("DisposeHost", host))
}

func (rt *Runtime) dispose(key any) bool {
	rt.mu.Lock()
	st, ok := rt.hosts[key]
	if ok {
		delete(rt.hosts, key)
	}
	rt.mu.Unlock()
	if !ok {
		return false
	}

	st.disposed.Store(true)
	st.gcCleanup.Stop()
	st.effects = nil

	cleanups := st.cleanups
	st.cleanups = nil
	defer rt.observer.HostReleased(st.id, ReleaseDisposed)

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
	return true
}
