package hooks

import (
	"sync"
	"time"

	"github.com/vango-dev/hookscope/internal/goid"
)

// scope is the current-host record for one in-progress render pass.
type scope struct {
	rt     *Runtime
	key    any
	st     *hostState
	create func() *hostState
	parent *scope
}

// state returns the host's storage, creating it on first use.
func (sc *scope) state() *hostState {
	if sc.st == nil {
		sc.st = sc.create()
		sc.st.beginPass()
	}
	return sc.st
}

// currentScopes holds the current scope per goroutine. Each goroutine that
// renders has its own current host, saved and restored around every pass.
var currentScopes sync.Map

func currentScope() *scope {
	if sc, ok := currentScopes.Load(goid.Current()); ok {
		return sc.(*scope)
	}
	return nil
}

func setCurrentScope(sc *scope) {
	gid := goid.Current()
	if sc == nil {
		currentScopes.Delete(gid)
		return
	}
	currentScopes.Store(gid, sc)
}

// mustScope returns the current scope or panics with ErrNoActiveRender.
func mustScope(op string) *scope {
	sc := currentScope()
	if sc == nil {
		panic(newError("H001", op, ErrNoActiveRender))
	}
	return sc
}

// Active reports whether a render pass is in progress on this goroutine.
func Active() bool {
	return currentScope() != nil
}

// Establish runs render as one render pass for host on the default runtime
// and returns its result. A nil host gets a fresh identity.
func Establish[H any, R any](host *H, render func() R) R {
	return EstablishIn(Default(), host, render)
}

// Run renders on a fresh host.
func Run[R any](render func() R) R {
	return EstablishIn(Default(), NewHost(), render)
}

// EstablishIn runs render as one render pass for host on rt.
//
// The host becomes current for the duration of the call. Unless host is
// already the current host, its slot cursor and context stack are reset
// first. The host must point at a value of non-zero size; a zero-size host
// panics with H007. When render returns, one effect flush is scheduled; it never runs
// before EstablishIn returns. The previous host is restored even if render
// panics, and a panicking pass schedules no flush.
func EstablishIn[H any, R any](rt *Runtime, host *H, render func() R) R {
	if host == nil {
		return EstablishIn(rt, NewHost(), render)
	}

	key := hostKey("Establish", host)
	prev := currentScope()

	if prev != nil && prev.rt == rt && prev.key == key {
		return enter(prev, prev, true, render)
	}

	for s := prev; s != nil; s = s.parent {
		if s.rt == rt && s.key == key {
			panic(newError("H006", "Establish", ErrReentrantRender))
		}
	}

	st := rt.lookup(key)
	if st != nil {
		st.beginPass()
	}
	sc := &scope{
		rt:     rt,
		key:    key,
		st:     st,
		create: func() *hostState { return attach(rt, key, host) },
		parent: prev,
	}
	return enter(sc, prev, false, render)
}

// enter makes sc current, runs render, and restores prev.
func enter[R any](sc, prev *scope, nested bool, render func() R) R {
	rt := sc.rt
	finish := rt.observer.RenderStarted(nested)
	start := time.Now()

	var recovered any
	panicking := true
	defer func() {
		setCurrentScope(prev)
		if panicking {
			recovered = recover()
		}
		info := RenderInfo{Nested: nested, Duration: time.Since(start), Panic: recovered}
		if sc.st != nil {
			info.HostID = sc.st.id
			info.Slots = len(sc.st.slots)
			info.Effects = len(sc.st.effects)
		}
		finish(info)
		// recovered is nil only when render called runtime.Goexit.
		if panicking && recovered != nil {
			panic(recovered)
		}
	}()

	setCurrentScope(sc)
	result := render()

	if !nested && sc.st != nil && rt.checkOrder {
		sc.st.endPass()
	}

	st := sc.st
	rt.schedule(func() {
		if st != nil {
			rt.flush(st)
		}
	})

	panicking = false
	return result
}
