// Package hooks gives stateless, repeatedly invoked render functions
// persistent local state, effects and context, keyed by an opaque host.
//
// A host is any pointer to a non-zero-size value. Establish runs one render
// pass for it:
//
//	host := hooks.NewHost()
//
//	view := hooks.Establish(host, func() string {
//	    count, _ := hooks.UseState(0)
//	    hooks.OnMount(func() { log.Println("mounted") })
//	    return fmt.Sprintf("clicked %d times", count.Get())
//	})
//
// # Slots
//
// Each UseState/UseReducer call consumes the host's next slot. The n-th
// call of every pass maps to the same slot, so hooks must be called in the
// same order on every pass. WithHookOrderCheck turns order drift into a
// panic carrying ErrHookOrder.
//
// # Effects
//
// UseEffect, OnMount and OnCleanup queue records on the host. The queue is
// flushed by a microtask scheduled when the pass returns, never inside the
// pass. Without WithScheduler the runtime keeps its own queue; call
// Runtime.Drain at the next scheduling point. With a loop.Loop the flush runs
// right after the task that rendered.
//
// Cleanups returned by effects are recorded and run, newest first, by
// DisposeHost.
//
// # Context
//
//	var Theme = hooks.CreateContextWithDefault("theme", "light")
//
//	hooks.WithValue(Theme, "dark", func() string {
//	    return Theme.Use() // "dark"
//	})
//
// # Errors
//
// Misuse is a programming error and panics with an error value: calling a
// hook outside Establish (ErrNoActiveRender), constructing a cell with no
// reactive provider (reactive.ErrNoProvider), consuming a context with no
// value and no default (ErrMissingContext). Use Recover to turn such a panic
// into an error.
package hooks
