package hooks

import (
	"errors"

	hserrors "github.com/vango-dev/hookscope/internal/errors"
)

var (
	// ErrNoActiveRender: a hook ran while no host was current.
	ErrNoActiveRender = errors.New("hooks: no active render")

	// ErrMissingContext: a context had no provided value and no default.
	ErrMissingContext = errors.New("hooks: missing context")

	// ErrInvariant: per-host bookkeeping was inconsistent.
	ErrInvariant = errors.New("hooks: invariant violated")

	// ErrHookOrder: hooks ran in a different order than on the first pass.
	ErrHookOrder = errors.New("hooks: hook order changed")

	// ErrReentrantRender: a host was rendered again while an outer pass for
	// it was still running under another host.
	ErrReentrantRender = errors.New("hooks: host re-entered during its own render")

	// ErrZeroSizeHost: the host pointed at a zero-size value.
	ErrZeroSizeHost = errors.New("hooks: zero-size host")
)

func newError(code, op string, sentinel error) *hserrors.HookError {
	return hserrors.New(code).WithOp(op).Wrap(sentinel)
}

// Recover converts a hookscope panic into *err. Other panics are re-raised.
// It must be deferred directly:
//
//	func safeRender() (err error) {
//	    defer hooks.Recover(&err)
//	    hooks.Run(render)
//	    return nil
//	}
func Recover(err *error) {
	r := recover()
	if r == nil {
		return
	}
	var he *hserrors.HookError
	if e, ok := r.(error); ok && errors.As(e, &he) {
		*err = e
		return
	}
	panic(r)
}
