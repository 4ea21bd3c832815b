// Package reactive defines the capability a render-scope runtime needs from
// a reactive signal library: a mutable cell and a derived cell.
//
// hookscope never implements invalidation itself. A Provider is injected
// either per runtime (hooks.WithProvider) or once per process via Register.
// The bundled pkg/signal package is one such provider.
package reactive

import (
	"errors"
	"sync/atomic"

	hserrors "github.com/vango-dev/hookscope/internal/errors"
)

// Cell is a mutable, invalidation-tracked value.
type Cell interface {
	Get() any
	Set(value any)
}

// Derived is a read-only value recomputed on demand from the cells it reads.
type Derived interface {
	Get() any
}

// Provider constructs cells.
type Provider interface {
	NewCell(initial any) Cell
	NewDerived(compute func() any) Derived
}

// ErrNoProvider is wrapped by the setup error raised when no provider is
// available.
var ErrNoProvider = errors.New("hookscope: no reactive provider registered")

type providerBox struct {
	p Provider
}

var global atomic.Pointer[providerBox]

// Register installs the process-wide provider. Passing nil clears it.
func Register(p Provider) {
	if p == nil {
		global.Store(nil)
		return
	}
	global.Store(&providerBox{p: p})
}

// Registered returns the process-wide provider, or nil.
func Registered() Provider {
	if b := global.Load(); b != nil {
		return b.p
	}
	return nil
}

// Resolve returns local if non-nil, else the registered provider. It fails
// with a setup error naming both injection paths when neither is set.
func Resolve(local Provider) (Provider, error) {
	if local != nil {
		return local, nil
	}
	if p := Registered(); p != nil {
		return p, nil
	}
	return nil, hserrors.New("H002").Wrap(ErrNoProvider)
}

// MustResolve is Resolve that panics with the setup error.
func MustResolve(local Provider) Provider {
	p, err := Resolve(local)
	if err != nil {
		panic(err)
	}
	return p
}
