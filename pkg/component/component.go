// Package component adapts render functions and existing types to hook
// render passes.
//
// A Func is its own host: every Render call is one top-level pass over the
// same storage. Wrap does the same for an existing instance, re-invoking its
// render method with the instance as host.
//
//	counter := component.New(func() string {
//	    n, set := hooks.UseState(0)
//	    hooks.OnMount(func() { set(1) })
//	    return fmt.Sprint(n.Get())
//	})
//	counter.Render()
//	defer counter.Dispose()
package component

import "github.com/vango-dev/hookscope/pkg/hooks"

// Renderer is anything that renders a view of type V.
type Renderer[V any] interface {
	Render() V
}

// Option configures a component adapter.
type Option func(*options)

type options struct {
	rt *hooks.Runtime
}

// WithRuntime renders on rt instead of hooks.Default().
func WithRuntime(rt *hooks.Runtime) Option {
	return func(o *options) {
		o.rt = rt
	}
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) runtime() *hooks.Runtime {
	if o.rt != nil {
		return o.rt
	}
	return hooks.Default()
}

// Func is a component backed by a render function.
type Func[V any] struct {
	render func() V
	opts   options
}

// New creates a Func component.
func New[V any](render func() V, opts ...Option) *Func[V] {
	return &Func[V]{render: render, opts: buildOptions(opts)}
}

// Render runs one render pass with f as host.
func (f *Func[V]) Render() V {
	return hooks.EstablishIn(f.opts.runtime(), f, f.render)
}

// Dispose runs the component's recorded cleanups and drops its storage.
// It reports whether there was anything to dispose.
func (f *Func[V]) Dispose() bool {
	return hooks.DisposeIn(f.opts.runtime(), f)
}

// Wrapped renders an existing instance with the instance as host.
type Wrapped[H, V any] struct {
	base   *H
	render func(*H) V
	opts   options
}

// Wrap adapts base so that render(base) runs inside a render pass hosted by
// base. Method expressions fit directly:
//
//	w := component.Wrap(form, (*Form).Render)
func Wrap[H, V any](base *H, render func(*H) V, opts ...Option) *Wrapped[H, V] {
	return &Wrapped[H, V]{base: base, render: render, opts: buildOptions(opts)}
}

// Base returns the wrapped instance.
func (w *Wrapped[H, V]) Base() *H {
	return w.base
}

// Render runs one render pass with the wrapped instance as host.
func (w *Wrapped[H, V]) Render() V {
	return hooks.EstablishIn(w.opts.runtime(), w.base, func() V {
		return w.render(w.base)
	})
}

// Dispose releases the wrapped instance's hook storage.
func (w *Wrapped[H, V]) Dispose() bool {
	return hooks.DisposeIn(w.opts.runtime(), w.base)
}

var (
	_ Renderer[int] = (*Func[int])(nil)
	_ Renderer[int] = (*Wrapped[struct{}, int])(nil)
)
