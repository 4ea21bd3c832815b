package hooks

import (
	"sync"

	"github.com/vango-dev/hookscope/pkg/reactive"
)

// ContextKey identifies one context. Every factory call creates a distinct
// key, even for equal names.
type ContextKey struct {
	id   uint64
	name string

	hasDefault   bool
	defaultValue any
	defaultOnce  sync.Once
	defaultCell  reactive.Cell
}

// NewContextKey creates a key with no default.
func NewContextKey(name string) *ContextKey {
	return &ContextKey{id: nextID(), name: name}
}

// NewContextKeyWithDefault creates a key whose fallback cell is seeded with
// value. The cell is built by the first runtime that needs it.
func NewContextKeyWithDefault(name string, value any) *ContextKey {
	return &ContextKey{id: nextID(), name: name, hasDefault: true, defaultValue: value}
}

// Name returns the debug name given at creation.
func (k *ContextKey) Name() string { return k.name }

// HasDefault reports whether the key carries a fallback value.
func (k *ContextKey) HasDefault() bool { return k.hasDefault }

func (k *ContextKey) fallback(rt *Runtime, op string) reactive.Cell {
	if !k.hasDefault {
		return nil
	}
	k.defaultOnce.Do(func() {
		k.defaultCell = rt.resolveProvider(op).NewCell(k.defaultValue)
	})
	return k.defaultCell
}

// contextFrame is one immutable layer of key to cell bindings.
type contextFrame map[*ContextKey]reactive.Cell

// top returns the newest frame, or nil when the stack is empty.
func (st *hostState) top() contextFrame {
	if len(st.frames) == 0 {
		return nil
	}
	return st.frames[len(st.frames)-1]
}

// ProvideContext pushes a frame that copies the current top and binds key to
// cell. The frame stays on the stack until the host's next top-level pass.
func ProvideContext(key *ContextKey, cell reactive.Cell) {
	const op = "ProvideContext"
	sc := mustScope(op)
	sc.track(op, HookProvide)
	st := sc.state()

	prev := st.top()
	frame := make(contextFrame, len(prev)+1)
	for k, v := range prev {
		frame[k] = v
	}
	frame[key] = cell
	st.frames = append(st.frames, frame)
}

// UseContext returns the cell bound to key in the top frame, else the key's
// default cell. It panics with ErrMissingContext when neither exists.
func UseContext(key *ContextKey) reactive.Cell {
	return useContext("UseContext", key)
}

func useContext(op string, key *ContextKey) reactive.Cell {
	sc := mustScope(op)
	sc.track(op, HookContext)

	if sc.st != nil {
		if cell, ok := sc.st.top()[key]; ok {
			return cell
		}
	}
	if cell := key.fallback(sc.rt, op); cell != nil {
		return cell
	}
	panic(newError("H003", op, ErrMissingContext).
		WithDetail("context " + quoteName(key.name) + " has no provided value and no default"))
}

func quoteName(name string) string {
	if name == "" {
		return "(unnamed)"
	}
	return `"` + name + `"`
}

// Context is a typed provider/consumer pair over a ContextKey.
type Context[T any] struct {
	key *ContextKey
}

// CreateContext creates a context with no default. Use panics with
// ErrMissingContext when no Provider supplied a value.
func CreateContext[T any](name string) *Context[T] {
	return &Context[T]{key: NewContextKey(name)}
}

// CreateContextWithDefault creates a context that falls back to
// defaultValue.
func CreateContextWithDefault[T any](name string, defaultValue T) *Context[T] {
	return &Context[T]{key: NewContextKeyWithDefault(name, defaultValue)}
}

// Key returns the context's key.
func (c *Context[T]) Key() *ContextKey {
	return c.key
}

// ProviderProps are the Provider arguments. A nil Value provides the
// context's default, or the zero T when it has none.
type ProviderProps[T any] struct {
	Value    *T
	Children func() any
}

// Provider opens a nested scope on the current host, provides a fresh cell
// holding the value, and renders Children inside it.
func (c *Context[T]) Provider(props ProviderProps[T]) any {
	return provide(c, "Provider", props.Value, props.Children)
}

// WithValue is the typed form of Provider.
func WithValue[T, R any](c *Context[T], value T, children func() R) R {
	return provide(c, "WithValue", &value, children)
}

func provide[T, R any](c *Context[T], op string, value *T, children func() R) R {
	sc := mustScope(op)

	var initial T
	switch {
	case value != nil:
		initial = *value
	case c.key.hasDefault:
		initial, _ = c.key.defaultValue.(T)
	}
	cell := sc.rt.resolveProvider(op).NewCell(initial)

	return enter(sc, sc, true, func() R {
		ProvideContext(c.key, cell)
		if children == nil {
			var zero R
			return zero
		}
		return children()
	})
}

// Use returns the current value of the context.
func (c *Context[T]) Use() T {
	v, _ := useContext("Use", c.key).Get().(T)
	return v
}

// UseCell returns the cell backing the current value.
func (c *Context[T]) UseCell() reactive.Cell {
	return useContext("UseCell", c.key)
}
