package hooks

import (
	"fmt"

	"github.com/vango-dev/hookscope/pkg/reactive"
)

// State is a typed view of a mutable cell held in a host slot.
type State[T any] struct {
	cell reactive.Cell
}

// Get reads the cell. A nil value reads as the zero T.
func (s State[T]) Get() T {
	v, _ := s.cell.Get().(T)
	return v
}

// Set writes through to the cell. The new value is visible immediately.
func (s State[T]) Set(v T) {
	s.cell.Set(v)
}

// Update sets the cell to fn(current).
func (s State[T]) Update(fn func(T) T) {
	s.Set(fn(s.Get()))
}

// Cell returns the underlying cell. Its identity is stable across passes.
func (s State[T]) Cell() reactive.Cell {
	return s.cell
}

// UseState returns the cell in the host's next slot, creating it from
// initial on the first pass. Later passes ignore initial.
func UseState[T any](initial T) (State[T], func(T)) {
	return useState("UseState", HookState, initial)
}

func useState[T any](op string, kind HookKind, initial T) (State[T], func(T)) {
	sc := mustScope(op)
	p := sc.rt.resolveProvider(op)

	v := sc.useSlot(op, kind, func() any {
		return p.NewCell(initial)
	})
	cell, ok := v.(reactive.Cell)
	if !ok {
		panic(hookOrderError(op, fmt.Sprintf("slot %d holds %T, not a state cell", sc.st.cursor-1, v)))
	}

	s := State[T]{cell: cell}
	return s, s.Set
}

// UseReducer keeps state in one slot; dispatch replaces it with
// reducer(current, action).
func UseReducer[S, A any](reducer func(S, A) S, initial S) (State[S], func(A)) {
	state, set := useState("UseReducer", HookReducer, initial)
	dispatch := func(action A) {
		set(reducer(state.Get(), action))
	}
	return state, dispatch
}

// Memo is a typed view of a derived cell.
type Memo[T any] struct {
	derived reactive.Derived
}

// Get reads the derived value, recomputing it if a dependency changed.
func (m Memo[T]) Get() T {
	v, _ := m.derived.Get().(T)
	return v
}

// Derived returns the underlying derived cell.
func (m Memo[T]) Derived() reactive.Derived {
	return m.derived
}

// UseMemo wraps compute in a derived cell. A new derived cell is created on
// every pass; it consumes no slot.
func UseMemo[T any](compute func() T) Memo[T] {
	const op = "UseMemo"
	sc := mustScope(op)
	p := sc.rt.resolveProvider(op)
	sc.track(op, HookMemo)
	return Memo[T]{derived: p.NewDerived(func() any { return compute() })}
}

// Callback is a derived cell whose value is the function itself.
type Callback[F any] struct {
	derived reactive.Derived
}

// Get returns the callable.
func (c Callback[F]) Get() F {
	fn, _ := c.derived.Get().(F)
	return fn
}

// UseCallback wraps fn, not its result, in a derived cell. fn reads cells at
// call time, so it sees their current values without being re-registered.
func UseCallback[F any](fn F) Callback[F] {
	const op = "UseCallback"
	sc := mustScope(op)
	p := sc.rt.resolveProvider(op)
	sc.track(op, HookCallback)
	return Callback[F]{derived: p.NewDerived(func() any { return fn })}
}
