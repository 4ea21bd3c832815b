package hooks

import (
	"fmt"

	hserrors "github.com/vango-dev/hookscope/internal/errors"
)

// HookKind identifies a hook call for order validation.
type HookKind uint8

const (
	HookState HookKind = iota + 1
	HookReducer
	HookMemo
	HookCallback
	HookEffect
	HookContext
	HookProvide
)

// String returns a human-readable name for the hook kind.
func (k HookKind) String() string {
	switch k {
	case HookState:
		return "State"
	case HookReducer:
		return "Reducer"
	case HookMemo:
		return "Memo"
	case HookCallback:
		return "Callback"
	case HookEffect:
		return "Effect"
	case HookContext:
		return "Context"
	case HookProvide:
		return "Provide"
	default:
		return "Unknown"
	}
}

func hookOrderError(op, detail string) *hserrors.HookError {
	return newError("H005", op, ErrHookOrder).WithDetail(detail)
}

// track records or validates one hook call when order checking is on. The
// first completed pass on a host fixes the expected order.
func (sc *scope) track(op string, kind HookKind) {
	if !sc.rt.checkOrder {
		return
	}
	st := sc.state()
	if !st.locked {
		st.order = append(st.order, kind)
		st.orderIdx++
		return
	}
	if st.orderIdx >= len(st.order) {
		panic(hookOrderError(op, fmt.Sprintf("extra %s hook at index %d", kind, st.orderIdx)))
	}
	if want := st.order[st.orderIdx]; want != kind {
		panic(hookOrderError(op, fmt.Sprintf("index %d: expected %s, got %s", st.orderIdx, want, kind)))
	}
	st.orderIdx++
}

// endPass locks the order after the first pass and reports missing hooks on
// later ones.
func (st *hostState) endPass() {
	if !st.locked {
		st.locked = true
		return
	}
	if st.orderIdx < len(st.order) {
		panic(hookOrderError("Establish", fmt.Sprintf("expected %d hooks, got %d", len(st.order), st.orderIdx)))
	}
}

// useSlot returns the value in the host's next slot, calling create to fill
// it when the slot is new. create runs before anything is recorded, so a
// failing create leaves storage untouched.
func (sc *scope) useSlot(op string, kind HookKind, create func() any) any {
	st := sc.state()
	idx := st.cursor

	switch {
	case idx < len(st.slots):
		sc.track(op, kind)
		st.cursor++
		return st.slots[idx]
	case idx == len(st.slots):
		v := create()
		sc.track(op, kind)
		st.slots = append(st.slots, v)
		st.cursor++
		return v
	default:
		panic(newError("H004", op, ErrInvariant).
			WithDetail(fmt.Sprintf("slot cursor %d is past %d slots", idx, len(st.slots))))
	}
}
