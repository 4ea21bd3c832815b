package hooks

import (
	"errors"
	"strings"
	"testing"

	"github.com/vango-dev/hookscope/pkg/reactive"
	"github.com/vango-dev/hookscope/pkg/signal"
)

func TestUseStateIdentityStableAcrossPasses(t *testing.T) {
	rt := newTestRuntime()
	host := NewHost()

	render := func() reactive.Cell {
		s, _ := UseState(0)
		return s.Cell()
	}

	first := EstablishIn(rt, host, render)
	second := EstablishIn(rt, host, render)
	if first != second {
		t.Error("state cell identity changed between passes on the same host")
	}

	other := EstablishIn(rt, NewHost(), render)
	if other == first {
		t.Error("different hosts share a state cell")
	}
}

func TestUseStateIgnoresLaterInitial(t *testing.T) {
	rt := newTestRuntime()
	host := NewHost()

	for i, initial := range []int{1, 999, 42} {
		got := EstablishIn(rt, host, func() int {
			s, _ := UseState(initial)
			return s.Get()
		})
		if got != 1 {
			t.Fatalf("pass %d: state = %d, want 1", i, got)
		}
	}
}

func TestSetStateIsImmediate(t *testing.T) {
	rt := newTestRuntime()

	c := EstablishIn(rt, NewHost(), func() State[int] {
		c, setC := UseState(1)
		setC(2)
		if c.Get() != 2 {
			t.Errorf("Get() after set = %d, want 2", c.Get())
		}
		return c
	})
	if c.Get() != 2 {
		t.Errorf("returned cell = %d, want 2", c.Get())
	}
}

func TestStatesReadBackInCallOrder(t *testing.T) {
	rt := newTestRuntime()
	host := NewHost()
	words := []string{"a", "b", "c", "d"}

	render := func() []string {
		var out []string
		for _, w := range words {
			s, _ := UseState(w)
			out = append(out, s.Get())
		}
		return out
	}

	EstablishIn(rt, host, render)
	got := EstablishIn(rt, host, render)
	if strings.Join(got, "") != "abcd" {
		t.Errorf("values = %v, want call order", got)
	}
}

func TestUseStateZeroValueForNilInterface(t *testing.T) {
	rt := newTestRuntime()
	got := EstablishIn(rt, NewHost(), func() error {
		s, _ := UseState[error](nil)
		return s.Get()
	})
	if got != nil {
		t.Errorf("Get() = %v, want nil", got)
	}
}

func TestStateUpdate(t *testing.T) {
	rt := newTestRuntime()
	s := EstablishIn(rt, NewHost(), func() State[int] {
		s, _ := UseState(10)
		return s
	})
	s.Update(func(n int) int { return n + 5 })
	if s.Get() != 15 {
		t.Errorf("Get() = %d, want 15", s.Get())
	}
}

func TestUseReducer(t *testing.T) {
	rt := newTestRuntime()
	reducer := func(s int, a string) int {
		if a == "inc" {
			return s + 1
		}
		return s - 1
	}

	state, dispatch := func() (State[int], func(string)) {
		var s State[int]
		var d func(string)
		EstablishIn(rt, NewHost(), func() any {
			s, d = UseReducer(reducer, 0)
			return nil
		})
		return s, d
	}()

	dispatch("inc")
	if state.Get() != 1 {
		t.Fatalf("after inc = %d, want 1", state.Get())
	}
	dispatch("dec")
	if state.Get() != 0 {
		t.Errorf("after dec = %d, want 0", state.Get())
	}
}

func TestUseMemoTracksSlotCells(t *testing.T) {
	rt := newTestRuntime()
	host := NewHost()

	var count State[int]
	doubled := EstablishIn(rt, host, func() Memo[int] {
		count, _ = UseState(3)
		return UseMemo(func() int { return count.Get() * 2 })
	})
	if doubled.Get() != 6 {
		t.Fatalf("memo = %d, want 6", doubled.Get())
	}
	count.Set(5)
	if doubled.Get() != 10 {
		t.Errorf("memo = %d, want 10", doubled.Get())
	}

	again := EstablishIn(rt, host, func() Memo[int] {
		UseState(0)
		return UseMemo(func() int { return count.Get() * 2 })
	})
	if again.Derived() == doubled.Derived() {
		t.Error("memo should be a fresh derived cell on every pass")
	}
	if again.Get() != 10 {
		t.Errorf("fresh memo = %d, want 10", again.Get())
	}
}

func TestUseCallbackReadsCurrentValue(t *testing.T) {
	rt := newTestRuntime()

	var count State[int]
	cb := EstablishIn(rt, NewHost(), func() Callback[func() int] {
		count, _ = UseState(1)
		return UseCallback(func() int { return count.Get() })
	})

	fn := cb.Get()
	if fn() != 1 {
		t.Fatalf("callback = %d, want 1", fn())
	}
	count.Set(7)
	if cb.Get()() != 7 {
		t.Errorf("callback = %d, want 7", cb.Get()())
	}
}

func TestHooksOutsideRender(t *testing.T) {
	rt := newTestRuntime()
	SetDefault(rt)
	defer SetDefault(nil)

	key := NewContextKeyWithDefault("k", 1)
	ops := map[string]func(){
		"UseState":       func() { UseState(0) },
		"UseReducer":     func() { UseReducer(func(s, a int) int { return s + a }, 0) },
		"UseMemo":        func() { UseMemo(func() int { return 0 }) },
		"UseCallback":    func() { UseCallback(func() {}) },
		"UseEffect":      func() { UseEffect(func() Cleanup { return nil }) },
		"OnMount":        func() { OnMount(func() {}) },
		"OnCleanup":      func() { OnCleanup(func() {}) },
		"UseContext":     func() { UseContext(key) },
		"ProvideContext": func() { ProvideContext(key, signal.Provider().NewCell(1)) },
	}

	for name, op := range ops {
		t.Run(name, func(t *testing.T) {
			err := expectPanicIs(t, ErrNoActiveRender, op)
			if !strings.Contains(err.Error(), "H001") || !strings.Contains(err.Error(), name) {
				t.Errorf("error %q should name code and operation", err)
			}
		})
	}

	if Active() {
		t.Error("Active() should be false outside a render")
	}
	if rt.Stats().Hosts != 0 {
		t.Errorf("hooks outside render created %d hosts", rt.Stats().Hosts)
	}
}

func TestMissingProvider(t *testing.T) {
	reactive.Register(nil)
	rt := NewRuntime()

	err := capturePanic(t, func() {
		EstablishIn(rt, NewHost(), func() int {
			s, _ := UseState(1)
			return s.Get()
		})
	})
	if !errors.Is(err, reactive.ErrNoProvider) {
		t.Fatalf("err = %v, want ErrNoProvider", err)
	}
	for _, want := range []string{"H002", "WithProvider", "reactive.Register"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q should mention %q", err, want)
		}
	}
	if rt.Stats().Hosts != 0 {
		t.Errorf("failed UseState created %d hosts", rt.Stats().Hosts)
	}
	if Active() {
		t.Error("current host not restored after setup error")
	}
}

func TestRegisteredProviderFallback(t *testing.T) {
	signal.Register()
	defer reactive.Register(nil)

	rt := NewRuntime()
	got := EstablishIn(rt, NewHost(), func() int {
		s, _ := UseState(4)
		return s.Get()
	})
	if got != 4 {
		t.Errorf("state = %d, want 4", got)
	}
}
