package hooks

import (
	"errors"
	"testing"

	"github.com/vango-dev/hookscope/pkg/signal"
)

func newTestRuntime(opts ...Option) *Runtime {
	return NewRuntime(append([]Option{WithProvider(signal.Provider())}, opts...)...)
}

// capturePanic runs fn and returns the error it panicked with.
func capturePanic(t *testing.T, fn func()) (err error) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic, got none")
		}
		e, ok := r.(error)
		if !ok {
			t.Fatalf("panic value %v (%T) is not an error", r, r)
		}
		err = e
	}()
	fn()
	return nil
}

func expectPanicIs(t *testing.T, target error, fn func()) error {
	t.Helper()
	err := capturePanic(t, fn)
	if !errors.Is(err, target) {
		t.Fatalf("panic = %v, want %v", err, target)
	}
	return err
}
