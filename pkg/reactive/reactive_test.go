package reactive

import (
	"errors"
	"strings"
	"testing"
)

type fakeCell struct{ v any }

func (c *fakeCell) Get() any  { return c.v }
func (c *fakeCell) Set(v any) { c.v = v }

type fakeDerived struct{ fn func() any }

func (d fakeDerived) Get() any { return d.fn() }

type fakeProvider struct{}

func (fakeProvider) NewCell(initial any) Cell              { return &fakeCell{v: initial} }
func (fakeProvider) NewDerived(compute func() any) Derived { return fakeDerived{fn: compute} }

func TestResolvePrefersLocal(t *testing.T) {
	Register(nil)
	defer Register(nil)

	local := fakeProvider{}
	p, err := Resolve(local)
	if err != nil || p != Provider(local) {
		t.Fatalf("Resolve(local) = %v, %v", p, err)
	}
}

func TestResolveFallsBackToRegistered(t *testing.T) {
	Register(fakeProvider{})
	defer Register(nil)

	p, err := Resolve(nil)
	if err != nil || p == nil {
		t.Fatalf("Resolve(nil) = %v, %v", p, err)
	}
	if Registered() == nil {
		t.Error("Registered() should return the provider")
	}
}

func TestResolveMissing(t *testing.T) {
	Register(nil)

	_, err := Resolve(nil)
	if !errors.Is(err, ErrNoProvider) {
		t.Fatalf("err = %v, want ErrNoProvider", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "H002") {
		t.Errorf("error %q should carry code H002", msg)
	}

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrNoProvider) {
			t.Fatalf("MustResolve panic = %v", r)
		}
	}()
	MustResolve(nil)
}
