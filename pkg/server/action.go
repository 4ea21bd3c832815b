package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/vango-dev/hookscope/pkg/hooks"
)

// ErrUnknownAction is returned by Dispatch when no handler is registered.
var ErrUnknownAction = errors.New("server: unknown action")

// ActionFunc handles one client action.
type ActionFunc func(payload json.RawMessage)

// Actions maps action names to the handlers registered by UseAction during
// renders bound with Bind. It is not safe for concurrent use; sessions touch
// it only on their loop.
type Actions struct {
	handlers map[string]ActionFunc
}

// NewActions returns an empty action table.
func NewActions() *Actions {
	return &Actions{handlers: make(map[string]ActionFunc)}
}

// Bind wraps view so that UseAction calls inside it register on a.
func (a *Actions) Bind(view func() any) func() any {
	return func() any {
		return hooks.WithValue(actions, a, view)
	}
}

// Dispatch calls the handler registered for name.
func (a *Actions) Dispatch(name string, payload json.RawMessage) error {
	fn, ok := a.lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAction, name)
	}
	fn(payload)
	return nil
}

// Names returns the registered action names, sorted.
func (a *Actions) Names() []string {
	names := make([]string, 0, len(a.handlers))
	for name := range a.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (a *Actions) lookup(name string) (ActionFunc, bool) {
	if a == nil {
		return nil, false
	}
	fn, ok := a.handlers[name]
	return fn, ok
}

// actions is provided around every bound render.
var actions = hooks.CreateContext[*Actions]("server.actions")

// UseAction registers fn for actions named name. A later registration under
// the same name replaces the earlier one. Outside a bound render it panics
// with hooks.ErrMissingContext.
func UseAction(name string, fn ActionFunc) {
	actions.Use().handlers[name] = fn
}
