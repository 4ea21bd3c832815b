package main

import (
	"encoding/json"
	"fmt"

	"github.com/vango-dev/hookscope/pkg/hooks"
	"github.com/vango-dev/hookscope/pkg/server"
)

// counterState is the rendered view of the counter.
type counterState struct {
	Count   int    `json:"count"`
	Doubled int    `json:"doubled"`
	Step    int    `json:"step"`
	Theme   string `json:"theme"`
	Label   string `json:"label"`
	Mounted bool   `json:"mounted"`
}

type counterAction struct {
	kind string
	by   int
}

func reduceCounter(count int, a counterAction) int {
	switch a.kind {
	case "inc":
		return count + a.by
	case "dec":
		return count - a.by
	case "reset":
		return 0
	}
	return count
}

var theme = hooks.CreateContextWithDefault("theme", "light")

// counterApp renders the counter under a dark theme provider.
func counterApp() any {
	return hooks.WithValue(theme, "dark", counter)
}

func counter() any {
	count, dispatch := hooks.UseReducer(reduceCounter, 0)
	step, setStep := hooks.UseState(1)
	mounted, setMounted := hooks.UseState(false)
	doubled := hooks.UseMemo(func() int { return count.Get() * 2 })
	label := hooks.UseCallback(func() string {
		return fmt.Sprintf("%d (step %d)", count.Get(), step.Get())
	})

	hooks.OnMount(func() { setMounted(true) })

	server.UseAction("inc", func(json.RawMessage) {
		dispatch(counterAction{kind: "inc", by: step.Get()})
	})
	server.UseAction("dec", func(json.RawMessage) {
		dispatch(counterAction{kind: "dec", by: step.Get()})
	})
	server.UseAction("reset", func(json.RawMessage) {
		dispatch(counterAction{kind: "reset"})
	})
	server.UseAction("step", func(payload json.RawMessage) {
		var n int
		if err := json.Unmarshal(payload, &n); err == nil && n > 0 {
			setStep(n)
		}
	})

	return counterState{
		Count:   count.Get(),
		Doubled: doubled.Get(),
		Step:    step.Get(),
		Theme:   theme.Use(),
		Label:   label.Get()(),
		Mounted: mounted.Get(),
	}
}
