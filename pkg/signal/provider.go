package signal

import "github.com/vango-dev/hookscope/pkg/reactive"

type cell struct {
	*Signal[any]
}

type derived struct {
	*Memo[any]
}

type provider struct{}

// Provider returns a reactive.Provider backed by Signal and Memo.
func Provider() reactive.Provider {
	return provider{}
}

func (provider) NewCell(initial any) reactive.Cell {
	return cell{New[any](initial)}
}

func (provider) NewDerived(compute func() any) reactive.Derived {
	return derived{NewMemo(compute)}
}

// Register installs Provider as the process-wide reactive provider.
func Register() {
	reactive.Register(Provider())
}

var (
	_ reactive.Cell    = cell{}
	_ reactive.Derived = derived{}
)
