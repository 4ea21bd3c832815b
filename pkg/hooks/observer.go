package hooks

import (
	"fmt"
	"log/slog"
	"time"
)

// ReleaseReason says why a host's storage was dropped.
type ReleaseReason uint8

const (
	// ReleaseDisposed: DisposeHost was called.
	ReleaseDisposed ReleaseReason = iota + 1
	// ReleaseCollected: the host became unreachable and was collected.
	ReleaseCollected
)

func (r ReleaseReason) String() string {
	switch r {
	case ReleaseDisposed:
		return "disposed"
	case ReleaseCollected:
		return "collected"
	default:
		return "unknown"
	}
}

// RenderInfo describes a finished render pass.
type RenderInfo struct {
	// HostID is 0 when the pass used no hooks and the host has no storage.
	HostID   uint64
	Nested   bool
	Duration time.Duration
	Slots    int
	Effects  int
	// Panic is the value the render function panicked with, if any.
	Panic any
}

// FlushInfo describes one effect flush.
type FlushInfo struct {
	HostID uint64
	Queued int
	Ran    int
	Panic  any
}

// Observer receives runtime events. Implementations must not call hooks.
// Observation never changes behavior; core correctness does not depend on
// when, or whether, collection events arrive.
type Observer interface {
	HostCreated(hostID uint64)
	HostReleased(hostID uint64, reason ReleaseReason)
	// RenderStarted is called before render runs; the returned func is
	// called once the pass finished, panicking or not.
	RenderStarted(nested bool) func(RenderInfo)
	EffectsFlushed(info FlushInfo)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) HostCreated(uint64)                 {}
func (NopObserver) HostReleased(uint64, ReleaseReason) {}
func (NopObserver) RenderStarted(bool) func(RenderInfo) {
	return func(RenderInfo) {}
}
func (NopObserver) EffectsFlushed(FlushInfo) {}

// MultiObserver fans events out in order.
type MultiObserver []Observer

func (m MultiObserver) HostCreated(id uint64) {
	for _, o := range m {
		o.HostCreated(id)
	}
}

func (m MultiObserver) HostReleased(id uint64, reason ReleaseReason) {
	for _, o := range m {
		o.HostReleased(id, reason)
	}
}

func (m MultiObserver) RenderStarted(nested bool) func(RenderInfo) {
	done := make([]func(RenderInfo), len(m))
	for i, o := range m {
		done[i] = o.RenderStarted(nested)
	}
	return func(info RenderInfo) {
		for i := len(done) - 1; i >= 0; i-- {
			done[i](info)
		}
	}
}

func (m MultiObserver) EffectsFlushed(info FlushInfo) {
	for _, o := range m {
		o.EffectsFlushed(info)
	}
}

// LogObserver writes runtime events to a slog.Logger at debug level, and
// panics at error level.
type LogObserver struct {
	logger *slog.Logger
}

// NewLogObserver creates a LogObserver. A nil logger uses slog.Default().
func NewLogObserver(logger *slog.Logger) *LogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogObserver{logger: logger.With("component", "hooks")}
}

func (l *LogObserver) HostCreated(id uint64) {
	l.logger.Debug("host storage created", "host_id", id)
}

func (l *LogObserver) HostReleased(id uint64, reason ReleaseReason) {
	l.logger.Debug("host storage released", "host_id", id, "reason", reason.String())
}

func (l *LogObserver) RenderStarted(nested bool) func(RenderInfo) {
	return func(info RenderInfo) {
		if info.Panic != nil {
			l.logger.Error("render panicked",
				"host_id", info.HostID,
				"nested", info.Nested,
				"panic", fmt.Sprint(info.Panic))
			return
		}
		l.logger.Debug("render pass",
			"host_id", info.HostID,
			"nested", info.Nested,
			"duration", info.Duration,
			"slots", info.Slots,
			"effects_queued", info.Effects)
	}
}

func (l *LogObserver) EffectsFlushed(info FlushInfo) {
	if info.Panic != nil {
		l.logger.Error("effect panicked",
			"host_id", info.HostID,
			"ran", info.Ran,
			"queued", info.Queued,
			"panic", fmt.Sprint(info.Panic))
		return
	}
	l.logger.Debug("effects flushed", "host_id", info.HostID, "ran", info.Ran)
}

var (
	_ Observer = NopObserver{}
	_ Observer = MultiObserver(nil)
	_ Observer = (*LogObserver)(nil)
)
