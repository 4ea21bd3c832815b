package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/vango-dev/hookscope/pkg/hooks"
	"github.com/vango-dev/hookscope/pkg/signal"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	if m.Gauge == nil {
		t.Fatal("expected gauge metric to have Gauge field")
	}
	return m.GetGauge().GetValue()
}

func histogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	if m.Histogram == nil {
		t.Fatal("expected histogram metric to have Histogram field")
	}
	return m.GetHistogram().GetSampleCount()
}

func TestObserverRecordsLifecycle(t *testing.T) {
	obs := New(WithRegistry(prometheus.NewRegistry()))
	rt := hooks.NewRuntime(
		hooks.WithProvider(signal.Provider()),
		hooks.WithObserver(obs),
	)
	theme := hooks.CreateContextWithDefault("theme", "light")
	host := hooks.NewHost()

	for i := 0; i < 2; i++ {
		hooks.EstablishIn(rt, host, func() any {
			hooks.UseState(0)
			hooks.OnMount(func() {})
			return hooks.WithValue(theme, "dark", func() string { return theme.Use() })
		})
		rt.Drain()
	}

	if got := counterValue(t, obs.hostsCreated); got != 1 {
		t.Errorf("hosts_created_total = %v, want 1", got)
	}
	if got := gaugeValue(t, obs.liveHosts); got != 1 {
		t.Errorf("live_hosts = %v, want 1", got)
	}
	if got := counterValue(t, obs.renders.WithLabelValues("top", "ok")); got != 2 {
		t.Errorf("render_passes_total(top, ok) = %v, want 2", got)
	}
	if got := counterValue(t, obs.renders.WithLabelValues("nested", "ok")); got != 2 {
		t.Errorf("render_passes_total(nested, ok) = %v, want 2", got)
	}
	if got := histogramCount(t, obs.renderDuration.WithLabelValues("top")); got != 2 {
		t.Errorf("render_duration_seconds(top) count = %d, want 2", got)
	}
	if got := counterValue(t, obs.effectsRun); got != 2 {
		t.Errorf("effects_run_total = %v, want 2", got)
	}
	if got := counterValue(t, obs.flushes.WithLabelValues("ok")); got != 2 {
		t.Errorf("effect_flushes_total(ok) = %v, want 2", got)
	}

	hooks.DisposeIn(rt, host)
	if got := counterValue(t, obs.hostsReleased.WithLabelValues("disposed")); got != 1 {
		t.Errorf("hosts_released_total(disposed) = %v, want 1", got)
	}
	if got := gaugeValue(t, obs.liveHosts); got != 0 {
		t.Errorf("live_hosts = %v, want 0", got)
	}
}

func TestObserverRecordsPanics(t *testing.T) {
	obs := New(WithRegistry(prometheus.NewRegistry()), WithNamespace("app"))
	rt := hooks.NewRuntime(
		hooks.WithProvider(signal.Provider()),
		hooks.WithObserver(obs),
	)

	func() {
		defer func() { recover() }()
		hooks.EstablishIn(rt, hooks.NewHost(), func() any {
			panic("render failed")
		})
	}()
	if got := counterValue(t, obs.renders.WithLabelValues("top", "panic")); got != 1 {
		t.Errorf("render_passes_total(top, panic) = %v, want 1", got)
	}

	hooks.EstablishIn(rt, hooks.NewHost(), func() any {
		hooks.OnMount(func() { panic("effect failed") })
		return nil
	})
	func() {
		defer func() { recover() }()
		rt.Drain()
	}()
	if got := counterValue(t, obs.flushes.WithLabelValues("panic")); got != 1 {
		t.Errorf("effect_flushes_total(panic) = %v, want 1", got)
	}
}

func TestMetricNames(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := New(WithRegistry(reg), WithNamespace("app"), WithSubsystem("ui"),
		WithConstLabels(prometheus.Labels{"service": "demo"}))
	obs.HostCreated(1)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() != "app_ui_hosts_created_total" {
			continue
		}
		found = true
		labels := f.GetMetric()[0].GetLabel()
		if len(labels) != 1 || labels[0].GetName() != "service" || labels[0].GetValue() != "demo" {
			t.Errorf("labels = %v, want service=demo", labels)
		}
	}
	if !found {
		t.Error("app_ui_hosts_created_total not registered")
	}
}
