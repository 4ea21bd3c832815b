package tracing

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/vango-dev/hookscope/pkg/hooks"
	"github.com/vango-dev/hookscope/pkg/signal"
)

func newTraced(t *testing.T, opts ...Option) (*hooks.Runtime, *tracetest.SpanRecorder) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	obs := New(append([]Option{WithTracerProvider(tp)}, opts...)...)
	rt := hooks.NewRuntime(hooks.WithProvider(signal.Provider()), hooks.WithObserver(obs))
	return rt, rec
}

func attrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	out := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		out[kv.Key] = kv.Value
	}
	return out
}

func TestRenderSpan(t *testing.T) {
	rt, rec := newTraced(t, WithAttributes(attribute.String("service", "demo")))

	hooks.EstablishIn(rt, hooks.NewHost(), func() any {
		hooks.UseState(1)
		hooks.UseState(2)
		hooks.OnMount(func() {})
		return nil
	})

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	span := spans[0]
	if span.Name() != RenderSpan {
		t.Errorf("name = %q, want %q", span.Name(), RenderSpan)
	}
	a := attrs(span)
	if a["hookscope.slots"].AsInt64() != 2 {
		t.Errorf("slots = %v, want 2", a["hookscope.slots"])
	}
	if a["hookscope.effects_queued"].AsInt64() != 1 {
		t.Errorf("effects_queued = %v, want 1", a["hookscope.effects_queued"])
	}
	if a["hookscope.nested"].AsBool() {
		t.Error("top-level pass marked nested")
	}
	if a["hookscope.host_id"].AsInt64() == 0 {
		t.Error("host_id should be set once the host has storage")
	}
	if a["service"].AsString() != "demo" {
		t.Errorf("service = %v, want demo", a["service"])
	}
	if span.Status().Code != codes.Ok {
		t.Errorf("status = %v, want Ok", span.Status().Code)
	}
}

func TestFlushSpan(t *testing.T) {
	rt, rec := newTraced(t)

	hooks.EstablishIn(rt, hooks.NewHost(), func() any {
		hooks.OnMount(func() {})
		hooks.OnMount(func() {})
		return nil
	})
	rt.Drain()

	var flush sdktrace.ReadOnlySpan
	for _, s := range rec.Ended() {
		if s.Name() == FlushSpan {
			flush = s
		}
	}
	if flush == nil {
		t.Fatal("no flush span recorded")
	}
	if got := attrs(flush)["hookscope.effects_run"].AsInt64(); got != 2 {
		t.Errorf("effects_run = %d, want 2", got)
	}
}

func TestPanicMarksSpanError(t *testing.T) {
	rt, rec := newTraced(t)

	func() {
		defer func() { recover() }()
		hooks.EstablishIn(rt, hooks.NewHost(), func() any {
			panic("render failed")
		})
	}()

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	st := spans[0].Status()
	if st.Code != codes.Error || st.Description != "render failed" {
		t.Errorf("status = %+v, want error with panic message", st)
	}
	if len(spans[0].Events()) == 0 {
		t.Error("expected the panic to be recorded as an exception event")
	}
}

func TestNestedPassSpans(t *testing.T) {
	rt, rec := newTraced(t)
	ctx := hooks.CreateContextWithDefault("c", 0)

	hooks.EstablishIn(rt, hooks.NewHost(), func() int {
		return hooks.WithValue(ctx, 1, func() int { return ctx.Use() })
	})

	spans := rec.Ended()
	if len(spans) != 2 {
		t.Fatalf("ended spans = %d, want 2", len(spans))
	}
	if !attrs(spans[0])["hookscope.nested"].AsBool() {
		t.Error("provider pass should end first and be marked nested")
	}
}

func TestBaseContextParentsSpans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	defer tp.Shutdown(context.Background())

	parentCtx, parent := tp.Tracer("test").Start(context.Background(), "connection")
	obs := New(WithTracerProvider(tp), WithBaseContext(parentCtx))
	rt := hooks.NewRuntime(hooks.WithProvider(signal.Provider()), hooks.WithObserver(obs))

	hooks.EstablishIn(rt, hooks.NewHost(), func() any { return nil })
	parent.End()

	var render sdktrace.ReadOnlySpan
	for _, s := range rec.Ended() {
		if s.Name() == RenderSpan {
			render = s
		}
	}
	if render == nil {
		t.Fatal("no render span")
	}
	if render.Parent().SpanID() != parent.SpanContext().SpanID() {
		t.Error("render span should be a child of the base context span")
	}
}
