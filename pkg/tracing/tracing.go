// Package tracing emits OpenTelemetry spans for hook render passes and
// effect flushes.
//
// The tracer comes from the global OpenTelemetry tracer provider unless
// WithTracerProvider is given. Configure it in main() before rendering:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
//	rt := hooks.NewRuntime(hooks.WithObserver(tracing.New()))
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/hookscope/pkg/hooks"
)

// Default tracer name.
const defaultTracerName = "hookscope"

// Span names.
const (
	RenderSpan = "hooks.render"
	FlushSpan  = "hooks.flush"
)

// Config configures the tracing observer.
type Config struct {
	// TracerName is the name of the tracer (default: "hookscope").
	TracerName string

	// TracerProvider overrides the global provider.
	TracerProvider trace.TracerProvider

	// BaseContext is the parent of every span (default: context.Background()).
	BaseContext context.Context

	// Attributes are added to every span.
	Attributes []attribute.KeyValue
}

// Option configures the tracing observer.
type Option func(*Config)

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Config) {
		c.TracerProvider = tp
	}
}

// WithBaseContext parents spans under ctx, e.g. a connection span.
func WithBaseContext(ctx context.Context) Option {
	return func(c *Config) {
		c.BaseContext = ctx
	}
}

// WithAttributes adds constant attributes to every span.
func WithAttributes(attrs ...attribute.KeyValue) Option {
	return func(c *Config) {
		c.Attributes = append(c.Attributes, attrs...)
	}
}

// Observer starts a span per render pass and per effect flush. It implements
// hooks.Observer.
type Observer struct {
	tracer trace.Tracer
	base   context.Context
	attrs  []attribute.KeyValue
}

// New creates a tracing observer.
func New(opts ...Option) *Observer {
	config := Config{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}

	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	base := config.BaseContext
	if base == nil {
		base = context.Background()
	}
	return &Observer{
		tracer: tp.Tracer(config.TracerName),
		base:   base,
		attrs:  config.Attributes,
	}
}

func (o *Observer) HostCreated(uint64)                       {}
func (o *Observer) HostReleased(uint64, hooks.ReleaseReason) {}

func (o *Observer) RenderStarted(nested bool) func(hooks.RenderInfo) {
	_, span := o.tracer.Start(o.base, RenderSpan,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(o.attrs...),
		trace.WithAttributes(attribute.Bool("hookscope.nested", nested)),
	)
	return func(info hooks.RenderInfo) {
		defer span.End()
		span.SetAttributes(
			attribute.Int64("hookscope.host_id", int64(info.HostID)),
			attribute.Int("hookscope.slots", info.Slots),
			attribute.Int("hookscope.effects_queued", info.Effects),
		)
		setStatus(span, info.Panic)
	}
}

func (o *Observer) EffectsFlushed(info hooks.FlushInfo) {
	_, span := o.tracer.Start(o.base, FlushSpan,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(o.attrs...),
		trace.WithAttributes(
			attribute.Int64("hookscope.host_id", int64(info.HostID)),
			attribute.Int("hookscope.effects_queued", info.Queued),
			attribute.Int("hookscope.effects_run", info.Ran),
		),
	)
	defer span.End()
	setStatus(span, info.Panic)
}

func setStatus(span trace.Span, panicValue any) {
	if panicValue == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	err, ok := panicValue.(error)
	if !ok {
		err = fmt.Errorf("%v", panicValue)
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

var _ hooks.Observer = (*Observer)(nil)
