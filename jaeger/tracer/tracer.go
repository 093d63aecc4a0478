// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/sumatoreo/jaeger-go/internal"
	"github.com/sumatoreo/jaeger-go/internal/log"
	"github.com/sumatoreo/jaeger-go/jaeger"
	"github.com/sumatoreo/jaeger-go/jaeger/ext"
)

// Tracer creates spans, links them to their parents and propagates their
// contexts across process boundaries. Implementations are safe for
// concurrent use.
type Tracer interface {
	// StartSpan starts a span with the given operation name and options.
	StartSpan(operationName string, opts ...jaeger.StartSpanOption) *Span

	// StartSpanFromContext starts a span whose parent is the active span of
	// ctx, unless a ChildOf option is given, and returns a context in which
	// the new span is active.
	StartSpanFromContext(ctx context.Context, operationName string, opts ...jaeger.StartSpanOption) (*Span, context.Context)

	// StartActiveSpan is like StartSpanFromContext but returns the scope
	// activating the new span. Closing the scope finishes the span when the
	// FinishOnClose option was given.
	StartActiveSpan(ctx context.Context, operationName string, opts ...jaeger.StartSpanOption) (*Scope, context.Context)

	// ScopeManager returns the manager used to activate spans.
	ScopeManager() *ScopeManager

	// Inject writes ctx into carrier using the propagator bound to format.
	Inject(ctx jaeger.SpanContext, format jaeger.Format, carrier interface{}) error

	// Extract reads a span context from carrier using the propagator bound
	// to format. It returns a nil context and a nil error when the carrier
	// holds no trace information.
	Extract(format jaeger.Format, carrier interface{}) (*SpanContext, error)

	// ServiceName returns the service the tracer reports spans for.
	ServiceName() string

	// Tags returns the process tags of the tracer.
	Tags() map[string]interface{}

	// Flush hands every finished, sampled span to the reporter.
	Flush()

	// Close flushes the tracer and releases its reporter. The tracer keeps
	// creating spans afterwards but no longer records them.
	Close()
}

var _ Tracer = (*tracer)(nil)

// tracer is the native Tracer implementation. It buffers sampled spans from
// the moment they start; Flush moves the finished ones to the reporter.
type tracer struct {
	config *config

	// propagators binds each supported format to its codec.
	propagators map[jaeger.Format]Propagator

	// tags holds the process tags, computed once at construction.
	tags map[string]interface{}

	scopes *ScopeManager

	statsd internal.StatsdClient

	mu      sync.Mutex // guards below fields
	pending []*Span    // sampled spans not reported yet
	closed  bool       // no span is buffered once set

	closeOnce sync.Once

	// health counters, reset every time they are sent to statsd
	spansStarted   atomic.Int64
	spansSampled   atomic.Int64
	spansFinished  atomic.Int64
	spansReported  atomic.Int64
	spansAbandoned atomic.Int64
}

// New returns a Tracer configured with the environment and the given options.
// It returns a NoopTracer when tracing is disabled.
func New(opts ...StartOption) (Tracer, error) {
	c, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	if c.disabled {
		log.Debug("Tracing is disabled, returning a no-op tracer")
		return NoopTracer{}, nil
	}
	return newTracerWithConfig(c)
}

func newTracer(opts ...StartOption) (*tracer, error) {
	c, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	return newTracerWithConfig(c)
}

func newTracerWithConfig(c *config) (*tracer, error) {
	formats, err := c.formats()
	if err != nil {
		return nil, err
	}
	statsd, err := c.newStatsdClient()
	if err != nil {
		// the client returned alongside the error discards everything
		log.Warn("Health metrics disabled: %v", err)
	}
	t := &tracer{
		config:      c,
		propagators: formats,
		tags:        processTags(c),
		scopes:      NewScopeManager(),
		statsd:      statsd,
	}
	t.statsd.Incr("jaeger.tracer.started", nil, 1)
	if c.logStartup {
		logStartup(t)
	}
	return t, nil
}

// processTags merges, from lowest to highest precedence, the default tags,
// the sampler tags, JAEGER_TAGS and the WithGlobalTag options.
func processTags(c *config) map[string]interface{} {
	tags := map[string]interface{}{
		ext.TracerVersion: ext.TracerVersionValue,
		ext.ClientUUID:    uuid.NewString(),
	}
	if host, err := os.Hostname(); err == nil {
		tags[ext.TracerHostname] = host
	} else {
		log.Debug("Unable to look up hostname: %v", err)
	}
	for k, v := range c.sampler.Tags() {
		tags[k] = v
	}
	for k, v := range c.envTags {
		tags[k] = v
	}
	for k, v := range c.globalTags {
		tags[k] = v
	}
	return tags
}

// StartSpan creates, starts, and returns a new Span with the given `operationName`.
func (t *tracer) StartSpan(operationName string, options ...jaeger.StartSpanOption) *Span {
	var opts jaeger.StartSpanConfig
	for _, fn := range options {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	return t.startSpan(operationName, &opts)
}

func (t *tracer) startSpan(operationName string, opts *jaeger.StartSpanConfig) *Span {
	startTime := opts.StartTime
	if startTime.IsZero() {
		startTime = time.Now()
	}
	id := t.config.idGenerator()
	var ctx *SpanContext
	if parent := FromGenericCtx(opts.Parent()); parent != nil && parent.TraceIDLow() != 0 {
		ctx = newSpanContext(parent.TraceIDHigh(), parent.TraceIDLow(), id, parent.SpanID(), parent.Flags(), parent.baggage)
	} else {
		// this is a root span
		var high uint64
		if t.config.traceID128Bit {
			high = t.config.idGenerator()
		}
		var flags byte
		if t.config.sampler.Sample(id) {
			flags = FlagSampled
		}
		ctx = newSpanContext(high, id, id, 0, flags, nil)
	}
	span := newSpan(t, operationName, ctx, startTime, opts.References)
	for k, v := range opts.Tags {
		span.SetTag(k, v)
	}
	t.spansStarted.Add(1)
	if ctx.IsSampled() {
		t.spansSampled.Add(1)
		t.push(span)
	}
	if log.DebugEnabled() {
		log.Debug("Started span: %s (sampled: %t)", ctx, ctx.IsSampled())
	}
	return span
}

// push appends a sampled span to the pending buffer.
func (t *tracer) push(s *Span) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		log.Debug("Tracer is closed, span %s will not be reported", s.context)
		return
	}
	t.pending = append(t.pending, s)
}

func (t *tracer) spanFinished(*Span) {
	t.spansFinished.Add(1)
}

// StartSpanFromContext implements Tracer.
func (t *tracer) StartSpanFromContext(ctx context.Context, operationName string, opts ...jaeger.StartSpanOption) (*Span, context.Context) {
	scope, ctx := t.StartActiveSpan(ctx, operationName, opts...)
	return scope.Span(), ctx
}

// StartActiveSpan implements Tracer.
func (t *tracer) StartActiveSpan(ctx context.Context, operationName string, options ...jaeger.StartSpanOption) (*Scope, context.Context) {
	if ctx == nil {
		// default to context.Background() to avoid panics on Go >= 1.15
		ctx = context.Background()
	}
	var opts jaeger.StartSpanConfig
	for _, fn := range options {
		if fn == nil {
			continue
		}
		fn(&opts)
	}
	if opts.Parent() == nil {
		if s, ok := SpanFromContext(ctx); ok {
			ChildOf(s.Context())(&opts)
		}
	}
	span := t.startSpan(operationName, &opts)
	return t.scopes.Activate(ctx, span, opts.FinishSpanOnClose)
}

// ScopeManager implements Tracer.
func (t *tracer) ScopeManager() *ScopeManager {
	return t.scopes
}

// Inject uses the configured or default TextMap Propagator.
func (t *tracer) Inject(ctx jaeger.SpanContext, format jaeger.Format, carrier interface{}) error {
	p, ok := t.propagators[format]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	return p.Inject(ctx, carrier)
}

// Extract uses the configured or default TextMap Propagator.
func (t *tracer) Extract(format jaeger.Format, carrier interface{}) (*SpanContext, error) {
	p, ok := t.propagators[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	ctx, err := p.Extract(carrier)
	switch {
	case errors.Is(err, ErrSpanContextNotFound):
		return nil, nil
	case err != nil:
		log.Debug("Unable to extract span context: %v", err)
		return nil, err
	}
	return ctx, nil
}

// ServiceName implements Tracer.
func (t *tracer) ServiceName() string {
	return t.config.serviceName
}

// Tags implements Tracer.
func (t *tracer) Tags() map[string]interface{} {
	tags := make(map[string]interface{}, len(t.tags))
	for k, v := range t.tags {
		tags[k] = v
	}
	return tags
}

// Flush implements Tracer. Spans still open are kept for the next flush
// unless they have been open longer than the abandoned span timeout, in
// which case they are dropped.
func (t *tracer) Flush() {
	t.mu.Lock()
	pending := t.pending
	t.pending = nil
	t.mu.Unlock()

	var (
		now       = time.Now()
		timeout   = t.config.abandonedSpanTimeout
		finished  []*Span
		open      []*Span
		abandoned int
	)
	for _, s := range pending {
		switch {
		case s.IsFinished():
			finished = append(finished, s)
		case timeout > 0 && now.Sub(s.StartTime()) >= timeout:
			abandoned++
			log.Debug("Dropping abandoned span %s", s)
		default:
			open = append(open, s)
		}
	}
	if len(open) > 0 {
		t.mu.Lock()
		closed := t.closed
		if !closed {
			t.pending = append(open, t.pending...)
		}
		t.mu.Unlock()
		if closed {
			log.Warn("Tracer closed with %d unfinished span(s); they will not be reported", len(open))
		}
	}
	if abandoned > 0 {
		t.spansAbandoned.Add(int64(abandoned))
		log.Warn("Dropped %d span(s) left unfinished for more than %s", abandoned, timeout)
	}
	if len(finished) > 0 {
		t.spansReported.Add(int64(len(finished)))
		t.config.reporter.Report(&Batch{
			Process: Process{ServiceName: t.config.serviceName, Tags: t.Tags()},
			Spans:   finished,
		})
	}
	t.reportHealthMetrics()
}

// Close implements Tracer.
func (t *tracer) Close() {
	t.closeOnce.Do(func() {
		t.mu.Lock()
		t.closed = true
		t.mu.Unlock()
		t.Flush()
		t.config.reporter.Close()
		t.statsd.Incr("jaeger.tracer.stopped", nil, 1)
		t.statsd.Flush()
		if t.config.statsdClient == nil {
			t.statsd.Close()
		}
		log.Flush()
	})
}

// pendingLen returns the number of spans waiting in the buffer.
func (t *tracer) pendingLen() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}
