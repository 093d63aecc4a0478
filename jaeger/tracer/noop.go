// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"context"

	"github.com/sumatoreo/jaeger-go/jaeger"
)

var _ Tracer = (*NoopTracer)(nil)

// NoopTracer is an implementation of Tracer that is a no-op. It is handed out
// when tracing is disabled. The spans and scopes it returns are nil, and all
// of their methods are no-ops.
type NoopTracer struct{}

// StartSpan implements Tracer.
func (NoopTracer) StartSpan(_ string, _ ...jaeger.StartSpanOption) *Span {
	return nil
}

// StartSpanFromContext implements Tracer.
func (NoopTracer) StartSpanFromContext(ctx context.Context, _ string, _ ...jaeger.StartSpanOption) (*Span, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	return nil, ctx
}

// StartActiveSpan implements Tracer.
func (NoopTracer) StartActiveSpan(ctx context.Context, _ string, _ ...jaeger.StartSpanOption) (*Scope, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	return nil, ctx
}

// ScopeManager implements Tracer.
func (NoopTracer) ScopeManager() *ScopeManager { return NewScopeManager() }

// Inject implements Tracer.
func (NoopTracer) Inject(_ jaeger.SpanContext, _ jaeger.Format, _ interface{}) error { return nil }

// Extract implements Tracer.
func (NoopTracer) Extract(_ jaeger.Format, _ interface{}) (*SpanContext, error) { return nil, nil }

// ServiceName implements Tracer.
func (NoopTracer) ServiceName() string { return "" }

// Tags implements Tracer.
func (NoopTracer) Tags() map[string]interface{} { return nil }

// Flush implements Tracer.
func (NoopTracer) Flush() {}

// Close implements Tracer.
func (NoopTracer) Close() {}
