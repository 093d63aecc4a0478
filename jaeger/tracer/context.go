// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"context"
)

// ContextWithSpan returns a copy of the given context in which s is the active
// span. Closing the span's scope is left to the caller; the span is not
// finished by it.
func ContextWithSpan(ctx context.Context, s *Span) context.Context {
	_, ctx = activate(ctx, s, false)
	return ctx
}

// SpanFromContext returns the active span of the given context. A second return
// value indicates if a span was found in the context.
func SpanFromContext(ctx context.Context) (*Span, bool) {
	s := activeScope(ctx)
	if s == nil || s.span == nil {
		// We may have a nil *Span in a scope, in which case we need to act
		// as if there was nothing, or we would forcefully un-do a ChildOf.
		return nil, false
	}
	return s.span, true
}
