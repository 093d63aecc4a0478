// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"context"
	"sync/atomic"

	"github.com/sumatoreo/jaeger-go/internal"
)

// Scope marks a span as the active one for the code running with the
// context it was activated in. Scopes nest: each one remembers the scope
// that was active when it was created.
type Scope struct {
	span          *Span
	finishOnClose bool
	prev          *Scope
	closed        atomic.Bool
}

// Span returns the span held by the scope.
func (s *Scope) Span() *Span {
	if s == nil {
		return nil
	}
	return s.span
}

// Close deactivates the scope and, if the scope was activated with
// finishOnClose, finishes its span. Calling Close more than once has no
// further effect.
func (s *Scope) Close() {
	if s == nil || !s.closed.CompareAndSwap(false, true) {
		return
	}
	if s.finishOnClose {
		s.span.Finish()
	}
}

// Closed reports whether Close was called.
func (s *Scope) Closed() bool {
	return s == nil || s.closed.Load()
}

// ScopeManager activates spans within a context.Context. It keeps no state of
// its own: the chain of scopes travels with the context, so concurrent
// requests never see each other's active span.
type ScopeManager struct{}

// NewScopeManager returns a ScopeManager.
func NewScopeManager() *ScopeManager { return &ScopeManager{} }

// Activate makes span the active span of the returned context. The scope
// active in ctx, if any, becomes active again once the new scope is closed.
func (*ScopeManager) Activate(ctx context.Context, span *Span, finishOnClose bool) (*Scope, context.Context) {
	return activate(ctx, span, finishOnClose)
}

func activate(ctx context.Context, span *Span, finishOnClose bool) (*Scope, context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	s := &Scope{
		span:          span,
		finishOnClose: finishOnClose,
		prev:          activeScope(ctx),
	}
	return s, context.WithValue(ctx, internal.ActiveScopeKey, s)
}

// Active returns the innermost open scope of ctx, or nil.
func (*ScopeManager) Active(ctx context.Context) *Scope {
	return activeScope(ctx)
}

func activeScope(ctx context.Context) *Scope {
	if ctx == nil {
		return nil
	}
	s, _ := ctx.Value(internal.ActiveScopeKey).(*Scope)
	for s != nil && s.Closed() {
		s = s.prev
	}
	return s
}
