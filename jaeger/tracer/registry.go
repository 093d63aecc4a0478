// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrRegistryClosed is returned by Registry.Tracer once the registry is closed.
var ErrRegistryClosed = errors.New("tracer registry is closed")

// Registry hands out one Tracer per service name. It replaces a process-wide
// global tracer: start-up code creates a Registry and passes it, or the
// tracers it returns, to the code that needs them.
type Registry struct {
	opts []StartOption

	mu      sync.Mutex // guards below fields
	tracers map[string]Tracer
	closed  bool
}

// NewRegistry returns a Registry whose tracers are built with opts. The
// service name is set per tracer by Tracer.
func NewRegistry(opts ...StartOption) *Registry {
	return &Registry{
		opts:    opts,
		tracers: make(map[string]Tracer),
	}
}

// Tracer returns the tracer for serviceName, creating it with the registry's
// options followed by opts on first use. Options passed for an existing
// tracer are ignored. When tracing is disabled the tracer is a NoopTracer.
func (r *Registry) Tracer(serviceName string, opts ...StartOption) (Tracer, error) {
	if strings.TrimSpace(serviceName) == "" {
		return nil, ErrEmptyServiceName
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrRegistryClosed
	}
	if t, ok := r.tracers[serviceName]; ok {
		return t, nil
	}
	all := make([]StartOption, 0, len(r.opts)+len(opts)+1)
	all = append(all, r.opts...)
	all = append(all, opts...)
	all = append(all, WithServiceName(serviceName))
	t, err := New(all...)
	if err != nil {
		return nil, fmt.Errorf("creating tracer for service %q: %w", serviceName, err)
	}
	r.tracers[serviceName] = t
	return t, nil
}

// Services returns the names of the services with a tracer, sorted.
func (r *Registry) Services() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.tracers))
	for name := range r.tracers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Flush flushes every tracer of the registry.
func (r *Registry) Flush() {
	for _, t := range r.snapshot() {
		t.Flush()
	}
}

// Close closes every tracer of the registry. Tracer fails afterwards.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	for _, t := range r.snapshot() {
		t.Close()
	}
}

func (r *Registry) snapshot() []Tracer {
	r.mu.Lock()
	defer r.mu.Unlock()
	tracers := make([]Tracer, 0, len(r.tracers))
	for _, t := range r.tracers {
		tracers = append(tracers, t)
	}
	return tracers
}
