// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"sync"

	"github.com/sumatoreo/jaeger-go/internal/log"
)

// Process describes the tracer that produced a batch of spans.
type Process struct {
	ServiceName string
	Tags        map[string]interface{}
}

// Batch is a set of finished spans handed to a Reporter in one call.
type Batch struct {
	Process Process
	Spans   []*Span
}

// Reporter receives the finished spans of a tracer. Encoding and sending
// them to a collector is up to the implementation.
type Reporter interface {
	// Report is called with every non-empty batch of finished spans. The
	// batch is owned by the reporter afterwards.
	Report(batch *Batch)

	// Close flushes whatever the reporter still holds. It may be called more
	// than once when a reporter is shared by several tracers.
	Close()
}

type nullReporter struct{}

// NewNullReporter returns a reporter that discards every span.
func NewNullReporter() Reporter { return nullReporter{} }

func (nullReporter) Report(*Batch) {}

func (nullReporter) Close() {}

// InMemoryReporter keeps every reported span in memory. It is meant for
// tests.
type InMemoryReporter struct {
	mu      sync.Mutex
	batches []*Batch
	closed  bool
}

// NewInMemoryReporter returns an empty InMemoryReporter.
func NewInMemoryReporter() *InMemoryReporter {
	return &InMemoryReporter{}
}

// Report implements Reporter.
func (r *InMemoryReporter) Report(batch *Batch) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = append(r.batches, batch)
}

// Close implements Reporter.
func (r *InMemoryReporter) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

// Spans returns every span reported so far, in reporting order.
func (r *InMemoryReporter) Spans() []*Span {
	r.mu.Lock()
	defer r.mu.Unlock()
	var spans []*Span
	for _, b := range r.batches {
		spans = append(spans, b.Spans...)
	}
	return spans
}

// Batches returns the batches reported so far.
func (r *InMemoryReporter) Batches() []*Batch {
	r.mu.Lock()
	defer r.mu.Unlock()
	batches := make([]*Batch, len(r.batches))
	copy(batches, r.batches)
	return batches
}

// Closed reports whether Close was called.
func (r *InMemoryReporter) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Reset forgets every reported span.
func (r *InMemoryReporter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.batches = nil
}

type loggingReporter struct{}

// NewLoggingReporter returns a reporter that writes one line per span to the
// tracer's logger.
func NewLoggingReporter() Reporter { return loggingReporter{} }

func (loggingReporter) Report(batch *Batch) {
	for _, s := range batch.Spans {
		log.Info("Reporting span %s %s (%s) for service %s", s.Context(), s.OperationName(), s.Duration(), batch.Process.ServiceName)
	}
}

func (loggingReporter) Close() {}

type compositeReporter []Reporter

// NewCompositeReporter returns a reporter forwarding every batch and Close
// call to each of reporters, in order.
func NewCompositeReporter(reporters ...Reporter) Reporter {
	rs := make(compositeReporter, 0, len(reporters))
	for _, r := range reporters {
		if r != nil {
			rs = append(rs, r)
		}
	}
	return rs
}

func (c compositeReporter) Report(batch *Batch) {
	for _, r := range c {
		r.Report(batch)
	}
}

func (c compositeReporter) Close() {
	for _, r := range c {
		r.Close()
	}
}
