// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package jaeger contains the types shared by the Jaeger-compatible tracing
// library and its integrations, as well as a set of sub-packages containing
// the implementations: the native implementation ("tracer"), a wrapper that
// can be used with Opentracing ("opentracer") and a set of tag names ("ext").
//
// To get started, visit the documentation of package "tracer".
package jaeger // import "github.com/sumatoreo/jaeger-go/jaeger"

import (
	"strconv"
	"time"
)

// SpanContext represents a span state that can propagate to descendant spans
// and across process boundaries. It contains all the information needed to
// spawn a direct descendant of the span that it belongs to.
type SpanContext interface {
	// SpanID returns the span ID that this context is carrying.
	SpanID() uint64

	// TraceID returns the lower 64 bits of the trace ID that this context
	// is carrying.
	TraceID() uint64

	// ForeachBaggageItem provides an iterator over the key/value pairs set as
	// baggage within this context. Iteration stops when the handler returns
	// false.
	ForeachBaggageItem(handler func(k, v string) bool)
}

// ReferenceType describes the relationship between a span and one of the
// spans it references.
type ReferenceType int

const (
	// ChildOfRef marks the referenced span as the parent of the new span.
	ChildOfRef ReferenceType = iota

	// FollowsFromRef marks the referenced span as a causal predecessor
	// which does not depend on the result of the new span.
	FollowsFromRef
)

func (t ReferenceType) String() string {
	switch t {
	case ChildOfRef:
		return "child_of"
	case FollowsFromRef:
		return "follows_from"
	default:
		return "reference(" + strconv.Itoa(int(t)) + ")"
	}
}

// Reference links a span to the context of another span.
type Reference struct {
	Type    ReferenceType
	Context SpanContext
}

// Format identifies the kind of carrier a SpanContext is injected into or
// extracted from.
type Format int

const (
	// Binary represents a SpanContext as opaque bytes. The tracer does not
	// support it; it exists so that callers get a clear error instead of a
	// silent fallback.
	Binary Format = iota

	// TextMap represents a SpanContext as key/value string pairs. Keys and
	// values are written verbatim.
	TextMap

	// HTTPHeaders represents a SpanContext as HTTP header key/value pairs.
	// Values that are not header-safe are URL-escaped.
	HTTPHeaders
)

func (f Format) String() string {
	switch f {
	case Binary:
		return "binary"
	case TextMap:
		return "text_map"
	case HTTPHeaders:
		return "http_headers"
	default:
		return "format(" + strconv.Itoa(int(f)) + ")"
	}
}

// StartSpanOption is a configuration option that can be used with a Tracer's StartSpan method.
type StartSpanOption func(cfg *StartSpanConfig)

// StartSpanConfig holds the configuration for starting a new span. It is usually passed
// around by reference to one or more StartSpanOption functions which shape it into its
// final form.
type StartSpanConfig struct {
	// StartTime holds the time that should be used as the start time of the span.
	// Implementations should use the current time when StartTime.IsZero().
	StartTime time.Time

	// Tags holds a set of key/value pairs that should be set as metadata on the
	// new span.
	Tags map[string]interface{}

	// References holds the spans that the new span relates to, in the order
	// supplied by the caller. The first ChildOfRef reference is the parent.
	References []Reference

	// FinishSpanOnClose reports whether closing the scope that activates the
	// new span should also finish it.
	FinishSpanOnClose bool
}

// Parent returns the context of the first ChildOfRef reference, or nil when
// the configuration describes a root span.
func (cfg *StartSpanConfig) Parent() SpanContext {
	for _, ref := range cfg.References {
		if ref.Type == ChildOfRef && ref.Context != nil {
			return ref.Context
		}
	}
	return nil
}

// FinishOption is a configuration option that can be used with a Span's Finish method.
type FinishOption func(cfg *FinishConfig)

// FinishConfig holds the configuration for finishing a span. It is usually passed around by
// reference to one or more FinishOption functions which shape it into its final form.
type FinishConfig struct {
	// FinishTime represents the time that should be set as finishing time for the
	// span. Implementations should use the current time when FinishTime.IsZero().
	FinishTime time.Time

	// Error holds an optional error that should be set on the span before
	// finishing.
	Error error
}
