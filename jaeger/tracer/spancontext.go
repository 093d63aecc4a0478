// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/sumatoreo/jaeger-go/jaeger"
)

const (
	// FlagSampled is set on contexts whose trace was chosen for export.
	FlagSampled byte = 1 << 0

	// FlagDebug is set on contexts whose trace was forced into sampling
	// by the caller. Debug contexts are always sampled as well.
	FlagDebug byte = 1 << 1
)

var _ jaeger.SpanContext = (*SpanContext)(nil)

type traceID [16]byte // traceID in big endian, i.e. <upper><lower>

var emptyTraceID traceID

func (t *traceID) Lower() uint64 {
	return binary.BigEndian.Uint64(t[8:])
}

func (t *traceID) Upper() uint64 {
	return binary.BigEndian.Uint64(t[:8])
}

func (t *traceID) SetLower(i uint64) {
	binary.BigEndian.PutUint64(t[8:], i)
}

func (t *traceID) SetUpper(i uint64) {
	binary.BigEndian.PutUint64(t[:8], i)
}

func (t *traceID) Empty() bool {
	return *t == emptyTraceID
}

func (t *traceID) HasUpper() bool {
	return t.Upper() != 0
}

// String returns the lower-case hex form of the id without padding, or as
// 32 digits when the upper half is set.
func (t *traceID) String() string {
	if t.HasUpper() {
		return fmt.Sprintf("%016x%016x", t.Upper(), t.Lower())
	}
	return strconv.FormatUint(t.Lower(), 16)
}

// setFromHex parses an id of up to 32 hex digits. Anything longer than 16
// digits fills the upper half.
func (t *traceID) setFromHex(s string) error {
	if len(s) == 0 || len(s) > 32 {
		return fmt.Errorf("trace id %q has invalid length", s)
	}
	var hi string
	lo := s
	if len(s) > 16 {
		hi, lo = s[:len(s)-16], s[len(s)-16:]
	}
	l, err := strconv.ParseUint(lo, 16, 64)
	if err != nil {
		return fmt.Errorf("malformed trace id %q: %s", s, err)
	}
	var u uint64
	if hi != "" {
		if u, err = strconv.ParseUint(hi, 16, 64); err != nil {
			return fmt.Errorf("malformed trace id %q: %s", s, err)
		}
	}
	t.SetUpper(u)
	t.SetLower(l)
	return nil
}

// SpanContext represents a span state that can propagate to descendant spans
// and across process boundaries. It contains all the information needed to
// spawn a direct descendant of the span that it belongs to.
//
// A SpanContext is immutable once it is reachable from more than one
// goroutine: adding baggage returns a copy.
type SpanContext struct {
	traceID  traceID
	spanID   uint64
	parentID uint64
	flags    byte
	baggage  map[string]string // never written after the context is published
}

// NewSpanContext returns a context carrying the given identifiers. The
// baggage map is copied.
func NewSpanContext(traceIDHigh, traceIDLow, spanID, parentID uint64, flags byte, baggage map[string]string) *SpanContext {
	var b map[string]string
	if len(baggage) > 0 {
		b = make(map[string]string, len(baggage))
		for k, v := range baggage {
			b[k] = v
		}
	}
	return newSpanContext(traceIDHigh, traceIDLow, spanID, parentID, flags, b)
}

// newSpanContext is like NewSpanContext but shares the baggage map, which
// the caller must not modify afterwards.
func newSpanContext(traceIDHigh, traceIDLow, spanID, parentID uint64, flags byte, baggage map[string]string) *SpanContext {
	c := &SpanContext{
		spanID:   spanID,
		parentID: parentID,
		flags:    flags,
		baggage:  baggage,
	}
	c.traceID.SetUpper(traceIDHigh)
	c.traceID.SetLower(traceIDLow)
	return c
}

// FromGenericCtx converts a jaeger.SpanContext to a *SpanContext, which can be used
// to start child spans. Contexts of other implementations keep their ids and
// baggage; their flags are taken from a Flags() byte method when they have one.
func FromGenericCtx(c jaeger.SpanContext) *SpanContext {
	switch ctx := c.(type) {
	case nil:
		return nil
	case *SpanContext:
		return ctx
	}
	sc := &SpanContext{spanID: c.SpanID()}
	sc.traceID.SetLower(c.TraceID())
	if f, ok := c.(interface{ Flags() byte }); ok {
		sc.flags = f.Flags()
	}
	c.ForeachBaggageItem(func(k, v string) bool {
		if sc.baggage == nil {
			sc.baggage = make(map[string]string)
		}
		sc.baggage[k] = v
		return true
	})
	return sc
}

// TraceID implements jaeger.SpanContext. It returns the lower 64 bits of the
// trace id.
func (c *SpanContext) TraceID() uint64 {
	return c.TraceIDLow()
}

// TraceIDLow returns the lower 64 bits of the trace id.
func (c *SpanContext) TraceIDLow() uint64 {
	if c == nil {
		return 0
	}
	return c.traceID.Lower()
}

// TraceIDHigh returns the upper 64 bits of the trace id. It is zero unless
// the trace was started in 128-bit mode.
func (c *SpanContext) TraceIDHigh() uint64 {
	if c == nil {
		return 0
	}
	return c.traceID.Upper()
}

// TraceIDHex returns the trace id the way it is written on the wire.
func (c *SpanContext) TraceIDHex() string {
	if c == nil {
		return "0"
	}
	return c.traceID.String()
}

// SpanID implements jaeger.SpanContext.
func (c *SpanContext) SpanID() uint64 {
	if c == nil {
		return 0
	}
	return c.spanID
}

// ParentID returns the id of the parent span, or 0 for a root span.
func (c *SpanContext) ParentID() uint64 {
	if c == nil {
		return 0
	}
	return c.parentID
}

// Flags returns the flags byte carried by the context.
func (c *SpanContext) Flags() byte {
	if c == nil {
		return 0
	}
	return c.flags
}

// IsSampled reports whether the trace is sampled.
func (c *SpanContext) IsSampled() bool {
	return c.Flags()&FlagSampled != 0
}

// IsDebug reports whether the trace was forced into sampling.
func (c *SpanContext) IsDebug() bool {
	return c.Flags()&FlagDebug != 0
}

// IsValid reports whether the context carries a trace id and a span id.
func (c *SpanContext) IsValid() bool {
	return c != nil && c.traceID.Lower() != 0 && c.spanID != 0
}

// BaggageItem returns the baggage value for key, or "".
func (c *SpanContext) BaggageItem(key string) string {
	if c == nil {
		return ""
	}
	return c.baggage[key]
}

// ForeachBaggageItem implements jaeger.SpanContext.
func (c *SpanContext) ForeachBaggageItem(handler func(k, v string) bool) {
	if c == nil {
		return
	}
	for k, v := range c.baggage {
		if !handler(k, v) {
			break
		}
	}
}

// WithBaggageItem returns a copy of the context with key set to value. The
// receiver is left untouched.
func (c *SpanContext) WithBaggageItem(key, value string) *SpanContext {
	if c == nil {
		return nil
	}
	nc := *c
	nc.baggage = make(map[string]string, len(c.baggage)+1)
	for k, v := range c.baggage {
		nc.baggage[k] = v
	}
	nc.baggage[key] = value
	return &nc
}

// String returns the context in the native "trace:span:parent:flags" form.
func (c *SpanContext) String() string {
	if c == nil {
		return "0:0:0:0"
	}
	return c.traceID.String() + ":" +
		strconv.FormatUint(c.spanID, 16) + ":" +
		strconv.FormatUint(c.parentID, 16) + ":" +
		strconv.FormatUint(uint64(c.flags), 16)
}
