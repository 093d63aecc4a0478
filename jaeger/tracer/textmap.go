// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/openzipkin/zipkin-go/model"
	"github.com/openzipkin/zipkin-go/propagation/b3"

	"github.com/sumatoreo/jaeger-go/jaeger"
)

// HTTPHeadersCarrier wraps an http.Header as a TextMapWriter and TextMapReader, allowing
// it to be used using the provided Propagator implementation.
type HTTPHeadersCarrier http.Header

var _ TextMapWriter = (*HTTPHeadersCarrier)(nil)
var _ TextMapReader = (*HTTPHeadersCarrier)(nil)

// Set implements TextMapWriter.
func (c HTTPHeadersCarrier) Set(key, val string) {
	http.Header(c).Set(key, val)
}

// ForeachKey implements TextMapReader.
func (c HTTPHeadersCarrier) ForeachKey(handler func(key, val string) error) error {
	for k, vals := range c {
		for _, v := range vals {
			if err := handler(k, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// TextMapCarrier allows the use of a regular map[string]string as both TextMapWriter
// and TextMapReader, making it compatible with the provided Propagator.
type TextMapCarrier map[string]string

var _ TextMapWriter = (*TextMapCarrier)(nil)
var _ TextMapReader = (*TextMapCarrier)(nil)

// Set implements TextMapWriter.
func (c TextMapCarrier) Set(key, val string) {
	c[key] = val
}

// ForeachKey conforms to the TextMapReader interface.
func (c TextMapCarrier) ForeachKey(handler func(key, val string) error) error {
	for k, v := range c {
		if err := handler(k, v); err != nil {
			return err
		}
	}
	return nil
}

// Propagation styles accepted by WithPropagation and JAEGER_PROPAGATION.
const (
	// PropagationJaeger selects the native uber-trace-id encoding.
	PropagationJaeger = "jaeger"

	// PropagationB3 selects the Zipkin B3 encoding.
	PropagationB3 = "b3"

	// PropagationZipkin is an alias of PropagationB3.
	PropagationZipkin = "zipkin"
)

const (
	// DefaultTraceContextHeader specifies the key that will be used in HTTP
	// headers or text maps to store the native trace context.
	DefaultTraceContextHeader = "uber-trace-id"

	// DefaultBaggageHeaderPrefix specifies the prefix that will be used in
	// HTTP headers or text maps to prefix baggage keys of the native encoding.
	DefaultBaggageHeaderPrefix = "uberctx-"

	// DefaultB3BaggageHeaderPrefix specifies the prefix used for baggage keys
	// of the B3 encoding.
	DefaultB3BaggageHeaderPrefix = "baggage-"
)

// PropagatorConfig defines the configuration for initializing a propagator.
type PropagatorConfig struct {
	// BaggagePrefix specifies the prefix that will be used to store baggage
	// items in a map. It defaults to the style's default prefix.
	BaggagePrefix string

	// TraceHeader specifies the map key that will be used to store the
	// native trace context. It defaults to DefaultTraceContextHeader and is
	// ignored by the B3 propagator.
	TraceHeader string

	// URLEncoding URL-escapes baggage values on inject and unescapes them on
	// extract. The tracer enables it for the HTTPHeaders format.
	URLEncoding bool

	// DecimalIDs writes and reads the native span, parent and 64-bit trace
	// ids in base 10. 128-bit trace ids are always 32 hex digits.
	DecimalIDs bool

	// B3SingleHeader injects the single "b3" header instead of the
	// multi-header form. Extraction accepts both.
	B3SingleHeader bool

	// httpHeaders is set for the HTTPHeaders binding. http.Header
	// canonicalizes keys, so extracted baggage keys are lower-cased there.
	httpHeaders bool
}

// NewJaegerPropagator returns a propagator for the native uber-trace-id
// encoding. To use the defaults, nil may be provided in place of the config.
// Ids are read as hex unless DecimalIDs is set, so a decimal id sent by a
// peer without that setting is misread rather than rejected.
func NewJaegerPropagator(cfg *PropagatorConfig) Propagator {
	c := PropagatorConfig{}
	if cfg != nil {
		c = *cfg
	}
	if c.TraceHeader == "" {
		c.TraceHeader = DefaultTraceContextHeader
	}
	if c.BaggagePrefix == "" {
		c.BaggagePrefix = DefaultBaggageHeaderPrefix
	}
	c.TraceHeader = strings.ToLower(c.TraceHeader)
	c.BaggagePrefix = strings.ToLower(c.BaggagePrefix)
	return &propagatorJaeger{cfg: c}
}

// NewB3Propagator returns a propagator for the Zipkin B3 encoding. To use the
// defaults, nil may be provided in place of the config.
func NewB3Propagator(cfg *PropagatorConfig) Propagator {
	c := PropagatorConfig{}
	if cfg != nil {
		c = *cfg
	}
	if c.BaggagePrefix == "" {
		c.BaggagePrefix = DefaultB3BaggageHeaderPrefix
	}
	c.BaggagePrefix = strings.ToLower(c.BaggagePrefix)
	return &propagatorB3{cfg: c}
}

// newPropagators binds the TextMap and HTTPHeaders formats to propagators of
// the given style. Binary is never bound.
func newPropagators(style string, cfg *PropagatorConfig) (map[jaeger.Format]Propagator, error) {
	textCfg := PropagatorConfig{}
	if cfg != nil {
		textCfg = *cfg
	}
	httpCfg := textCfg
	httpCfg.URLEncoding = true
	httpCfg.httpHeaders = true
	switch strings.ToLower(style) {
	case "", PropagationJaeger:
		return map[jaeger.Format]Propagator{
			jaeger.TextMap:     NewJaegerPropagator(&textCfg),
			jaeger.HTTPHeaders: NewJaegerPropagator(&httpCfg),
		}, nil
	case PropagationB3, PropagationZipkin:
		return map[jaeger.Format]Propagator{
			jaeger.TextMap:     NewB3Propagator(&textCfg),
			jaeger.HTTPHeaders: NewB3Propagator(&httpCfg),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPropagation, style)
	}
}

func toSpanContext(spanCtx jaeger.SpanContext) (*SpanContext, error) {
	ctx, ok := spanCtx.(*SpanContext)
	if !ok || !ctx.IsValid() {
		return nil, ErrInvalidSpanContext
	}
	return ctx, nil
}

func injectBaggage(ctx *SpanContext, writer TextMapWriter, prefix string, urlEncoding bool) {
	ctx.ForeachBaggageItem(func(k, v string) bool {
		if urlEncoding {
			v = url.QueryEscape(v)
		}
		writer.Set(prefix+k, v)
		return true
	})
}

// baggageKey strips the baggage prefix from the carrier key k, which the
// caller matched case-insensitively. The original case of the key is kept
// unless it was lost to http.Header canonicalization.
func (c *PropagatorConfig) baggageKey(reader TextMapReader, k string) string {
	key := k[len(c.BaggagePrefix):]
	if _, ok := reader.(HTTPHeadersCarrier); ok || c.httpHeaders {
		return strings.ToLower(key)
	}
	return key
}

func extractBaggage(baggage *map[string]string, key, val string, urlEncoding bool) {
	if urlEncoding {
		if uv, err := url.QueryUnescape(val); err == nil {
			val = uv
		}
	}
	if *baggage == nil {
		*baggage = make(map[string]string)
	}
	(*baggage)[key] = val
}

// propagatorJaeger implements the native encoding: a single header holding
// "{trace}:{span}:{parent}:{flags}" plus one header per baggage item.
type propagatorJaeger struct {
	cfg PropagatorConfig
}

func (p *propagatorJaeger) Inject(spanCtx jaeger.SpanContext, carrier interface{}) error {
	switch c := carrier.(type) {
	case TextMapWriter:
		return p.injectTextMap(spanCtx, c)
	default:
		return ErrInvalidCarrier
	}
}

func (p *propagatorJaeger) injectTextMap(spanCtx jaeger.SpanContext, writer TextMapWriter) error {
	ctx, err := toSpanContext(spanCtx)
	if err != nil {
		return err
	}
	writer.Set(p.cfg.TraceHeader, p.encode(ctx))
	injectBaggage(ctx, writer, p.cfg.BaggagePrefix, p.cfg.URLEncoding)
	return nil
}

func (p *propagatorJaeger) encode(ctx *SpanContext) string {
	if !p.cfg.DecimalIDs {
		return ctx.String()
	}
	tid := strconv.FormatUint(ctx.TraceIDLow(), 10)
	if ctx.traceID.HasUpper() {
		tid = ctx.TraceIDHex()
	}
	return tid + ":" +
		strconv.FormatUint(ctx.spanID, 10) + ":" +
		strconv.FormatUint(ctx.parentID, 10) + ":" +
		strconv.FormatUint(uint64(ctx.flags), 16)
}

func (p *propagatorJaeger) Extract(carrier interface{}) (*SpanContext, error) {
	switch c := carrier.(type) {
	case TextMapReader:
		return p.extractTextMap(c)
	default:
		return nil, ErrInvalidCarrier
	}
}

func (p *propagatorJaeger) extractTextMap(reader TextMapReader) (*SpanContext, error) {
	var (
		ctx     *SpanContext
		baggage map[string]string
	)
	err := reader.ForeachKey(func(k, v string) error {
		key := strings.ToLower(k)
		switch {
		case key == p.cfg.TraceHeader:
			if p.cfg.URLEncoding {
				if uv, err := url.QueryUnescape(v); err == nil {
					v = uv
				}
			}
			c, err := p.decode(v)
			if err != nil {
				return err
			}
			ctx = c
		case strings.HasPrefix(key, p.cfg.BaggagePrefix):
			extractBaggage(&baggage, p.cfg.baggageKey(reader, k), v, p.cfg.URLEncoding)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		return nil, ErrSpanContextNotFound
	}
	ctx.baggage = baggage
	return ctx, nil
}

func (p *propagatorJaeger) decode(v string) (*SpanContext, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil, ErrSpanContextNotFound
	}
	parts := strings.Split(v, ":")
	if len(parts) != 4 {
		return nil, fmt.Errorf("%w: %q does not have 4 fields", ErrSpanContextCorrupted, v)
	}
	base := 16
	if p.cfg.DecimalIDs {
		base = 10
	}
	var ctx SpanContext
	if base == 10 && len(parts[0]) <= 20 {
		lo, err := strconv.ParseUint(parts[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed trace id %q", ErrSpanContextCorrupted, parts[0])
		}
		ctx.traceID.SetLower(lo)
	} else if err := ctx.traceID.setFromHex(parts[0]); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSpanContextCorrupted, err)
	}
	var err error
	if ctx.spanID, err = strconv.ParseUint(parts[1], base, 64); err != nil {
		return nil, fmt.Errorf("%w: malformed span id %q", ErrSpanContextCorrupted, parts[1])
	}
	if ctx.parentID, err = strconv.ParseUint(parts[2], base, 64); err != nil {
		return nil, fmt.Errorf("%w: malformed parent id %q", ErrSpanContextCorrupted, parts[2])
	}
	flags, err := strconv.ParseUint(parts[3], 16, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed flags %q", ErrSpanContextCorrupted, parts[3])
	}
	ctx.flags = byte(flags)
	if !ctx.IsValid() {
		return nil, ErrSpanContextNotFound
	}
	return &ctx, nil
}

// propagatorB3 implements the Zipkin B3 encoding, in its multi-header form
// or the single "b3" header form.
type propagatorB3 struct {
	cfg PropagatorConfig
}

func (p *propagatorB3) Inject(spanCtx jaeger.SpanContext, carrier interface{}) error {
	switch c := carrier.(type) {
	case TextMapWriter:
		return p.injectTextMap(spanCtx, c)
	default:
		return ErrInvalidCarrier
	}
}

func (p *propagatorB3) injectTextMap(spanCtx jaeger.SpanContext, writer TextMapWriter) error {
	ctx, err := toSpanContext(spanCtx)
	if err != nil {
		return err
	}
	sc := model.SpanContext{
		TraceID: model.TraceID{High: ctx.TraceIDHigh(), Low: ctx.TraceIDLow()},
		ID:      model.ID(ctx.SpanID()),
		Debug:   ctx.IsDebug(),
	}
	if pid := ctx.ParentID(); pid != 0 {
		parentID := model.ID(pid)
		sc.ParentID = &parentID
	}
	if !sc.Debug {
		sampled := ctx.IsSampled()
		sc.Sampled = &sampled
	}
	if p.cfg.B3SingleHeader {
		writer.Set(b3.Context, b3.BuildSingleHeader(sc))
	} else {
		writer.Set(b3.TraceID, sc.TraceID.String())
		writer.Set(b3.SpanID, sc.ID.String())
		if sc.ParentID != nil {
			writer.Set(b3.ParentSpanID, sc.ParentID.String())
		}
		if sc.Debug {
			writer.Set(b3.Flags, "1")
		} else if *sc.Sampled {
			writer.Set(b3.Sampled, "1")
		} else {
			writer.Set(b3.Sampled, "0")
		}
	}
	injectBaggage(ctx, writer, p.cfg.BaggagePrefix, p.cfg.URLEncoding)
	return nil
}

func (p *propagatorB3) Extract(carrier interface{}) (*SpanContext, error) {
	switch c := carrier.(type) {
	case TextMapReader:
		return p.extractTextMap(c)
	default:
		return nil, ErrInvalidCarrier
	}
}

func (p *propagatorB3) extractTextMap(reader TextMapReader) (*SpanContext, error) {
	var (
		traceID, spanID, parentID, sampled, flags, single string
		baggage                                           map[string]string
	)
	err := reader.ForeachKey(func(k, v string) error {
		key := strings.ToLower(k)
		switch key {
		case b3.TraceID:
			traceID = v
		case b3.SpanID:
			spanID = v
		case b3.ParentSpanID:
			parentID = v
		case b3.Sampled:
			sampled = v
		case b3.Flags:
			flags = v
		case b3.Context:
			single = v
		default:
			if strings.HasPrefix(key, p.cfg.BaggagePrefix) {
				extractBaggage(&baggage, p.cfg.baggageKey(reader, k), v, p.cfg.URLEncoding)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	var (
		sc    *model.SpanContext
		perr  error
		multi = traceID != "" || spanID != "" || parentID != ""
	)
	switch {
	case multi:
		sc, perr = b3.ParseHeaders(traceID, spanID, parentID, sampled, flags)
	case single != "":
		sc, perr = b3.ParseSingleHeader(single)
	default:
		return nil, ErrSpanContextNotFound
	}
	if perr != nil {
		return nil, fmt.Errorf("%w: %s", ErrSpanContextCorrupted, perr)
	}
	if sc.TraceID.Low == 0 || sc.ID == 0 {
		return nil, ErrSpanContextNotFound
	}
	ctx := &SpanContext{
		spanID:  uint64(sc.ID),
		baggage: baggage,
	}
	ctx.traceID.SetUpper(sc.TraceID.High)
	ctx.traceID.SetLower(sc.TraceID.Low)
	if sc.ParentID != nil {
		ctx.parentID = uint64(*sc.ParentID)
	}
	switch {
	case sc.Debug:
		ctx.flags = FlagDebug | FlagSampled
	case sc.Sampled != nil && *sc.Sampled:
		ctx.flags = FlagSampled
	}
	return ctx, nil
}
