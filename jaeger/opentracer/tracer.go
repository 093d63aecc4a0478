// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package opentracer provides a wrapper on top of the tracer package that
// satisfies the opentracing.Tracer interface.
//
// When using the opentracing API, the native tracer can be used in parallel:
// spans started through either API share contexts, so an opentracing span
// may be the parent of a native one and vice versa.
package opentracer // import "github.com/sumatoreo/jaeger-go/jaeger/opentracer"

import (
	"errors"

	opentracing "github.com/opentracing/opentracing-go"

	"github.com/sumatoreo/jaeger-go/jaeger"
	"github.com/sumatoreo/jaeger-go/jaeger/tracer"
)

// New returns an opentracing compatible version of t.
func New(t tracer.Tracer) opentracing.Tracer {
	return &opentracer{t}
}

var _ opentracing.Tracer = (*opentracer)(nil)

// opentracer implements opentracing.Tracer on top of tracer.Tracer.
type opentracer struct{ tracer.Tracer }

// StartSpan implements opentracing.Tracer.
func (t *opentracer) StartSpan(operationName string, options ...opentracing.StartSpanOption) opentracing.Span {
	var sso opentracing.StartSpanOptions
	for _, o := range options {
		o.Apply(&sso)
	}
	opts := []jaeger.StartSpanOption{tracer.StartTime(sso.StartTime)}
	for _, ref := range sso.References {
		v, ok := ref.ReferencedContext.(jaeger.SpanContext)
		if !ok {
			continue
		}
		switch ref.Type {
		case opentracing.ChildOfRef:
			opts = append(opts, tracer.ChildOf(v))
		case opentracing.FollowsFromRef:
			opts = append(opts, tracer.FollowsFrom(v))
		}
	}
	for k, v := range sso.Tags {
		opts = append(opts, tracer.Tag(k, v))
	}
	return &span{
		Span:       t.Tracer.StartSpan(operationName, opts...),
		opentracer: t,
	}
}

// Inject implements opentracing.Tracer.
func (t *opentracer) Inject(ctx opentracing.SpanContext, format interface{}, carrier interface{}) error {
	sctx, ok := ctx.(jaeger.SpanContext)
	if !ok {
		return opentracing.ErrInvalidSpanContext
	}
	f, ok := toFormat(format)
	if !ok {
		return opentracing.ErrUnsupportedFormat
	}
	return toOpentracingError(t.Tracer.Inject(sctx, f, carrier))
}

// Extract implements opentracing.Tracer. Unlike tracer.Tracer, it returns
// opentracing.ErrSpanContextNotFound when the carrier holds no trace.
func (t *opentracer) Extract(format interface{}, carrier interface{}) (opentracing.SpanContext, error) {
	f, ok := toFormat(format)
	if !ok {
		return nil, opentracing.ErrUnsupportedFormat
	}
	ctx, err := t.Tracer.Extract(f, carrier)
	if err != nil {
		return nil, toOpentracingError(err)
	}
	if ctx == nil {
		return nil, opentracing.ErrSpanContextNotFound
	}
	return ctx, nil
}

func toFormat(format interface{}) (jaeger.Format, bool) {
	switch format {
	case opentracing.TextMap:
		return jaeger.TextMap, true
	case opentracing.HTTPHeaders:
		return jaeger.HTTPHeaders, true
	default:
		return 0, false
	}
}

// toOpentracingError maps the tracer's propagation errors to the sentinel
// values opentracing callers compare against.
func toOpentracingError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, tracer.ErrInvalidCarrier):
		return opentracing.ErrInvalidCarrier
	case errors.Is(err, tracer.ErrInvalidSpanContext):
		return opentracing.ErrInvalidSpanContext
	case errors.Is(err, tracer.ErrSpanContextCorrupted):
		return opentracing.ErrSpanContextCorrupted
	case errors.Is(err, tracer.ErrSpanContextNotFound):
		return opentracing.ErrSpanContextNotFound
	case errors.Is(err, tracer.ErrUnsupportedFormat):
		return opentracing.ErrUnsupportedFormat
	default:
		return err
	}
}
