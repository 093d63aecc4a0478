// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/sumatoreo/jaeger-go/internal/log"
	"github.com/sumatoreo/jaeger-go/jaeger"
	"github.com/sumatoreo/jaeger-go/jaeger/ext"
	"github.com/sumatoreo/jaeger-go/jaeger/tracer"
)

type roundTripper struct {
	base   http.RoundTripper
	tracer tracer.Tracer
	cfg    *roundTripperConfig
}

func (rt *roundTripper) RoundTrip(req *http.Request) (res *http.Response, err error) {
	if rt.cfg.ignoreRequest(req) {
		return rt.base.RoundTrip(req)
	}
	// Make a copy of the URL so we don't modify the outgoing request
	url := *req.URL
	url.User = nil // Do not include userinfo in the HTTPURL tag.
	opts := []jaeger.StartSpanOption{
		tracer.Tag(ext.SpanKind, ext.SpanKindClient),
		tracer.Tag(ext.Component, componentName),
		tracer.Tag(ext.HTTPMethod, req.Method),
		tracer.Tag(ext.HTTPURL, url.String()),
		tracer.Tag(ext.PeerService, url.Hostname()),
	}
	opts = append(opts, rt.cfg.spanOpts...)
	span, ctx := rt.tracer.StartSpanFromContext(req.Context(), rt.cfg.operationName(req), opts...)
	defer func() {
		if rt.cfg.after != nil {
			rt.cfg.after(res, span)
		}
		if err != nil && (rt.cfg.errCheck == nil || rt.cfg.errCheck(err)) {
			span.Finish(tracer.WithError(err))
		} else {
			span.Finish()
		}
	}()
	if rt.cfg.before != nil {
		rt.cfg.before(req, span)
	}
	r2 := req.Clone(ctx)
	if rt.cfg.propagation && span != nil {
		// inject the span context into the http request copy
		if err := rt.tracer.Inject(span.Context(), jaeger.HTTPHeaders, tracer.HTTPHeadersCarrier(r2.Header)); err != nil {
			// this should never happen
			log.Error("contrib/net/http: failed to inject http headers: %v", err)
		}
	}
	res, err = rt.base.RoundTrip(r2)
	if err != nil {
		return res, err
	}
	span.SetTag(ext.HTTPCode, strconv.Itoa(res.StatusCode))
	if rt.cfg.isStatusError != nil && rt.cfg.isStatusError(res.StatusCode) {
		span.SetTag(ext.Error, fmt.Errorf("%d: %s", res.StatusCode, http.StatusText(res.StatusCode)))
	}
	return res, err
}

// Unwrap returns the original http.RoundTripper.
func (rt *roundTripper) Unwrap() http.RoundTripper {
	return rt.base
}

// WrapRoundTripper returns a new RoundTripper which traces all requests sent
// over the transport with t. The span context is injected into the headers
// of a copy of each request.
func WrapRoundTripper(rt http.RoundTripper, t tracer.Tracer, opts ...RoundTripperOption) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}
	if wrapped, ok := rt.(*roundTripper); ok {
		rt = wrapped.base
	}
	return &roundTripper{
		base:   rt,
		tracer: t,
		cfg:    newRoundTripperConfig(opts...),
	}
}

// WrapClient modifies the given client's transport to augment it with tracing and returns it.
func WrapClient(c *http.Client, t tracer.Tracer, opts ...RoundTripperOption) *http.Client {
	if c.Transport == nil {
		c.Transport = http.DefaultTransport
	}
	c.Transport = WrapRoundTripper(c.Transport, t, opts...)
	return c
}
