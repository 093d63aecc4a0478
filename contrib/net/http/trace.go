// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/sumatoreo/jaeger-go/jaeger"
	"github.com/sumatoreo/jaeger-go/jaeger/ext"
	"github.com/sumatoreo/jaeger-go/jaeger/tracer"
)

// TraceAndServe serves the handler h using the given ResponseWriter and
// Request inside a server span started by t. The span continues the trace
// found in the request headers, if any, and is active in the context of the
// request passed to h.
func TraceAndServe(h http.Handler, w http.ResponseWriter, r *http.Request, t tracer.Tracer, opts ...Option) {
	cfg := newConfig(opts...)
	traceAndServe(h, w, r, t, cfg)
}

func traceAndServe(h http.Handler, w http.ResponseWriter, r *http.Request, t tracer.Tracer, cfg *config) {
	if cfg.ignoreRequest(r) {
		h.ServeHTTP(w, r)
		return
	}
	spanOpts := []jaeger.StartSpanOption{
		tracer.Tag(ext.SpanKind, ext.SpanKindServer),
		tracer.Tag(ext.Component, componentName),
		tracer.Tag(ext.HTTPMethod, r.Method),
		tracer.Tag(ext.HTTPURL, r.URL.String()),
		tracer.FinishOnClose(true),
	}
	if sctx, err := t.Extract(jaeger.HTTPHeaders, tracer.HTTPHeadersCarrier(r.Header)); err == nil && sctx != nil {
		spanOpts = append(spanOpts, tracer.ChildOf(sctx))
	}
	spanOpts = append(spanOpts, cfg.spanOpts...)
	scope, ctx := t.StartActiveSpan(r.Context(), cfg.operationName(r), spanOpts...)
	rw := newResponseWriter(w)
	defer func() {
		finishRequestSpan(scope, rw.status, cfg.isStatusError)
	}()
	h.ServeHTTP(rw, r.WithContext(ctx))
}

// finishRequestSpan sets the status code tag on the span of scope and
// closes it.
func finishRequestSpan(scope *tracer.Scope, status int, isStatusError func(int) bool) {
	if status == 0 {
		status = http.StatusOK
	}
	span := scope.Span()
	span.SetTag(ext.HTTPCode, strconv.Itoa(status))
	if isStatusError != nil && isStatusError(status) {
		span.SetTag(ext.Error, fmt.Errorf("%d: %s", status, http.StatusText(status)))
	}
	scope.Close()
}

// responseWriter is a small wrapper around an http response writer that will
// intercept and store the status of a request.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w}
}

// Write writes the data to the connection as part of an HTTP reply.
// We explicitly call WriteHeader with the 200 status code
// in order to get it reported into the span.
func (w *responseWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// WriteHeader sends an HTTP response header with status code.
// It also sets the status code to the span.
func (w *responseWriter) WriteHeader(status int) {
	if w.status != 0 {
		return
	}
	w.ResponseWriter.WriteHeader(status)
	w.status = status
}

// Flush implements http.Flusher when the wrapped writer does.
func (w *responseWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap returns the underlying writer, for use by http.ResponseController.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
