// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package http provides functions to trace the net/http package (https://golang.org/pkg/net/http).
package http // import "github.com/sumatoreo/jaeger-go/contrib/net/http"

import (
	"net/http"
	"strings"

	"github.com/sumatoreo/jaeger-go/jaeger/tracer"
)

// ServeMux is an HTTP request multiplexer that traces all the incoming requests.
type ServeMux struct {
	*http.ServeMux
	tracer tracer.Tracer
	cfg    *config
}

// NewServeMux allocates and returns an http.ServeMux whose requests are
// traced with t. Spans are named after the method and the matched pattern
// unless WithOperationName is given.
func NewServeMux(t tracer.Tracer, opts ...Option) *ServeMux {
	mux := &ServeMux{
		ServeMux: http.NewServeMux(),
		tracer:   t,
	}
	opts = append([]Option{WithOperationName(mux.routeName)}, opts...)
	mux.cfg = newConfig(opts...)
	return mux
}

func (mux *ServeMux) routeName(r *http.Request) string {
	_, route := mux.Handler(r)
	switch {
	case route == "":
		return "HTTP " + r.Method
	case strings.HasPrefix(route, r.Method+" "):
		return "HTTP " + route
	}
	return "HTTP " + r.Method + " " + route
}

// ServeHTTP dispatches the request to the handler
// whose pattern most closely matches the request URL.
// We only need to rewrite this function to be able to trace
// all the incoming requests to the underlying multiplexer
func (mux *ServeMux) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	traceAndServe(mux.ServeMux, w, r, mux.tracer, mux.cfg)
}

// WrapHandler wraps an http.Handler with tracing using t.
func WrapHandler(h http.Handler, t tracer.Tracer, opts ...Option) http.Handler {
	cfg := newConfig(opts...)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceAndServe(h, w, r, t, cfg)
	})
}
