// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package http

import (
	"net/http"

	"github.com/sumatoreo/jaeger-go/jaeger"
	"github.com/sumatoreo/jaeger-go/jaeger/tracer"
)

const componentName = "net/http"

type config struct {
	operationName func(*http.Request) string
	ignoreRequest func(*http.Request) bool
	isStatusError func(statusCode int) bool
	spanOpts      []jaeger.StartSpanOption
}

// Option represents an option that can be passed to NewServeMux or WrapHandler.
type Option func(*config)

func newConfig(opts ...Option) *config {
	cfg := &config{
		operationName: func(r *http.Request) string { return "HTTP " + r.Method },
		ignoreRequest: func(*http.Request) bool { return false },
		isStatusError: isServerError,
	}
	for _, fn := range opts {
		fn(cfg)
	}
	return cfg
}

// WithOperationName sets the function naming the span of each request. By
// default spans are named after the request method, e.g. "HTTP GET".
func WithOperationName(fn func(*http.Request) string) Option {
	return func(cfg *config) {
		cfg.operationName = fn
	}
}

// WithIgnoreRequest holds the function to use for determining if the
// incoming HTTP request should not be traced.
func WithIgnoreRequest(f func(*http.Request) bool) Option {
	return func(cfg *config) {
		cfg.ignoreRequest = f
	}
}

// WithStatusCheck sets a span to be an error if the passed function
// returns true for a given status code.
func WithStatusCheck(fn func(statusCode int) bool) Option {
	return func(cfg *config) {
		cfg.isStatusError = fn
	}
}

// WithSpanOptions defines a set of additional span options to be added to
// spans started by the integration.
func WithSpanOptions(opts ...jaeger.StartSpanOption) Option {
	return func(cfg *config) {
		cfg.spanOpts = append(cfg.spanOpts, opts...)
	}
}

type roundTripperConfig struct {
	operationName func(*http.Request) string
	ignoreRequest func(*http.Request) bool
	isStatusError func(statusCode int) bool
	before        RoundTripperBeforeFunc
	after         RoundTripperAfterFunc
	propagation   bool
	errCheck      func(err error) bool
	spanOpts      []jaeger.StartSpanOption
}

// RoundTripperOption represents an option that can be passed to
// WrapRoundTripper and WrapClient.
type RoundTripperOption func(*roundTripperConfig)

func newRoundTripperConfig(opts ...RoundTripperOption) *roundTripperConfig {
	cfg := &roundTripperConfig{
		operationName: func(r *http.Request) string { return "HTTP " + r.Method },
		ignoreRequest: func(*http.Request) bool { return false },
		isStatusError: isServerError,
		propagation:   true,
	}
	for _, fn := range opts {
		fn(cfg)
	}
	return cfg
}

// A RoundTripperBeforeFunc can be used to modify a span before an http
// RoundTrip is made.
type RoundTripperBeforeFunc func(*http.Request, *tracer.Span)

// A RoundTripperAfterFunc can be used to modify a span after an http
// RoundTrip is made. It is possible for the http Response to be nil.
type RoundTripperAfterFunc func(*http.Response, *tracer.Span)

// RTWithOperationName sets the function naming the span of each outgoing
// request.
func RTWithOperationName(fn func(*http.Request) string) RoundTripperOption {
	return func(cfg *roundTripperConfig) {
		cfg.operationName = fn
	}
}

// RTWithIgnoreRequest holds the function to use for determining if the
// outgoing HTTP request should not be traced.
func RTWithIgnoreRequest(f func(*http.Request) bool) RoundTripperOption {
	return func(cfg *roundTripperConfig) {
		cfg.ignoreRequest = f
	}
}

// RTWithStatusCheck sets a span to be an error if the passed function
// returns true for the response status code.
func RTWithStatusCheck(fn func(statusCode int) bool) RoundTripperOption {
	return func(cfg *roundTripperConfig) {
		cfg.isStatusError = fn
	}
}

// RTWithSpanOptions defines a set of additional span options to be added to
// spans started by the round tripper.
func RTWithSpanOptions(opts ...jaeger.StartSpanOption) RoundTripperOption {
	return func(cfg *roundTripperConfig) {
		cfg.spanOpts = append(cfg.spanOpts, opts...)
	}
}

// WithBefore adds a RoundTripperBeforeFunc to the RoundTripper
// config.
func WithBefore(f RoundTripperBeforeFunc) RoundTripperOption {
	return func(cfg *roundTripperConfig) {
		cfg.before = f
	}
}

// WithAfter adds a RoundTripperAfterFunc to the RoundTripper
// config.
func WithAfter(f RoundTripperAfterFunc) RoundTripperOption {
	return func(cfg *roundTripperConfig) {
		cfg.after = f
	}
}

// WithPropagation enables/disables propagation for tracing headers.
// Disabling propagation will disconnect this trace from any downstream traces.
func WithPropagation(propagation bool) RoundTripperOption {
	return func(cfg *roundTripperConfig) {
		cfg.propagation = propagation
	}
}

// WithErrorCheck specifies a function fn which determines whether the passed
// error should be marked as an error. The fn is called whenever an http operation
// finishes with an error
func WithErrorCheck(fn func(err error) bool) RoundTripperOption {
	return func(cfg *roundTripperConfig) {
		cfg.errCheck = fn
	}
}

func isServerError(statusCode int) bool {
	return statusCode >= 500 && statusCode < 600
}
