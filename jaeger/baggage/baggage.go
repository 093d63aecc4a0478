// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2024 Datadog, Inc.

// Package baggage reads and writes the baggage of the span active in a
// context.Context. Baggage set here travels with the span: it is inherited by
// the spans started from it and propagated by Inject.
package baggage // import "github.com/sumatoreo/jaeger-go/jaeger/baggage"

import (
	"context"

	"github.com/sumatoreo/jaeger-go/jaeger/tracer"
)

// Set sets or updates a single baggage key/value pair on the active span of
// ctx. It reports false, and does nothing, when ctx holds no span.
func Set(ctx context.Context, key, value string) bool {
	span, ok := tracer.SpanFromContext(ctx)
	if !ok {
		return false
	}
	span.SetBaggageItem(key, value)
	return true
}

// Get retrieves the value associated with a baggage key.
// If the key isn't found, it returns an empty string.
func Get(ctx context.Context, key string) (string, bool) {
	var (
		value string
		found bool
	)
	ForeachBaggageItem(ctx, func(k, v string) bool {
		if k == key {
			value, found = v, true
			return false
		}
		return true
	})
	return value, found
}

// All returns a copy of all baggage items of the active span of ctx, or nil
// when there are none.
func All(ctx context.Context) map[string]string {
	var all map[string]string
	ForeachBaggageItem(ctx, func(k, v string) bool {
		if all == nil {
			all = make(map[string]string)
		}
		all[k] = v
		return true
	})
	return all
}

// ForeachBaggageItem iterates over the baggage items of the active span of
// ctx until handler returns false.
func ForeachBaggageItem(ctx context.Context, handler func(k, v string) bool) {
	span, ok := tracer.SpanFromContext(ctx)
	if !ok {
		return
	}
	span.Context().ForeachBaggageItem(handler)
}
