// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package zap provides log/span correlation for go.uber.org/zap loggers.
package zap // import "github.com/sumatoreo/jaeger-go/contrib/uber-go/zap"

import (
	"context"
	"strconv"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sumatoreo/jaeger-go/internal"
	"github.com/sumatoreo/jaeger-go/jaeger/ext"
	"github.com/sumatoreo/jaeger-go/jaeger/tracer"
)

var correlationEnabled = internal.BoolEnv("JAEGER_LOGS_INJECTION", true)

// TraceFields returns a field holding the trace and span ids of the active
// span of ctx, or a no-op field when there is none.
func TraceFields(ctx context.Context) zap.Field {
	if !correlationEnabled {
		return zap.Skip()
	}
	span, found := tracer.SpanFromContext(ctx)
	if !found {
		return zap.Skip()
	}
	sctx := span.Context()
	return zap.Inline(zapcore.ObjectMarshalerFunc(func(enc zapcore.ObjectEncoder) error {
		enc.AddString(ext.LogKeyTraceID, sctx.TraceIDHex())
		enc.AddString(ext.LogKeySpanID, strconv.FormatUint(sctx.SpanID(), 16))
		return nil
	}))
}

// WithTraceFields returns a child of logger carrying the fields of
// TraceFields.
func WithTraceFields(ctx context.Context, logger *zap.Logger) *zap.Logger {
	return logger.With(TraceFields(ctx))
}
