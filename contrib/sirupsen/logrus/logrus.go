// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2022 Datadog, Inc.

// Package logrus provides a log/span correlation hook for the sirupsen/logrus package (https://github.com/sirupsen/logrus).
package logrus // import "github.com/sumatoreo/jaeger-go/contrib/sirupsen/logrus"

import (
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/sumatoreo/jaeger-go/internal"
	"github.com/sumatoreo/jaeger-go/jaeger/ext"
	"github.com/sumatoreo/jaeger-go/jaeger/tracer"
)

var correlationEnabled = internal.BoolEnv("JAEGER_LOGS_INJECTION", true)

// ContextLogHook ensures that any span in the log context is correlated to log output.
type ContextLogHook struct{}

var _ logrus.Hook = (*ContextLogHook)(nil)

// Levels implements logrus.Hook interface, this hook applies to all defined levels
func (*ContextLogHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook interface, attaches trace and span details found in entry context
func (*ContextLogHook) Fire(e *logrus.Entry) error {
	if !correlationEnabled || e.Context == nil {
		return nil
	}
	span, ok := tracer.SpanFromContext(e.Context)
	if !ok {
		return nil
	}
	ctx := span.Context()
	e.Data[ext.LogKeyTraceID] = ctx.TraceIDHex()
	e.Data[ext.LogKeySpanID] = strconv.FormatUint(ctx.SpanID(), 16)
	return nil
}
