// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package opentracer

import (
	opentracing "github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/log"

	"github.com/sumatoreo/jaeger-go/jaeger/ext"
	"github.com/sumatoreo/jaeger-go/jaeger/tracer"
)

var _ opentracing.Span = (*span)(nil)

// span implements opentracing.Span on top of *tracer.Span.
type span struct {
	*tracer.Span
	*opentracer
}

// Context implements opentracing.Span.
func (s *span) Context() opentracing.SpanContext { return s.Span.Context() }

// Finish implements opentracing.Span.
func (s *span) Finish() { s.Span.Finish() }

// Tracer implements opentracing.Span.
func (s *span) Tracer() opentracing.Tracer { return s.opentracer }

// SetBaggageItem implements opentracing.Span.
func (s *span) SetBaggageItem(key, val string) opentracing.Span {
	s.Span.SetBaggageItem(key, val)
	return s
}

// SetOperationName implements opentracing.Span.
func (s *span) SetOperationName(operationName string) opentracing.Span {
	s.Span.SetOperationName(operationName)
	return s
}

// SetTag implements opentracing.Span.
func (s *span) SetTag(key string, value interface{}) opentracing.Span {
	s.Span.SetTag(key, value)
	return s
}

// FinishWithOptions implements opentracing.Span.
func (s *span) FinishWithOptions(opts opentracing.FinishOptions) {
	for _, rec := range opts.LogRecords {
		s.Span.LogFieldsAt(rec.Timestamp, fieldsToMap(rec.Fields))
	}
	for _, ld := range opts.BulkLogData {
		s.Log(ld)
	}
	s.Span.Finish(tracer.FinishTime(opts.FinishTime))
}

// LogFields implements opentracing.Span.
func (s *span) LogFields(fields ...log.Field) {
	s.Span.LogFields(fieldsToMap(fields))
}

// LogKV implements opentracing.Span.
func (s *span) LogKV(keyVals ...interface{}) {
	s.Span.LogKV(keyVals...)
}

// LogEvent implements opentracing.Span.
//
// Deprecated: use LogFields or LogKV.
func (s *span) LogEvent(event string) {
	s.Span.LogKV(ext.LogEvent, event)
}

// LogEventWithPayload implements opentracing.Span.
//
// Deprecated: use LogFields or LogKV.
func (s *span) LogEventWithPayload(event string, payload interface{}) {
	s.Span.LogKV(ext.LogEvent, event, "payload", payload)
}

// Log implements opentracing.Span.
//
// Deprecated: use LogFields or LogKV.
func (s *span) Log(ld opentracing.LogData) {
	rec := ld.ToLogRecord()
	s.Span.LogFieldsAt(rec.Timestamp, fieldsToMap(rec.Fields))
}

func fieldsToMap(fields []log.Field) map[string]interface{} {
	if len(fields) == 0 {
		return nil
	}
	m := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		m[f.Key()] = f.Value()
	}
	return m
}
