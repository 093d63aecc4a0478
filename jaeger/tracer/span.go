// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/sumatoreo/jaeger-go/jaeger"
	"github.com/sumatoreo/jaeger-go/jaeger/ext"
	"github.com/sumatoreo/jaeger-go/internal/log"
)

// LogRecord is a set of fields attached to a span at a point in time.
type LogRecord struct {
	Time   time.Time
	Fields map[string]interface{}
}

// Span represents a computation. Callers must call Finish when a span is
// complete to ensure it's submitted.
//
// Spans should be created with the Tracer's StartSpan* methods. All methods
// are safe for concurrent use and are no-ops on a nil *Span.
type Span struct {
	mu sync.RWMutex // guards below fields

	tracer        *tracer
	operationName string
	context       *SpanContext
	references    []jaeger.Reference
	start         time.Time
	finish        time.Time // zero until the span is finished
	tags          map[string]interface{}
	logs          []LogRecord
}

func newSpan(t *tracer, operationName string, ctx *SpanContext, start time.Time, refs []jaeger.Reference) *Span {
	var references []jaeger.Reference
	if len(refs) > 0 {
		references = make([]jaeger.Reference, len(refs))
		copy(references, refs)
	}
	return &Span{
		tracer:        t,
		operationName: operationName,
		context:       ctx,
		references:    references,
		start:         start,
		tags:          make(map[string]interface{}),
	}
}

// Context yields the SpanContext for this Span. Note that the return
// value of Context() is still valid after a call to Finish().
func (s *Span) Context() *SpanContext {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.context
}

// OperationName returns the operation name of the span.
func (s *Span) OperationName() string {
	if s == nil {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.operationName
}

// SetOperationName sets or changes the operation name.
func (s *Span) SetOperationName(operationName string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finish.IsZero() {
		return
	}
	s.operationName = operationName
}

// SetTag adds a tag to the span, overwriting pre-existing values for
// the given key.
func (s *Span) SetTag(key string, value interface{}) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finish.IsZero() {
		return
	}
	if key == ext.Error {
		s.setTagError(value)
		return
	}
	s.tags[key] = value
}

// setTagError sets the error tag. An error value is recorded as a log event
// and the tag becomes true.
// +checklocks:s.mu
func (s *Span) setTagError(value interface{}) {
	switch v := value.(type) {
	case nil:
		delete(s.tags, ext.Error)
	case bool:
		s.tags[ext.Error] = v
	case error:
		s.tags[ext.Error] = true
		s.logs = append(s.logs, errorLogRecord(time.Now(), v))
	default:
		s.tags[ext.Error] = true
		s.logs = append(s.logs, LogRecord{
			Time: time.Now(),
			Fields: map[string]interface{}{
				ext.LogEvent:   "error",
				ext.LogMessage: fmt.Sprint(v),
			},
		})
	}
}

func errorLogRecord(t time.Time, err error) LogRecord {
	return LogRecord{
		Time: t,
		Fields: map[string]interface{}{
			ext.LogEvent:       "error",
			ext.LogErrorObject: err,
			ext.LogErrorKind:   reflect.TypeOf(err).String(),
			ext.LogMessage:     err.Error(),
		},
	}
}

// Tag returns the value of the tag with the given key.
func (s *Span) Tag(key string) interface{} {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tags[key]
}

// Tags returns a copy of the span's tags.
func (s *Span) Tags() map[string]interface{} {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	tags := make(map[string]interface{}, len(s.tags))
	for k, v := range s.tags {
		tags[k] = v
	}
	return tags
}

// LogFields records the given fields at the current time.
func (s *Span) LogFields(fields map[string]interface{}) {
	s.LogFieldsAt(time.Now(), fields)
}

// LogFieldsAt records the given fields at time t.
func (s *Span) LogFieldsAt(t time.Time, fields map[string]interface{}) {
	if s == nil || len(fields) == 0 {
		return
	}
	rec := LogRecord{Time: t, Fields: make(map[string]interface{}, len(fields))}
	for k, v := range fields {
		rec.Fields[k] = v
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finish.IsZero() {
		return
	}
	s.logs = append(s.logs, rec)
}

// LogKV records alternating key/value pairs at the current time. A trailing
// key without a value is recorded with a nil value.
func (s *Span) LogKV(alternatingKeyValues ...interface{}) {
	if s == nil || len(alternatingKeyValues) == 0 {
		return
	}
	fields := make(map[string]interface{}, (len(alternatingKeyValues)+1)/2)
	for i := 0; i < len(alternatingKeyValues); i += 2 {
		key := fmt.Sprint(alternatingKeyValues[i])
		var val interface{}
		if i+1 < len(alternatingKeyValues) {
			val = alternatingKeyValues[i+1]
		}
		fields[key] = val
	}
	s.LogFields(fields)
}

// Logs returns a copy of the span's log records.
func (s *Span) Logs() []LogRecord {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	logs := make([]LogRecord, len(s.logs))
	copy(logs, s.logs)
	return logs
}

// References returns the references the span was started with.
func (s *Span) References() []jaeger.Reference {
	if s == nil {
		return nil
	}
	refs := make([]jaeger.Reference, len(s.references))
	copy(refs, s.references)
	return refs
}

// SetBaggageItem sets a key/value pair as baggage on the span. Spans started
// from this span afterwards inherit it; contexts handed out earlier do not
// change.
func (s *Span) SetBaggageItem(key, val string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.finish.IsZero() {
		return
	}
	s.context = s.context.WithBaggageItem(key, val)
}

// BaggageItem gets the value for a baggage item given its key. Returns the
// empty string if the value isn't found in this Span.
func (s *Span) BaggageItem(key string) string {
	return s.Context().BaggageItem(key)
}

// StartTime returns the time the span was started at.
func (s *Span) StartTime() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.start
}

// FinishTime returns the time the span was finished at, or the zero time.
func (s *Span) FinishTime() time.Time {
	if s == nil {
		return time.Time{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.finish
}

// Duration returns the span's duration, or 0 if it is still open.
func (s *Span) Duration() time.Duration {
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.finish.IsZero() {
		return 0
	}
	return s.finish.Sub(s.start)
}

// IsFinished reports whether Finish was called.
func (s *Span) IsFinished() bool {
	return !s.FinishTime().IsZero()
}

// Finish closes this Span (but not its children) providing the duration
// of this part of the tracing session. This method is idempotent so
// calling this method multiple times is safe and doesn't update the
// current Span. Once a Span has been finished, methods that modify the Span
// will become no-ops.
func (s *Span) Finish(opts ...jaeger.FinishOption) {
	if s == nil {
		return
	}
	var cfg jaeger.FinishConfig
	for _, fn := range opts {
		if fn == nil {
			continue
		}
		fn(&cfg)
	}
	t := cfg.FinishTime
	if t.IsZero() {
		t = time.Now()
	}
	if t.Before(s.start) {
		t = s.start
	}
	s.mu.Lock()
	if !s.finish.IsZero() {
		s.mu.Unlock()
		return
	}
	if cfg.Error != nil {
		s.tags[ext.Error] = true
		s.logs = append(s.logs, errorLogRecord(t, cfg.Error))
	}
	s.finish = t
	s.mu.Unlock()

	if s.tracer != nil {
		s.tracer.spanFinished(s)
	}
	if log.DebugEnabled() {
		log.Debug("Finished span %s", s)
	}
}

// String returns a human readable representation of the span. Not for
// production, just debugging.
func (s *Span) String() string {
	if s == nil {
		return "<nil>"
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	lines := []string{
		fmt.Sprintf("Name: %s", s.operationName),
		fmt.Sprintf("Context: %s", s.context),
		fmt.Sprintf("Start: %s", s.start.Format(time.RFC3339Nano)),
	}
	if !s.finish.IsZero() {
		lines = append(lines, fmt.Sprintf("Duration: %s", s.finish.Sub(s.start)))
	}
	for key, val := range s.tags {
		lines = append(lines, fmt.Sprintf("\t%s:%v", key, val))
	}
	return strings.Join(lines, "\n")
}
