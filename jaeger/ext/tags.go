// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

// Package ext contains a set of tag names and values used by the tracer,
// following the OpenTracing semantic conventions and the Jaeger process tags.
package ext // import "github.com/sumatoreo/jaeger-go/jaeger/ext"

// Process tags, attached once to every batch a tracer reports.
const (
	// TracerVersion holds the name and version of the tracing library.
	TracerVersion = "jaeger.version"

	// TracerHostname holds the hostname of the reporting process.
	TracerHostname = "hostname"

	// ClientUUID uniquely identifies a tracer instance.
	ClientUUID = "client-uuid"

	// SamplerType holds the type of the sampler that made the root decision.
	SamplerType = "sampler.type"

	// SamplerParam holds the parameter of the sampler that made the root decision.
	SamplerParam = "sampler.param"
)

// Span tags.
const (
	// SpanKind defines the role of the span in an RPC ("client", "server",
	// "producer" or "consumer").
	SpanKind = "span.kind"

	// Component names the library which produced the span.
	Component = "component"

	// Error is set to true when the operation represented by the span failed.
	Error = "error"

	// PeerService names the remote service.
	PeerService = "peer.service"

	// HTTPMethod is the HTTP method of the request.
	HTTPMethod = "http.method"

	// HTTPURL is the URL of the request.
	HTTPURL = "http.url"

	// HTTPCode is the response status code.
	HTTPCode = "http.status_code"
)

// Values for the SpanKind tag.
const (
	SpanKindClient   = "client"
	SpanKindServer   = "server"
	SpanKindProducer = "producer"
	SpanKindConsumer = "consumer"
)

// Log record field names.
const (
	// LogEvent names the event a log record describes.
	LogEvent = "event"

	// LogMessage holds a human readable message.
	LogMessage = "message"

	// LogErrorObject holds the error which caused the span to fail.
	LogErrorObject = "error.object"

	// LogErrorKind holds the type of the error which caused the span to fail.
	LogErrorKind = "error.kind"
)

// Keys used when correlating log entries with spans.
const (
	// LogKeyTraceID is the key used to hold the trace ID in log entries.
	LogKeyTraceID = "trace_id"

	// LogKeySpanID is the key used to hold the span ID in log entries.
	LogKeySpanID = "span_id"
)
