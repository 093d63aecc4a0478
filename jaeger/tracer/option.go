// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/sumatoreo/jaeger-go/internal"
	"github.com/sumatoreo/jaeger-go/internal/log"
	"github.com/sumatoreo/jaeger-go/jaeger"
)

var (
	// ErrEmptyServiceName is returned when a tracer is configured without a
	// service name.
	ErrEmptyServiceName = errors.New("service name must not be empty")

	// ErrUnknownPropagation is returned for a propagation style other than
	// "jaeger", "b3" or "zipkin".
	ErrUnknownPropagation = errors.New("unknown propagation style")
)

// config holds the tracer configuration.
type config struct {
	// debug, when true, writes details to logs.
	debug bool

	// disabled makes New hand out a NoopTracer.
	disabled bool

	// serviceName specifies the name of this application.
	serviceName string

	// sampler specifies the sampler that will be used for sampling traces.
	sampler Sampler

	// reporter receives the batches of finished spans.
	reporter Reporter

	// propagation is the style bound to the TextMap and HTTPHeaders formats.
	propagation string

	// propagatorConfig is handed to the propagators built for propagation.
	propagatorConfig *PropagatorConfig

	// propagator, when set, replaces the style's propagators for both formats.
	propagator Propagator

	// traceID128Bit makes root spans carry a 128-bit trace id.
	traceID128Bit bool

	// envTags holds the tags parsed from JAEGER_TAGS.
	envTags map[string]string

	// globalTags holds the process tags set with WithGlobalTag.
	globalTags map[string]interface{}

	// idGenerator returns new span ids.
	idGenerator func() uint64

	// dogstatsdAddr is the address health metrics are sent to. Metrics are
	// discarded when it is empty.
	dogstatsdAddr string

	// statsdClient is set when a user provides a custom statsd client.
	statsdClient internal.StatsdClient

	// abandonedSpanTimeout is how long an unfinished span may wait in the
	// pending buffer before it is dropped. Zero keeps spans forever.
	abandonedSpanTimeout time.Duration

	// logStartup, when true, causes various startup info to be written
	// when the tracer starts.
	logStartup bool
}

// envConfig mirrors the JAEGER_* environment variables.
type envConfig struct {
	ServiceName          string        `envconfig:"JAEGER_SERVICE_NAME"`
	Disabled             bool          `envconfig:"JAEGER_DISABLED"`
	Propagation          string        `envconfig:"JAEGER_PROPAGATION"`
	TraceID128Bit        bool          `envconfig:"JAEGER_TRACEID_128BIT"`
	SamplerType          string        `envconfig:"JAEGER_SAMPLER_TYPE"`
	SamplerParam         string        `envconfig:"JAEGER_SAMPLER_PARAM"`
	DogstatsdAddr        string        `envconfig:"JAEGER_DOGSTATSD_ADDR"`
	Tags                 string        `envconfig:"JAEGER_TAGS"`
	AbandonedSpanTimeout time.Duration `envconfig:"JAEGER_ABANDONED_SPAN_TIMEOUT" default:"10m"`
	StartupLogs          bool          `envconfig:"JAEGER_TRACE_STARTUP_LOGS" default:"true"`
	Debug                bool          `envconfig:"JAEGER_TRACE_DEBUG"`
}

// StartOption represents a function that can be provided as a parameter to New.
type StartOption func(*config)

// newConfig renders the tracer configuration based on defaults, environment
// variables and passed user opts, in that order of precedence.
func newConfig(opts ...StartOption) (*config, error) {
	var env envConfig
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	c := &config{
		debug:                env.Debug,
		disabled:             env.Disabled,
		serviceName:          env.ServiceName,
		propagation:          strings.ToLower(strings.TrimSpace(env.Propagation)),
		traceID128Bit:        env.TraceID128Bit,
		dogstatsdAddr:        env.DogstatsdAddr,
		abandonedSpanTimeout: env.AbandonedSpanTimeout,
		logStartup:           env.StartupLogs,
		idGenerator:          random.Uint64,
		globalTags:           make(map[string]interface{}),
	}
	if env.SamplerType != "" {
		s, err := newSampler(env.SamplerType, env.SamplerParam)
		if err != nil {
			return nil, err
		}
		c.sampler = s
	}
	if env.Tags != "" {
		c.envTags = make(map[string]string)
		internal.ForEachStringTag(env.Tags, ",", "=", func(k, v string) {
			c.envTags[k] = v
		})
	}
	for _, fn := range opts {
		if fn == nil {
			continue
		}
		fn(c)
	}
	if c.debug {
		log.SetLevel(log.LevelDebug)
	}
	if c.disabled {
		return c, nil
	}
	if strings.TrimSpace(c.serviceName) == "" {
		return nil, ErrEmptyServiceName
	}
	switch c.propagation {
	case "", PropagationJaeger, PropagationB3, PropagationZipkin:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPropagation, c.propagation)
	}
	if c.sampler == nil {
		c.sampler = NewConstSampler(true)
	}
	if c.reporter == nil {
		c.reporter = NewNullReporter()
	}
	if c.idGenerator == nil {
		c.idGenerator = random.Uint64
	}
	return c, nil
}

// formats returns the propagators bound to each supported format.
func (c *config) formats() (map[jaeger.Format]Propagator, error) {
	if c.propagator != nil {
		return map[jaeger.Format]Propagator{
			jaeger.TextMap:     c.propagator,
			jaeger.HTTPHeaders: c.propagator,
		}, nil
	}
	return newPropagators(c.propagation, c.propagatorConfig)
}

// newStatsdClient returns the client health metrics are sent to.
func (c *config) newStatsdClient() (internal.StatsdClient, error) {
	if c.statsdClient != nil {
		return c.statsdClient, nil
	}
	return internal.NewStatsdClient(c.dogstatsdAddr, []string{"service:" + c.serviceName})
}

// WithDebugMode enables debug mode on the tracer, making logging more verbose.
func WithDebugMode(enabled bool) StartOption {
	return func(c *config) {
		c.debug = enabled
	}
}

// WithDisabled makes New return a NoopTracer, which records nothing.
func WithDisabled(disabled bool) StartOption {
	return func(c *config) {
		c.disabled = disabled
	}
}

// WithServiceName sets the default service name to be used with the tracer.
func WithServiceName(name string) StartOption {
	return func(c *config) {
		c.serviceName = name
	}
}

// WithSampler sets the given sampler to be used with the tracer. By default
// every trace is sampled.
func WithSampler(s Sampler) StartOption {
	return func(c *config) {
		c.sampler = s
	}
}

// WithReporter sets the reporter receiving finished spans. By default spans
// are discarded.
func WithReporter(r Reporter) StartOption {
	return func(c *config) {
		c.reporter = r
	}
}

// WithPropagation selects the encoding used for the TextMap and HTTPHeaders
// formats: PropagationJaeger (the default), PropagationB3 or PropagationZipkin.
func WithPropagation(style string) StartOption {
	return func(c *config) {
		c.propagation = strings.ToLower(strings.TrimSpace(style))
	}
}

// WithPropagatorConfig tunes the propagators built for the propagation style.
func WithPropagatorConfig(cfg *PropagatorConfig) StartOption {
	return func(c *config) {
		c.propagatorConfig = cfg
	}
}

// WithPropagator sets an alternative propagator to be used by the tracer for
// both the TextMap and HTTPHeaders formats.
func WithPropagator(p Propagator) StartOption {
	return func(c *config) {
		c.propagator = p
	}
}

// WithTraceID128Bit makes root spans carry a 128-bit trace id.
func WithTraceID128Bit(enabled bool) StartOption {
	return func(c *config) {
		c.traceID128Bit = enabled
	}
}

// WithGlobalTag sets a key/value pair which will be reported as a process tag.
// It takes precedence over tags from JAEGER_TAGS and the sampler.
func WithGlobalTag(k string, v interface{}) StartOption {
	return func(c *config) {
		if c.globalTags == nil {
			c.globalTags = make(map[string]interface{})
		}
		c.globalTags[k] = v
	}
}

// WithIDGenerator sets the function used to mint span ids. It must be safe for
// concurrent use and should never return 0.
func WithIDGenerator(fn func() uint64) StartOption {
	return func(c *config) {
		c.idGenerator = fn
	}
}

// WithDogstatsdAddress specifies the address to connect to for sending health
// metrics to a statsd agent.
func WithDogstatsdAddress(addr string) StartOption {
	return func(c *config) {
		c.dogstatsdAddr = addr
	}
}

// WithAbandonedSpanTimeout sets how long an unfinished, sampled span is kept
// in the pending buffer before it is dropped with a warning. A zero duration
// keeps such spans until they finish.
func WithAbandonedSpanTimeout(d time.Duration) StartOption {
	return func(c *config) {
		c.abandonedSpanTimeout = d
	}
}

// WithLogStartup allows enabling or disabling the startup log.
func WithLogStartup(enabled bool) StartOption {
	return func(c *config) {
		c.logStartup = enabled
	}
}

// WithLogger sets logger as the tracer's error printer.
func WithLogger(logger Logger) StartOption {
	return func(_ *config) {
		log.UseLogger(logger)
	}
}

// withStatsdClient sets the statsd client used for health metrics.
func withStatsdClient(s internal.StatsdClient) StartOption {
	return func(c *config) {
		c.statsdClient = s
	}
}

// Tag sets the given key/value pair as a tag on the started Span.
func Tag(k string, v interface{}) jaeger.StartSpanOption {
	return func(cfg *jaeger.StartSpanConfig) {
		if cfg.Tags == nil {
			cfg.Tags = map[string]interface{}{}
		}
		cfg.Tags[k] = v
	}
}

// ChildOf tells StartSpan to use the given span context as a parent for the
// created span. Only the first ChildOf reference is used as the parent.
func ChildOf(ctx jaeger.SpanContext) jaeger.StartSpanOption {
	return withReference(jaeger.ChildOfRef, ctx)
}

// FollowsFrom records a causal link to the given span context without making
// it the parent.
func FollowsFrom(ctx jaeger.SpanContext) jaeger.StartSpanOption {
	return withReference(jaeger.FollowsFromRef, ctx)
}

func withReference(typ jaeger.ReferenceType, ctx jaeger.SpanContext) jaeger.StartSpanOption {
	return func(cfg *jaeger.StartSpanConfig) {
		if ctx == nil {
			return
		}
		if sc, ok := ctx.(*SpanContext); ok && sc == nil {
			return
		}
		cfg.References = append(cfg.References, jaeger.Reference{Type: typ, Context: ctx})
	}
}

// StartTime sets a custom time as the start time for the created span. By
// default a span is started using the creation time.
func StartTime(t time.Time) jaeger.StartSpanOption {
	return func(cfg *jaeger.StartSpanConfig) {
		cfg.StartTime = t
	}
}

// FinishOnClose makes closing the scope of an activated span finish the span.
func FinishOnClose(enabled bool) jaeger.StartSpanOption {
	return func(cfg *jaeger.StartSpanConfig) {
		cfg.FinishSpanOnClose = enabled
	}
}

// FinishTime sets the given time as the finishing time for the span. By default,
// the current time is used.
func FinishTime(t time.Time) jaeger.FinishOption {
	return func(cfg *jaeger.FinishConfig) {
		cfg.FinishTime = t
	}
}

// WithError marks the span as having had an error: the error tag is set and
// err is recorded as an error log event. It has no effect if the error is nil.
func WithError(err error) jaeger.FinishOption {
	return func(cfg *jaeger.FinishConfig) {
		cfg.Error = err
	}
}
