// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/sumatoreo/jaeger-go/internal/log"
	"github.com/sumatoreo/jaeger-go/jaeger"
	"github.com/sumatoreo/jaeger-go/jaeger/ext"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// testStatsdClient records the metrics sent to it.
type testStatsdClient struct {
	mu     sync.Mutex
	counts map[string]int64
	gauges map[string]float64
	incrs  map[string]int
	closed bool
}

func newTestStatsdClient() *testStatsdClient {
	return &testStatsdClient{
		counts: make(map[string]int64),
		gauges: make(map[string]float64),
		incrs:  make(map[string]int),
	}
}

func (c *testStatsdClient) Incr(name string, _ []string, _ float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.incrs[name]++
	return nil
}

func (c *testStatsdClient) Count(name string, value int64, _ []string, _ float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[name] += value
	return nil
}

func (c *testStatsdClient) Gauge(name string, value float64, _ []string, _ float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gauges[name] = value
	return nil
}

func (c *testStatsdClient) Timing(string, time.Duration, []string, float64) error { return nil }

func (c *testStatsdClient) Flush() error { return nil }

func (c *testStatsdClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *testStatsdClient) count(name string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[name]
}

func (c *testStatsdClient) incr(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.incrs[name]
}

// newTestTracer returns a tracer reporting to an InMemoryReporter.
func newTestTracer(t *testing.T, opts ...StartOption) (*tracer, *InMemoryReporter, *testStatsdClient) {
	t.Helper()
	rep := NewInMemoryReporter()
	sc := newTestStatsdClient()
	base := []StartOption{
		WithServiceName("test-service"),
		WithReporter(rep),
		WithLogStartup(false),
		withStatsdClient(sc),
	}
	tr, err := newTracer(append(base, opts...)...)
	require.NoError(t, err)
	t.Cleanup(tr.Close)
	return tr, rep, sc
}

// sequence returns an id generator yielding 1, 2, 3, ...
func sequence() func() uint64 {
	var mu sync.Mutex
	var n uint64
	return func() uint64 {
		mu.Lock()
		defer mu.Unlock()
		n++
		return n
	}
}

func TestTracerStartRootSpan(t *testing.T) {
	assert := assert.New(t)
	tr, _, _ := newTestTracer(t)

	root := tr.StartSpan("web.request")
	ctx := root.Context()
	assert.Equal("web.request", root.OperationName())
	assert.NotZero(ctx.SpanID())
	assert.Equal(ctx.SpanID(), ctx.TraceIDLow())
	assert.Zero(ctx.ParentID())
	assert.Zero(ctx.TraceIDHigh())
	assert.True(ctx.IsSampled())
	assert.False(root.StartTime().IsZero())
}

func TestTracerStartChildSpan(t *testing.T) {
	assert := assert.New(t)
	tr, _, _ := newTestTracer(t)

	root := tr.StartSpan("parent")
	root.SetBaggageItem("user", "alice")
	child := tr.StartSpan("child", ChildOf(root.Context()))

	pctx, cctx := root.Context(), child.Context()
	assert.Equal(pctx.TraceIDLow(), cctx.TraceIDLow())
	assert.Equal(pctx.SpanID(), cctx.ParentID())
	assert.Equal(pctx.Flags(), cctx.Flags())
	assert.NotEqual(pctx.SpanID(), cctx.SpanID())
	assert.Equal("alice", cctx.BaggageItem("user"))

	// baggage added to the child does not leak into the parent
	child.SetBaggageItem("only", "child")
	assert.Empty(root.BaggageItem("only"))
	assert.Equal("child", child.BaggageItem("only"))
}

func TestTracerChildInheritsUnsampledFlags(t *testing.T) {
	tr, rep, _ := newTestTracer(t, WithSampler(NewConstSampler(false)))

	root := tr.StartSpan("root")
	child := tr.StartSpan("child", ChildOf(root.Context()))
	assert.False(t, root.Context().IsSampled())
	assert.False(t, child.Context().IsSampled())
	child.Finish()
	root.Finish()

	tr.Flush()
	assert.Empty(t, rep.Spans())
	assert.Zero(t, tr.pendingLen())
}

func TestTracerFirstChildOfWins(t *testing.T) {
	assert := assert.New(t)
	tr, _, _ := newTestTracer(t)

	a := tr.StartSpan("a")
	b := tr.StartSpan("b")
	c := tr.StartSpan("c")

	span := tr.StartSpan("d",
		FollowsFrom(c.Context()),
		ChildOf(a.Context()),
		ChildOf(b.Context()),
	)
	assert.Equal(a.Context().SpanID(), span.Context().ParentID())
	assert.Equal(a.Context().TraceIDLow(), span.Context().TraceIDLow())

	refs := span.References()
	require.Len(t, refs, 3)
	assert.Equal(jaeger.FollowsFromRef, refs[0].Type)
	assert.Equal(jaeger.ChildOfRef, refs[1].Type)
	assert.Equal(jaeger.ChildOfRef, refs[2].Type)
}

func TestTracerFollowsFromOnlyIsRoot(t *testing.T) {
	tr, _, _ := newTestTracer(t)
	a := tr.StartSpan("a")
	span := tr.StartSpan("b", FollowsFrom(a.Context()))
	assert.Zero(t, span.Context().ParentID())
	assert.Equal(t, span.Context().SpanID(), span.Context().TraceIDLow())
}

type foreignContext struct {
	traceID, spanID uint64
}

func (c foreignContext) SpanID() uint64 { return c.spanID }
func (c foreignContext) TraceID() uint64 { return c.traceID }
func (c foreignContext) ForeachBaggageItem(func(k, v string) bool) {}

func TestTracerParentWithoutTraceIDIsRoot(t *testing.T) {
	tr, _, _ := newTestTracer(t)

	for name, parent := range map[string]jaeger.SpanContext{
		"zero-native":  NewSpanContext(0, 0, 5, 0, FlagSampled, nil),
		"zero-foreign": foreignContext{spanID: 5},
	} {
		t.Run(name, func(t *testing.T) {
			span := tr.StartSpan("op", ChildOf(parent))
			assert.Zero(t, span.Context().ParentID())
			assert.Equal(t, span.Context().SpanID(), span.Context().TraceIDLow())
		})
	}

	t.Run("foreign", func(t *testing.T) {
		span := tr.StartSpan("op", ChildOf(foreignContext{traceID: 7, spanID: 9}))
		assert.Equal(t, uint64(7), span.Context().TraceIDLow())
		assert.Equal(t, uint64(9), span.Context().ParentID())
	})

	t.Run("nil", func(t *testing.T) {
		var sc *SpanContext
		span := tr.StartSpan("op", ChildOf(sc))
		assert.Zero(t, span.Context().ParentID())
		assert.Empty(t, span.References())
	})
}

func TestTracerTraceID128Bit(t *testing.T) {
	tr, _, _ := newTestTracer(t, WithTraceID128Bit(true), WithIDGenerator(sequence()))

	root := tr.StartSpan("root")
	assert.Equal(t, uint64(1), root.Context().SpanID())
	assert.Equal(t, uint64(1), root.Context().TraceIDLow())
	assert.Equal(t, uint64(2), root.Context().TraceIDHigh())
	assert.Equal(t, "00000000000000020000000000000001", root.Context().TraceIDHex())

	child := tr.StartSpan("child", ChildOf(root.Context()))
	assert.Equal(t, uint64(2), child.Context().TraceIDHigh())
	assert.Equal(t, uint64(1), child.Context().TraceIDLow())
	assert.Equal(t, uint64(3), child.Context().SpanID())
}

func TestTracerSpanOptions(t *testing.T) {
	assert := assert.New(t)
	tr, _, _ := newTestTracer(t)

	start := time.Now().Add(-time.Minute)
	span := tr.StartSpan("op", StartTime(start), Tag("k", "v"), Tag(ext.SpanKind, ext.SpanKindServer))
	assert.Equal(start, span.StartTime())
	assert.Equal("v", span.Tag("k"))
	assert.Equal(ext.SpanKindServer, span.Tag(ext.SpanKind))
}

func TestTracerSamplerSeesTraceID(t *testing.T) {
	var seen []uint64
	s := samplerFunc(func(id uint64) bool {
		seen = append(seen, id)
		return id%2 == 0
	})
	tr, _, _ := newTestTracer(t, WithSampler(s), WithIDGenerator(sequence()))

	odd := tr.StartSpan("a")
	even := tr.StartSpan("b")
	tr.StartSpan("child", ChildOf(even.Context()))

	assert.Equal(t, []uint64{1, 2}, seen)
	assert.False(t, odd.Context().IsSampled())
	assert.True(t, even.Context().IsSampled())
}

type samplerFunc func(uint64) bool

func (f samplerFunc) Sample(id uint64) bool { return f(id) }
func (f samplerFunc) Tags() map[string]interface{} { return nil }

func TestTracerFlush(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		tr, rep, _ := newTestTracer(t)
		tr.Flush()
		assert.Empty(t, rep.Batches())
	})

	t.Run("finished", func(t *testing.T) {
		assert := assert.New(t)
		tr, rep, _ := newTestTracer(t, WithGlobalTag("env", "test"))

		a := tr.StartSpan("a")
		b := tr.StartSpan("b", ChildOf(a.Context()))
		b.Finish()
		a.Finish()
		tr.Flush()

		batches := rep.Batches()
		require.Len(t, batches, 1)
		assert.Equal("test-service", batches[0].Process.ServiceName)
		assert.Equal("test", batches[0].Process.Tags["env"])
		assert.Equal([]*Span{a, b}, batches[0].Spans)

		// buffer was cleared
		tr.Flush()
		assert.Len(rep.Batches(), 1)
	})

	t.Run("unfinished", func(t *testing.T) {
		assert := assert.New(t)
		tr, rep, _ := newTestTracer(t)

		a := tr.StartSpan("a")
		b := tr.StartSpan("b")
		b.Finish()
		tr.Flush()
		assert.Equal([]*Span{b}, rep.Spans())
		assert.Equal(1, tr.pendingLen())

		a.Finish()
		tr.Flush()
		assert.Equal([]*Span{b, a}, rep.Spans())
		assert.Zero(tr.pendingLen())
	})

	t.Run("abandoned", func(t *testing.T) {
		assert := assert.New(t)
		tr, rep, sc := newTestTracer(t, WithAbandonedSpanTimeout(time.Minute))

		old := tr.StartSpan("old", StartTime(time.Now().Add(-2*time.Minute)))
		fresh := tr.StartSpan("fresh")
		tr.Flush()
		assert.Empty(rep.Spans())
		assert.Equal(1, tr.pendingLen())
		assert.Equal(int64(1), sc.count("jaeger.tracer.spans.abandoned"))

		old.Finish()
		fresh.Finish()
		tr.Flush()
		assert.Equal([]*Span{fresh}, rep.Spans())
	})

	t.Run("no-timeout", func(t *testing.T) {
		tr, rep, _ := newTestTracer(t, WithAbandonedSpanTimeout(0))
		old := tr.StartSpan("old", StartTime(time.Now().Add(-24*time.Hour)))
		tr.Flush()
		assert.Equal(t, 1, tr.pendingLen())
		old.Finish()
		tr.Flush()
		assert.Equal(t, []*Span{old}, rep.Spans())
	})
}

func TestTracerHealthMetrics(t *testing.T) {
	assert := assert.New(t)
	tr, _, sc := newTestTracer(t)

	a := tr.StartSpan("a")
	tr.StartSpan("b")
	a.Finish()
	tr.Flush()

	assert.Equal(1, sc.incr("jaeger.tracer.started"))
	assert.Equal(int64(2), sc.count("jaeger.tracer.spans.started"))
	assert.Equal(int64(2), sc.count("jaeger.tracer.spans.sampled"))
	assert.Equal(int64(1), sc.count("jaeger.tracer.spans.finished"))
	assert.Equal(int64(1), sc.count("jaeger.tracer.spans.reported"))

	tr.Close()
	assert.Equal(1, sc.incr("jaeger.tracer.stopped"))
	// user-provided clients are left open
	assert.False(sc.closed)
}

func TestTracerClose(t *testing.T) {
	assert := assert.New(t)
	tr, rep, _ := newTestTracer(t)

	a := tr.StartSpan("a")
	a.Finish()
	open := tr.StartSpan("open")
	tr.Close()
	tr.Close()

	assert.True(rep.Closed())
	assert.Equal([]*Span{a}, rep.Spans())
	assert.Zero(tr.pendingLen())

	// spans started after Close are not recorded
	late := tr.StartSpan("late")
	late.Finish()
	open.Finish()
	tr.Flush()
	assert.Equal([]*Span{a}, rep.Spans())
}

func TestTracerCloseWhileStarting(t *testing.T) {
	tr, rep, _ := newTestTracer(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				tr.StartSpan("op").Finish()
			}
		}()
	}
	tr.Close()
	wg.Wait()

	assert.Zero(t, tr.pendingLen())
	for _, s := range rep.Spans() {
		assert.True(t, s.IsFinished())
	}
	tr.StartSpan("late").Finish()
	assert.Zero(t, tr.pendingLen())
}

func TestTracerConcurrency(t *testing.T) {
	tr, rep, _ := newTestTracer(t)

	const workers, perWorker = 8, 200
	var wg sync.WaitGroup
	stop := make(chan struct{})
	flushed := make(chan struct{})
	go func() {
		defer close(flushed)
		for {
			select {
			case <-stop:
				return
			default:
				tr.Flush()
			}
		}
	}()
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				root := tr.StartSpan("root")
				child := tr.StartSpan("child", ChildOf(root.Context()))
				child.SetTag("j", j)
				child.Finish()
				root.Finish()
			}
		}()
	}
	wg.Wait()
	close(stop)
	<-flushed
	tr.Flush()

	spans := rep.Spans()
	assert.Len(t, spans, workers*perWorker*2)
	seen := make(map[*Span]bool, len(spans))
	for _, s := range spans {
		assert.False(t, seen[s], "span reported twice")
		seen[s] = true
	}
}

func TestTracerStartActiveSpan(t *testing.T) {
	assert := assert.New(t)
	tr, _, _ := newTestTracer(t)

	outer, ctx := tr.StartActiveSpan(context.Background(), "outer", FinishOnClose(true))
	active, ok := SpanFromContext(ctx)
	require.True(t, ok)
	assert.Equal(outer.Span(), active)

	inner, ictx := tr.StartActiveSpan(ctx, "inner", FinishOnClose(true))
	assert.Equal(outer.Span().Context().SpanID(), inner.Span().Context().ParentID())
	assert.Equal(inner, tr.ScopeManager().Active(ictx))

	inner.Close()
	assert.True(inner.Span().IsFinished())
	assert.Equal(outer, tr.ScopeManager().Active(ictx))

	// explicit parent wins over the active span
	other := tr.StartSpan("other")
	s, _ := tr.StartSpanFromContext(ctx, "explicit", ChildOf(other.Context()))
	assert.Equal(other.Context().SpanID(), s.Context().ParentID())

	outer.Close()
	assert.True(outer.Span().IsFinished())
	assert.Nil(tr.ScopeManager().Active(ictx))

	// no active scope: root span
	s, _ = tr.StartSpanFromContext(nil, "root") //nolint:staticcheck
	assert.Zero(s.Context().ParentID())
}

func TestTracerStartSpanFromContextDoesNotFinish(t *testing.T) {
	tr, _, _ := newTestTracer(t)
	span, ctx := tr.StartSpanFromContext(context.Background(), "op")
	tr.ScopeManager().Active(ctx).Close()
	assert.False(t, span.IsFinished())
}

func TestTracerInjectExtract(t *testing.T) {
	for _, style := range []string{PropagationJaeger, PropagationB3} {
		t.Run(style, func(t *testing.T) {
			assert := assert.New(t)
			tr, _, _ := newTestTracer(t, WithPropagation(style))

			span := tr.StartSpan("op")
			span.SetBaggageItem("item", "a value")
			for _, format := range []jaeger.Format{jaeger.TextMap, jaeger.HTTPHeaders} {
				var carrier interface {
					TextMapWriter
					TextMapReader
				} = TextMapCarrier{}
				if format == jaeger.HTTPHeaders {
					carrier = HTTPHeadersCarrier{}
				}
				require.NoError(t, tr.Inject(span.Context(), format, carrier))
				got, err := tr.Extract(format, carrier)
				require.NoError(t, err)
				assert.Equal(span.Context().TraceIDLow(), got.TraceIDLow())
				assert.Equal(span.Context().SpanID(), got.SpanID())
				assert.Equal(span.Context().Flags(), got.Flags())
				assert.Equal("a value", got.BaggageItem("item"))

				child := tr.StartSpan("remote-child", ChildOf(got))
				assert.Equal(span.Context().SpanID(), child.Context().ParentID())
				assert.Equal(span.Context().TraceIDLow(), child.Context().TraceIDLow())
			}
		})
	}
}

func TestTracerExtractErrors(t *testing.T) {
	tr, _, _ := newTestTracer(t)

	ctx, err := tr.Extract(jaeger.TextMap, TextMapCarrier{"other": "header"})
	assert.NoError(t, err)
	assert.Nil(t, ctx)

	ctx, err = tr.Extract(jaeger.TextMap, TextMapCarrier{DefaultTraceContextHeader: "zz:1:0:1"})
	assert.ErrorIs(t, err, ErrSpanContextCorrupted)
	assert.Nil(t, ctx)

	_, err = tr.Extract(jaeger.TextMap, 42)
	assert.ErrorIs(t, err, ErrInvalidCarrier)

	_, err = tr.Extract(jaeger.Binary, TextMapCarrier{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	err = tr.Inject(tr.StartSpan("op").Context(), jaeger.Binary, TextMapCarrier{})
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	err = tr.Inject(nil, jaeger.TextMap, TextMapCarrier{})
	assert.ErrorIs(t, err, ErrInvalidSpanContext)
}

func TestTracerCustomPropagator(t *testing.T) {
	p := NewB3Propagator(&PropagatorConfig{B3SingleHeader: true})
	tr, _, _ := newTestTracer(t, WithPropagator(p), WithIDGenerator(sequence()))

	carrier := TextMapCarrier{}
	require.NoError(t, tr.Inject(tr.StartSpan("op").Context(), jaeger.HTTPHeaders, carrier))
	assert.Equal(t, "0000000000000001-0000000000000001-1", carrier["b3"])
}

func TestNewErrors(t *testing.T) {
	t.Run("empty-service", func(t *testing.T) {
		_, err := New(WithLogStartup(false))
		assert.ErrorIs(t, err, ErrEmptyServiceName)
	})

	t.Run("unknown-propagation", func(t *testing.T) {
		_, err := New(WithServiceName("svc"), WithPropagation("w3c"), WithLogStartup(false))
		assert.ErrorIs(t, err, ErrUnknownPropagation)
	})

	t.Run("env-unknown-propagation", func(t *testing.T) {
		t.Setenv("JAEGER_PROPAGATION", "w3c")
		_, err := New(WithServiceName("svc"), WithLogStartup(false))
		assert.ErrorIs(t, err, ErrUnknownPropagation)
	})

	t.Run("env-invalid-sampler", func(t *testing.T) {
		t.Setenv("JAEGER_SAMPLER_TYPE", "remote")
		_, err := New(WithServiceName("svc"), WithLogStartup(false))
		assert.ErrorIs(t, err, ErrInvalidSampler)
	})

	t.Run("env-invalid-sampler-param", func(t *testing.T) {
		t.Setenv("JAEGER_SAMPLER_TYPE", "probabilistic")
		t.Setenv("JAEGER_SAMPLER_PARAM", "2")
		_, err := New(WithServiceName("svc"), WithLogStartup(false))
		assert.ErrorIs(t, err, ErrInvalidSampler)
	})

	t.Run("env-malformed-bool", func(t *testing.T) {
		t.Setenv("JAEGER_TRACEID_128BIT", "maybe")
		_, err := New(WithServiceName("svc"), WithLogStartup(false))
		assert.Error(t, err)
	})
}

func TestNewDisabled(t *testing.T) {
	t.Run("option", func(t *testing.T) {
		tr, err := New(WithDisabled(true))
		require.NoError(t, err)
		assert.IsType(t, NoopTracer{}, tr)
	})

	t.Run("env", func(t *testing.T) {
		t.Setenv("JAEGER_DISABLED", "true")
		tr, err := New(WithServiceName("svc"))
		require.NoError(t, err)
		assert.IsType(t, NoopTracer{}, tr)
	})
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("JAEGER_SERVICE_NAME", "env-service")
	t.Setenv("JAEGER_PROPAGATION", "zipkin")
	t.Setenv("JAEGER_TRACEID_128BIT", "true")
	t.Setenv("JAEGER_SAMPLER_TYPE", "probabilistic")
	t.Setenv("JAEGER_SAMPLER_PARAM", "0.5")
	t.Setenv("JAEGER_TAGS", "region=eu, broken ,team=core")
	t.Setenv("JAEGER_TRACE_STARTUP_LOGS", "false")

	tr, err := New(WithGlobalTag("team", "override"), withStatsdClient(newTestStatsdClient()))
	require.NoError(t, err)
	defer tr.Close()

	assert := assert.New(t)
	assert.Equal("env-service", tr.ServiceName())
	tags := tr.Tags()
	assert.Equal("eu", tags["region"])
	assert.Equal("override", tags["team"])
	assert.Equal(SamplerTypeProbabilistic, tags[ext.SamplerType])
	assert.Equal(0.5, tags[ext.SamplerParam])

	impl := tr.(*tracer)
	assert.True(impl.config.traceID128Bit)
	carrier := TextMapCarrier{}
	span := NewSpanContext(0, 1, 2, 0, FlagSampled, nil)
	require.NoError(t, tr.Inject(span, jaeger.TextMap, carrier))
	assert.Equal("0000000000000001", carrier["x-b3-traceid"])
}

func TestNewIgnoresUnprefixedEnv(t *testing.T) {
	t.Setenv("DISABLED", "no-thanks")
	t.Setenv("SERVICE_NAME", "other")
	t.Setenv("TAGS", "leaked=1")
	t.Setenv("PROPAGATION", "w3c")
	t.Setenv("SAMPLER_TYPE", "bogus")

	tr, err := New(WithServiceName("svc"), WithLogStartup(false), withStatsdClient(newTestStatsdClient()))
	require.NoError(t, err)
	defer tr.Close()

	assert := assert.New(t)
	require.IsType(t, &tracer{}, tr)
	assert.Equal("svc", tr.ServiceName())
	assert.NotContains(tr.Tags(), "leaked")
}

func TestTracerProcessTags(t *testing.T) {
	assert := assert.New(t)
	t.Setenv("JAEGER_TAGS", "sampler.type=fromenv,k=env")
	tr, _, _ := newTestTracer(t, WithGlobalTag("k", "global"))

	tags := tr.Tags()
	assert.Equal(ext.TracerVersionValue, tags[ext.TracerVersion])
	assert.NotEmpty(tags[ext.ClientUUID])
	if host, err := os.Hostname(); err == nil {
		assert.Equal(host, tags[ext.TracerHostname])
	}
	// env tags win over sampler tags, options win over env tags
	assert.Equal("fromenv", tags[ext.SamplerType])
	assert.Equal(true, tags[ext.SamplerParam])
	assert.Equal("global", tags["k"])

	// callers get a copy
	tags["k"] = "changed"
	assert.Equal("global", tr.Tags()["k"])
}

func TestTracerStartupLog(t *testing.T) {
	tl := new(recordLogger)
	defer UseLogger(tl)()

	tr, err := newTracer(WithServiceName("svc"), WithLogStartup(true), withStatsdClient(newTestStatsdClient()))
	require.NoError(t, err)
	defer tr.Close()

	lines := tl.Lines()
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], `"service":"svc"`)
	assert.Contains(t, lines[0], `"propagation":"jaeger"`)
}

func TestNewWithBadStatsdAddress(t *testing.T) {
	tl := new(recordLogger)
	defer UseLogger(tl)()

	rep := NewInMemoryReporter()
	tr, err := New(
		WithServiceName("svc"),
		WithReporter(rep),
		WithLogStartup(false),
		WithDogstatsdAddress("127.0.0.1:not-a-port"),
	)
	require.NoError(t, err)

	tr.StartSpan("op").Finish()
	tr.Close()
	assert.Len(t, rep.Spans(), 1)

	var warned bool
	for _, l := range tl.Lines() {
		if strings.Contains(l, "Health metrics disabled") {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestTracerDebugMode(t *testing.T) {
	defer log.SetLevel(log.CurrentLevel())
	tr, _, _ := newTestTracer(t, WithDebugMode(true))
	assert.True(t, log.DebugEnabled())
	assert.True(t, tr.config.debug)
}

type recordLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordLogger) Log(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, msg)
}

func (l *recordLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

func TestNoopTracer(t *testing.T) {
	var tr Tracer = NoopTracer{}
	span := tr.StartSpan("op", Tag("k", "v"))
	assert.Nil(t, span)
	span.SetTag("k", "v")
	span.Finish()

	scope, ctx := tr.StartActiveSpan(context.Background(), "op")
	require.NotNil(t, ctx)
	scope.Close()
	assert.Nil(t, scope.Span())

	assert.NoError(t, tr.Inject(nil, jaeger.TextMap, TextMapCarrier{}))
	sc, err := tr.Extract(jaeger.TextMap, TextMapCarrier{})
	assert.Nil(t, sc)
	assert.NoError(t, err)
	tr.Flush()
	tr.Close()
}

func TestErrorsAreDistinct(t *testing.T) {
	all := []error{
		ErrInvalidCarrier, ErrInvalidSpanContext, ErrSpanContextCorrupted,
		ErrSpanContextNotFound, ErrUnsupportedFormat, ErrEmptyServiceName,
		ErrUnknownPropagation, ErrInvalidSampler, ErrRegistryClosed,
	}
	for i, a := range all {
		for j, b := range all {
			if i != j {
				assert.False(t, errors.Is(a, b), "%v is %v", a, b)
			}
		}
	}
}
