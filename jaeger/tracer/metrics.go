// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

// reportHealthMetrics sends the counters accumulated since the previous call
// and resets them. It runs as part of every flush.
func (t *tracer) reportHealthMetrics() {
	t.statsd.Count("jaeger.tracer.spans.started", t.spansStarted.Swap(0), nil, 1)
	t.statsd.Count("jaeger.tracer.spans.sampled", t.spansSampled.Swap(0), nil, 1)
	t.statsd.Count("jaeger.tracer.spans.finished", t.spansFinished.Swap(0), nil, 1)
	t.statsd.Count("jaeger.tracer.spans.reported", t.spansReported.Swap(0), nil, 1)
	if n := t.spansAbandoned.Swap(0); n > 0 {
		t.statsd.Count("jaeger.tracer.spans.abandoned", n, nil, 1)
	}
	t.statsd.Gauge("jaeger.tracer.spans.pending", float64(t.pendingLen()), nil, 1)
}
