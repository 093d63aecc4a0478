// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package internal

import (
	"time"

	"github.com/DataDog/datadog-go/v5/statsd"
)

// StatsdClient is the subset of the dogstatsd client used by the tracer to
// report its health metrics.
type StatsdClient interface {
	Incr(name string, tags []string, rate float64) error
	Count(name string, value int64, tags []string, rate float64) error
	Gauge(name string, value float64, tags []string, rate float64) error
	Timing(name string, value time.Duration, tags []string, rate float64) error
	Flush() error
	Close() error
}

var _ StatsdClient = (*statsd.Client)(nil)
var _ StatsdClient = (*statsd.NoOpClient)(nil)

// NewStatsdClient returns a dogstatsd client sending to addr, tagged with
// globalTags. An empty addr yields a client that discards everything, and so
// does an error.
func NewStatsdClient(addr string, globalTags []string) (StatsdClient, error) {
	if addr == "" {
		return &statsd.NoOpClient{}, nil
	}
	client, err := statsd.New(addr,
		statsd.WithMaxMessagesPerPayload(40),
		statsd.WithTags(globalTags),
	)
	if err != nil {
		return &statsd.NoOpClient{}, err
	}
	return client, nil
}
