// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016-2020 Datadog, Inc.

package tracer

import (
	"encoding/json"
	"fmt"
	"runtime"
	"time"

	"github.com/sumatoreo/jaeger-go/internal/log"
	"github.com/sumatoreo/jaeger-go/internal/version"
	"github.com/sumatoreo/jaeger-go/jaeger/ext"
)

type startupInfo struct {
	Date                 string            `json:"date"`                   // ISO 8601 date and time of start
	Version              string            `json:"version"`                // Tracer version
	Lang                 string            `json:"lang"`                   // "go"
	LangVersion          string            `json:"lang_version"`           // Go version, e.g. 1.22
	Service              string            `json:"service"`                // Tracer Service
	Debug                bool              `json:"debug"`                  // Whether debug mode is enabled
	Propagation          string            `json:"propagation"`            // Style bound to TextMap and HTTPHeaders
	TraceID128Bit        bool              `json:"trace_id_128bit"`        // Whether root spans get 128-bit trace ids
	Sampler              map[string]string `json:"sampler"`                // Sampler tags
	Tags                 map[string]string `json:"tags"`                   // Process tags
	HealthMetricsEnabled bool              `json:"health_metrics_enabled"` // Whether a statsd address is set
	AbandonedSpanTimeout string            `json:"abandoned_span_timeout"` // How long unfinished spans are kept
	Architecture         string            `json:"architecture"`           // Architecture of host machine
}

func stringify(m map[string]interface{}) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = fmt.Sprintf("%v", v)
	}
	return out
}

// logStartup generates a startupInfo for a tracer and writes it to the log in
// JSON format.
func logStartup(t *tracer) {
	propagation := t.config.propagation
	if t.config.propagator != nil {
		propagation = "custom"
	} else if propagation == "" {
		propagation = PropagationJaeger
	}
	info := startupInfo{
		Date:                 time.Now().Format(time.RFC3339),
		Version:              version.Tag,
		Lang:                 ext.Lang,
		LangVersion:          ext.LangVersion,
		Service:              t.config.serviceName,
		Debug:                t.config.debug,
		Propagation:          propagation,
		TraceID128Bit:        t.config.traceID128Bit,
		Sampler:              stringify(t.config.sampler.Tags()),
		Tags:                 stringify(t.tags),
		HealthMetricsEnabled: t.config.dogstatsdAddr != "" || t.config.statsdClient != nil,
		AbandonedSpanTimeout: t.config.abandonedSpanTimeout.String(),
		Architecture:         runtime.GOARCH,
	}
	bs, err := json.Marshal(info)
	if err != nil {
		log.Warn("Failed to serialize json for startup log: (%v) %#v\n", err, info)
		return
	}
	log.Info("Startup: %s\n", string(bs))
}
