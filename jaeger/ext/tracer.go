// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package ext

import (
	"runtime"
	"strings"

	"github.com/sumatoreo/jaeger-go/internal/version"
)

const (
	// Lang identifies the language used to run the tracer.
	Lang = "go"

	// TracerVersionValue is the value of the TracerVersion process tag.
	TracerVersionValue = "Go-" + version.Tag
)

// LangVersion specifies the version of Go used to run the tracer.
var LangVersion = strings.TrimPrefix(runtime.Version(), Lang)
