// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import "github.com/sumatoreo/jaeger-go/internal/log"

// Logger receives the tracer's own log lines, already prefixed and
// formatted.
type Logger interface {
	Log(msg string)
}

// UseLogger sets l as the logger for all tracer logs. The returned function
// restores the previous logger.
func UseLogger(l Logger) (undo func()) {
	return log.UseLogger(l)
}

// LogLevel is the level the tracer currently logs at.
type LogLevel log.Level

func (l LogLevel) String() string {
	return log.Level(l).String()
}

type loggerFunc func(lvl LogLevel, msg string, a ...any)

func (fn loggerFunc) Log(msg string) {
	fn(LogLevel(log.CurrentLevel()), msg)
}

// AdaptLogger turns fn into a Logger. fn is called with the tracer's current
// log level, which lets it route lines to the matching method of another
// logging library.
func AdaptLogger(fn func(lvl LogLevel, msg string, a ...any)) Logger {
	return loggerFunc(fn)
}
