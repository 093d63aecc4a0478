// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package internal

import (
	"os"
	"strconv"
	"strings"

	"github.com/sumatoreo/jaeger-go/internal/log"
)

// BoolEnv returns the parsed boolean value of an environment variable, or
// def otherwise.
func BoolEnv(key string, def bool) bool {
	vv, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	v, err := strconv.ParseBool(vv)
	if err != nil {
		log.Warn("Non-boolean value for env var %s, defaulting to %t. Parse failed with error: %v", key, def, err)
		return def
	}
	return v
}

// ForEachStringTag runs fn on every key:val pair encountered in str.
// str may contain multiple key:val pairs separated by delimiter. Pairs
// without a key, or without the separator, are skipped.
func ForEachStringTag(str, delimiter, separator string, fn func(key string, val string)) {
	for _, tag := range strings.Split(str, delimiter) {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		kv := strings.SplitN(tag, separator, 2)
		if len(kv) != 2 {
			log.Warn("Skipping malformed tag %q: missing %q", tag, separator)
			continue
		}
		key := strings.TrimSpace(kv[0])
		if key == "" {
			log.Warn("Skipping malformed tag %q: empty key", tag)
			continue
		}
		fn(key, strings.TrimSpace(kv[1]))
	}
}
