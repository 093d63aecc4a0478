// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package jaeger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testContext uint64

func (c testContext) SpanID() uint64                           { return uint64(c) }
func (c testContext) TraceID() uint64                          { return uint64(c) }
func (testContext) ForeachBaggageItem(func(k, v string) bool) {}

func TestStartSpanConfigParent(t *testing.T) {
	assert := assert.New(t)

	var cfg StartSpanConfig
	assert.Nil(cfg.Parent())

	cfg.References = []Reference{
		{Type: FollowsFromRef, Context: testContext(1)},
		{Type: ChildOfRef, Context: nil},
		{Type: ChildOfRef, Context: testContext(2)},
		{Type: ChildOfRef, Context: testContext(3)},
	}
	assert.Equal(testContext(2), cfg.Parent())

	cfg.References = []Reference{{Type: FollowsFromRef, Context: testContext(1)}}
	assert.Nil(cfg.Parent())
}

func TestStringers(t *testing.T) {
	assert := assert.New(t)
	assert.Equal("child_of", ChildOfRef.String())
	assert.Equal("follows_from", FollowsFromRef.String())
	assert.Equal("reference(7)", ReferenceType(7).String())
	assert.Equal("binary", Binary.String())
	assert.Equal("text_map", TextMap.String())
	assert.Equal("http_headers", HTTPHeaders.String())
	assert.Equal("format(9)", Format(9).String())
}
