// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	cryptorand "crypto/rand"
	"math"
	"math/big"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sumatoreo/jaeger-go/internal/log"
)

var (
	random randT

	seedWarnOnce sync.Once
	seedSeq      atomic.Int64

	// randPool holds generators seeded independently, one per concurrent
	// caller.
	randPool = sync.Pool{New: func() interface{} { return newRand() }}
)

// newRand returns a generator seeded from crypto/rand, or from the clock when
// the system source fails. Seeds are offset by a sequence number so no two
// pooled generators share one.
func newRand() *rand.Rand {
	var seed int64
	if n, err := cryptorand.Int(cryptorand.Reader, big.NewInt(math.MaxInt64)); err == nil {
		seed = n.Int64()
	} else {
		seedWarnOnce.Do(func() {
			log.Warn("Unable to read a random seed, falling back to the current time: %v", err)
		})
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed + seedSeq.Add(1)))
}

type randT struct{}

// Uint64 returns a non-zero random 64-bit id. The chance of two spans of a
// trace of n spans sharing an id is roughly n²/2⁶⁵.
func (randT) Uint64() uint64 {
	r := randPool.Get().(*rand.Rand)
	defer randPool.Put(r)
	for {
		// zero means "absent" on the wire
		if v := r.Uint64(); v != 0 {
			return v
		}
	}
}
