// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product includes software developed at Datadog (https://www.datadoghq.com/).
// Copyright 2016 Datadog, Inc.

package tracer

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/time/rate"

	"github.com/sumatoreo/jaeger-go/jaeger/ext"
)

// Sampler types, as reported in the sampler.type process tag.
const (
	SamplerTypeConst         = "const"
	SamplerTypeProbabilistic = "probabilistic"
	SamplerTypeRateLimiting  = "ratelimiting"
)

// ErrInvalidSampler is returned when a sampler type or parameter can not be used.
var ErrInvalidSampler = errors.New("invalid sampler configuration")

// Sampler decides whether a new trace is recorded. The decision is taken once,
// when the root span is started, and inherited by every descendant. It must be
// safe for concurrent use.
type Sampler interface {
	// Sample should return true if the trace with the given id should be sampled.
	Sample(traceID uint64) bool

	// Tags returns the tags describing the sampler. They become process tags
	// of the tracer.
	Tags() map[string]interface{}
}

// ConstSampler takes the same decision for every trace.
type ConstSampler struct {
	decision bool
}

// NewConstSampler returns a sampler that always returns decision.
func NewConstSampler(decision bool) *ConstSampler {
	return &ConstSampler{decision: decision}
}

// Sample implements Sampler.
func (s *ConstSampler) Sample(uint64) bool { return s.decision }

// Tags implements Sampler.
func (s *ConstSampler) Tags() map[string]interface{} {
	return map[string]interface{}{
		ext.SamplerType:  SamplerTypeConst,
		ext.SamplerParam: s.decision,
	}
}

// ProbabilisticSampler samples a fixed share of traces. The decision is a pure
// function of the trace id so that every process seeing the same id decides
// the same way.
type ProbabilisticSampler struct {
	mu   sync.RWMutex
	rate float64
}

// NewProbabilisticSampler returns a sampler keeping the given share of traces.
// The rate must be within [0, 1].
func NewProbabilisticSampler(rate float64) (*ProbabilisticSampler, error) {
	if err := checkRate(rate); err != nil {
		return nil, err
	}
	return &ProbabilisticSampler{rate: rate}, nil
}

func checkRate(rate float64) error {
	if math.IsNaN(rate) || rate < 0 || rate > 1 {
		return fmt.Errorf("%w: sampling rate %v is outside [0, 1]", ErrInvalidSampler, rate)
	}
	return nil
}

// Rate returns the current rate of the sampler.
func (s *ProbabilisticSampler) Rate() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rate
}

// SetRate sets a new sampling rate. Invalid rates are rejected.
func (s *ProbabilisticSampler) SetRate(rate float64) error {
	if err := checkRate(rate); err != nil {
		return err
	}
	s.mu.Lock()
	s.rate = rate
	s.mu.Unlock()
	return nil
}

// constants used for the Knuth hashing, same as agent.
const knuthFactor = uint64(1111111111111111111)

// Sample implements Sampler.
func (s *ProbabilisticSampler) Sample(traceID uint64) bool {
	r := s.Rate()
	if r < 1 {
		return traceID*knuthFactor < uint64(r*math.MaxUint64)
	}
	return true
}

// Tags implements Sampler.
func (s *ProbabilisticSampler) Tags() map[string]interface{} {
	return map[string]interface{}{
		ext.SamplerType:  SamplerTypeProbabilistic,
		ext.SamplerParam: s.Rate(),
	}
}

// RateLimitingSampler samples at most a fixed number of traces per second.
type RateLimitingSampler struct {
	maxPerSecond float64
	limiter      *rate.Limiter
}

// NewRateLimitingSampler returns a sampler admitting up to maxTracesPerSecond
// traces per second, with bursts of the same size.
func NewRateLimitingSampler(maxTracesPerSecond float64) (*RateLimitingSampler, error) {
	if math.IsNaN(maxTracesPerSecond) || math.IsInf(maxTracesPerSecond, 0) || maxTracesPerSecond < 0 {
		return nil, fmt.Errorf("%w: rate limit %v must be a finite number >= 0", ErrInvalidSampler, maxTracesPerSecond)
	}
	burst := int(math.Max(1, math.Ceil(maxTracesPerSecond)))
	if maxTracesPerSecond == 0 {
		burst = 0
	}
	return &RateLimitingSampler{
		maxPerSecond: maxTracesPerSecond,
		limiter:      rate.NewLimiter(rate.Limit(maxTracesPerSecond), burst),
	}, nil
}

// Sample implements Sampler.
func (s *RateLimitingSampler) Sample(uint64) bool {
	return s.limiter.Allow()
}

// Tags implements Sampler.
func (s *RateLimitingSampler) Tags() map[string]interface{} {
	return map[string]interface{}{
		ext.SamplerType:  SamplerTypeRateLimiting,
		ext.SamplerParam: s.maxPerSecond,
	}
}

// newSampler builds a sampler from its type and textual parameter, as found
// in JAEGER_SAMPLER_TYPE and JAEGER_SAMPLER_PARAM. An empty parameter selects
// the type's default.
func newSampler(typ, param string) (Sampler, error) {
	param = strings.TrimSpace(param)
	switch strings.ToLower(strings.TrimSpace(typ)) {
	case SamplerTypeConst:
		if param == "" {
			return NewConstSampler(true), nil
		}
		v, err := strconv.ParseBool(param)
		if err != nil {
			// jaeger clients historically accept 0/1 for const
			f, ferr := strconv.ParseFloat(param, 64)
			if ferr != nil || (f != 0 && f != 1) {
				return nil, fmt.Errorf("%w: const sampler parameter %q", ErrInvalidSampler, param)
			}
			v = f == 1
		}
		return NewConstSampler(v), nil
	case SamplerTypeProbabilistic:
		if param == "" {
			return NewProbabilisticSampler(0.001)
		}
		f, err := strconv.ParseFloat(param, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: probabilistic sampler parameter %q", ErrInvalidSampler, param)
		}
		return NewProbabilisticSampler(f)
	case SamplerTypeRateLimiting:
		if param == "" {
			return NewRateLimitingSampler(1)
		}
		f, err := strconv.ParseFloat(param, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: rate limiting sampler parameter %q", ErrInvalidSampler, param)
		}
		return NewRateLimitingSampler(f)
	default:
		return nil, fmt.Errorf("%w: unknown sampler type %q", ErrInvalidSampler, typ)
	}
}
