package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// ServiceLimiter throttles outbound calls per remote service so that
// concurrent requests stay inside each API's quota.
type ServiceLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	defaults RateLimitConfig
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	BurstSize         int
}

func DefaultConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 2,
		BurstSize:         5,
	}
}

func NewServiceLimiter(config RateLimitConfig) *ServiceLimiter {
	return &ServiceLimiter{
		limiters: make(map[string]*rate.Limiter),
		defaults: config,
	}
}

func NewServiceLimiterWithDefaults() *ServiceLimiter {
	return NewServiceLimiter(DefaultConfig())
}

func (s *ServiceLimiter) GetLimiter(service string) *rate.Limiter {
	s.mu.RLock()
	limiter, exists := s.limiters[service]
	s.mu.RUnlock()

	if exists {
		return limiter
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if limiter, exists = s.limiters[service]; exists {
		return limiter
	}

	limiter = newLimiter(s.defaults.RequestsPerSecond, s.defaults.BurstSize)
	s.limiters[service] = limiter
	return limiter
}

// SetServiceLimit replaces the limit for service. A non-positive rps
// disables throttling for it.
func (s *ServiceLimiter) SetServiceLimit(service string, rps float64, burst int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.limiters[service] = newLimiter(rps, burst)
}

// Wait blocks until service may be called or ctx is done. A nil receiver
// never blocks.
func (s *ServiceLimiter) Wait(ctx context.Context, service string) error {
	if s == nil {
		return nil
	}
	return s.GetLimiter(service).Wait(ctx)
}

func newLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
