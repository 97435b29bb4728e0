/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"github.com/suparena/redismodel/metrics"
)

// BreakerConfig controls when the circuit opens and how long it stays open
type BreakerConfig struct {
	// MinRequests is the number of requests in a window before the breaker may trip
	MinRequests uint32
	// FailureRatio trips the breaker once failures/requests reaches it
	FailureRatio float64
	// Interval is the rolling window after which closed-state counts reset
	Interval time.Duration
	// OpenTimeout is how long the breaker stays open before probing again
	OpenTimeout time.Duration
}

// DefaultBreakerConfig trips at 60% failures over at least 5 requests
// within 10s and probes again after 30s.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MinRequests:  5,
		FailureRatio: 0.6,
		Interval:     10 * time.Second,
		OpenTimeout:  30 * time.Second,
	}
}

// CircuitBreakerHook implements goredis.Hook and fails commands fast while
// Redis is unavailable. A missing key (goredis.Nil) counts as success.
type CircuitBreakerHook struct {
	cb *gobreaker.CircuitBreaker
}

var _ goredis.Hook = (*CircuitBreakerHook)(nil)

// NewCircuitBreakerHook creates a breaker hook. m may be nil.
func NewCircuitBreakerHook(cfg BreakerConfig, m *metrics.Metrics, logger *slog.Logger) *CircuitBreakerHook {
	if logger == nil {
		logger = slog.Default()
	}

	settings := gobreaker.Settings{
		Name:        "redis",
		MaxRequests: 1,
		Interval:    cfg.Interval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				"component", name,
				"from", from.String(),
				"to", to.String(),
			)
			if m != nil {
				m.CircuitBreakerState.Set(stateValue(to))
				m.CircuitBreakerStateChanges.WithLabelValues(to.String()).Inc()
			}
		},
	}

	return &CircuitBreakerHook{cb: gobreaker.NewCircuitBreaker(settings)}
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// DialHook passes through; dial failures surface as command failures
func (h *CircuitBreakerHook) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		return next(ctx, network, addr)
	}
}

// ProcessHook wraps every command in the breaker
func (h *CircuitBreakerHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		return h.execute(func() error {
			return next(ctx, cmd)
		})
	}
}

// ProcessPipelineHook wraps a whole pipeline in the breaker
func (h *CircuitBreakerHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []goredis.Cmder) error {
		return h.execute(func() error {
			return next(ctx, cmds)
		})
	}
}

func (h *CircuitBreakerHook) execute(fn func() error) error {
	var cmdErr error
	_, err := h.cb.Execute(func() (interface{}, error) {
		cmdErr = fn()
		if cmdErr != nil && !errors.Is(cmdErr, goredis.Nil) {
			return nil, cmdErr
		}
		return nil, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("redis circuit breaker: %w", err)
	}
	return cmdErr
}

// GetState returns the current breaker state
func (h *CircuitBreakerHook) GetState() gobreaker.State {
	return h.cb.State()
}

// GetCounts returns the request counts of the current window
func (h *CircuitBreakerHook) GetCounts() gobreaker.Counts {
	return h.cb.Counts()
}
