package ai

import (
	"fmt"

	"resumecoach/internal/config"
	"resumecoach/internal/errors"

	"github.com/sony/gobreaker/v2"
)

// generation is the breaker's result type
type generation struct {
	text  string
	usage *TokenUsage
}

// ProviderCircuitBreaker guards calls to one provider. A nil breaker passes calls through.
type ProviderCircuitBreaker struct {
	cb *gobreaker.CircuitBreaker[generation]
}

// NewProviderCircuitBreaker returns nil when the breaker is disabled
func NewProviderCircuitBreaker(name string, cfg config.CircuitBreakerConfig, logger *errors.Logger) *ProviderCircuitBreaker {
	if !cfg.Enabled {
		return nil
	}

	settings := gobreaker.Settings{
		Name:        fmt.Sprintf("AI-%s", name),
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests || counts.Requests == 0 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			if logger == nil {
				return
			}
			logger.Info("Circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
				"max_requests", cfg.MaxRequests,
				"failure_threshold", cfg.FailureThreshold)
		},
	}

	return &ProviderCircuitBreaker{cb: gobreaker.NewCircuitBreaker[generation](settings)}
}

// Execute runs fn under the breaker. An open breaker returns an upstream error
// without calling fn.
func (b *ProviderCircuitBreaker) Execute(fn func() (string, *TokenUsage, error)) (string, *TokenUsage, error) {
	if b == nil || b.cb == nil {
		return fn()
	}

	out, err := b.cb.Execute(func() (generation, error) {
		text, usage, err := fn()
		return generation{text: text, usage: usage}, err
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return "", nil, errors.NewUpstreamError("provider temporarily unavailable", err).
				WithContext("breaker", b.cb.Name())
		}
		return "", nil, err
	}
	return out.text, out.usage, nil
}

// GetStats returns circuit breaker statistics
func (b *ProviderCircuitBreaker) GetStats() map[string]any {
	if b == nil || b.cb == nil {
		return map[string]any{"enabled": false}
	}

	return map[string]any{
		"name":    b.cb.Name(),
		"state":   b.cb.State().String(),
		"counts":  b.cb.Counts(),
		"enabled": true,
	}
}

// IsHealthy reports whether the breaker is closed; a nil breaker is always healthy
func (b *ProviderCircuitBreaker) IsHealthy() bool {
	if b == nil || b.cb == nil {
		return true
	}
	return b.cb.State() == gobreaker.StateClosed
}
