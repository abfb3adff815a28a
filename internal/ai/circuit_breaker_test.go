package ai

import (
	"fmt"
	"testing"
	"time"

	"resumecoach/internal/config"
	"resumecoach/internal/errors"
)

func breakerConfig() config.CircuitBreakerConfig {
	return config.CircuitBreakerConfig{
		Enabled:          true,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		MinRequests:      2,
		FailureThreshold: 0.5,
	}
}

func TestDisabledCircuitBreakerPassesThrough(t *testing.T) {
	cb := NewProviderCircuitBreaker("openai", config.CircuitBreakerConfig{Enabled: false}, nil)
	if cb != nil {
		t.Fatal("Expected nil breaker when disabled")
	}

	text, _, err := cb.Execute(func() (string, *TokenUsage, error) { return "ok", nil, nil })
	if err != nil || text != "ok" {
		t.Errorf("Expected pass-through result, got %q, %v", text, err)
	}

	stats := cb.GetStats()
	if stats["enabled"] != false {
		t.Errorf("Expected disabled stats, got %v", stats)
	}
	if !cb.IsHealthy() {
		t.Error("Nil breaker should report healthy")
	}
}

func TestCircuitBreakerStats(t *testing.T) {
	cb := NewProviderCircuitBreaker("gemini", breakerConfig(), nil)
	stats := cb.GetStats()

	if name, _ := stats["name"].(string); name != "AI-gemini" {
		t.Errorf("Expected circuit breaker name 'AI-gemini', got '%s'", name)
	}
	if state, _ := stats["state"].(string); state != "closed" {
		t.Errorf("Expected initial state 'closed', got '%s'", state)
	}
	if stats["enabled"] != true {
		t.Error("Expected breaker to be enabled")
	}
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	cb := NewProviderCircuitBreaker("openai", breakerConfig(), nil)
	calls := 0
	failing := func() (string, *TokenUsage, error) {
		calls++
		return "", nil, fmt.Errorf("boom")
	}

	for range 2 {
		if _, _, err := cb.Execute(failing); err == nil {
			t.Fatal("Expected failure to propagate")
		}
	}
	if cb.IsHealthy() {
		t.Fatal("Expected breaker to open after reaching the failure threshold")
	}

	_, _, err := cb.Execute(failing)
	if !errors.IsUpstreamError(err) {
		t.Errorf("Expected open breaker to surface an upstream error, got %v", err)
	}
	if calls != 2 {
		t.Errorf("Expected open breaker to skip the call, got %d calls", calls)
	}
}

func TestCircuitBreakerReturnsUsage(t *testing.T) {
	cb := NewProviderCircuitBreaker("openai", breakerConfig(), nil)
	text, usage, err := cb.Execute(func() (string, *TokenUsage, error) {
		return "hello", &TokenUsage{TotalTokens: 9}, nil
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if text != "hello" || usage == nil || usage.TotalTokens != 9 {
		t.Errorf("Unexpected result %q %+v", text, usage)
	}
}
