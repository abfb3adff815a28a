package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// TokenUsage is the token accounting reported by a provider
type TokenUsage struct {
	InputTokens  int64 `json:"inputTokens"`
	OutputTokens int64 `json:"outputTokens"`
	TotalTokens  int64 `json:"totalTokens"`
}

// AIOperation describes one finished orchestrator call
type AIOperation struct {
	Operation string // analyze, improve, generate
	Provider  string
	Intent    string
	Duration  time.Duration
	Fallback  bool
	ErrorCode string
	Tokens    *TokenUsage
}

// Metrics holds the application instruments. A zero Metrics records nothing.
type Metrics struct {
	AIRequests       metric.Int64Counter
	AIDuration       metric.Float64Histogram
	AIErrors         metric.Int64Counter
	AITokens         metric.Int64Counter
	AIFallbacks      metric.Int64Counter
	ResumeTruncation metric.Int64Counter
	RateLimitHits    metric.Int64Counter
	CertReloads      metric.Int64Counter
}

// NewMetrics creates every instrument on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.AIRequests, err = meter.Int64Counter(
		"resumecoach_ai_requests_total",
		metric.WithDescription("Total number of AI pipeline calls"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI request metric: %w", err)
	}

	if m.AIDuration, err = meter.Float64Histogram(
		"resumecoach_ai_request_duration_seconds",
		metric.WithDescription("Time spent in AI pipeline calls"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI duration metric: %w", err)
	}

	if m.AIErrors, err = meter.Int64Counter(
		"resumecoach_ai_errors_total",
		metric.WithDescription("AI pipeline failures by error code"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI error metric: %w", err)
	}

	if m.AITokens, err = meter.Int64Counter(
		"resumecoach_ai_tokens_total",
		metric.WithDescription("Tokens consumed by provider calls"),
		metric.WithUnit("{token}"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI token metric: %w", err)
	}

	if m.AIFallbacks, err = meter.Int64Counter(
		"resumecoach_ai_fallbacks_total",
		metric.WithDescription("Results replaced by the static fallback"),
	); err != nil {
		return nil, fmt.Errorf("failed to create AI fallback metric: %w", err)
	}

	if m.ResumeTruncation, err = meter.Int64Counter(
		"resumecoach_resume_chars_truncated_total",
		metric.WithDescription("Resume characters dropped by the length limit"),
	); err != nil {
		return nil, fmt.Errorf("failed to create truncation metric: %w", err)
	}

	if m.RateLimitHits, err = meter.Int64Counter(
		"resumecoach_http_rate_limited_total",
		metric.WithDescription("Requests rejected by the rate limiter"),
	); err != nil {
		return nil, fmt.Errorf("failed to create rate limit metric: %w", err)
	}

	if m.CertReloads, err = meter.Int64Counter(
		"resumecoach_tls_cert_reloads_total",
		metric.WithDescription("TLS certificate reload attempts"),
	); err != nil {
		return nil, fmt.Errorf("failed to create certificate reload metric: %w", err)
	}

	return m, nil
}

// RecordAIOperation records request count, duration, tokens, errors and fallbacks
func (m *Metrics) RecordAIOperation(ctx context.Context, op AIOperation) {
	if m == nil || m.AIRequests == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("operation", op.Operation),
		attribute.String("provider", op.Provider),
		attribute.String("intent", op.Intent),
		attribute.Bool("fallback", op.Fallback),
	}
	m.AIRequests.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.AIDuration.Record(ctx, op.Duration.Seconds(), metric.WithAttributes(attrs...))

	if op.Fallback {
		m.AIFallbacks.Add(ctx, 1, metric.WithAttributes(attrs[:3]...))
	}

	if op.ErrorCode != "" {
		m.AIErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", op.Operation),
			attribute.String("provider", op.Provider),
			attribute.String("error_code", op.ErrorCode),
		))
	}

	if op.Tokens != nil {
		for _, tt := range []struct {
			kind  string
			value int64
		}{
			{"input", op.Tokens.InputTokens},
			{"output", op.Tokens.OutputTokens},
		} {
			m.AITokens.Add(ctx, tt.value, metric.WithAttributes(
				attribute.String("provider", op.Provider),
				attribute.String("token_type", tt.kind),
			))
		}
	}
}

// RecordTruncation counts characters cut from an oversized resume
func (m *Metrics) RecordTruncation(ctx context.Context, intent string, dropped int) {
	if m == nil || m.ResumeTruncation == nil || dropped <= 0 {
		return
	}
	m.ResumeTruncation.Add(ctx, int64(dropped), metric.WithAttributes(attribute.String("intent", intent)))
}

// RecordRateLimitHit counts a rejected request, keyed by limiter type (ip or api_key)
func (m *Metrics) RecordRateLimitHit(ctx context.Context, keyType string) {
	if m == nil || m.RateLimitHits == nil {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("key_type", keyType)))
}

// RecordCertReload counts a certificate reload attempt
func (m *Metrics) RecordCertReload(ctx context.Context, success bool) {
	if m == nil || m.CertReloads == nil {
		return
	}
	m.CertReloads.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", success)))
}
