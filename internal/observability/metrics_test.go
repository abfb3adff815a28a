package observability

import (
	"context"
	"testing"
	"time"

	"resumecoach/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					sums[m.Name] += dp.Value
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					sums[m.Name] += int64(dp.Count)
				}
			}
		}
	}
	return sums
}

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp.Meter("test"))
	require.NoError(t, err)
	return m, reader
}

func TestRecordAIOperation(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordAIOperation(ctx, AIOperation{
		Operation: "analyze",
		Provider:  "openai",
		Intent:    "full-analysis",
		Duration:  150 * time.Millisecond,
		Tokens:    &TokenUsage{InputTokens: 100, OutputTokens: 40, TotalTokens: 140},
	})
	m.RecordAIOperation(ctx, AIOperation{
		Operation: "analyze",
		Provider:  "gemini",
		Intent:    "full-analysis",
		Fallback:  true,
		ErrorCode: "UPSTREAM_FAILED",
	})

	sums := collect(t, reader)
	assert.Equal(t, int64(2), sums["resumecoach_ai_requests_total"])
	assert.Equal(t, int64(2), sums["resumecoach_ai_request_duration_seconds"])
	assert.Equal(t, int64(1), sums["resumecoach_ai_fallbacks_total"])
	assert.Equal(t, int64(1), sums["resumecoach_ai_errors_total"])
	assert.Equal(t, int64(140), sums["resumecoach_ai_tokens_total"])
}

func TestRecordInfrastructureMetrics(t *testing.T) {
	m, reader := newTestMetrics(t)
	ctx := context.Background()

	m.RecordTruncation(ctx, "full-analysis", 250)
	m.RecordTruncation(ctx, "full-analysis", 0)
	m.RecordRateLimitHit(ctx, "ip")
	m.RecordCertReload(ctx, true)
	m.RecordCertReload(ctx, false)

	sums := collect(t, reader)
	assert.Equal(t, int64(250), sums["resumecoach_resume_chars_truncated_total"])
	assert.Equal(t, int64(1), sums["resumecoach_http_rate_limited_total"])
	assert.Equal(t, int64(2), sums["resumecoach_tls_cert_reloads_total"])
}

func TestZeroMetricsAreSafe(t *testing.T) {
	var nilMetrics *Metrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		nilMetrics.RecordAIOperation(ctx, AIOperation{Operation: "analyze"})
		(&Metrics{}).RecordAIOperation(ctx, AIOperation{Operation: "analyze"})
		(&Metrics{}).RecordTruncation(ctx, "x", 10)
		(&Metrics{}).RecordRateLimitHit(ctx, "ip")
		(&Metrics{}).RecordCertReload(ctx, true)
	})
}

func TestDisabledManager(t *testing.T) {
	om, err := NewObservabilityManager(config.ObservabilityConfig{Enabled: false, ServiceName: "test"}, "v1")
	require.NoError(t, err)

	assert.False(t, om.Enabled())
	assert.NotNil(t, om.Metrics())
	assert.NotNil(t, om.Tracer("test"))
	assert.NoError(t, om.Shutdown(context.Background()))

	handler := om.HTTPMiddleware()(nil)
	assert.Nil(t, handler)
}

func TestEnabledManagerWithoutExporters(t *testing.T) {
	om, err := NewObservabilityManager(config.ObservabilityConfig{
		Enabled:     true,
		ServiceName: "test",
		SampleRate:  1,
		Metrics:     config.MetricsConfig{Enabled: true},
	}, "v1")
	require.NoError(t, err)
	t.Cleanup(func() { _ = om.Shutdown(context.Background()) })

	assert.True(t, om.Enabled())
	assert.NotNil(t, om.Metrics().AIRequests)

	_, span := om.Tracer("test").Start(context.Background(), "op")
	assert.True(t, span.SpanContext().IsValid())
	span.End()
}
