package ai

import (
	"context"

	"resumecoach/internal/observability"
	"resumecoach/internal/types"
)

// TokenUsage is the token accounting reported by a provider call
type TokenUsage = observability.TokenUsage

// GenerateOptions are the sampling settings for one provider call
type GenerateOptions struct {
	Operation   string // span and log label
	Temperature float32
	MaxTokens   int
}

// Provider is a text-generation backend
type Provider interface {
	Name() types.Provider
	Model() string
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, *TokenUsage, error)
}

// ProviderFactory builds a provider for one call using an already resolved API key
type ProviderFactory func(ctx context.Context, provider types.Provider, apiKey string) (Provider, error)

// CredentialSource resolves provider API keys at call time
type CredentialSource interface {
	APIKey(provider types.Provider) string
}

// Recorder receives per-call telemetry; *observability.Metrics satisfies it
type Recorder interface {
	RecordAIOperation(ctx context.Context, op observability.AIOperation)
	RecordTruncation(ctx context.Context, intent string, dropped int)
}
