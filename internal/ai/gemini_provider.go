package ai

import (
	"context"
	stderrors "errors"
	"net/http"

	"resumecoach/internal/config"
	"resumecoach/internal/errors"
	"resumecoach/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// GeminiProvider generates text with the Gemini generate-content API
type GeminiProvider struct {
	client *genai.Client
	model  string
}

var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a Gemini API client for one key
func NewGeminiProvider(ctx context.Context, apiKey string, cfg config.AIConfig) (*GeminiProvider, error) {
	providerCfg := cfg.Provider(types.ProviderGemini)

	clientCfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if providerCfg.BaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = providerCfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed, "Failed to create Gemini client", err)
	}

	return &GeminiProvider{client: client, model: providerCfg.Model}, nil
}

func (g *GeminiProvider) Name() types.Provider { return types.ProviderGemini }

func (g *GeminiProvider) Model() string { return g.model }

// Generate returns the text of the first part of the first candidate. A
// response without one yields an empty string rather than an error.
func (g *GeminiProvider) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, *TokenUsage, error) {
	ctx, span := otel.Tracer("resumecoach.ai.gemini").Start(ctx, "gemini."+opts.Operation)
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.provider", string(types.ProviderGemini)),
		attribute.String("ai.model", g.model),
		attribute.Int("ai.max_tokens", opts.MaxTokens),
		attribute.Float64("ai.temperature", float64(opts.Temperature)),
	)

	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(opts.Temperature),
		MaxOutputTokens: int32(opts.MaxTokens),
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), genCfg)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, geminiUpstreamError(err)
	}

	usage := extractTokenUsage(result)
	if usage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", usage.InputTokens),
			attribute.Int64("ai.tokens.output", usage.OutputTokens),
			attribute.Int64("ai.tokens.total", usage.TotalTokens),
		)
	}
	span.SetAttributes(attribute.Bool("success", true))

	return firstCandidateText(result), usage, nil
}

func firstCandidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	content := resp.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 || content.Parts[0] == nil {
		return ""
	}
	return content.Parts[0].Text
}

func extractTokenUsage(resp *genai.GenerateContentResponse) *TokenUsage {
	if resp == nil || resp.UsageMetadata == nil {
		return nil
	}
	return &TokenUsage{
		InputTokens:  int64(resp.UsageMetadata.PromptTokenCount),
		OutputTokens: int64(resp.UsageMetadata.CandidatesTokenCount),
		TotalTokens:  int64(resp.UsageMetadata.TotalTokenCount),
	}
}

// geminiUpstreamError records the HTTP status when the SDK exposes one
func geminiUpstreamError(err error) error {
	appErr := errors.NewUpstreamError("gemini request failed", err).
		WithContext("provider", string(types.ProviderGemini))

	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	var googleErr *googleapi.Error
	switch {
	case stderrors.As(err, &apiErr):
		appErr = appErr.WithContext("status_code", apiErr.Code)
	case stderrors.As(err, &apiErrPtr):
		appErr = appErr.WithContext("status_code", apiErrPtr.Code)
	case stderrors.As(err, &googleErr):
		appErr = appErr.WithContext("status_code", googleErr.Code)
	}
	return appErr
}
