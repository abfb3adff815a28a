package ai

import (
	"context"
	stderrors "errors"
	"net/http"

	"resumecoach/internal/config"
	"resumecoach/internal/errors"
	"resumecoach/internal/types"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// OpenAIProvider generates text with the OpenAI chat completions API
type OpenAIProvider struct {
	client openai.Client
	model  string
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider creates a single-shot client: the SDK's automatic retries are disabled
func NewOpenAIProvider(apiKey string, cfg config.AIConfig) *OpenAIProvider {
	providerCfg := cfg.Provider(types.ProviderOpenAI)

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if providerCfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(providerCfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}

	return &OpenAIProvider{
		client: openai.NewClient(opts...),
		model:  providerCfg.Model,
	}
}

func (p *OpenAIProvider) Name() types.Provider { return types.ProviderOpenAI }

func (p *OpenAIProvider) Model() string { return p.model }

// Generate sends prompt as a single user message and returns the reply verbatim
func (p *OpenAIProvider) Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, *TokenUsage, error) {
	ctx, span := otel.Tracer("resumecoach.ai.openai").Start(ctx, "openai."+opts.Operation)
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.provider", string(types.ProviderOpenAI)),
		attribute.String("ai.model", p.model),
		attribute.Int("ai.max_tokens", opts.MaxTokens),
		attribute.Float64("ai.temperature", float64(opts.Temperature)),
	)

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxTokens:   openai.Int(int64(opts.MaxTokens)),
		Temperature: openai.Float(float64(opts.Temperature)),
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, openAIUpstreamError(err)
	}

	if len(resp.Choices) == 0 {
		span.SetAttributes(attribute.Bool("success", false))
		return "", nil, errors.NewUpstreamError("openai returned no choices", nil).
			WithContext("provider", string(types.ProviderOpenAI))
	}

	usage := &TokenUsage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}
	span.SetAttributes(
		attribute.Int64("ai.tokens.input", usage.InputTokens),
		attribute.Int64("ai.tokens.output", usage.OutputTokens),
		attribute.Int64("ai.tokens.total", usage.TotalTokens),
		attribute.Bool("success", true),
	)

	return resp.Choices[0].Message.Content, usage, nil
}

func openAIUpstreamError(err error) error {
	appErr := errors.NewUpstreamError("openai request failed", err).
		WithContext("provider", string(types.ProviderOpenAI))

	var apiErr *openai.Error
	if stderrors.As(err, &apiErr) {
		appErr = appErr.WithContext("status_code", apiErr.StatusCode)
	}
	return appErr
}
