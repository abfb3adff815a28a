package ai

import (
	"context"
	"fmt"
	"time"

	"resumecoach/internal/config"
	"resumecoach/internal/errors"
	"resumecoach/internal/observability"
	"resumecoach/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Operation names used in logs, spans and metrics
const (
	OperationAnalyze  = "analyze"
	OperationImprove  = "improve"
	OperationGenerate = "generate"
)

// Service sequences prompt building, the provider call, parsing and the
// fallback policy. It holds no per-request state.
type Service struct {
	cfg      config.AIConfig
	prompts  *PromptBuilder
	creds    CredentialSource
	factory  ProviderFactory
	breakers map[types.Provider]*ProviderCircuitBreaker
	recorder Recorder
	tracer   trace.Tracer
	logger   *errors.Logger
}

// ServiceOption customises a Service
type ServiceOption func(*Service)

// WithCredentials replaces the configuration's credential store
func WithCredentials(creds CredentialSource) ServiceOption {
	return func(s *Service) { s.creds = creds }
}

// WithProviderFactory replaces the SDK-backed provider factory
func WithProviderFactory(factory ProviderFactory) ServiceOption {
	return func(s *Service) { s.factory = factory }
}

// WithRecorder sends per-call telemetry to r
func WithRecorder(r Recorder) ServiceOption {
	return func(s *Service) { s.recorder = r }
}

// WithTracer sets the tracer used for orchestrator spans
func WithTracer(t trace.Tracer) ServiceOption {
	return func(s *Service) { s.tracer = t }
}

// NewService creates the analysis orchestrator
func NewService(cfg *config.Config, logger *errors.Logger, opts ...ServiceOption) *Service {
	if logger == nil {
		logger = errors.NopLogger()
	}

	s := &Service{
		cfg:     cfg.AI,
		prompts: NewPromptBuilder(cfg.AI.MaxResumeChars, cfg.PromptTemplates()),
		creds:   cfg.Credentials(),
		breakers: map[types.Provider]*ProviderCircuitBreaker{
			types.ProviderOpenAI: NewProviderCircuitBreaker(string(types.ProviderOpenAI), cfg.AI.CircuitBreaker, logger),
			types.ProviderGemini: NewProviderCircuitBreaker(string(types.ProviderGemini), cfg.AI.CircuitBreaker, logger),
		},
		tracer: otel.Tracer("resumecoach.ai"),
		logger: logger,
	}
	s.factory = NewProviderFactory(cfg.AI)

	for _, opt := range opts {
		opt(s)
	}

	logger.Debug("AI service initialized",
		"default_provider", s.cfg.DefaultProviderName(),
		"openai_model", s.cfg.OpenAI.Model,
		"gemini_model", s.cfg.Gemini.Model,
		"temperature", s.cfg.Temperature,
		"max_resume_chars", s.prompts.MaxResumeChars(),
		"circuit_breaker", s.cfg.CircuitBreaker.Enabled)

	return s
}

// NewProviderFactory returns a factory building SDK-backed providers from cfg
func NewProviderFactory(cfg config.AIConfig) ProviderFactory {
	return func(ctx context.Context, provider types.Provider, apiKey string) (Provider, error) {
		switch provider {
		case types.ProviderOpenAI:
			return NewOpenAIProvider(apiKey, cfg), nil
		case types.ProviderGemini:
			return NewGeminiProvider(ctx, apiKey, cfg)
		default:
			return nil, errors.NewConfigError(errors.ErrCodeUnsupportedProvider,
				fmt.Sprintf("Unsupported AI provider: %s", provider), nil)
		}
	}
}

// Analyze runs a full analysis. Only missing input and a missing API key are
// returned as errors; every other failure yields the
// fallback analysis.
func (s *Service) Analyze(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResult, error) {
	if req.ResumeText == "" {
		return nil, errors.NewMissingInputError("Resume text is required")
	}
	provider := s.resolveProvider(req.Provider)
	req.Intent = types.IntentFullAnalysis

	ctx, span := s.startSpan(ctx, OperationAnalyze, provider, req.Intent)
	defer span.End()
	start := time.Now()

	prompt := s.buildPrompt(ctx, req)
	text, usage, err := s.generate(ctx, provider, prompt.Text, GenerateOptions{
		Operation:   OperationAnalyze,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokensFor(req.Intent),
	})
	if errors.IsConfigurationError(err) {
		s.fail(ctx, span, OperationAnalyze, provider, req.Intent, start, err)
		return nil, err
	}

	var result *types.AnalysisResult
	if err == nil {
		parsed := ParseAnalysis(text)
		result, err = parsed.Result, parsed.Err
	}
	if err != nil {
		result = FallbackAnalysis()
	}

	if req.ReportTruncation && prompt.Truncated {
		result.Warnings = append(result.Warnings, truncationWarning(prompt, s.prompts.MaxResumeChars()))
	}

	s.finish(ctx, span, OperationAnalyze, provider, req.Intent, start, usage, err)
	return result, nil
}

// Improve returns free-form suggestions for an improvement intent. Any
// failure after validation yields the fixed apology text.
func (s *Service) Improve(ctx context.Context, req types.AnalysisRequest) (*types.ImprovementResult, error) {
	if req.ResumeText == "" {
		return nil, errors.NewMissingInputError("Resume text is required")
	}
	provider := s.resolveProvider(req.Provider)
	req.Intent = types.ParseImprovementIntent(string(req.Intent))

	ctx, span := s.startSpan(ctx, OperationImprove, provider, req.Intent)
	defer span.End()
	start := time.Now()

	prompt := s.buildPrompt(ctx, req)
	text, usage, err := s.generate(ctx, provider, prompt.Text, GenerateOptions{
		Operation:   OperationImprove,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokensFor(req.Intent),
	})
	if errors.IsConfigurationError(err) {
		s.fail(ctx, span, OperationImprove, provider, req.Intent, start, err)
		return nil, err
	}
	if err == nil && text == "" {
		err = errors.NewUpstreamError("provider returned no text", nil)
	}

	result := &types.ImprovementResult{Suggestions: text}
	if err != nil {
		result = FallbackImprovement()
	}

	s.finish(ctx, span, OperationImprove, provider, req.Intent, start, usage, err)
	return result, nil
}

// GenerateContent writes content for one resume section
func (s *Service) GenerateContent(ctx context.Context, req types.ContentRequest) (*types.ContentResult, error) {
	if req.Section == "" || req.UserInput == "" {
		return nil, errors.NewMissingInputError("Section and user input are required")
	}
	provider := s.resolveProvider(req.Provider)
	intent := types.Intent("section-" + req.Section)

	ctx, span := s.startSpan(ctx, OperationGenerate, provider, intent)
	defer span.End()
	start := time.Now()

	text, usage, err := s.generate(ctx, provider, s.prompts.BuildContentPrompt(req), GenerateOptions{
		Operation:   OperationGenerate,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens.Content,
	})
	if errors.IsConfigurationError(err) {
		s.fail(ctx, span, OperationGenerate, provider, intent, start, err)
		return nil, err
	}
	if err == nil && text == "" {
		err = errors.NewUpstreamError("provider returned no text", nil)
	}

	result := &types.ContentResult{Content: text}
	if err != nil {
		result = FallbackContentResult()
	}

	s.finish(ctx, span, OperationGenerate, provider, intent, start, usage, err)
	return result, nil
}

// Stats reports circuit breaker state per provider
func (s *Service) Stats() map[string]any {
	stats := make(map[string]any, len(s.breakers))
	healthy := true
	for provider, breaker := range s.breakers {
		stats[string(provider)] = breaker.GetStats()
		healthy = healthy && breaker.IsHealthy()
	}
	stats["overall_healthy"] = healthy
	return stats
}

// Providers reports which providers currently resolve to an API key
func (s *Service) Providers() map[types.Provider]bool {
	return map[types.Provider]bool{
		types.ProviderOpenAI: s.creds.APIKey(types.ProviderOpenAI) != "",
		types.ProviderGemini: s.creds.APIKey(types.ProviderGemini) != "",
	}
}

func (s *Service) resolveProvider(requested types.Provider) types.Provider {
	if requested == "" {
		return s.cfg.DefaultProviderName()
	}
	provider, err := types.ParseProvider(string(requested))
	if err != nil {
		provider = s.cfg.DefaultProviderName()
		s.logger.Warn("Unknown AI provider requested, using default",
			"requested", requested, "provider", provider)
	}
	return provider
}

func (s *Service) buildPrompt(ctx context.Context, req types.AnalysisRequest) Prompt {
	prompt := s.prompts.BuildPrompt(req)
	if prompt.Truncated {
		s.logger.Debug("Resume text truncated",
			"intent", req.Intent,
			"dropped_chars", prompt.DroppedChars,
			"max_chars", s.prompts.MaxResumeChars())
		if s.recorder != nil {
			s.recorder.RecordTruncation(ctx, string(req.Intent), prompt.DroppedChars)
		}
	}
	return prompt
}

// generate resolves the API key at call time. A missing key is a
// configuration error raised before any client is built.
func (s *Service) generate(ctx context.Context, provider types.Provider, prompt string, opts GenerateOptions) (string, *TokenUsage, error) {
	apiKey := ""
	if s.creds != nil {
		apiKey = s.creds.APIKey(provider)
	}
	if apiKey == "" {
		return "", nil, errors.NewConfigError(errors.ErrCodeMissingAPIKey,
			fmt.Sprintf("Server configuration error: %s is missing.", config.LegacyKeyEnv(provider)), nil).
			WithContext("provider", string(provider))
	}

	client, err := s.factory(ctx, provider, apiKey)
	if err != nil {
		if errors.IsConfigurationError(err) {
			return "", nil, err
		}
		return "", nil, errors.NewUpstreamError("failed to create provider client", err).
			WithContext("provider", string(provider))
	}

	return s.breakers[provider].Execute(func() (string, *TokenUsage, error) {
		text, usage, err := client.Generate(ctx, prompt, opts)
		if err != nil {
			if _, ok := errors.AsAppError(err); !ok {
				err = errors.NewUpstreamError(fmt.Sprintf("%s request failed", provider), err)
			}
		}
		return text, usage, err
	})
}

func (s *Service) startSpan(ctx context.Context, operation string, provider types.Provider, intent types.Intent) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "ai."+operation, trace.WithAttributes(
		attribute.String("ai.provider", string(provider)),
		attribute.String("ai.intent", string(intent)),
	))
}

// finish logs and records a call that produced a result; err non-nil means the fallback was used
func (s *Service) finish(ctx context.Context, span trace.Span, operation string, provider types.Provider, intent types.Intent, start time.Time, usage *TokenUsage, err error) {
	duration := time.Since(start)
	op := observability.AIOperation{
		Operation: operation,
		Provider:  string(provider),
		Intent:    string(intent),
		Duration:  duration,
		Fallback:  err != nil,
		Tokens:    usage,
	}

	if err != nil {
		op.ErrorCode = errorCode(err)
		span.RecordError(err)
		s.logger.WarnError(err, "AI call degraded to fallback result",
			"operation", operation,
			"provider", provider,
			"intent", intent,
			"duration_ms", duration.Milliseconds())
	} else {
		s.logger.Info("AI call completed",
			"operation", operation,
			"provider", provider,
			"intent", intent,
			"duration_ms", duration.Milliseconds())
	}
	span.SetAttributes(attribute.Bool("ai.fallback", err != nil))

	if s.recorder != nil {
		s.recorder.RecordAIOperation(ctx, op)
	}
}

// fail logs and records a call that surfaces an error to the caller
func (s *Service) fail(ctx context.Context, span trace.Span, operation string, provider types.Provider, intent types.Intent, start time.Time, err error) {
	span.RecordError(err)
	s.logger.LogError(err, "AI call failed",
		"operation", operation,
		"provider", provider,
		"intent", intent)

	if s.recorder != nil {
		s.recorder.RecordAIOperation(ctx, observability.AIOperation{
			Operation: operation,
			Provider:  string(provider),
			Intent:    string(intent),
			Duration:  time.Since(start),
			ErrorCode: errorCode(err),
		})
	}
}

func errorCode(err error) string {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.Code
	}
	return errors.ErrCodeAIServiceFailed
}

func truncationWarning(p Prompt, max int) string {
	return fmt.Sprintf("resume text exceeded %d characters; the last %d characters were not analyzed", max, p.DroppedChars)
}
