package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"resumecoach/internal/config"
	"resumecoach/internal/errors"
	"resumecoach/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func providerConfig(baseURL string) config.AIConfig {
	cfg := testConfig().AI
	cfg.OpenAI.BaseURL = baseURL
	cfg.Gemini.BaseURL = baseURL
	return cfg
}

func TestOpenAIProviderGenerate(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1,
			"model": "gpt-4o",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "generated text"}}],
			"usage": {"prompt_tokens": 12, "completion_tokens": 3, "total_tokens": 15}
		}`)
	}))
	defer server.Close()

	p := NewOpenAIProvider("sk-test", providerConfig(server.URL+"/v1/"))
	assert.Equal(t, types.ProviderOpenAI, p.Name())
	assert.Equal(t, "gpt-4o", p.Model())

	text, usage, err := p.Generate(context.Background(), "the prompt", GenerateOptions{Operation: "analyze", Temperature: 0.3, MaxTokens: 1200})
	require.NoError(t, err)
	assert.Equal(t, "generated text", text)
	assert.Equal(t, &TokenUsage{InputTokens: 12, OutputTokens: 3, TotalTokens: 15}, usage)

	assert.Equal(t, "gpt-4o", body["model"])
	assert.EqualValues(t, 1200, body["max_tokens"])
	assert.InDelta(t, 0.3, body["temperature"], 0.0001)
	messages := body["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].(map[string]any)["role"])
	assert.Equal(t, "the prompt", messages[0].(map[string]any)["content"])
}

func TestOpenAIProviderDoesNotRetry(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, `{"error": {"message": "overloaded", "type": "server_error"}}`)
	}))
	defer server.Close()

	p := NewOpenAIProvider("sk-test", providerConfig(server.URL+"/v1/"))
	_, _, err := p.Generate(context.Background(), "prompt", GenerateOptions{Operation: "analyze", MaxTokens: 10})

	require.True(t, errors.IsUpstreamError(err))
	appErr, _ := errors.AsAppError(err)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Context["status_code"])
	assert.Equal(t, 1, calls)
}

type seenRequest struct {
	method string
	path   string
	apiKey string
}

func geminiServer(t *testing.T, status int, response string, seen *seenRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = seenRequest{method: r.Method, path: r.URL.Path, apiKey: r.Header.Get("x-goog-api-key")}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestGeminiProviderGenerate(t *testing.T) {
	var seen seenRequest
	server := geminiServer(t, http.StatusOK, `{
		"candidates": [{"content": {"role": "model", "parts": [{"text": "gemini says hi"}, {"text": "ignored"}]}}],
		"usageMetadata": {"promptTokenCount": 7, "candidatesTokenCount": 4, "totalTokenCount": 11}
	}`, &seen)

	p, err := NewGeminiProvider(context.Background(), "gm-test", providerConfig(server.URL+"/"))
	require.NoError(t, err)
	assert.Equal(t, types.ProviderGemini, p.Name())

	text, usage, err := p.Generate(context.Background(), "prompt", GenerateOptions{Operation: "analyze", Temperature: 0.3, MaxTokens: 1200})
	require.NoError(t, err)
	assert.Equal(t, "gemini says hi", text)
	assert.Equal(t, &TokenUsage{InputTokens: 7, OutputTokens: 4, TotalTokens: 11}, usage)

	assert.Equal(t, http.MethodPost, seen.method)
	assert.Contains(t, seen.path, "gemini-pro:generateContent")
	assert.Equal(t, "gm-test", seen.apiKey)
}

func TestGeminiProviderEmptyCandidates(t *testing.T) {
	for _, response := range []string{`{"candidates": []}`, `{}`, `{"candidates": [{"content": {"parts": []}}]}`} {
		server := geminiServer(t, http.StatusOK, response, nil)

		p, err := NewGeminiProvider(context.Background(), "gm-test", providerConfig(server.URL+"/"))
		require.NoError(t, err)

		text, _, err := p.Generate(context.Background(), "prompt", GenerateOptions{Operation: "analyze", MaxTokens: 10})
		require.NoError(t, err, response)
		assert.Empty(t, text)
	}
}

func TestGeminiProviderErrorStatus(t *testing.T) {
	server := geminiServer(t, http.StatusInternalServerError,
		`{"error": {"code": 500, "message": "internal", "status": "INTERNAL"}}`, nil)

	p, err := NewGeminiProvider(context.Background(), "gm-test", providerConfig(server.URL+"/"))
	require.NoError(t, err)

	_, _, err = p.Generate(context.Background(), "prompt", GenerateOptions{Operation: "analyze", MaxTokens: 10})
	require.True(t, errors.IsUpstreamError(err))
	appErr, _ := errors.AsAppError(err)
	assert.Equal(t, 500, appErr.Context["status_code"])
}

func TestServiceEndToEndWithGemini(t *testing.T) {
	server := geminiServer(t, http.StatusOK, `{"candidates": [{"content": {"parts": [{"text": "Result:\n`+
		strings.ReplaceAll(validAnalysis, `"`, `\"`)+`"}]}}]}`, nil)

	cfg := testConfig()
	cfg.AI.Gemini.BaseURL = server.URL + "/"
	svc := NewService(cfg, nil, WithCredentials(config.StaticCredentials(map[types.Provider]string{
		types.ProviderGemini: "gm-test",
	})))

	result, err := svc.Analyze(context.Background(), types.AnalysisRequest{ResumeText: "resume", Provider: types.ProviderGemini})
	require.NoError(t, err)
	assert.Equal(t, 72, result.ATSScore)
	assert.False(t, result.Fallback)
}

func TestServiceEndToEndGeminiFailureFallsBack(t *testing.T) {
	server := geminiServer(t, http.StatusBadGateway, `{"error": {"code": 502, "message": "bad gateway"}}`, nil)

	cfg := testConfig()
	cfg.AI.Gemini.BaseURL = server.URL + "/"
	svc := NewService(cfg, nil, WithCredentials(config.StaticCredentials(map[types.Provider]string{
		types.ProviderGemini: "gm-test",
	})))

	result, err := svc.Analyze(context.Background(), types.AnalysisRequest{ResumeText: "resume", Provider: types.ProviderGemini})
	require.NoError(t, err)
	assert.Equal(t, FallbackAnalysis(), result)
}
