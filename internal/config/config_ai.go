package config

import (
	"resumecoach/internal/types"
)

// Credentials returns the call-time key store, creating it from the loaded
// provider settings on first use
func (c *Config) Credentials() *Credentials {
	if c.credentials == nil {
		c.credentials = NewCredentials()
		c.credentials.Set(types.ProviderOpenAI, c.AI.OpenAI.APIKey)
		c.credentials.Set(types.ProviderGemini, c.AI.Gemini.APIKey)
	}
	return c.credentials
}

// Provider returns the settings for one backend
func (c *AIConfig) Provider(p types.Provider) ProviderConfig {
	switch p {
	case types.ProviderGemini:
		return c.Gemini
	default:
		return c.OpenAI
	}
}

// MaxTokensFor returns the output cap for an intent
func (c *AIConfig) MaxTokensFor(intent types.Intent) int {
	if intent.IsImprovement() {
		return c.MaxTokens.Improvement
	}
	return c.MaxTokens.Analysis
}

// DefaultProviderName resolves the configured default, falling back to openai
func (c *AIConfig) DefaultProviderName() types.Provider {
	p, err := types.ParseProvider(c.DefaultProvider)
	if err != nil {
		return types.DefaultProvider
	}
	return p
}
