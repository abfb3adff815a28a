package config

import (
	"os"
	"strings"
	"sync"

	"resumecoach/internal/types"
)

// legacyKeyEnv names the plain environment variables the hosted app used
var legacyKeyEnv = map[types.Provider]string{
	types.ProviderOpenAI: "OPENAI_API_KEY",
	types.ProviderGemini: "GEMINI_API_KEY",
}

// LegacyKeyEnv returns the environment variable consulted for provider's key
func LegacyKeyEnv(provider types.Provider) string {
	return legacyKeyEnv[provider]
}

// Credentials resolves provider API keys whenever a call is about to be made.
// Keys set explicitly (config file, Vault, rotation) win; otherwise the legacy
// environment variable is read at lookup time.
type Credentials struct {
	mu        sync.RWMutex
	keys      map[types.Provider]string
	lookupEnv func(string) (string, bool)
}

// NewCredentials creates an empty store backed by the process environment
func NewCredentials() *Credentials {
	return &Credentials{
		keys:      make(map[types.Provider]string),
		lookupEnv: os.LookupEnv,
	}
}

// StaticCredentials creates a store that never consults the environment
func StaticCredentials(keys map[types.Provider]string) *Credentials {
	c := &Credentials{
		keys:      make(map[types.Provider]string, len(keys)),
		lookupEnv: func(string) (string, bool) { return "", false },
	}
	for provider, key := range keys {
		c.keys[provider] = key
	}
	return c
}

// Set replaces the explicit key for a provider; an empty key clears it
func (c *Credentials) Set(provider types.Provider, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key = strings.TrimSpace(key)
	if key == "" {
		delete(c.keys, provider)
		return
	}
	c.keys[provider] = key
}

// APIKey returns the key for provider, or "" when none is configured
func (c *Credentials) APIKey(provider types.Provider) string {
	if c == nil {
		return ""
	}

	c.mu.RLock()
	key := c.keys[provider]
	c.mu.RUnlock()
	if key != "" {
		return key
	}

	if envName, ok := legacyKeyEnv[provider]; ok {
		if value, found := c.lookupEnv(envName); found {
			return strings.TrimSpace(value)
		}
	}
	return ""
}

// Configured lists the providers that currently resolve to a key
func (c *Credentials) Configured() []types.Provider {
	var providers []types.Provider
	for _, p := range []types.Provider{types.ProviderOpenAI, types.ProviderGemini} {
		if c.APIKey(p) != "" {
			providers = append(providers, p)
		}
	}
	return providers
}

// MaskKey shortens a secret for logs
func MaskKey(key string) string {
	switch {
	case len(key) > 8:
		return key[:4] + "****" + key[len(key)-4:]
	case key != "":
		return "****"
	default:
		return ""
	}
}
