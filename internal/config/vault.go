package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"resumecoach/internal/errors"
	"resumecoach/internal/types"

	"github.com/hashicorp/vault/api"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Token     string `mapstructure:"token"`
	TokenFile string `mapstructure:"tokenFile"`
	Namespace string `mapstructure:"namespace"`

	Secrets VaultSecrets     `mapstructure:"secrets"`
	Watch   VaultWatchConfig `mapstructure:"watch"`
}

// VaultSecrets defines where to find secrets in Vault (KVv2 paths)
type VaultSecrets struct {
	// AIKeys holds openai_api_key and/or gemini_api_key
	AIKeys string `mapstructure:"aiKeys"`
	// APIKeys holds "keys": a comma-separated list of client API keys
	APIKeys  string `mapstructure:"apiKeys"`
	TLSCerts string `mapstructure:"tlsCerts"` // cert, key, ca
}

// VaultWatchConfig controls polling of the AI key secret for rotation
type VaultWatchConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	PollInterval time.Duration `mapstructure:"pollInterval"`
}

// Field names inside the AI key secret
const (
	VaultFieldOpenAIKey = "openai_api_key"
	VaultFieldGeminiKey = "gemini_api_key"
)

// VaultClient wraps the Vault API client
type VaultClient struct {
	client *api.Client
	config VaultConfig
	logger *errors.Logger
}

// VaultSecret represents a secret read from Vault's KVv2 engine
type VaultSecret struct {
	Data    map[string]any
	Version int64
}

// NewVaultClient creates a Vault client and checks connectivity. It returns
// nil without error when Vault is disabled.
func NewVaultClient(config VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if !config.Enabled {
		return nil, nil
	}

	vaultConfig := api.DefaultConfig()
	if config.Address != "" {
		vaultConfig.Address = config.Address
	}

	client, err := api.NewClient(vaultConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create vault client: %w", err)
	}
	if config.Namespace != "" {
		client.SetNamespace(config.Namespace)
	}

	token, err := resolveVaultToken(config)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to vault: %w", err)
	}
	if logger != nil {
		logger.Info("Connected to Vault",
			"address", vaultConfig.Address,
			"version", health.Version,
			"sealed", health.Sealed)
	}

	return &VaultClient{client: client, config: config, logger: logger}, nil
}

func resolveVaultToken(config VaultConfig) (string, error) {
	token := config.Token
	if token == "" && config.TokenFile != "" {
		tokenBytes, err := os.ReadFile(config.TokenFile)
		if err != nil {
			return "", fmt.Errorf("failed to read vault token file: %w", err)
		}
		token = strings.TrimSpace(string(tokenBytes))
	}
	if token == "" {
		return "", fmt.Errorf("vault token is required when vault is enabled")
	}
	return token, nil
}

// GetSecretV2 retrieves a secret from a Vault KVv2 store
func (vc *VaultClient) GetSecretV2(path string) (*VaultSecret, error) {
	if vc == nil {
		return nil, fmt.Errorf("vault client not initialized")
	}

	secret, err := vc.client.Logical().Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}

	return decodeKVv2(secret.Data, path)
}

// decodeKVv2 splits a raw KVv2 payload into data and version
func decodeKVv2(raw map[string]any, path string) (*VaultSecret, error) {
	data, ok := raw["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'data' field)", path)
	}

	metadata, ok := raw["metadata"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'metadata' field)", path)
	}
	versionRaw, ok := metadata["version"]
	if !ok {
		return nil, fmt.Errorf("secret metadata at %s is missing 'version' field", path)
	}
	version, err := parseVersionValue(versionRaw, path)
	if err != nil {
		return nil, err
	}

	return &VaultSecret{Data: data, Version: version}, nil
}

// parseVersionValue accepts the version shapes Vault's JSON decoding produces
func parseVersionValue(versionRaw any, path string) (int64, error) {
	switch v := versionRaw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		version, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse secret version at %s: %w", path, err)
		}
		return version, nil
	default:
		return 0, fmt.Errorf("unexpected type for version at %s: %T", path, versionRaw)
	}
}

// GetStringSecret retrieves a string value from a Vault secret
func (vc *VaultClient) GetStringSecret(path, key string) (string, error) {
	secret, err := vc.GetSecretV2(path)
	if err != nil {
		return "", err
	}
	return stringField(secret, path, key)
}

func stringField(secret *VaultSecret, path, key string) (string, error) {
	value, ok := secret.Data[key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret %s", key, path)
	}
	strValue, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("value for key '%s' is not a string in secret %s", key, path)
	}
	return strValue, nil
}

// GetStringSliceSecret retrieves a comma-separated string as a slice
func (vc *VaultClient) GetStringSliceSecret(path, key string) ([]string, error) {
	value, err := vc.GetStringSecret(path, key)
	if err != nil {
		return nil, err
	}
	return splitKeys(value), nil
}

// ProviderKeysFromSecret extracts the provider API keys present in an AI key secret
func ProviderKeysFromSecret(secret *VaultSecret) map[types.Provider]string {
	keys := make(map[types.Provider]string)
	if secret == nil {
		return keys
	}
	if v, ok := secret.Data[VaultFieldOpenAIKey].(string); ok && strings.TrimSpace(v) != "" {
		keys[types.ProviderOpenAI] = strings.TrimSpace(v)
	}
	if v, ok := secret.Data[VaultFieldGeminiKey].(string); ok && strings.TrimSpace(v) != "" {
		keys[types.ProviderGemini] = strings.TrimSpace(v)
	}
	return keys
}

// ApplyVaultSecrets loads configured secrets from Vault into config and its
// credential store. The client is returned for reuse by the key watcher.
func ApplyVaultSecrets(config *Config, logger *errors.Logger) (*VaultClient, error) {
	if !config.Vault.Enabled {
		return nil, nil
	}

	client, err := NewVaultClient(config.Vault, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize vault client: %w", err)
	}
	if err := applySecrets(client, config, logger); err != nil {
		return nil, err
	}
	return client, nil
}

// SecretReader is the subset of VaultClient used to apply secrets
type SecretReader interface {
	GetSecretV2(path string) (*VaultSecret, error)
}

func applySecrets(client SecretReader, config *Config, logger *errors.Logger) error {
	secrets := config.Vault.Secrets

	if secrets.AIKeys != "" {
		secret, err := client.GetSecretV2(secrets.AIKeys)
		if err != nil {
			return fmt.Errorf("failed to load AI provider keys from vault: %w", err)
		}
		keys := ProviderKeysFromSecret(secret)
		for provider, key := range keys {
			config.Credentials().Set(provider, key)
			switch provider {
			case types.ProviderOpenAI:
				config.AI.OpenAI.APIKey = key
			case types.ProviderGemini:
				config.AI.Gemini.APIKey = key
			}
		}
		if logger != nil {
			logger.Info("AI provider keys loaded from Vault", "count", len(keys), "version", secret.Version)
		}
	}

	if secrets.APIKeys != "" {
		secret, err := client.GetSecretV2(secrets.APIKeys)
		if err != nil {
			return fmt.Errorf("failed to load API keys from vault: %w", err)
		}
		raw, err := stringField(secret, secrets.APIKeys, "keys")
		if err != nil {
			return fmt.Errorf("failed to load API keys from vault: %w", err)
		}
		if keys := splitKeys(raw); len(keys) > 0 {
			config.Server.APIKeys = keys
			if logger != nil {
				logger.Info("API keys loaded from Vault", "count", len(keys))
			}
		}
	}

	if secrets.TLSCerts != "" {
		secret, err := client.GetSecretV2(secrets.TLSCerts)
		if err != nil {
			return fmt.Errorf("failed to load TLS certificates from vault: %w", err)
		}
		loaded := 0
		for field, target := range map[string]*string{
			"cert": &config.Server.TLS.CertContent,
			"key":  &config.Server.TLS.KeyContent,
			"ca":   &config.Server.TLS.CAContent,
		} {
			if content, ok := secret.Data[field].(string); ok && content != "" {
				*target = content
				loaded++
			}
		}
		if logger != nil {
			logger.Info("TLS certificates loaded from Vault", "certificates_loaded", loaded)
		}
	}

	return nil
}
