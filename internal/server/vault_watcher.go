package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"resumecoach/internal/config"
	"resumecoach/internal/errors"
)

// SecretHandler receives a secret whose KVv2 version has increased
type SecretHandler func(secret *config.VaultSecret) error

// VaultWatcher polls one KVv2 secret and hands every new version to a handler.
// The server uses it to rotate provider API keys and TLS certificates.
type VaultWatcher struct {
	mu sync.RWMutex

	name         string
	client       config.SecretReader
	secretPath   string
	pollInterval time.Duration
	handler      SecretHandler
	logger       *errors.Logger

	stopChan    chan struct{}
	running     bool
	lastVersion int64
	lastError   string
	lastChecked time.Time
}

// NewVaultWatcher creates a watcher; name labels logs and status output
func NewVaultWatcher(name string, client config.SecretReader, secretPath string, pollInterval time.Duration, handler SecretHandler, logger *errors.Logger) *VaultWatcher {
	if pollInterval <= 0 {
		pollInterval = 5 * time.Minute
	}
	if logger == nil {
		logger = errors.NopLogger()
	}
	return &VaultWatcher{
		name:         name,
		client:       client,
		secretPath:   secretPath,
		pollInterval: pollInterval,
		handler:      handler,
		logger:       logger,
		stopChan:     make(chan struct{}),
	}
}

// Start begins polling Vault for secret changes
func (vw *VaultWatcher) Start() error {
	vw.mu.Lock()
	defer vw.mu.Unlock()
	if vw.running {
		return fmt.Errorf("vault watcher %s is already running", vw.name)
	}
	vw.running = true
	go vw.pollLoop()
	vw.logger.Info("Vault watcher started", "watcher", vw.name, "secret_path", vw.secretPath, "poll_interval", vw.pollInterval)
	return nil
}

// Stop stops the Vault watcher
func (vw *VaultWatcher) Stop() error {
	vw.mu.Lock()
	defer vw.mu.Unlock()
	if !vw.running {
		return nil
	}
	close(vw.stopChan)
	vw.running = false
	vw.logger.Info("Vault watcher stopped", "watcher", vw.name)
	return nil
}

func (vw *VaultWatcher) pollLoop() {
	ticker := time.NewTicker(vw.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := vw.Poll(); err != nil {
				vw.logger.LogError(err, "Failed to check Vault for updates", "watcher", vw.name)
			}
		case <-vw.stopChan:
			return
		}
	}
}

// Poll reads the secret once and calls the handler if its version is newer
// than the last one handled. It reports whether the handler ran.
func (vw *VaultWatcher) Poll() (bool, error) {
	secret, err := vw.client.GetSecretV2(vw.secretPath)

	vw.mu.Lock()
	vw.lastChecked = time.Now()
	if err != nil {
		vw.lastError = err.Error()
		vw.mu.Unlock()
		return false, fmt.Errorf("failed to read secret: %w", err)
	}
	if secret.Version <= vw.lastVersion {
		vw.lastError = ""
		vw.mu.Unlock()
		return false, nil
	}
	vw.mu.Unlock()

	if err := vw.handler(secret); err != nil {
		vw.mu.Lock()
		vw.lastError = err.Error()
		vw.mu.Unlock()
		return false, fmt.Errorf("failed to apply secret version %d: %w", secret.Version, err)
	}

	vw.mu.Lock()
	vw.lastVersion = secret.Version
	vw.lastError = ""
	vw.mu.Unlock()
	vw.logger.Info("Vault secret applied", "watcher", vw.name, "version", secret.Version)
	return true, nil
}

// Status returns the current status of the VaultWatcher for health reporting
func (vw *VaultWatcher) Status() map[string]any {
	vw.mu.RLock()
	defer vw.mu.RUnlock()
	status := map[string]any{
		"name":          vw.name,
		"running":       vw.running,
		"poll_interval": vw.pollInterval.String(),
		"secret_path":   vw.secretPath,
		"last_version":  vw.lastVersion,
	}
	if !vw.lastChecked.IsZero() {
		status["last_checked"] = vw.lastChecked
	}
	if vw.lastError != "" {
		status["last_error"] = vw.lastError
	}
	return status
}

// credentialRotationHandler writes rotated provider keys into the live credential store
func credentialRotationHandler(creds *config.Credentials, logger *errors.Logger) SecretHandler {
	if logger == nil {
		logger = errors.NopLogger()
	}
	return func(secret *config.VaultSecret) error {
		keys := config.ProviderKeysFromSecret(secret)
		if len(keys) == 0 {
			return fmt.Errorf("secret holds no provider API keys")
		}
		for provider, key := range keys {
			creds.Set(provider, key)
			logger.Info("Provider API key rotated", "provider", provider, "api_key", config.MaskKey(key))
		}
		return nil
	}
}

// certificateRotationHandler swaps TLS material fetched from Vault into the certificate manager
func certificateRotationHandler(cm *CertificateManager) SecretHandler {
	return func(secret *config.VaultSecret) error {
		data := CertificateData{}
		data.CertContent, _ = secret.Data["cert"].(string)
		data.KeyContent, _ = secret.Data["key"].(string)
		data.CAContent, _ = secret.Data["ca"].(string)
		if data.CertContent == "" || data.KeyContent == "" {
			return fmt.Errorf("secret is missing cert or key")
		}
		return cm.UpdateContent(data)
	}
}

// startVaultWatchers starts the configured rotation watchers
func (s *Server) startVaultWatchers(ctx context.Context, client config.SecretReader) error {
	vaultCfg := s.AppConfig.Vault
	if client == nil || !vaultCfg.Watch.Enabled {
		return nil
	}

	if vaultCfg.Secrets.AIKeys != "" {
		vw := NewVaultWatcher("ai-keys", client, vaultCfg.Secrets.AIKeys, vaultCfg.Watch.PollInterval,
			credentialRotationHandler(s.AppConfig.Credentials(), s.Logger), s.Logger)
		s.vaultWatchers = append(s.vaultWatchers, vw)
	}
	if vaultCfg.Secrets.TLSCerts != "" && s.CertificateManager != nil {
		vw := NewVaultWatcher("tls-certs", client, vaultCfg.Secrets.TLSCerts, vaultCfg.Watch.PollInterval,
			certificateRotationHandler(s.CertificateManager), s.Logger)
		s.vaultWatchers = append(s.vaultWatchers, vw)
	}

	for _, vw := range s.vaultWatchers {
		if err := vw.Start(); err != nil {
			return err
		}
	}

	go func() {
		<-ctx.Done()
		s.stopVaultWatchers()
	}()
	return nil
}

func (s *Server) stopVaultWatchers() {
	for _, vw := range s.vaultWatchers {
		if err := vw.Stop(); err != nil {
			s.Logger.LogError(err, "Failed to stop vault watcher")
		}
	}
}
