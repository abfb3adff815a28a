package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"
	"time"

	"resumecoach/internal/config"
	"resumecoach/internal/errors"
	"resumecoach/internal/observability"
)

// CertificateManager holds the live server certificate and client CA pool and
// swaps them when the files or Vault content change
type CertificateManager struct {
	mu sync.RWMutex

	serverCert       *tls.Certificate
	caCertPool       *x509.CertPool
	serverCertExpiry time.Time

	source      CertificateData
	config      config.TLSConfig
	fileWatcher *CertWatcher

	metrics *observability.Metrics
	logger  *errors.Logger

	reloadCount        int64
	reloadFailureCount int64
	lastReloadTime     time.Time
	lastReloadError    string
}

// CertificateData is PEM content supplied directly (from config or Vault)
type CertificateData struct {
	CertContent string
	KeyContent  string
	CAContent   string
}

// CertificateMetrics summarises reload activity for /health
type CertificateMetrics struct {
	ReloadCount        int64     `json:"reload_count"`
	ReloadFailureCount int64     `json:"reload_failure_count"`
	LastReloadTime     time.Time `json:"last_reload_time"`
	LastReloadError    string    `json:"last_reload_error,omitempty"`
}

// NewCertificateManager creates a manager for cfg; call Start to load
func NewCertificateManager(cfg config.TLSConfig, metrics *observability.Metrics, logger *errors.Logger) *CertificateManager {
	if logger == nil {
		logger = errors.NopLogger()
	}
	return &CertificateManager{
		config: cfg,
		source: CertificateData{
			CertContent: cfg.CertContent,
			KeyContent:  cfg.KeyContent,
			CAContent:   cfg.CAContent,
		},
		metrics: metrics,
		logger:  logger,
	}
}

// Start loads the certificates and, for file-based certificates with
// auto-reload enabled, begins watching the files
func (cm *CertificateManager) Start() error {
	if err := cm.reload(); err != nil {
		return err
	}

	if !cm.config.AutoReload.Enabled || !cm.usesFiles() {
		return nil
	}

	watcher, err := NewCertWatcher(cm.config.CertFile, cm.config.KeyFile, cm.caFileIfMutual(),
		cm.config.AutoReload.DebounceDelay, cm.triggerReload, cm.logger)
	if err != nil {
		return fmt.Errorf("failed to create certificate watcher: %w", err)
	}
	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start certificate watcher: %w", err)
	}
	cm.fileWatcher = watcher
	return nil
}

// Stop stops the file watcher if running
func (cm *CertificateManager) Stop() error {
	if cm.fileWatcher != nil {
		return cm.fileWatcher.Stop()
	}
	return nil
}

// TLSConfig returns a server TLS configuration that resolves the current
// certificate and CA pool on every handshake
func (cm *CertificateManager) TLSConfig() *tls.Config {
	base := &tls.Config{
		MinVersion: minTLSVersion(cm.config.MinVersion),
		ClientAuth: tls.NoClientCert,
	}
	if cm.config.Mode == "mutual" {
		base.ClientAuth = clientAuthPolicy(cm.config.ClientAuthPolicy)
	}

	base.GetConfigForClient = func(*tls.ClientHelloInfo) (*tls.Config, error) {
		cm.mu.RLock()
		defer cm.mu.RUnlock()
		if cm.serverCert == nil {
			return nil, fmt.Errorf("no server certificate loaded")
		}
		cfg := base.Clone()
		cfg.GetConfigForClient = nil
		cfg.Certificates = []tls.Certificate{*cm.serverCert}
		cfg.ClientCAs = cm.caCertPool
		return cfg, nil
	}
	return base
}

// GetServerCertificate returns the current server certificate
func (cm *CertificateManager) GetServerCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if cm.serverCert == nil {
		return nil, fmt.Errorf("no server certificate loaded")
	}
	return cm.serverCert, nil
}

// UpdateContent replaces in-memory PEM content (e.g. rotated in Vault) and reloads
func (cm *CertificateManager) UpdateContent(data CertificateData) error {
	cm.mu.Lock()
	cm.source = data
	cm.mu.Unlock()
	return cm.reloadAndRecord()
}

// CheckExpiry returns the time until the server certificate expires
func (cm *CertificateManager) CheckExpiry() (time.Duration, error) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if cm.serverCertExpiry.IsZero() {
		return 0, fmt.Errorf("no server certificate loaded")
	}
	return time.Until(cm.serverCertExpiry), nil
}

// GetMetrics returns certificate reload counters
func (cm *CertificateManager) GetMetrics() CertificateMetrics {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return CertificateMetrics{
		ReloadCount:        cm.reloadCount,
		ReloadFailureCount: cm.reloadFailureCount,
		LastReloadTime:     cm.lastReloadTime,
		LastReloadError:    cm.lastReloadError,
	}
}

// WatcherStatus describes the file watcher for /health
func (cm *CertificateManager) WatcherStatus() map[string]any {
	status := map[string]any{"enabled": cm.config.AutoReload.Enabled}
	if cm.fileWatcher != nil {
		status["file_watcher_running"] = cm.fileWatcher.IsRunning()
		status["watched_files"] = cm.fileWatcher.GetWatchedFiles()
	}
	return status
}

// triggerReload is the file watcher callback
func (cm *CertificateManager) triggerReload() {
	_ = cm.reloadAndRecord()
}

// reloadAndRecord reloads and reports the outcome; failures keep the previous certificate
func (cm *CertificateManager) reloadAndRecord() error {
	err := cm.reload()
	cm.metrics.RecordCertReload(context.Background(), err == nil)
	if err != nil {
		cm.logger.LogError(err, "Failed to reload TLS certificates, keeping previous certificate")
		return err
	}
	cm.logger.Info("TLS certificates reloaded successfully")
	return nil
}

func (cm *CertificateManager) reload() error {
	cm.mu.RLock()
	source := cm.source
	cm.mu.RUnlock()

	cert, expiry, err := cm.loadServerCertificate(source)
	var pool *x509.CertPool
	if err == nil && cm.config.Mode == "mutual" {
		pool, err = cm.loadCACertPool(source)
	}

	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.reloadCount++
	cm.lastReloadTime = time.Now()
	if err != nil {
		cm.reloadFailureCount++
		cm.lastReloadError = err.Error()
		return err
	}
	cm.serverCert = cert
	cm.serverCertExpiry = expiry
	cm.caCertPool = pool
	cm.lastReloadError = ""
	return nil
}

func (cm *CertificateManager) loadServerCertificate(source CertificateData) (*tls.Certificate, time.Time, error) {
	var cert tls.Certificate
	var err error
	switch {
	case source.CertContent != "" && source.KeyContent != "":
		cert, err = tls.X509KeyPair([]byte(source.CertContent), []byte(source.KeyContent))
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("failed to load server cert/key from content: %w", err)
		}
	case cm.config.CertFile != "" && cm.config.KeyFile != "":
		cert, err = tls.LoadX509KeyPair(cm.config.CertFile, cm.config.KeyFile)
		if err != nil {
			return nil, time.Time{}, fmt.Errorf("failed to load server cert/key from files: %w", err)
		}
	default:
		return nil, time.Time{}, fmt.Errorf("TLS certificate and key are required (provide either files or content)")
	}

	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to parse server certificate: %w", err)
	}
	cert.Leaf = leaf
	return &cert, leaf.NotAfter, nil
}

func (cm *CertificateManager) loadCACertPool(source CertificateData) (*x509.CertPool, error) {
	var caPEM []byte
	switch {
	case source.CAContent != "":
		caPEM = []byte(source.CAContent)
	case cm.config.CAFile != "":
		data, err := os.ReadFile(cm.config.CAFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA file: %w", err)
		}
		caPEM = data
	default:
		return nil, fmt.Errorf("CA certificate is required for mutual TLS mode (provide either caFile or caContent)")
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return nil, fmt.Errorf("failed to append CA cert")
	}
	return pool, nil
}

func (cm *CertificateManager) usesFiles() bool {
	return cm.source.CertContent == "" && cm.config.CertFile != ""
}

func (cm *CertificateManager) caFileIfMutual() string {
	if cm.config.Mode == "mutual" && cm.source.CAContent == "" {
		return cm.config.CAFile
	}
	return ""
}

func minTLSVersion(v string) uint16 {
	if v == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}

func clientAuthPolicy(policy string) tls.ClientAuthType {
	switch policy {
	case "request":
		return tls.RequestClientCert
	case "verify":
		return tls.VerifyClientCertIfGiven
	default:
		return tls.RequireAndVerifyClientCert
	}
}
