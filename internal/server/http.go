package server

import (
	"context"
	"time"

	"resumecoach/internal/config"
	"resumecoach/internal/errors"
	"resumecoach/internal/extract"
	"resumecoach/internal/observability"
	"resumecoach/internal/types"
)

// ImproveRequest is the /improve-resume body. improvementType is the
// original field name; intent is accepted as an alias.
type ImproveRequest struct {
	ResumeText       string         `json:"resumeText"`
	JobDescription   string         `json:"jobDescription"`
	ImprovementType  string         `json:"improvementType"`
	Intent           string         `json:"intent"`
	Provider         types.Provider `json:"provider"`
	ReportTruncation bool           `json:"reportTruncation"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// AnalysisService is the orchestrator surface the handlers depend on
type AnalysisService interface {
	Analyze(ctx context.Context, req types.AnalysisRequest) (*types.AnalysisResult, error)
	Improve(ctx context.Context, req types.AnalysisRequest) (*types.ImprovementResult, error)
	GenerateContent(ctx context.Context, req types.ContentRequest) (*types.ContentResult, error)
	Stats() map[string]any
	Providers() map[types.Provider]bool
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	TLSConfig          config.TLSConfig
	CertificateManager *CertificateManager

	// API Authentication
	APIKeys map[string]bool

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	MaxRequestSize int64

	RateLimit   config.RateLimitConfig
	RateLimiter *RateLimiter

	service       AnalysisService
	extractor     *extract.Extractor
	observability *observability.ObservabilityManager
	vaultWatchers []*VaultWatcher

	Logger *errors.Logger
}

// NewServer creates a Server from the application configuration. om may be
// nil, in which case telemetry is disabled.
func NewServer(appCfg *config.Config, service AnalysisService, om *observability.ObservabilityManager, version string, logger *errors.Logger) *Server {
	if logger == nil {
		logger = errors.NopLogger()
	}
	if om == nil {
		om, _ = observability.NewObservabilityManager(config.ObservabilityConfig{}, version)
	}
	cfg := appCfg.Server

	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.Window, cfg.RateLimit.BurstCapacity, logger)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLS,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxBodyBytes,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		service:        service,
		extractor:      extract.NewExtractor(appCfg.App.MaxFileSize),
		observability:  om,
		Logger:         logger,
	}
}
