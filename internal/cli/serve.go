package cli

import (
	"context"
	"fmt"
	"time"

	"resumecoach/internal/ai"
	"resumecoach/internal/config"
	"resumecoach/internal/errors"
	"resumecoach/internal/observability"
	"resumecoach/internal/server"

	"github.com/spf13/cobra"
)

type serveFlags struct {
	host     string
	port     string
	tlsMode  string
	certFile string
	keyFile  string
	caFile   string
}

// apply copies flags the user set over the loaded configuration
func (f *serveFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	set := func(name string, target *string, value string) {
		if cmd.Flags().Changed(name) {
			*target = value
		}
	}
	set("host", &cfg.Server.Host, f.host)
	set("port", &cfg.Server.Port, f.port)
	set("tls-mode", &cfg.Server.TLS.Mode, f.tlsMode)
	set("cert-file", &cfg.Server.TLS.CertFile, f.certFile)
	set("key-file", &cfg.Server.TLS.KeyFile, f.keyFile)
	set("ca-file", &cfg.Server.TLS.CAFile, f.caFile)
}

func newServeCmd() *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start an HTTP server exposing the resume operations as JSON endpoints.

Available endpoints:
- POST /analyze-resume: Score a resume against an optional job description
- POST /improve-resume: Keyword, grammar, structure or generic suggestions
- POST /generate-resume-content: Draft content for one resume section
- POST /extract-text: Extract text from an uploaded resume (multipart "file")
- GET /health: Health check endpoint
- GET /stats: Server statistics, circuit breaker and rate limiting info

TLS Configuration:
- Use --tls-mode to set TLS mode: disabled, server, mutual
- Use --cert-file and --key-file for TLS certificates
- Use --ca-file for mutual TLS client certificate verification`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := getConfigFromContext(cmd.Context())
			if err != nil {
				return err
			}
			flags.apply(cmd, cfg)
			return runServe(cmd.Context(), cfg, getLoggerFromContext(cmd.Context()))
		},
	}

	cmd.Flags().StringVarP(&flags.port, "port", "p", "", "Port to listen on (default from config)")
	cmd.Flags().StringVar(&flags.host, "host", "", "Host to bind to (default from config)")
	cmd.Flags().StringVar(&flags.tlsMode, "tls-mode", "", "TLS mode: disabled, server, mutual (overrides config)")
	cmd.Flags().StringVar(&flags.certFile, "cert-file", "", "Server certificate file (PEM, overrides config)")
	cmd.Flags().StringVar(&flags.keyFile, "key-file", "", "Server private key file (PEM, overrides config)")
	cmd.Flags().StringVar(&flags.caFile, "ca-file", "", "CA certificate file for client cert verification (PEM, overrides config)")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	vaultClient, err := config.ApplyVaultSecrets(cfg, logger)
	if err != nil {
		return err
	}
	// Re-validate: Vault may have supplied certificate content
	if err := cfg.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration from vault: %w", err)
	}

	om, err := observability.NewObservabilityManager(cfg.Observability, Version)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := om.Shutdown(shutdownCtx); err != nil {
			logger.WarnError(err, "Observability shutdown failed")
		}
	}()

	service := ai.NewService(cfg, logger,
		ai.WithRecorder(om.Metrics()),
		ai.WithTracer(om.Tracer("resumecoach.ai")))

	srv := server.NewServer(cfg, service, om, Version, logger)

	// A nil *VaultClient must not become a non-nil interface
	var secrets config.SecretReader
	if vaultClient != nil {
		secrets = vaultClient
	}
	return srv.Start(ctx, secrets)
}
