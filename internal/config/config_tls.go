package config

import "fmt"

// pemSource is one PEM input that may come from a file or inline content
type pemSource struct {
	name    string
	file    string
	content string
}

func (p pemSource) set() bool { return p.file != "" || p.content != "" }

func (p pemSource) check() error {
	if p.file != "" && p.content != "" {
		return fmt.Errorf("cannot specify both %sFile and %sContent - choose one", p.name, p.name)
	}
	return nil
}

// ValidateTLSConfig validates the TLS configuration. An empty mode means disabled.
func (c *Config) ValidateTLSConfig() error {
	tls := c.Server.TLS
	if tls.Mode == "" || tls.Mode == "disabled" {
		return nil
	}
	if tls.Mode != "server" && tls.Mode != "mutual" {
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", tls.Mode)
	}

	cert := pemSource{"cert", tls.CertFile, tls.CertContent}
	key := pemSource{"key", tls.KeyFile, tls.KeyContent}
	ca := pemSource{"ca", tls.CAFile, tls.CAContent}

	if !cert.set() || !key.set() {
		return fmt.Errorf("TLS certificate and key are required for %s mode (provide either files or content)", tls.Mode)
	}
	for _, src := range []pemSource{cert, key, ca} {
		if err := src.check(); err != nil {
			return err
		}
	}

	if tls.Mode == "mutual" {
		if !ca.set() {
			return fmt.Errorf("CA certificate is required for mutual TLS mode (provide either caFile or caContent)")
		}
		switch tls.ClientAuthPolicy {
		case "", "require", "request", "verify":
		default:
			return fmt.Errorf("invalid clientAuthPolicy: %s (must be 'require', 'request', or 'verify')", tls.ClientAuthPolicy)
		}
	}

	switch tls.MinVersion {
	case "", "1.2", "1.3":
		return nil
	default:
		return fmt.Errorf("invalid TLS minVersion: %s (must be '1.2' or '1.3')", tls.MinVersion)
	}
}
