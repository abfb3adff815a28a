package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTLSConfig(t *testing.T) {
	tests := []struct {
		name     string
		tls      TLSConfig
		errorMsg string
	}{
		{
			name: "disabled",
			tls:  TLSConfig{Mode: "disabled"},
		},
		{
			name: "server mode with files",
			tls:  TLSConfig{Mode: "server", CertFile: "cert.pem", KeyFile: "key.pem", MinVersion: "1.2"},
		},
		{
			name: "mutual mode with content",
			tls: TLSConfig{Mode: "mutual", CertContent: "c", KeyContent: "k", CAContent: "ca",
				ClientAuthPolicy: "verify", MinVersion: "1.3"},
		},
		{
			name:     "invalid mode",
			tls:      TLSConfig{Mode: "bogus"},
			errorMsg: "invalid TLS mode",
		},
		{
			name:     "server mode without key",
			tls:      TLSConfig{Mode: "server", CertFile: "cert.pem"},
			errorMsg: "certificate and key are required",
		},
		{
			name:     "duplicate cert sources",
			tls:      TLSConfig{Mode: "server", CertFile: "cert.pem", CertContent: "c", KeyFile: "key.pem"},
			errorMsg: "cannot specify both certFile and certContent",
		},
		{
			name:     "mutual without CA",
			tls:      TLSConfig{Mode: "mutual", CertFile: "cert.pem", KeyFile: "key.pem"},
			errorMsg: "CA certificate is required",
		},
		{
			name:     "mutual with bad policy",
			tls:      TLSConfig{Mode: "mutual", CertFile: "c", KeyFile: "k", CAFile: "ca", ClientAuthPolicy: "maybe"},
			errorMsg: "invalid clientAuthPolicy",
		},
		{
			name:     "bad min version",
			tls:      TLSConfig{Mode: "server", CertFile: "c", KeyFile: "k", MinVersion: "1.1"},
			errorMsg: "invalid TLS minVersion",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Server: ServerConfig{TLS: tt.tls}}
			err := cfg.ValidateTLSConfig()
			if tt.errorMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errorMsg)
		})
	}
}
