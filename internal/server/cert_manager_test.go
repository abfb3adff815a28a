package server

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"resumecoach/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// selfSignedPEM returns a certificate valid for validFor and its key
func selfSignedPEM(t *testing.T, cn string, validFor time.Duration) (string, string) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		Subject:               pkix.Name{CommonName: cn},
		NotBefore:             time.Now().Add(-time.Minute),
		NotAfter:              time.Now().Add(validFor),
		DNSNames:              []string{"localhost"},
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	return string(certPEM), string(keyPEM)
}

func currentCN(t *testing.T, cm *CertificateManager) string {
	t.Helper()
	cert, err := cm.GetServerCertificate(nil)
	require.NoError(t, err)
	return cert.Leaf.Subject.CommonName
}

func TestCertificateManagerFromContent(t *testing.T) {
	certPEM, keyPEM := selfSignedPEM(t, "first", 48*time.Hour)
	cm := NewCertificateManager(config.TLSConfig{Mode: "server", CertContent: certPEM, KeyContent: keyPEM}, nil, nil)
	require.NoError(t, cm.Start())
	defer func() { _ = cm.Stop() }()

	assert.Equal(t, "first", currentCN(t, cm))
	expiry, err := cm.CheckExpiry()
	require.NoError(t, err)
	assert.InDelta(t, 48, expiry.Hours(), 1)

	newCert, newKey := selfSignedPEM(t, "second", 24*time.Hour)
	require.NoError(t, cm.UpdateContent(CertificateData{CertContent: newCert, KeyContent: newKey}))
	assert.Equal(t, "second", currentCN(t, cm))

	// A bad rotation keeps the previous certificate
	assert.Error(t, cm.UpdateContent(CertificateData{CertContent: "junk", KeyContent: "junk"}))
	assert.Equal(t, "second", currentCN(t, cm))

	metrics := cm.GetMetrics()
	assert.Equal(t, int64(3), metrics.ReloadCount)
	assert.Equal(t, int64(1), metrics.ReloadFailureCount)
	assert.NotEmpty(t, metrics.LastReloadError)
}

func TestCertificateManagerMissingCertificate(t *testing.T) {
	cm := NewCertificateManager(config.TLSConfig{Mode: "server"}, nil, nil)
	assert.ErrorContains(t, cm.Start(), "certificate and key are required")

	_, err := cm.CheckExpiry()
	assert.Error(t, err)
}

func TestCertificateManagerMutualRequiresCA(t *testing.T) {
	certPEM, keyPEM := selfSignedPEM(t, "srv", time.Hour)
	cm := NewCertificateManager(config.TLSConfig{Mode: "mutual", CertContent: certPEM, KeyContent: keyPEM}, nil, nil)
	assert.ErrorContains(t, cm.Start(), "CA certificate is required")

	cm = NewCertificateManager(config.TLSConfig{Mode: "mutual", CertContent: certPEM, KeyContent: keyPEM, CAContent: certPEM}, nil, nil)
	require.NoError(t, cm.Start())

	tlsCfg := cm.TLSConfig()
	assert.Equal(t, tls.RequireAndVerifyClientCert, tlsCfg.ClientAuth)
	perConn, err := tlsCfg.GetConfigForClient(&tls.ClientHelloInfo{})
	require.NoError(t, err)
	assert.Len(t, perConn.Certificates, 1)
	assert.NotNil(t, perConn.ClientCAs)
}

func TestCertificateManagerFileReload(t *testing.T) {
	dir := t.TempDir()
	certFile := filepath.Join(dir, "server.crt")
	keyFile := filepath.Join(dir, "server.key")

	certPEM, keyPEM := selfSignedPEM(t, "before", time.Hour)
	require.NoError(t, os.WriteFile(certFile, []byte(certPEM), 0600))
	require.NoError(t, os.WriteFile(keyFile, []byte(keyPEM), 0600))

	cm := NewCertificateManager(config.TLSConfig{
		Mode:     "server",
		CertFile: certFile,
		KeyFile:  keyFile,
		AutoReload: config.AutoReloadConfig{
			Enabled:       true,
			DebounceDelay: 20 * time.Millisecond,
		},
	}, nil, nil)
	require.NoError(t, cm.Start())
	defer func() { _ = cm.Stop() }()
	require.NotNil(t, cm.fileWatcher)
	assert.Equal(t, "before", currentCN(t, cm))

	// Make sure the new files get a later modification time
	time.Sleep(20 * time.Millisecond)
	certPEM, keyPEM = selfSignedPEM(t, "after", time.Hour)
	require.NoError(t, os.WriteFile(keyFile, []byte(keyPEM), 0600))
	require.NoError(t, os.WriteFile(certFile, []byte(certPEM), 0600))
	future := time.Now().Add(time.Second)
	require.NoError(t, os.Chtimes(certFile, future, future))
	require.NoError(t, os.Chtimes(keyFile, future, future))

	assert.Eventually(t, func() bool {
		cert, err := cm.GetServerCertificate(nil)
		return err == nil && cert.Leaf.Subject.CommonName == "after"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestCertificateRotationHandler(t *testing.T) {
	certPEM, keyPEM := selfSignedPEM(t, "vault-1", time.Hour)
	cm := NewCertificateManager(config.TLSConfig{Mode: "server", CertContent: certPEM, KeyContent: keyPEM}, nil, nil)
	require.NoError(t, cm.Start())

	handler := certificateRotationHandler(cm)
	assert.Error(t, handler(&config.VaultSecret{Data: map[string]any{"cert": certPEM}}))

	newCert, newKey := selfSignedPEM(t, "vault-2", time.Hour)
	require.NoError(t, handler(&config.VaultSecret{Data: map[string]any{"cert": newCert, "key": newKey}}))
	assert.Equal(t, "vault-2", currentCN(t, cm))
}
