package server

import (
	"fmt"
	"testing"
	"time"

	"resumecoach/internal/config"
	"resumecoach/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockSecretReader struct {
	secrets map[string]*config.VaultSecret
	err     error
}

func (m *mockSecretReader) GetSecretV2(path string) (*config.VaultSecret, error) {
	if m.err != nil {
		return nil, m.err
	}
	if secret, ok := m.secrets[path]; ok {
		return secret, nil
	}
	return nil, fmt.Errorf("secret not found at path: %s", path)
}

func TestVaultWatcherPollVersions(t *testing.T) {
	reader := &mockSecretReader{secrets: map[string]*config.VaultSecret{
		"secret/data/ai": {Data: map[string]any{}, Version: 2},
	}}

	var handled []int64
	vw := NewVaultWatcher("test", reader, "secret/data/ai", time.Minute, func(s *config.VaultSecret) error {
		handled = append(handled, s.Version)
		return nil
	}, nil)

	changed, err := vw.Poll()
	require.NoError(t, err)
	assert.True(t, changed, "first poll applies the current version")

	changed, err = vw.Poll()
	require.NoError(t, err)
	assert.False(t, changed, "same version is not applied twice")

	reader.secrets["secret/data/ai"] = &config.VaultSecret{Data: map[string]any{}, Version: 3}
	changed, err = vw.Poll()
	require.NoError(t, err)
	assert.True(t, changed)

	assert.Equal(t, []int64{2, 3}, handled)
	assert.Equal(t, int64(3), vw.Status()["last_version"])
}

func TestVaultWatcherHandlerFailureRetries(t *testing.T) {
	reader := &mockSecretReader{secrets: map[string]*config.VaultSecret{
		"p": {Data: map[string]any{}, Version: 1},
	}}

	fail := true
	vw := NewVaultWatcher("test", reader, "p", time.Minute, func(*config.VaultSecret) error {
		if fail {
			return fmt.Errorf("boom")
		}
		return nil
	}, nil)

	_, err := vw.Poll()
	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, "boom", vw.Status()["last_error"])

	fail = false
	changed, err := vw.Poll()
	require.NoError(t, err)
	assert.True(t, changed, "a failed version is retried on the next poll")

	reader.err = fmt.Errorf("vault sealed")
	_, err = vw.Poll()
	assert.ErrorContains(t, err, "vault sealed")
}

func TestCredentialRotationHandler(t *testing.T) {
	creds := config.StaticCredentials(map[types.Provider]string{types.ProviderOpenAI: "sk-old"})
	handler := credentialRotationHandler(creds, nil)

	err := handler(&config.VaultSecret{Data: map[string]any{
		config.VaultFieldOpenAIKey: "sk-new",
		config.VaultFieldGeminiKey: "gm-new",
	}})
	require.NoError(t, err)
	assert.Equal(t, "sk-new", creds.APIKey(types.ProviderOpenAI))
	assert.Equal(t, "gm-new", creds.APIKey(types.ProviderGemini))

	err = handler(&config.VaultSecret{Data: map[string]any{"unrelated": "x"}})
	assert.Error(t, err)
	assert.Equal(t, "sk-new", creds.APIKey(types.ProviderOpenAI))
}

func TestVaultWatcherStartStop(t *testing.T) {
	vw := NewVaultWatcher("test", &mockSecretReader{}, "p", time.Hour, func(*config.VaultSecret) error { return nil }, nil)
	require.NoError(t, vw.Start())
	assert.Error(t, vw.Start())
	assert.Equal(t, true, vw.Status()["running"])
	require.NoError(t, vw.Stop())
	require.NoError(t, vw.Stop())
	assert.Equal(t, false, vw.Status()["running"])
}
