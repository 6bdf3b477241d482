package appconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeSecret(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func Test_Load_ResolvesSecretFilesAndDefaults(t *testing.T) {
	dir := t.TempDir()
	keyPath := writeSecret(t, dir, "key.pem", "fake-private-key")
	secretPath := writeSecret(t, dir, "hmac.txt", "fake-hmac-secret")

	env := map[string]string{
		EnvAppID:            "123",
		EnvInstallationID:   "456",
		EnvPrivateKeyURI:    keyPath,
		EnvWebhookSecretURI: secretPath,
	}

	cfg, err := Load(func(key string) string { return env[key] })
	require.NoError(t, err)
	require.Equal(t, int64(123), cfg.AppID)
	require.Equal(t, int64(456), cfg.InstallationID)
	require.Equal(t, "fake-private-key", string(cfg.PrivateKey))
	require.Equal(t, "fake-hmac-secret", string(cfg.WebhookSecret))
	require.Equal(t, DefaultAddress, cfg.Address)
}

func Test_Load_AddressOverride(t *testing.T) {
	dir := t.TempDir()
	keyPath := writeSecret(t, dir, "key.pem", "k")
	secretPath := writeSecret(t, dir, "hmac.txt", "s")

	env := map[string]string{
		EnvAppID:            "1",
		EnvInstallationID:   "2",
		EnvPrivateKeyURI:    keyPath,
		EnvWebhookSecretURI: secretPath,
		EnvAddress:          ":9090",
	}

	cfg, err := Load(func(key string) string { return env[key] })
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.Address)
}

func Test_Load_MissingRequiredField(t *testing.T) {
	_, err := Load(func(key string) string { return "" })
	require.Error(t, err)
}

func Test_Load_EmptySecretFileRejected(t *testing.T) {
	dir := t.TempDir()
	keyPath := writeSecret(t, dir, "key.pem", "")
	secretPath := writeSecret(t, dir, "hmac.txt", "s")

	env := map[string]string{
		EnvAppID:            "1",
		EnvInstallationID:   "2",
		EnvPrivateKeyURI:    keyPath,
		EnvWebhookSecretURI: secretPath,
	}

	_, err := Load(func(key string) string { return env[key] })
	require.Error(t, err)
}
