// Package appconfig loads the installation-wide settings qline needs to
// run as a GitHub App: its own App ID/installation ID/private key, the
// webhook HMAC secret, and the HTTP bind address.
package appconfig

import (
	"strconv"

	"github.com/jlewi/qline/pkg/files"
	"github.com/pkg/errors"
)

// Env names a setting can be provided under directly.
const (
	EnvAppID            = "QLINE_APP_ID"
	EnvInstallationID   = "QLINE_INSTALLATION_ID"
	EnvPrivateKeyURI    = "QLINE_PRIVATE_KEY_URI"
	EnvWebhookSecretURI = "QLINE_WEBHOOK_SECRET_URI"
	EnvAddress          = "QLINE_ADDRESS"
)

// DefaultAddress is used when QLINE_ADDRESS is unset.
const DefaultAddress = ":8080"

// Config is the app-level configuration for the webhook receiver and CLI
// serve command.
type Config struct {
	AppID          int64
	InstallationID int64
	PrivateKey     []byte
	WebhookSecret  []byte
	Address        string
}

// lookup reads an env var, reporting whether it is set to a non-empty value.
type lookup func(key string) (string, bool)

// Load reads every setting from env vars named above. PrivateKeyURI and
// WebhookSecretURI may each be a bare local path or a <scheme>://... secret
// URI (file://..., or gcpsecretmanager://...), resolved through pkg/files;
// the secret itself cannot be placed in the env var.
func Load(getenv func(string) string) (Config, error) {
	get := func(key string) (string, bool) {
		v := getenv(key)
		return v, v != ""
	}
	return load(get)
}

func load(get lookup) (Config, error) {
	var cfg Config

	appIDStr, ok := get(EnvAppID)
	if !ok {
		return Config{}, errors.Errorf("%v is required", EnvAppID)
	}
	appID, err := strconv.ParseInt(appIDStr, 10, 64)
	if err != nil {
		return Config{}, errors.Wrapf(err, "%v is not a valid integer", EnvAppID)
	}
	cfg.AppID = appID

	installationIDStr, ok := get(EnvInstallationID)
	if !ok {
		return Config{}, errors.Errorf("%v is required", EnvInstallationID)
	}
	installationID, err := strconv.ParseInt(installationIDStr, 10, 64)
	if err != nil {
		return Config{}, errors.Wrapf(err, "%v is not a valid integer", EnvInstallationID)
	}
	cfg.InstallationID = installationID

	privateKeyURI, ok := get(EnvPrivateKeyURI)
	if !ok {
		return Config{}, errors.Errorf("%v is required", EnvPrivateKeyURI)
	}
	privateKey, err := files.Read(privateKeyURI)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read private key from %v", privateKeyURI)
	}
	if len(privateKey) == 0 {
		return Config{}, errors.Errorf("private key at %v is empty", privateKeyURI)
	}
	cfg.PrivateKey = privateKey

	webhookSecretURI, ok := get(EnvWebhookSecretURI)
	if !ok {
		return Config{}, errors.Errorf("%v is required", EnvWebhookSecretURI)
	}
	webhookSecret, err := files.Read(webhookSecretURI)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read webhook secret from %v", webhookSecretURI)
	}
	if len(webhookSecret) == 0 {
		return Config{}, errors.Errorf("webhook secret at %v is empty", webhookSecretURI)
	}
	cfg.WebhookSecret = webhookSecret

	cfg.Address = DefaultAddress
	if addr, ok := get(EnvAddress); ok {
		cfg.Address = addr
	}

	return cfg, nil
}
