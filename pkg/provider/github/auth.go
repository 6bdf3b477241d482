package github

import (
	"net/http"

	ghinstallation "github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/pkg/errors"
)

// newTransport builds a transport authenticated as one GitHub App
// installation: a JWT (RS256, 10 minute expiry, handled internally by
// ghinstallation) exchanged for an installation access token (1 hour
// expiry, refreshed by ghinstallation with its own safety margin).
func newTransport(appID, installationID int64, privateKey []byte) (*ghinstallation.Transport, error) {
	if appID == 0 {
		return nil, errors.New("appID is required")
	}
	if installationID == 0 {
		return nil, errors.New("installationID is required")
	}
	if len(privateKey) == 0 {
		return nil, errors.New("privateKey is required")
	}

	tr, err := ghinstallation.New(http.DefaultTransport, appID, installationID, privateKey)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create installation transport for app %v installation %v", appID, installationID)
	}
	return tr, nil
}
