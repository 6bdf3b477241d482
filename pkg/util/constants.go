package util

const (
	// ContentTypeJSON is a constant for the application type of requests.
	ContentTypeJSON = "application/json"

	// FilePermUserGroup value of permissions user and group all permissions
	FilePermUserGroup = 0o770
)
