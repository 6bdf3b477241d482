package files

import (
	"io"
)

// FileHelper is an interface intended to transparently handle working with local files and other
// filesystem-like sources, e.g. GCP Secret Manager, behind a single URI-scheme-dispatched Factory.
type FileHelper interface {
	Exists(path string) (bool, error)
	NewReader(path string) (io.Reader, error)
	NewWriter(path string) (io.Writer, error)
}
