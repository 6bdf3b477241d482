package files

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// FileScheme is the URI scheme for an explicit local file reference.
const FileScheme = "file"

// LocalFileHelper implements FileHelper for paths on the local filesystem. The
// scheme is optional; bare paths (no "file://" prefix) are treated as local too.
type LocalFileHelper struct{}

func localPath(uri string) string {
	const prefix = "file://"
	if len(uri) >= len(prefix) && uri[:len(prefix)] == prefix {
		return uri[len(prefix):]
	}
	return uri
}

// Exists returns true if the path exists on disk.
func (h *LocalFileHelper) Exists(path string) (bool, error) {
	_, err := os.Stat(localPath(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrapf(err, "Failed to stat %v", path)
}

// NewReader opens the file for reading.
func (h *LocalFileHelper) NewReader(path string) (io.Reader, error) {
	f, err := os.Open(localPath(path))
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to open %v", path)
	}
	return f, nil
}

// NewWriter opens the file for writing, creating it if necessary.
func (h *LocalFileHelper) NewWriter(path string) (io.Writer, error) {
	f, err := os.Create(localPath(path))
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create %v", path)
	}
	return f, nil
}
