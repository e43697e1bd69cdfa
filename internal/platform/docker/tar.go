package docker

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
)

// TarFile wraps a single file in an in-memory tar archive suitable for
// CopyTo. The name is the path of the file inside the target directory.
func TarFile(name string, data []byte, mode int64) (io.Reader, error) {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	if err := tw.WriteHeader(&tar.Header{
		Name: name,
		Mode: mode,
		Size: int64(len(data)),
	}); err != nil {
		return nil, fmt.Errorf("failed to write tar header for %s: %w", name, err)
	}
	if _, err := tw.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write tar body for %s: %w", name, err)
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize archive for %s: %w", name, err)
	}
	return &buf, nil
}
