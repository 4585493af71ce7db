// Package safe opens user-named files with size and type checks.
package safe

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	// DefaultMaxFileSize bounds small text files such as configuration (1MB).
	DefaultMaxFileSize = 1 << 20
	// MaxBinarySize bounds executables handed to the scanner (1GB).
	MaxBinarySize = 1 << 30
)

// Open opens path for reading after checking that it resolves to a regular
// file of at most maxSize bytes. Zero means DefaultMaxFileSize.
func Open(path string, maxSize int64) (*os.File, error) {
	if maxSize == 0 {
		maxSize = DefaultMaxFileSize
	}
	clean := filepath.Clean(path)

	info, err := os.Stat(clean)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%q is not a regular file", path)
	}
	if info.Size() > maxSize {
		return nil, fmt.Errorf("%q exceeds maximum allowed size of %d bytes", path, maxSize)
	}

	// #nosec G304 - validated above.
	return os.Open(clean)
}

// ReadFile reads a file opened with Open. A file that grows past maxSize
// between the check and the read is rejected too.
func ReadFile(path string, maxSize int64) ([]byte, error) {
	if maxSize == 0 {
		maxSize = DefaultMaxFileSize
	}

	f, err := Open(path, maxSize)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > maxSize {
		return nil, fmt.Errorf("%q exceeds maximum allowed size of %d bytes", path, maxSize)
	}
	return data, nil
}
