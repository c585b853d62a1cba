package parser

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// OpenLogFile opens a log file for reading, decoding .gz and .zst files.
// Missing files and permission problems are reported as ErrInputNotFound and
// ErrPermissionDenied so callers can tell them apart with errors.Is.
func OpenLogFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return nil, classifyOpenError(path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zr, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("opening gzip log %s: %w", path, err)
		}
		return &decodedFile{Reader: zr, file: f, closeDecoder: zr.Close}, nil

	case ".zst", ".zstd":
		zr, err := zstd.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("opening zstd log %s: %w", path, err)
		}
		return &decodedFile{Reader: zr, file: f, closeDecoder: func() error {
			zr.Close()
			return nil
		}}, nil
	}

	return f, nil
}

// CheckReadable verifies that path can be opened for reading.
func CheckReadable(path string) error {
	f, err := os.Open(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return classifyOpenError(path, err)
	}
	return f.Close()
}

func classifyOpenError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: %s", ErrInputNotFound, path)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Errorf("%w: %s", ErrPermissionDenied, path)
	default:
		return fmt.Errorf("opening log file %s: %w", path, err)
	}
}

// decodedFile closes both the decompressor and the file beneath it.
type decodedFile struct {
	io.Reader
	file         *os.File
	closeDecoder func() error
}

func (d *decodedFile) Close() error {
	derr := d.closeDecoder()
	ferr := d.file.Close()
	if derr != nil {
		return derr
	}
	return ferr
}
