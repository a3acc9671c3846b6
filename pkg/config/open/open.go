//go:build !windows

// Package open creates files only the current user can read.
package open

import (
	"os"
	"path/filepath"
)

// NewSafeFile opens filepath for writing with permission 0600, truncating it.
//
// Missing parent directories are created with permission 0700.
func NewSafeFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), os.FileMode(0700)); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, os.FileMode(0600))
	if err != nil {
		return nil, err
	}
	// O_CREATE does not tighten permission of existing files.
	if err := f.Chmod(os.FileMode(0600)); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}
