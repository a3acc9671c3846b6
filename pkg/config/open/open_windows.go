//go:build windows

package open

import (
	"os"
	"path/filepath"

	winacl "github.com/hectane/go-acl"
)

// NewSafeFile opens filepath for writing with permission 0600, truncating it.
//
// Missing parent directories are created.
func NewSafeFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), os.FileMode(0700)); err != nil {
		return nil, err
	}

	// WINDOWS: ACL can only be applied after the file exists.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, os.FileMode(0600))
	if err != nil {
		return nil, err
	}
	if err := winacl.Chmod(path, os.FileMode(0600)); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.Truncate(0); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}
