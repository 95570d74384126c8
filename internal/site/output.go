package site

import (
	"io/fs"
	"os"
	"path/filepath"
)

// File permission constants
const (
	dirPermissions  = 0o755
	filePermissions = 0o644
)

// OutputFS is where generated pages are written. Paths are slash separated.
type OutputFS interface {
	MkdirAll(path string, perm fs.FileMode) error
	WriteFile(path string, data []byte, perm fs.FileMode) error
}

// DirFS writes pages below a directory on disk
type DirFS string

func (d DirFS) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(d.join(path), perm)
}

func (d DirFS) WriteFile(path string, data []byte, perm fs.FileMode) error {
	return os.WriteFile(d.join(path), data, perm)
}

func (d DirFS) join(path string) string {
	return filepath.Join(string(d), filepath.FromSlash(path))
}
