// Package localfs wraps a go-billy filesystem with the local operations the
// transfer engine needs: idempotent directory creation, streaming file
// writes, reads and sorted walks.
package localfs

import (
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// DirPerm and FilePerm are the permissions of created directories and files.
const (
	DirPerm  os.FileMode = 0o755
	FilePerm os.FileMode = 0o644
)

// FS is a local filesystem used as mirror target and upload source.
type FS struct {
	fs billy.Filesystem

	// abs resolves relative paths against the working directory before they
	// reach fs, which is rooted at "/".
	abs bool
}

// New creates an FS using the given go-billy filesystem.
func New(fsys billy.Filesystem) *FS {
	return &FS{fs: fsys}
}

// NewOS creates an FS over the native filesystem. Relative paths are
// resolved against the current working directory.
func NewOS() *FS {
	return &FS{fs: osfs.New("/"), abs: true}
}

// NewInMemory creates an empty in-memory FS.
func NewInMemory() *FS {
	return &FS{fs: memfs.New()}
}

// Raw returns the underlying go-billy filesystem.
//
//nolint:ireturn // exposes the adapter target.
func (l *FS) Raw() billy.Filesystem {
	return l.fs
}

// resolve maps path to the form understood by the underlying filesystem.
func (l *FS) resolve(path string) (string, error) {
	if !l.abs || filepath.IsAbs(path) {
		return path, nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("localfs: resolve %q: %w", path, err)
	}
	return abs, nil
}

// EnsureDir creates path and any missing parents. An existing directory is
// not an error; an existing non-directory is.
func (l *FS) EnsureDir(path string) error {
	path, err := l.resolve(path)
	if err != nil {
		return err
	}
	if err := l.fs.MkdirAll(path, DirPerm); err != nil {
		return fmt.Errorf("localfs: mkdirall %q: %w", path, err)
	}
	info, err := l.fs.Stat(path)
	if err != nil {
		return fmt.Errorf("localfs: stat %q: %w", path, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("localfs: %q exists and is not a directory", path)
	}
	return nil
}

// Exists reports whether path exists.
func (l *FS) Exists(path string) (bool, error) {
	path, err := l.resolve(path)
	if err != nil {
		return false, err
	}
	_, err = l.fs.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case stderrors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("localfs: stat %q: %w", path, err)
	}
}

// IsDir reports whether path exists and is a directory.
func (l *FS) IsDir(path string) (bool, error) {
	path, err := l.resolve(path)
	if err != nil {
		return false, err
	}
	info, err := l.fs.Stat(path)
	switch {
	case err == nil:
		return info.IsDir(), nil
	case stderrors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, fmt.Errorf("localfs: stat %q: %w", path, err)
	}
}

// Stat returns file info for path.
func (l *FS) Stat(path string) (os.FileInfo, error) {
	path, err := l.resolve(path)
	if err != nil {
		return nil, err
	}
	info, err := l.fs.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("localfs: stat %q: %w", path, err)
	}
	return info, nil
}

// Open opens path for reading.
//
//nolint:ireturn // billy.File is the upstream handle type.
func (l *FS) Open(path string) (billy.File, error) {
	path, err := l.resolve(path)
	if err != nil {
		return nil, err
	}
	f, err := l.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("localfs: open %q: %w", path, err)
	}
	return f, nil
}

// WriteFrom writes everything read from r to path, replacing an existing file.
// A partially written file is removed when the copy fails.
func (l *FS) WriteFrom(path string, r io.Reader) (int64, error) {
	path, err := l.resolve(path)
	if err != nil {
		return 0, err
	}
	f, err := l.fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, FilePerm)
	if err != nil {
		return 0, fmt.Errorf("localfs: create %q: %w", path, err)
	}

	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		_ = l.fs.Remove(path)
		if copyErr != nil {
			return n, fmt.Errorf("localfs: write %q: %w", path, copyErr)
		}
		return n, fmt.Errorf("localfs: close %q: %w", path, closeErr)
	}
	return n, nil
}

// ReadFile returns the content of path.
func (l *FS) ReadFile(path string) ([]byte, error) {
	path, err := l.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := util.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("localfs: readfile %q: %w", path, err)
	}
	return data, nil
}

// WriteFile writes data to path, creating parent directories.
func (l *FS) WriteFile(path string, data []byte) error {
	path, err := l.resolve(path)
	if err != nil {
		return err
	}
	if err := l.fs.MkdirAll(filepath.Dir(path), DirPerm); err != nil {
		return fmt.Errorf("localfs: mkdirall %q: %w", filepath.Dir(path), err)
	}
	if err := util.WriteFile(l.fs, path, data, FilePerm); err != nil {
		return fmt.Errorf("localfs: writefile %q: %w", path, err)
	}
	return nil
}

// Walk walks the tree rooted at root, calling walkFn for each file or directory.
// Paths handed to walkFn start with root as given.
func (l *FS) Walk(root string, walkFn filepath.WalkFunc) error {
	resolved, err := l.resolve(root)
	if err != nil {
		return err
	}
	fn := walkFn
	if resolved != root {
		fn = func(path string, info os.FileInfo, err error) error {
			if rel, relErr := filepath.Rel(resolved, path); relErr == nil {
				path = filepath.Join(root, rel)
			}
			return walkFn(path, info, err)
		}
	}
	if err := util.Walk(l.fs, resolved, fn); err != nil {
		return fmt.Errorf("localfs: walk %q: %w", root, err)
	}
	return nil
}
