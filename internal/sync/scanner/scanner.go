package scanner

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/input-output-hk/nexus-client/errors"
	"github.com/input-output-hk/nexus-client/internal/localfs"
)

// LocalFile is a regular file found below a scan root.
type LocalFile struct {
	// Path is the local path of the file.
	Path string

	// RelPath is the slash-separated path relative to the scan root.
	RelPath string

	Size    int64
	ModTime time.Time
}

// Scanner walks local directory trees.
type Scanner struct {
	fs *localfs.FS
}

// NewScanner creates a scanner over fs.
func NewScanner(fs *localfs.FS) *Scanner {
	return &Scanner{fs: fs}
}

// ScanLocal returns the files below root that pass matcher, sorted by
// relative path. A nil matcher accepts every file.
func (s *Scanner) ScanLocal(ctx context.Context, root string, matcher *PatternMatcher) ([]LocalFile, error) {
	isDir, err := s.fs.IsDir(root)
	if err != nil {
		return nil, errors.NewLocalIOError("scan", root, err)
	}
	if !isDir {
		return nil, errors.NewLocalIOError("scan", root, stderrors.New("not a directory"))
	}

	var files []LocalFile
	err = s.fs.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", path, err)
		}
		rel = filepath.ToSlash(rel)

		if matcher != nil && !matcher.Match(rel) {
			return nil
		}

		files = append(files, LocalFile{
			Path:    path,
			RelPath: rel,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.NewLocalIOError("scan", root, err)
	}

	slices.SortFunc(files, func(a, b LocalFile) int {
		return strings.Compare(a.RelPath, b.RelPath)
	})
	return files, nil
}
