package list

import (
	"context"
	stderrors "errors"
	"path"
	"slices"
	"strings"

	"github.com/input-output-hk/nexus-client/errors"
	"github.com/input-output-hk/nexus-client/nexustypes"
)

// ContentLister defines the repository operation we need.
type ContentLister interface {
	ListContent(ctx context.Context, repo, dirPath string) ([]nexustypes.DirEntry, error)
}

// Fetcher lists one remote directory at a time. It keeps no state between
// calls and is safe for concurrent use.
type Fetcher struct {
	client ContentLister
}

// New creates a new Fetcher.
func New(client ContentLister) *Fetcher {
	return &Fetcher{
		client: client,
	}
}

// Fetch returns the immediate entries of dir in server order. dir must be
// absolute; the directory marker is added for the wire request. Entries come
// back with directory paths stripped of their trailing slash and directory
// sizes set to nexustypes.SizeNotApplicable.
func (f *Fetcher) Fetch(ctx context.Context, repo, dir string) ([]nexustypes.DirEntry, error) {
	if repo == "" {
		return nil, errors.NewValidationError("list", "repository id cannot be empty")
	}
	if !strings.HasPrefix(dir, "/") {
		return nil, errors.NewValidationError("list", "remote directory must be absolute: "+dir)
	}

	dirPath := nexustypes.AsDirPath(dir)
	entries, err := f.client.ListContent(ctx, repo, dirPath)
	if err != nil {
		var nexusErr *errors.Error
		if stderrors.As(err, &nexusErr) {
			return nil, err
		}
		return nil, errors.NewRemoteError("list", repo, dirPath, err)
	}

	out := make([]nexustypes.DirEntry, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			return nil, errors.NewDecodeError("list", repo, dirPath, stderrors.New("entry without a name"))
		}
		out = append(out, normalize(e, dirPath))
	}
	return out, nil
}

func normalize(e nexustypes.DirEntry, parent string) nexustypes.DirEntry {
	p := e.RelativePath
	if p == "" {
		p = path.Join(parent, e.Name)
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	e.RelativePath = p
	if !e.Leaf {
		e.Size = nexustypes.SizeNotApplicable
	}
	return e
}

// Partition splits entries into files and subdirectories in a single pass,
// preserving the input order within each group.
func Partition(entries []nexustypes.DirEntry) (files, subdirs []nexustypes.DirEntry) {
	files = make([]nexustypes.DirEntry, 0, len(entries))
	subdirs = make([]nexustypes.DirEntry, 0, len(entries))
	for _, e := range entries {
		if e.Leaf {
			files = append(files, e)
		} else {
			subdirs = append(subdirs, e)
		}
	}
	return files, subdirs
}

// Order sorts entries in place by name, comparing bytes. Names are unique
// within one directory, so no secondary key is needed.
func Order(entries []nexustypes.DirEntry) {
	slices.SortFunc(entries, func(a, b nexustypes.DirEntry) int {
		return strings.Compare(a.Name, b.Name)
	})
}

// Split partitions entries and orders both groups.
func Split(entries []nexustypes.DirEntry) (files, subdirs []nexustypes.DirEntry) {
	files, subdirs = Partition(entries)
	Order(files)
	Order(subdirs)
	return files, subdirs
}
