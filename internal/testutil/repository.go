package testutil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/input-output-hk/nexus-client/errors"
	"github.com/input-output-hk/nexus-client/internal/nexusapi"
	"github.com/input-output-hk/nexus-client/nexustypes"
)

var _ nexusapi.NexusAPI = (*FakeRepository)(nil)

// FakeLastModified is the timestamp reported for every fake entry.
const FakeLastModified = "2024-01-01 00:00:00.0 UTC"

// FakeRepository is an in-memory repository tree implementing NexusAPI.
// Listings answer in wire form (directory paths end in "/") and in a random
// order, so callers cannot depend on server ordering.
type FakeRepository struct {
	Repo string

	// MaxLatency adds a random delay in [0, MaxLatency) to every call
	MaxLatency time.Duration

	mu          sync.Mutex
	files       map[string][]byte
	dirs        map[string]bool
	listFail    map[string]error
	getFail     map[string]error
	putFail     map[string]error
	listCalls   map[string]int
	putOrder    []string
	inFlight    int
	maxInFlight int
}

// NewFakeRepository creates an empty repository with the given id.
func NewFakeRepository(repo string) *FakeRepository {
	return &FakeRepository{
		Repo:      repo,
		files:     make(map[string][]byte),
		dirs:      map[string]bool{"/": true},
		listFail:  make(map[string]error),
		getFail:   make(map[string]error),
		putFail:   make(map[string]error),
		listCalls: make(map[string]int),
	}
}

// AddFile stores a file and creates its parent directories.
func (r *FakeRepository) AddFile(p, content string) *FakeRepository {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[p] = []byte(content)
	r.addParents(p)
	return r
}

// AddDir creates an (empty) directory and its parents.
func (r *FakeRepository) AddDir(p string) *FakeRepository {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p == "/" {
		return r
	}
	p = strings.TrimSuffix(p, "/")
	r.dirs[p] = true
	r.addParents(p)
	return r
}

// FailList makes listing of directory p fail with err.
func (r *FakeRepository) FailList(p string, err error) *FakeRepository {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listFail[nexustypes.AsDirPath(p)] = err
	return r
}

// FailGet makes downloading file p fail with err.
func (r *FakeRepository) FailGet(p string, err error) *FakeRepository {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getFail[p] = err
	return r
}

// FailPut makes uploading to p fail with err.
func (r *FakeRepository) FailPut(p string, err error) *FakeRepository {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.putFail[p] = err
	return r
}

func (r *FakeRepository) addParents(p string) {
	for dir := path.Dir(p); ; dir = path.Dir(dir) {
		r.dirs[dir] = true
		if dir == "/" || dir == "." {
			return
		}
	}
}

// ListCalls returns how often each directory (wire form) was listed.
func (r *FakeRepository) ListCalls() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.listCalls))
	for k, v := range r.listCalls {
		out[k] = v
	}
	return out
}

// MaxInFlight returns the highest number of concurrently running calls observed.
func (r *FakeRepository) MaxInFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.maxInFlight
}

// PutOrder returns the uploaded paths in upload order.
func (r *FakeRepository) PutOrder() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.putOrder...)
}

// File returns the content stored at p.
func (r *FakeRepository) File(p string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.files[p]
	return string(data), ok
}

// Counts returns the number of files and directories, the root included.
func (r *FakeRepository) Counts() (files, dirs int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.files), len(r.dirs)
}

func (r *FakeRepository) enter(ctx context.Context) error {
	r.mu.Lock()
	r.inFlight++
	if r.inFlight > r.maxInFlight {
		r.maxInFlight = r.inFlight
	}
	r.mu.Unlock()

	if r.MaxLatency > 0 {
		select {
		case <-time.After(rand.N(r.MaxLatency)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return ctx.Err()
}

func (r *FakeRepository) leave() {
	r.mu.Lock()
	r.inFlight--
	r.mu.Unlock()
}

func notFound(op, repo, p string) error {
	return errors.NewStatusError(op, repo, p, http.StatusNotFound,
		fmt.Sprintf("HTTP %d %s: ", http.StatusNotFound, http.StatusText(http.StatusNotFound)))
}

// ListContent implements NexusAPI.
func (r *FakeRepository) ListContent(ctx context.Context, repo, dirPath string) ([]nexustypes.DirEntry, error) {
	defer r.leave()
	if err := r.enter(ctx); err != nil {
		return nil, errors.NewRemoteError("list", repo, dirPath, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls[dirPath]++

	if err, ok := r.listFail[dirPath]; ok {
		return nil, err
	}
	dir := dirPath
	if dir != "/" {
		dir = strings.TrimSuffix(dir, "/")
	}
	if repo != r.Repo || !r.dirs[dir] {
		return nil, notFound("list", repo, dirPath)
	}

	var entries []nexustypes.DirEntry
	for p := range r.dirs {
		if p != "/" && path.Dir(p) == dir {
			entries = append(entries, nexustypes.DirEntry{
				Name:         path.Base(p),
				RelativePath: p + "/",
				Size:         nexustypes.SizeNotApplicable,
				LastModified: FakeLastModified,
			})
		}
	}
	for p, data := range r.files {
		if path.Dir(p) == dir {
			entries = append(entries, nexustypes.DirEntry{
				Name:         path.Base(p),
				RelativePath: p,
				Leaf:         true,
				Size:         int64(len(data)),
				LastModified: FakeLastModified,
			})
		}
	}
	rand.Shuffle(len(entries), func(i, j int) { entries[i], entries[j] = entries[j], entries[i] })
	return entries, nil
}

// GetContent implements NexusAPI.
func (r *FakeRepository) GetContent(ctx context.Context, repo, p string) (io.ReadCloser, error) {
	defer r.leave()
	if err := r.enter(ctx); err != nil {
		return nil, errors.NewRemoteError("download", repo, p, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.getFail[p]; ok {
		return nil, err
	}
	data, ok := r.files[p]
	if repo != r.Repo || !ok {
		return nil, notFound("download", repo, p)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// PutContent implements NexusAPI.
func (r *FakeRepository) PutContent(
	ctx context.Context,
	repo, p string,
	body io.Reader,
	size int64,
	_ string,
) error {
	defer r.leave()
	if err := r.enter(ctx); err != nil {
		return errors.NewRemoteError("upload", repo, p, err)
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return errors.NewRemoteError("upload", repo, p, err)
	}
	if int64(len(data)) != size {
		return errors.NewRemoteError("upload", repo, p,
			fmt.Errorf("content length mismatch: declared %d, got %d", size, len(data)))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.putFail[p]; ok {
		return err
	}
	if repo != r.Repo {
		return notFound("upload", repo, p)
	}
	r.files[p] = data
	r.addParents(p)
	r.putOrder = append(r.putOrder, p)
	return nil
}

// DeleteContent implements NexusAPI.
func (r *FakeRepository) DeleteContent(ctx context.Context, repo, p string) error {
	defer r.leave()
	if err := r.enter(ctx); err != nil {
		return errors.NewRemoteError("delete", repo, p, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[p]; ok && repo == r.Repo {
		delete(r.files, p)
		return nil
	}
	dir := strings.TrimSuffix(p, "/")
	if r.dirs[dir] && dir != "/" && repo == r.Repo {
		for f := range r.files {
			if strings.HasPrefix(f, dir+"/") {
				delete(r.files, f)
			}
		}
		for d := range r.dirs {
			if d == dir || strings.HasPrefix(d, dir+"/") {
				delete(r.dirs, d)
			}
		}
		return nil
	}
	return notFound("delete", repo, p)
}
