package traverse

import (
	"context"
	stderrors "errors"
	"path"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/nexus-client/errors"
	"github.com/input-output-hk/nexus-client/internal/operations/list"
	"github.com/input-output-hk/nexus-client/internal/testutil"
	"github.com/input-output-hk/nexus-client/nexustypes"
)

// recorder collects sink deliveries. The coordinator calls the sink from a
// single goroutine, so no locking is needed.
type recorder struct {
	entries []nexustypes.DirEntry
}

func (r *recorder) sink(e nexustypes.DirEntry) {
	r.entries = append(r.entries, e)
}

func (r *recorder) labels() []string {
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		if e.Leaf {
			out = append(out, e.RelativePath)
		} else {
			out = append(out, e.RelativePath+"/")
		}
	}
	return out
}

func (r *recorder) count(leaf bool) int {
	n := 0
	for _, e := range r.entries {
		if e.Leaf == leaf {
			n++
		}
	}
	return n
}

func smallTree() *testutil.FakeRepository {
	return testutil.NewFakeRepository("releases").
		AddFile("/a.txt", "0123456789").
		AddFile("/sub/b.txt", "01234567890123456789")
}

func TestCoordinator_List_DirectoriesFirst(t *testing.T) {
	rec := &recorder{}
	c := New(list.New(smallTree()), Config{})

	res, err := c.List(context.Background(), "releases", "/", rec.sink)
	require.NoError(t, err)

	assert.Equal(t, []string{"/sub/", "/a.txt"}, rec.labels())
	assert.Equal(t, 1, res.Directories)
	assert.Equal(t, 1, res.Files)
}

func TestCoordinator_Walk_SmallTree(t *testing.T) {
	rec := &recorder{}
	c := New(list.New(smallTree()), Config{})

	res, err := c.Walk(context.Background(), "releases", "/", rec.sink)
	require.NoError(t, err)

	labels := rec.labels()
	assert.ElementsMatch(t, []string{"/a.txt", "/sub/", "/sub/b.txt"}, labels)
	assert.Less(t, slices.Index(labels, "/sub/"), slices.Index(labels, "/sub/b.txt"),
		"a directory is delivered before its contents")
	assert.Equal(t, 2, res.Directories)
	assert.Equal(t, 2, res.Files)
	assert.Empty(t, res.Failures)
}

func TestCoordinator_Walk_Completeness(t *testing.T) {
	tests := []struct {
		name        string
		cfg         Config
		latency     time.Duration
		depth       int
		dirsPerDir  int
		filesPerDir int
	}{
		{name: "defaults", depth: 3, dirsPerDir: 3, filesPerDir: 2},
		{name: "capacity one", cfg: Config{ChannelCapacity: 1}, depth: 3, dirsPerDir: 4, filesPerDir: 1},
		{name: "single worker", cfg: Config{Concurrency: 1, ChannelCapacity: 1}, depth: 2, dirsPerDir: 5, filesPerDir: 3},
		{name: "random latency", cfg: Config{Concurrency: 4}, latency: 2 * time.Millisecond, depth: 3, dirsPerDir: 3, filesPerDir: 2},
		{name: "only files", depth: 0, dirsPerDir: 0, filesPerDir: 7},
		{name: "only directories", depth: 4, dirsPerDir: 2, filesPerDir: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := testutil.NewFakeRepository("releases")
			repo.MaxLatency = tt.latency
			wantFiles, wantDirs := testutil.BuildTree(repo, "/", tt.depth, tt.dirsPerDir, tt.filesPerDir)

			rec := &recorder{}
			res, err := New(list.New(repo), tt.cfg).Walk(context.Background(), "releases", "/", rec.sink)
			require.NoError(t, err)

			assert.Equal(t, wantFiles, rec.count(true))
			assert.Equal(t, wantFiles, res.Files)
			assert.Equal(t, wantDirs-1, rec.count(false), "every directory below the start is delivered once")
			assert.Equal(t, wantDirs, res.Directories)

			for dir, calls := range repo.ListCalls() {
				assert.Equal(t, 1, calls, "directory %s listed more than once", dir)
			}
			assert.Len(t, repo.ListCalls(), wantDirs)

			seen := make(map[string]bool)
			for _, label := range rec.labels() {
				assert.False(t, seen[label], "duplicate delivery of %s", label)
				seen[label] = true
			}
		})
	}
}

func TestCoordinator_Walk_FilesOrderedWithinDirectory(t *testing.T) {
	repo := testutil.NewFakeRepository("releases")
	repo.MaxLatency = time.Millisecond
	for _, name := range []string{"zeta", "Alpha", "beta", "alpha", "10", "9"} {
		repo.AddFile("/x/"+name, name)
		repo.AddFile("/y/z/"+name, name)
		repo.AddFile("/"+name, name)
	}

	rec := &recorder{}
	_, err := New(list.New(repo), Config{}).Walk(context.Background(), "releases", "/", rec.sink)
	require.NoError(t, err)

	byParent := make(map[string][]string)
	for _, e := range rec.entries {
		if e.Leaf {
			parent := path.Dir(e.RelativePath)
			byParent[parent] = append(byParent[parent], e.Name)
		}
	}
	require.Len(t, byParent, 3)
	for parent, names := range byParent {
		assert.True(t, slices.IsSorted(names), "files of %s not ordered: %v", parent, names)
		assert.Equal(t, []string{"10", "9", "Alpha", "alpha", "beta", "zeta"}, names)
	}
}

func TestCoordinator_Walk_ContainerPrecedesContents(t *testing.T) {
	repo := testutil.NewFakeRepository("releases")
	repo.MaxLatency = time.Millisecond
	testutil.BuildTree(repo, "/", 3, 2, 2)

	rec := &recorder{}
	_, err := New(list.New(repo), Config{}).Walk(context.Background(), "releases", "/", rec.sink)
	require.NoError(t, err)

	position := make(map[string]int)
	for i, e := range rec.entries {
		position[e.RelativePath] = i
	}
	for i, e := range rec.entries {
		parent := path.Dir(e.RelativePath)
		if parent == "/" {
			continue
		}
		pos, ok := position[parent]
		require.True(t, ok, "parent %s of %s was never delivered", parent, e.RelativePath)
		assert.Less(t, pos, i, "%s delivered before its directory", e.RelativePath)
	}
}

func TestCoordinator_Walk_EmptyDirectory(t *testing.T) {
	repo := testutil.NewFakeRepository("releases").
		AddDir("/empty").
		AddFile("/full/a.txt", "a")

	rec := &recorder{}
	res, err := New(list.New(repo), Config{}).Walk(context.Background(), "releases", "/", rec.sink)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"/empty/", "/full/", "/full/a.txt"}, rec.labels())
	assert.Equal(t, 3, res.Directories)
	assert.Equal(t, 1, res.Files)
}

func TestCoordinator_Walk_SubtreeFailureIsContained(t *testing.T) {
	repo := testutil.NewFakeRepository("releases").
		AddFile("/a/one.txt", "1").
		AddFile("/a/deep/two.txt", "2").
		AddFile("/b/three.txt", "3").
		AddFile("/b/deep/four.txt", "4").
		AddFile("/c/five.txt", "5").
		FailList("/b", errors.NewStatusError("list", "releases", "/b/", 500, "HTTP 500 Internal Server Error: "))

	rec := &recorder{}
	res, err := New(list.New(repo), Config{}).Walk(context.Background(), "releases", "/", rec.sink)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"/a/", "/a/one.txt", "/a/deep/", "/a/deep/two.txt",
		"/b/",
		"/c/", "/c/five.txt",
	}, rec.labels())

	require.Len(t, res.Failures, 1)
	assert.Equal(t, "/b/", res.Failures[0].Dir)
	assert.True(t, errors.IsRemote(res.Failures[0].Err))
	assert.Equal(t, 5, res.Directories, "the failed directory still counts as processed")
}

func TestCoordinator_Walk_StartFailure(t *testing.T) {
	repo := testutil.NewFakeRepository("releases")

	rec := &recorder{}
	res, err := New(list.New(repo), Config{}).Walk(context.Background(), "releases", "/missing/", rec.sink)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.True(t, errors.IsNotFound(err))
	assert.Empty(t, rec.entries)
}

func TestCoordinator_Walk_BoundedFetchConcurrency(t *testing.T) {
	repo := testutil.NewFakeRepository("releases")
	repo.MaxLatency = 3 * time.Millisecond
	testutil.BuildTree(repo, "/", 2, 6, 0)

	rec := &recorder{}
	_, err := New(list.New(repo), Config{Concurrency: 2}).Walk(context.Background(), "releases", "/", rec.sink)
	require.NoError(t, err)
	assert.LessOrEqual(t, repo.MaxInFlight(), 2)
}

func TestCoordinator_Walk_CancelledContextDrains(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mock := &testutil.MockNexusAPI{
		ListContentFunc: func(ctx context.Context, _, dirPath string) ([]nexustypes.DirEntry, error) {
			if dirPath == "/" {
				cancel()
				return []nexustypes.DirEntry{
					{Name: "a", RelativePath: "/a/", Size: -1},
					{Name: "b", RelativePath: "/b/", Size: -1},
					{Name: "c", RelativePath: "/c/", Size: -1},
				}, nil
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return nil, stderrors.New("listing after cancel")
		},
	}

	rec := &recorder{}
	res, err := New(list.New(mock), Config{}).Walk(ctx, "releases", "/", rec.sink)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Directories)
	require.Len(t, res.Failures, 3)
	for _, f := range res.Failures {
		assert.ErrorIs(t, f.Err, context.Canceled)
	}
}

func TestCoordinator_Walk_IgnoresRepeatedDirectory(t *testing.T) {
	mock := &testutil.MockNexusAPI{
		ListContentFunc: func(context.Context, string, string) ([]nexustypes.DirEntry, error) {
			// a broken server that reports /loop/ as a child of every directory
			return []nexustypes.DirEntry{{Name: "loop", RelativePath: "/loop/", Size: -1}}, nil
		},
	}

	rec := &recorder{}
	res, err := New(list.New(mock), Config{}).Walk(context.Background(), "releases", "/", rec.sink)
	require.NoError(t, err)
	assert.Equal(t, []string{"/loop/"}, rec.labels())
	assert.Equal(t, 2, res.Directories)
}

type panickingFetcher struct{}

func (panickingFetcher) Fetch(_ context.Context, _, dir string) ([]nexustypes.DirEntry, error) {
	if dir == "/" {
		return []nexustypes.DirEntry{{Name: "boom", RelativePath: "/boom", Size: -1}}, nil
	}
	panic("listing exploded")
}

func TestCoordinator_Walk_PanickingFetchStillReports(t *testing.T) {
	rec := &recorder{}
	res, err := New(panickingFetcher{}, Config{}).Walk(context.Background(), "releases", "/", rec.sink)
	require.NoError(t, err)
	require.Len(t, res.Failures, 1)
	assert.Contains(t, res.Failures[0].Err.Error(), "listing exploded")
}
