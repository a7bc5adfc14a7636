package download

import (
	"context"
	stderrors "errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/nexus-client/errors"
	"github.com/input-output-hk/nexus-client/internal/localfs"
	"github.com/input-output-hk/nexus-client/internal/testutil"
	"github.com/input-output-hk/nexus-client/nexustypes"
)

type brokenBody struct{}

func (brokenBody) Read([]byte) (int, error) { return 0, stderrors.New("unexpected EOF from server") }
func (brokenBody) Close() error             { return nil }

func TestDownloader_Download(t *testing.T) {
	tests := []struct {
		name        string
		remotePath  string
		localPath   string
		setup       func(fs *localfs.FS, repo *testutil.FakeRepository)
		wantContent string
		wantErr     bool
		check       func(t *testing.T, err error)
	}{
		{
			name:        "file into existing directory",
			remotePath:  "/org/a.txt",
			localPath:   "/dst/a.txt",
			setup:       func(fs *localfs.FS, _ *testutil.FakeRepository) { require.NoError(t, fs.EnsureDir("/dst")) },
			wantContent: "alpha",
		},
		{
			name:       "missing local directory",
			remotePath: "/org/a.txt",
			localPath:  "/nowhere/a.txt",
			wantErr:    true,
			check: func(t *testing.T, err error) {
				assert.True(t, errors.IsLocalIO(err))
				assert.Contains(t, err.Error(), "directory does not exist")
			},
		},
		{
			name:       "missing remote file",
			remotePath: "/org/missing.txt",
			localPath:  "/dst/missing.txt",
			setup:      func(fs *localfs.FS, _ *testutil.FakeRepository) { require.NoError(t, fs.EnsureDir("/dst")) },
			wantErr:    true,
			check: func(t *testing.T, err error) {
				assert.True(t, errors.IsRemote(err))
				assert.True(t, errors.IsNotFound(err))
			},
		},
		{
			name:       "remote failure injected",
			remotePath: "/org/a.txt",
			localPath:  "/dst/a.txt",
			setup: func(fs *localfs.FS, repo *testutil.FakeRepository) {
				require.NoError(t, fs.EnsureDir("/dst"))
				repo.FailGet("/org/a.txt", stderrors.New("reset by peer"))
			},
			wantErr: true,
			check: func(t *testing.T, err error) {
				assert.True(t, errors.IsRemote(err))
				assert.Contains(t, err.Error(), "reset by peer")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := localfs.NewInMemory()
			repo := testutil.NewFakeRepository("releases").AddFile("/org/a.txt", "alpha")
			if tt.setup != nil {
				tt.setup(fs, repo)
			}

			n, err := New(repo, fs).Download(context.Background(), "releases", tt.remotePath, tt.localPath, nil)
			if tt.wantErr {
				require.Error(t, err)
				tt.check(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, int64(len(tt.wantContent)), n)

			data, err := fs.ReadFile(tt.localPath)
			require.NoError(t, err)
			assert.Equal(t, tt.wantContent, string(data))
		})
	}
}

func TestDownloader_Download_BrokenStream(t *testing.T) {
	fs := localfs.NewInMemory()
	require.NoError(t, fs.EnsureDir("/dst"))
	mock := &testutil.MockNexusAPI{
		GetContentFunc: func(context.Context, string, string) (io.ReadCloser, error) {
			return brokenBody{}, nil
		},
	}
	tracker := &testutil.MockProgressTracker{}

	_, err := New(mock, fs).Download(context.Background(), "releases", "/a.bin", "/dst/a.bin",
		&nexustypes.FileOptionConfig{ProgressTracker: tracker})
	require.Error(t, err)
	assert.True(t, errors.IsRemote(err), "a failing response stream is a remote error")
	assert.False(t, errors.IsLocalIO(err))
	assert.True(t, tracker.ErrorCalled)

	exists, err := fs.Exists("/dst/a.bin")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDownloader_Download_Progress(t *testing.T) {
	fs := localfs.NewInMemory()
	require.NoError(t, fs.EnsureDir("/dst"))
	content := strings.Repeat("x", 1000)
	repo := testutil.NewFakeRepository("releases").AddFile("/big.bin", content)
	tracker := &testutil.MockProgressTracker{}

	n, err := New(repo, fs).Download(context.Background(), "releases", "/big.bin", "/dst/big.bin",
		&nexustypes.FileOptionConfig{ProgressTracker: tracker})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), n)
	assert.True(t, tracker.UpdateCalled)
	assert.True(t, tracker.CompleteCalled)
	assert.False(t, tracker.ErrorCalled)
	assert.Equal(t, int64(1000), tracker.BytesTransferred)
}
