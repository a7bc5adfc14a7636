// Package download handles single-file downloads from a repository into the
// local filesystem.
package download

import (
	"context"
	stderrors "errors"
	"io"
	"path/filepath"

	"github.com/input-output-hk/nexus-client/errors"
	"github.com/input-output-hk/nexus-client/internal/localfs"
	"github.com/input-output-hk/nexus-client/nexustypes"
)

// ContentGetter defines the repository operation we need.
type ContentGetter interface {
	GetContent(ctx context.Context, repo, path string) (io.ReadCloser, error)
}

// Downloader streams remote files into local files.
type Downloader struct {
	client ContentGetter
	fs     *localfs.FS
}

// New creates a new Downloader instance.
func New(client ContentGetter, fs *localfs.FS) *Downloader {
	return &Downloader{
		client: client,
		fs:     fs,
	}
}

// Download fetches remotePath and writes it to localPath, returning the number
// of bytes written. The parent directory of localPath must already exist.
// Failures reading the response are remote errors; failures writing the
// local file are local I/O errors.
func (d *Downloader) Download(
	ctx context.Context,
	repo, remotePath, localPath string,
	config *nexustypes.FileOptionConfig,
) (int64, error) {
	const op = "download"
	if config == nil {
		config = &nexustypes.FileOptionConfig{}
	}

	parent := filepath.Dir(localPath)
	isDir, err := d.fs.IsDir(parent)
	if err != nil {
		return 0, errors.NewLocalIOError(op, parent, err)
	}
	if !isDir {
		return 0, errors.NewLocalIOError(op, parent, stderrors.New("directory does not exist"))
	}

	body, err := d.client.GetContent(ctx, repo, remotePath)
	if err != nil {
		reportError(config.ProgressTracker, err)
		return 0, asRemote(op, repo, remotePath, err)
	}
	defer body.Close()

	reader := &trackingReader{reader: body, tracker: config.ProgressTracker, total: -1}
	n, err := d.fs.WriteFrom(localPath, reader)
	if err != nil {
		if reader.err != nil {
			err = errors.NewRemoteError(op, repo, remotePath, reader.err)
		} else {
			err = errors.NewLocalIOError(op, localPath, err)
		}
		reportError(config.ProgressTracker, err)
		return n, err
	}

	if config.ProgressTracker != nil {
		config.ProgressTracker.Update(n, n)
		config.ProgressTracker.Complete()
	}
	return n, nil
}

func asRemote(op, repo, path string, err error) error {
	var nexusErr *errors.Error
	if stderrors.As(err, &nexusErr) {
		return err
	}
	return errors.NewRemoteError(op, repo, path, err)
}

func reportError(tracker nexustypes.ProgressTracker, err error) {
	if tracker != nil {
		tracker.Error(err)
	}
}

// trackingReader reports progress and remembers the first read failure, so a
// broken stream can be told apart from a failing local write.
type trackingReader struct {
	reader    io.Reader
	tracker   nexustypes.ProgressTracker
	total     int64
	bytesRead int64
	err       error
}

func (tr *trackingReader) Read(p []byte) (int, error) {
	n, err := tr.reader.Read(p)
	if n > 0 {
		tr.bytesRead += int64(n)
		if tr.tracker != nil {
			tr.tracker.Update(tr.bytesRead, tr.total)
		}
	}
	if err != nil && !stderrors.Is(err, io.EOF) && tr.err == nil {
		tr.err = err
	}
	//nolint:wrapcheck // io.Reader interface contract - error comes from underlying reader
	return n, err
}
