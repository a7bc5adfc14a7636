// Package upload handles single-file uploads from the local filesystem into a
// repository.
package upload

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/gabriel-vasile/mimetype"

	"github.com/input-output-hk/nexus-client/errors"
	"github.com/input-output-hk/nexus-client/internal/localfs"
	"github.com/input-output-hk/nexus-client/nexustypes"
)

// ContentPutter defines the repository operation we need.
type ContentPutter interface {
	PutContent(ctx context.Context, repo, path string, body io.Reader, size int64, contentType string) error
}

// Uploader streams local files to remote paths.
type Uploader struct {
	client ContentPutter
	fs     *localfs.FS
}

// New creates a new Uploader instance.
func New(client ContentPutter, fs *localfs.FS) *Uploader {
	return &Uploader{
		client: client,
		fs:     fs,
	}
}

// Upload sends the regular file at localPath to remotePath and returns its size.
// The content type is detected from the file content unless configured.
func (u *Uploader) Upload(
	ctx context.Context,
	repo, localPath, remotePath string,
	config *nexustypes.FileOptionConfig,
) (int64, error) {
	const op = "upload"
	if config == nil {
		config = &nexustypes.FileOptionConfig{}
	}

	info, err := u.fs.Stat(localPath)
	if err != nil {
		return 0, errors.NewLocalIOError(op, localPath, err)
	}
	if info.IsDir() {
		return 0, errors.NewLocalIOError(op, localPath, stderrors.New("is a directory"))
	}
	size := info.Size()

	f, err := u.fs.Open(localPath)
	if err != nil {
		return 0, errors.NewLocalIOError(op, localPath, err)
	}
	defer f.Close()

	contentType := config.ContentType
	if contentType == "" {
		contentType, err = detectContentType(f)
		if err != nil {
			return 0, errors.NewLocalIOError(op, localPath, err)
		}
	}

	body := &progressReader{reader: f, tracker: config.ProgressTracker, total: size}
	if err := u.client.PutContent(ctx, repo, remotePath, body, size, contentType); err != nil {
		if config.ProgressTracker != nil {
			config.ProgressTracker.Error(err)
		}
		var nexusErr *errors.Error
		if stderrors.As(err, &nexusErr) {
			return 0, err
		}
		return 0, errors.NewRemoteError(op, repo, remotePath, err)
	}

	if config.ProgressTracker != nil {
		config.ProgressTracker.Complete()
	}
	return size, nil
}

// detectContentType sniffs the MIME type from the file header and rewinds the file.
func detectContentType(f io.ReadSeeker) (string, error) {
	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("detect content type: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind: %w", err)
	}
	return mtype.String(), nil
}

// progressReader wraps an io.Reader to track progress
type progressReader struct {
	reader    io.Reader
	tracker   nexustypes.ProgressTracker
	total     int64
	bytesRead int64
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.reader.Read(p)
	if n > 0 {
		pr.bytesRead += int64(n)
		if pr.tracker != nil {
			pr.tracker.Update(pr.bytesRead, pr.total)
		}
	}
	//nolint:wrapcheck // io.Reader interface contract - error comes from underlying reader
	return n, err
}
