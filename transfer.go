package nexus

import (
	"context"
	stderrors "errors"
	"path"
	"path/filepath"
	"strings"

	"github.com/input-output-hk/nexus-client/errors"
	"github.com/input-output-hk/nexus-client/internal/sync/pull"
	"github.com/input-output-hk/nexus-client/internal/sync/push"
	"github.com/input-output-hk/nexus-client/nexustypes"
)

// DownloadFile downloads the file at remotePath to localPath and returns the
// number of bytes written. When localPath is an existing directory the file
// keeps its remote name inside it. The parent directory must exist.
func (c *Client) DownloadFile(
	ctx context.Context,
	repo, remotePath, localPath string,
	opts ...nexustypes.FileOption,
) (int64, error) {
	const op = "download"
	if err := validateRemoteFile(op, repo, remotePath); err != nil {
		return 0, err
	}
	if localPath == "" {
		return 0, errors.NewValidationError(op, "local path cannot be empty")
	}

	isDir, err := c.fs.IsDir(localPath)
	if err != nil {
		return 0, errors.NewLocalIOError(op, localPath, err)
	}
	if isDir {
		localPath = filepath.Join(localPath, path.Base(remotePath))
	}

	n, err := c.downloader.Download(ctx, repo, remotePath, localPath, fileConfig(opts))
	if err != nil {
		return n, err
	}
	c.logger.Debug("downloaded file", "repo", repo, "remote", remotePath, "local", localPath, "bytes", n)
	return n, nil
}

// UploadFile uploads the regular file at localPath to remotePath and returns
// its size. The content type is detected from the file unless
// WithContentType is given.
func (c *Client) UploadFile(
	ctx context.Context,
	repo, localPath, remotePath string,
	opts ...nexustypes.FileOption,
) (int64, error) {
	const op = "upload"
	if err := validateRemoteFile(op, repo, remotePath); err != nil {
		return 0, err
	}
	if localPath == "" {
		return 0, errors.NewValidationError(op, "local path cannot be empty")
	}

	n, err := c.uploader.Upload(ctx, repo, localPath, remotePath, fileConfig(opts))
	if err != nil {
		return 0, err
	}
	c.logger.Debug("uploaded file", "repo", repo, "local", localPath, "remote", remotePath, "bytes", n)
	return n, nil
}

// DownloadTree mirrors remoteDir into localDir, creating directories as they
// are discovered and downloading files concurrently.
//
// Every file is attempted. The result is returned whenever the walk started;
// the error is nil only if every directory was listed and every file was
// written, and otherwise matches errors.ErrPartialTransfer and wraps the
// failure with the smallest remote path.
func (c *Client) DownloadTree(
	ctx context.Context,
	repo, remoteDir, localDir string,
	opts ...nexustypes.TreeOption,
) (*nexustypes.TransferResult, error) {
	const op = "download-tree"
	cfg := treeConfig(opts)
	concurrency := cfg.Concurrency
	if concurrency == 0 {
		concurrency = c.config.Concurrency
	}

	result, err := c.puller.Pull(ctx, pull.Config{
		Repo:        repo,
		RemoteDir:   remoteDir,
		LocalRoot:   localDir,
		Include:     cfg.IncludePatterns,
		Exclude:     cfg.ExcludePatterns,
		Concurrency: concurrency,
		DryRun:      cfg.DryRun,
	})
	if err != nil {
		return nil, err
	}
	return result, result.Err(op)
}

// UploadTree uploads every regular file below localDir to the same relative
// path below remoteDir, in path order. With WithTransferConcurrency above one
// files are uploaded in parallel. Errors follow DownloadTree.
func (c *Client) UploadTree(
	ctx context.Context,
	repo, localDir, remoteDir string,
	opts ...nexustypes.TreeOption,
) (*nexustypes.TransferResult, error) {
	const op = "upload-tree"
	cfg := treeConfig(opts)

	result, err := c.pusher.Push(ctx, push.Config{
		Repo:        repo,
		LocalRoot:   localDir,
		RemoteRoot:  remoteDir,
		Include:     cfg.IncludePatterns,
		Exclude:     cfg.ExcludePatterns,
		Concurrency: cfg.Concurrency,
		DryRun:      cfg.DryRun,
	})
	if err != nil {
		return nil, err
	}
	return result, result.Err(op)
}

// Remove deletes a file or a whole directory from the repository.
func (c *Client) Remove(ctx context.Context, repo, remotePath string) error {
	const op = "delete"
	if repo == "" {
		return errors.NewValidationError(op, "repository id cannot be empty")
	}
	if !strings.HasPrefix(remotePath, "/") {
		return errors.NewValidationError(op, "remote path must be absolute: "+remotePath)
	}
	if strings.Trim(remotePath, "/") == "" {
		return errors.NewValidationError(op, "refusing to delete the repository root")
	}

	if err := c.api.DeleteContent(ctx, repo, remotePath); err != nil {
		var nexusErr *errors.Error
		if stderrors.As(err, &nexusErr) {
			return err
		}
		return errors.NewRemoteError(op, repo, remotePath, err)
	}
	c.logger.Debug("deleted", "repo", repo, "path", remotePath)
	return nil
}

func validateRemoteFile(op, repo, remotePath string) error {
	if repo == "" {
		return errors.NewValidationError(op, "repository id cannot be empty")
	}
	if !strings.HasPrefix(remotePath, "/") {
		return errors.NewValidationError(op, "remote path must be absolute: "+remotePath)
	}
	if strings.HasSuffix(remotePath, "/") {
		return errors.NewValidationError(op, "remote path denotes a directory: "+remotePath)
	}
	return nil
}

func fileConfig(opts []nexustypes.FileOption) *nexustypes.FileOptionConfig {
	cfg := &nexustypes.FileOptionConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func treeConfig(opts []nexustypes.TreeOption) *nexustypes.TreeOptionConfig {
	cfg := &nexustypes.TreeOptionConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
