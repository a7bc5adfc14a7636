// Package push uploads a local directory tree into a repository.
package push

import (
	"context"
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/input-output-hk/nexus-client/errors"
	"github.com/input-output-hk/nexus-client/internal/sync/executor"
	"github.com/input-output-hk/nexus-client/internal/sync/scanner"
	"github.com/input-output-hk/nexus-client/nexustypes"
)

// LocalScanner lists the files of a local tree.
type LocalScanner interface {
	ScanLocal(ctx context.Context, root string, matcher *scanner.PatternMatcher) ([]scanner.LocalFile, error)
}

// FileUploader uploads one local file.
type FileUploader interface {
	Upload(
		ctx context.Context,
		repo, localPath, remotePath string,
		config *nexustypes.FileOptionConfig,
	) (int64, error)
}

// Config describes one bulk upload.
type Config struct {
	Repo       string
	LocalRoot  string
	RemoteRoot string

	Include []string
	Exclude []string

	// Concurrency above one uploads files in parallel; otherwise files are
	// uploaded one after another in path order.
	Concurrency int
	DryRun      bool
}

// Pusher uploads local trees.
type Pusher struct {
	scanner  LocalScanner
	uploader FileUploader
	logger   *slog.Logger
}

// New creates a Pusher.
func New(scanner LocalScanner, uploader FileUploader, logger *slog.Logger) *Pusher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pusher{
		scanner:  scanner,
		uploader: uploader,
		logger:   logger,
	}
}

// Push uploads every regular file below cfg.LocalRoot to the same relative
// path below cfg.RemoteRoot. Failed files are collected in the result; the
// returned error is set only when the local tree cannot be scanned or the
// input is invalid.
func (p *Pusher) Push(ctx context.Context, cfg Config) (*nexustypes.TransferResult, error) {
	const op = "upload-tree"

	if cfg.Repo == "" {
		return nil, errors.NewValidationError(op, "repository id is required")
	}
	remoteRoot := cfg.RemoteRoot
	if remoteRoot == "" {
		remoteRoot = "/"
	}
	if !strings.HasPrefix(remoteRoot, "/") {
		return nil, errors.NewValidationError(op, "remote root must be absolute")
	}
	if err := scanner.ValidatePatterns(slices.Concat(cfg.Include, cfg.Exclude)); err != nil {
		return nil, errors.NewValidationError(op, err.Error())
	}

	files, err := p.scanner.ScanLocal(ctx, cfg.LocalRoot, scanner.NewPatternMatcher(cfg.Include, cfg.Exclude))
	if err != nil {
		return nil, err
	}
	p.logger.Debug("upload-tree scanned", "root", cfg.LocalRoot, "files", len(files))

	exec := executor.NewExecutor(cfg.Concurrency, p.logger)
	upload := func(ctx context.Context, t executor.Task) (int64, error) {
		return p.uploader.Upload(ctx, cfg.Repo, t.LocalPath, t.RemotePath, nil)
	}

	for _, f := range files {
		task := executor.Task{
			RemotePath: path.Join(remoteRoot, f.RelPath),
			LocalPath:  f.Path,
		}
		switch {
		case cfg.DryRun:
			p.logger.Info("would upload", "local", task.LocalPath, "remote", task.RemotePath)
		case cfg.Concurrency > 1:
			exec.Submit(ctx, task, upload)
		default:
			if err := ctx.Err(); err != nil {
				exec.Record(nexustypes.TransferOutcome{
					RemotePath: task.RemotePath,
					LocalPath:  task.LocalPath,
					Err:        err,
				})
				continue
			}
			exec.Run(ctx, task, upload)
		}
	}

	return exec.Wait(), nil
}
