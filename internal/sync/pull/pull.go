// Package pull mirrors a remote directory tree into a local directory.
//
// The traversal delivers every directory before its files, so the mirrored
// directory of a file always exists by the time its download is scheduled.
// Downloads run concurrently on an executor while the traversal continues.
package pull

import (
	"context"
	stderrors "errors"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"

	"github.com/input-output-hk/nexus-client/errors"
	"github.com/input-output-hk/nexus-client/internal/localfs"
	"github.com/input-output-hk/nexus-client/internal/sync/executor"
	"github.com/input-output-hk/nexus-client/internal/sync/scanner"
	"github.com/input-output-hk/nexus-client/internal/traverse"
	"github.com/input-output-hk/nexus-client/nexustypes"
)

// Walker traverses a remote tree.
type Walker interface {
	Walk(ctx context.Context, repo, startDir string, sink nexustypes.Sink) (*traverse.Result, error)
}

// FileDownloader downloads one remote file.
type FileDownloader interface {
	Download(
		ctx context.Context,
		repo, remotePath, localPath string,
		config *nexustypes.FileOptionConfig,
	) (int64, error)
}

// Config describes one mirror operation.
type Config struct {
	Repo      string
	RemoteDir string
	LocalRoot string

	Include     []string
	Exclude     []string
	Concurrency int
	DryRun      bool
}

// Puller mirrors remote trees.
type Puller struct {
	walker     Walker
	downloader FileDownloader
	fs         *localfs.FS
	logger     *slog.Logger
}

// New creates a Puller.
func New(walker Walker, downloader FileDownloader, fs *localfs.FS, logger *slog.Logger) *Puller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Puller{
		walker:     walker,
		downloader: downloader,
		fs:         fs,
		logger:     logger,
	}
}

// Pull mirrors cfg.RemoteDir below cfg.LocalRoot. The returned error is set
// only when nothing could be attempted: invalid input, an uncreatable local
// root, or a failure listing the remote directory itself. Per-directory and
// per-file failures are collected in the result.
func (p *Puller) Pull(ctx context.Context, cfg Config) (*nexustypes.TransferResult, error) {
	const op = "download-tree"

	if cfg.Repo == "" {
		return nil, errors.NewValidationError(op, "repository id is required")
	}
	if !strings.HasPrefix(cfg.RemoteDir, "/") {
		return nil, errors.NewValidationError(op, "remote directory must be absolute")
	}
	if cfg.LocalRoot == "" {
		return nil, errors.NewValidationError(op, "local directory is required")
	}
	if err := scanner.ValidatePatterns(slices.Concat(cfg.Include, cfg.Exclude)); err != nil {
		return nil, errors.NewValidationError(op, err.Error())
	}

	localRoot := filepath.Clean(cfg.LocalRoot)
	if !cfg.DryRun {
		if err := p.fs.EnsureDir(localRoot); err != nil {
			return nil, errors.NewLocalIOError(op, localRoot, err)
		}
	}

	exec := executor.NewExecutor(cfg.Concurrency, p.logger)
	matcher := scanner.NewPatternMatcher(cfg.Include, cfg.Exclude)
	base := nexustypes.AsDirPath(cfg.RemoteDir)

	sink := func(entry nexustypes.DirEntry) {
		rel, ok := strings.CutPrefix(entry.RelativePath, base)
		if !ok {
			exec.Record(nexustypes.TransferOutcome{
				RemotePath: entry.RelativePath,
				Err: errors.NewRemoteError(op, cfg.Repo, entry.RelativePath,
					stderrors.New("entry is outside of the requested directory")),
			})
			return
		}
		if rel == "" {
			return
		}

		local, err := mirrorPath(localRoot, rel)
		if err != nil {
			exec.Record(nexustypes.TransferOutcome{
				RemotePath: entry.RelativePath,
				Err:        errors.NewLocalIOError(op, rel, err),
			})
			return
		}

		if entry.IsDir() {
			p.mirrorDir(exec, cfg.DryRun, entry, local)
			return
		}

		if !matcher.Match(rel) {
			p.logger.Debug("skipping filtered file", "remote", entry.RelativePath)
			return
		}
		if cfg.DryRun {
			p.logger.Info("would download", "remote", entry.RelativePath, "local", local)
			return
		}

		task := executor.Task{RemotePath: entry.RelativePath, LocalPath: local}
		exec.Submit(ctx, task, func(ctx context.Context, t executor.Task) (int64, error) {
			return p.downloader.Download(ctx, cfg.Repo, t.RemotePath, t.LocalPath, nil)
		})
	}

	walked, err := p.walker.Walk(ctx, cfg.Repo, cfg.RemoteDir, sink)
	if err != nil {
		exec.Wait()
		return nil, err
	}

	for _, f := range walked.Failures {
		exec.Record(nexustypes.TransferOutcome{RemotePath: f.Dir, Err: f.Err})
	}

	result := exec.Wait()
	p.logger.Debug("download-tree finished",
		"repo", cfg.Repo,
		"dir", cfg.RemoteDir,
		"directories", walked.Directories,
		"files", result.Transferred,
		"failures", len(result.Failures))
	return result, nil
}

func (p *Puller) mirrorDir(exec *executor.Executor, dryRun bool, entry nexustypes.DirEntry, local string) {
	if dryRun {
		p.logger.Info("would create directory", "local", local)
		return
	}
	if err := p.fs.EnsureDir(local); err != nil {
		exec.Record(nexustypes.TransferOutcome{
			RemotePath: entry.DirPath(),
			LocalPath:  local,
			Err:        errors.NewLocalIOError("download-tree", local, err),
		})
	}
}

// mirrorPath maps a slash-separated path relative to the remote start
// directory onto the local root, refusing names that would leave it.
func mirrorPath(localRoot, rel string) (string, error) {
	for _, segment := range strings.Split(strings.TrimSuffix(rel, "/"), "/") {
		if segment == "" || segment == "." || segment == ".." {
			return "", stderrors.New("unsafe remote path segment")
		}
	}
	return filepath.Join(localRoot, filepath.FromSlash(rel)), nil
}
