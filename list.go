package nexus

import (
	"context"

	"github.com/input-output-hk/nexus-client/errors"
	"github.com/input-output-hk/nexus-client/internal/traverse"
	"github.com/input-output-hk/nexus-client/nexustypes"
)

// ListDir returns the immediate entries of dir: subdirectories first, then
// files, each group ordered by name.
func (c *Client) ListDir(ctx context.Context, repo, dir string) ([]nexustypes.DirEntry, error) {
	var entries []nexustypes.DirEntry
	_, err := c.List(ctx, repo, dir, func(e nexustypes.DirEntry) {
		entries = append(entries, e)
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// List delivers the entries of dir to sink.
//
// Without WithRecursive, sink receives the subdirectories of dir and then its
// files, each group ordered by name. With it, sink receives every entry below
// dir; each directory arrives before its files, which are ordered by name,
// while the order between directories depends on scheduling. The sink is
// never called concurrently.
//
// Failing to list dir itself is returned as the error. Failures below it are
// logged, skipped and collected in the result; the returned error then
// matches errors.ErrPartialTransfer.
func (c *Client) List(
	ctx context.Context,
	repo, dir string,
	sink nexustypes.Sink,
	opts ...nexustypes.ListOption,
) (*nexustypes.ListResult, error) {
	const op = "list"
	if sink == nil {
		return nil, errors.NewValidationError(op, "sink cannot be nil")
	}

	cfg := &nexustypes.ListOptionConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	var (
		res *traverse.Result
		err error
	)
	if cfg.Recursive {
		res, err = c.coordinator.Walk(ctx, repo, dir, sink)
	} else {
		res, err = c.coordinator.List(ctx, repo, dir, sink)
	}
	if err != nil {
		return nil, err
	}

	result := &nexustypes.ListResult{
		Directories: res.Directories,
		Files:       res.Files,
	}
	for _, f := range res.Failures {
		result.Failures = append(result.Failures, nexustypes.TransferOutcome{RemotePath: f.Dir, Err: f.Err})
	}
	nexustypes.SortOutcomes(result.Failures)
	return result, result.Err(op)
}

// Walk is List with WithRecursive(true).
func (c *Client) Walk(ctx context.Context, repo, dir string, sink nexustypes.Sink) (*nexustypes.ListResult, error) {
	return c.List(ctx, repo, dir, sink, WithRecursive(true))
}
