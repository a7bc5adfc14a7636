// Package traverse explores a remote directory tree with concurrent,
// dynamically discovered fan-out.
//
// One coordinator goroutine owns all bookkeeping. Every directory found is
// listed by its own goroutine, which reports back exactly once over a bounded
// result channel, also when the listing fails. The coordinator counts chunks
// that were scheduled but not yet processed and stops when that count drops
// to zero, at which point no producer can be left.
package traverse

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/semaphore"

	"github.com/input-output-hk/nexus-client/internal/operations/list"
	"github.com/input-output-hk/nexus-client/nexustypes"
)

const (
	// DefaultConcurrency bounds concurrently running directory listings.
	DefaultConcurrency = 8

	// DefaultChannelCapacity is the buffer size of the result channel.
	DefaultChannelCapacity = 64
)

// Fetcher lists the immediate entries of one remote directory.
type Fetcher interface {
	Fetch(ctx context.Context, repo, dir string) ([]nexustypes.DirEntry, error)
}

// Config holds coordinator settings. Zero values select the defaults.
type Config struct {
	Concurrency     int
	ChannelCapacity int
	Logger          *slog.Logger
}

// Coordinator drives listings and delivers entries to a sink.
type Coordinator struct {
	fetcher     Fetcher
	concurrency int
	capacity    int
	logger      *slog.Logger
}

// New creates a Coordinator.
func New(fetcher Fetcher, cfg Config) *Coordinator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.ChannelCapacity <= 0 {
		cfg.ChannelCapacity = DefaultChannelCapacity
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Coordinator{
		fetcher:     fetcher,
		concurrency: cfg.Concurrency,
		capacity:    cfg.ChannelCapacity,
		logger:      cfg.Logger,
	}
}

// Failure is a directory whose listing failed during a traversal.
type Failure struct {
	Dir string
	Err error
}

// Result summarizes one traversal.
type Result struct {
	// Directories is the number of processed chunks, the start directory included
	Directories int

	// Files is the number of file entries delivered to the sink
	Files int

	// Failures lists directories that could not be listed, in processing order
	Failures []Failure
}

// chunk is one message on the result channel: a listed directory and its entries.
type chunk struct {
	container *nexustypes.DirEntry
	entries   []nexustypes.DirEntry
	err       error
}

// List lists startDir without recursion and delivers its subdirectories, then
// its files, each group ordered by name.
func (c *Coordinator) List(ctx context.Context, repo, startDir string, sink nexustypes.Sink) (*Result, error) {
	entries, err := c.fetcher.Fetch(ctx, repo, startDir)
	if err != nil {
		return nil, err
	}

	files, subdirs := list.Split(entries)
	for _, d := range subdirs {
		sink(d)
	}
	for _, f := range files {
		sink(f)
	}
	return &Result{Directories: 1, Files: len(files)}, nil
}

// Walk lists startDir recursively. For every directory below startDir the sink
// first receives the directory entry and then its files ordered by name. The
// relative order of different directories is not deterministic.
//
// A failure listing startDir fails the walk. Failures listing directories below
// it are logged, recorded in the result and do not stop the walk. Walk returns
// only after every listing goroutine it started has reported.
func (c *Coordinator) Walk(ctx context.Context, repo, startDir string, sink nexustypes.Sink) (*Result, error) {
	entries, err := c.fetcher.Fetch(ctx, repo, startDir)
	if err != nil {
		return nil, err
	}

	results := make(chan chunk, c.capacity)
	sem := semaphore.NewWeighted(int64(c.concurrency))
	visited := map[string]bool{nexustypes.AsDirPath(startDir): true}
	result := &Result{}

	results <- chunk{entries: entries}
	pending := 1

	for pending > 0 {
		ch := <-results
		result.Directories++

		if ch.container != nil {
			sink(*ch.container)
		}
		if ch.err != nil {
			dir := startDir
			if ch.container != nil {
				dir = ch.container.DirPath()
			}
			c.logger.Warn("cannot list directory, skipping subtree", "repo", repo, "dir", dir, "error", ch.err)
			result.Failures = append(result.Failures, Failure{Dir: dir, Err: ch.err})
		}

		files, subdirs := list.Split(ch.entries)
		for _, f := range files {
			sink(f)
		}
		result.Files += len(files)

		for _, d := range subdirs {
			key := d.DirPath()
			if visited[key] {
				c.logger.Warn("directory listed twice, ignoring", "repo", repo, "dir", key)
				continue
			}
			visited[key] = true
			pending++
			go c.expand(ctx, sem, repo, d, results)
		}

		pending--
	}

	return result, nil
}

// expand lists dir and reports exactly one chunk, whatever happens.
func (c *Coordinator) expand(
	ctx context.Context,
	sem *semaphore.Weighted,
	repo string,
	dir nexustypes.DirEntry,
	results chan<- chunk,
) {
	ch := chunk{container: &dir}
	defer func() {
		if r := recover(); r != nil {
			ch.entries = nil
			ch.err = fmt.Errorf("listing %s panicked: %v", dir.DirPath(), r)
		}
		results <- ch
	}()

	if err := sem.Acquire(ctx, 1); err != nil {
		ch.err = err
		return
	}
	defer sem.Release(1)

	c.logger.Debug("listing directory", "repo", repo, "dir", dir.DirPath())
	ch.entries, ch.err = c.fetcher.Fetch(ctx, repo, dir.DirPath())
}
