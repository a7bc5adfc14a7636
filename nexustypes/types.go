// Package nexustypes provides shared type definitions for the Nexus client.
package nexustypes

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"

	"github.com/input-output-hk/nexus-client/errors"
)

// SizeNotApplicable is the size reported for directory entries.
const SizeNotApplicable int64 = -1

// DirEntry is one child of a remote directory as returned by a single listing call.
// Entries are created fresh on every listing and never mutated afterwards.
type DirEntry struct {
	// Name is the display name, unique within the parent directory
	Name string `json:"text"`

	// RelativePath is the absolute path from the repository root.
	// Directory paths carry no trailing slash, except for the root "/".
	RelativePath string `json:"relativePath"`

	// Leaf is true for files and false for directories
	Leaf bool `json:"leaf"`

	// Size is the byte length of a file, or SizeNotApplicable for directories
	Size int64 `json:"sizeOnDisk"`

	// LastModified is the server-formatted modification timestamp
	LastModified string `json:"lastModified"`

	// ResourceURI is the absolute URL of the entry on the server
	ResourceURI string `json:"resourceURI,omitempty"`
}

// IsDir reports whether the entry is a directory.
func (e DirEntry) IsDir() bool {
	return !e.Leaf
}

// DirPath returns the relative path in its directory-denoting form, ending in "/".
func (e DirEntry) DirPath() string {
	return AsDirPath(e.RelativePath)
}

// AsDirPath appends the directory marker to p unless it is already present.
func AsDirPath(p string) string {
	if strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}

// Sink receives entries produced by a listing or traversal.
// A Sink is only ever invoked from a single goroutine at a time.
type Sink func(entry DirEntry)

// ClientConfig holds the client configuration assembled from functional options.
type ClientConfig struct {
	BaseURL          string
	User             string
	Password         string
	UserAgent        string
	Timeout          time.Duration
	MaxRetries       int
	Concurrency      int
	ChannelCapacity  int
	CustomHTTPClient *http.Client
	Logger           *slog.Logger
	Filesystem       billy.Filesystem // Local filesystem for transfers; defaults to the OS filesystem
}

// Option is a functional option for configuring the client.
type Option func(*ClientConfig)

// ListOptionConfig holds configuration for listing operations via functional options.
type ListOptionConfig struct {
	Recursive bool
}

// ListOption is a functional option for listing operations.
type ListOption func(*ListOptionConfig)

// TreeOptionConfig holds configuration for whole-tree transfers via functional options.
type TreeOptionConfig struct {
	IncludePatterns []string
	ExcludePatterns []string
	Concurrency     int
	DryRun          bool
}

// TreeOption is a functional option for tree transfers.
type TreeOption func(*TreeOptionConfig)

// ProgressTracker receives progress updates of a single file transfer.
// Implementations must be safe for concurrent use when shared between transfers.
type ProgressTracker interface {
	// Update is called as bytes are transferred; total is -1 when unknown
	Update(bytesTransferred, totalBytes int64)

	// Complete is called when the transfer finished successfully
	Complete()

	// Error is called when the transfer failed
	Error(err error)
}

// FileOptionConfig holds configuration for single-file transfers via functional options.
type FileOptionConfig struct {
	ProgressTracker ProgressTracker
	ContentType     string
}

// FileOption is a functional option for single-file transfers.
type FileOption func(*FileOptionConfig)

// TransferOutcome is the result of transferring a single file, or of listing a
// remote directory during a tree transfer. A nil Err means success.
type TransferOutcome struct {
	RemotePath string
	LocalPath  string
	Bytes      int64
	Err        error
}

// Failed reports whether the transfer failed.
func (o TransferOutcome) Failed() bool {
	return o.Err != nil
}

// TransferResult aggregates the outcomes of a tree transfer.
type TransferResult struct {
	// Transferred is the number of files transferred successfully
	Transferred int

	// Bytes is the total number of bytes transferred successfully
	Bytes int64

	// Failures holds every failed outcome, ordered by remote path
	Failures []TransferOutcome

	// Duration is how long the whole operation took
	Duration time.Duration
}

// Record adds one outcome to the result. It is not safe for concurrent use.
func (r *TransferResult) Record(o TransferOutcome) {
	if o.Failed() {
		r.Failures = append(r.Failures, o)
		return
	}
	r.Transferred++
	r.Bytes += o.Bytes
}

// SortFailures orders failures by remote path, then local path.
func (r *TransferResult) SortFailures() {
	SortOutcomes(r.Failures)
}

// SortOutcomes orders outcomes by remote path, then local path.
func SortOutcomes(outcomes []TransferOutcome) {
	slices.SortFunc(outcomes, func(a, b TransferOutcome) int {
		if c := strings.Compare(a.RemotePath, b.RemotePath); c != 0 {
			return c
		}
		return strings.Compare(a.LocalPath, b.LocalPath)
	})
}

// Err returns nil when no failures were recorded. Otherwise it returns an error
// matching errors.ErrPartialTransfer that reports the failure count and wraps the
// first failure as the representative cause.
func (r *TransferResult) Err(op string) error {
	if len(r.Failures) == 0 {
		return nil
	}
	first := r.Failures[0]
	return errors.NewError(op, fmt.Errorf("%w: %d failed, %d transferred; first failure at %s: %w",
		errors.ErrPartialTransfer, len(r.Failures), r.Transferred, first.RemotePath, first.Err))
}

// ListResult summarizes a listing.
type ListResult struct {
	// Directories is the number of directories listed, the start directory included
	Directories int

	// Files is the number of file entries delivered
	Files int

	// Failures holds the directories that could not be listed, ordered by path
	Failures []TransferOutcome
}

// Err returns nil when every directory was listed. Otherwise it returns an
// error matching errors.ErrPartialTransfer that wraps the first failure.
func (r *ListResult) Err(op string) error {
	if len(r.Failures) == 0 {
		return nil
	}
	first := r.Failures[0]
	return errors.NewError(op, fmt.Errorf("%w: %d directories could not be listed; first failure at %s: %w",
		errors.ErrPartialTransfer, len(r.Failures), first.RemotePath, first.Err))
}
