// Package nexusapi defines the interface to the repository server to enable testing and mocking.
package nexusapi

import (
	"context"
	"io"

	"github.com/input-output-hk/nexus-client/nexustypes"
)

// NexusAPI defines the repository content operations used by this module.
// Implementations must be safe for concurrent use.
type NexusAPI interface {
	// ListContent returns the immediate children of dirPath, which is absolute
	// and ends in "/". Entries are returned in server order.
	ListContent(ctx context.Context, repo, dirPath string) ([]nexustypes.DirEntry, error)

	// GetContent opens the content of the file at path. The caller closes the reader.
	GetContent(ctx context.Context, repo, path string) (io.ReadCloser, error)

	// PutContent stores size bytes read from body at path.
	PutContent(ctx context.Context, repo, path string, body io.Reader, size int64, contentType string) error

	// DeleteContent removes the file or directory at path.
	DeleteContent(ctx context.Context, repo, path string) error
}
