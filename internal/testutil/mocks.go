// Package testutil provides test utilities and mocks for Nexus operations.
// This package is internal and should only be used for testing within this module.
package testutil

import (
	"context"
	"io"
	"strings"

	"github.com/input-output-hk/nexus-client/internal/nexusapi"
	"github.com/input-output-hk/nexus-client/nexustypes"
)

var _ nexusapi.NexusAPI = (*MockNexusAPI)(nil)

// MockNexusAPI is a mock implementation of the NexusAPI interface for testing.
// It allows customization of each operation through function fields.
type MockNexusAPI struct {
	ListContentFunc   func(ctx context.Context, repo, dirPath string) ([]nexustypes.DirEntry, error)
	GetContentFunc    func(ctx context.Context, repo, path string) (io.ReadCloser, error)
	PutContentFunc    func(ctx context.Context, repo, path string, body io.Reader, size int64, contentType string) error
	DeleteContentFunc func(ctx context.Context, repo, path string) error
}

// ListContent mocks the directory listing operation.
func (m *MockNexusAPI) ListContent(ctx context.Context, repo, dirPath string) ([]nexustypes.DirEntry, error) {
	if m.ListContentFunc != nil {
		return m.ListContentFunc(ctx, repo, dirPath)
	}
	return []nexustypes.DirEntry{}, nil
}

// GetContent mocks the file download operation.
func (m *MockNexusAPI) GetContent(ctx context.Context, repo, path string) (io.ReadCloser, error) {
	if m.GetContentFunc != nil {
		return m.GetContentFunc(ctx, repo, path)
	}
	return io.NopCloser(strings.NewReader("")), nil
}

// PutContent mocks the file upload operation.
func (m *MockNexusAPI) PutContent(
	ctx context.Context,
	repo, path string,
	body io.Reader,
	size int64,
	contentType string,
) error {
	if m.PutContentFunc != nil {
		return m.PutContentFunc(ctx, repo, path, body, size, contentType)
	}
	_, err := io.Copy(io.Discard, body)
	return err
}

// DeleteContent mocks the delete operation.
func (m *MockNexusAPI) DeleteContent(ctx context.Context, repo, path string) error {
	if m.DeleteContentFunc != nil {
		return m.DeleteContentFunc(ctx, repo, path)
	}
	return nil
}
