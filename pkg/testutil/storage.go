package testutil

import (
	"context"

	"github.com/campus-events/backend/pkg/errorx"
	"github.com/campus-events/backend/pkg/storage"
)

var _ storage.Storage = (*MockStorage)(nil)

// MockStorage fails every upload unless BulkUploadFunc is set.
type MockStorage struct {
	BulkUploadFunc func(context.Context, []*storage.UploadObject) ([]*storage.UploadResponse, error)
}

func (m *MockStorage) BulkUpload(
	ctx context.Context, objs []*storage.UploadObject,
) ([]*storage.UploadResponse, error) {
	if m.BulkUploadFunc != nil {
		return m.BulkUploadFunc(ctx, objs)
	}

	return nil, errorx.New(errorx.Unavailable, "Storage is not mocked")
}
