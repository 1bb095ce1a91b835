// Package storetest provides a testify mock of store.Store
package storetest

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/damacus/iron-drive/internal/models"
	"github.com/damacus/iron-drive/internal/store"
)

// MockStore implements store.Store for testing
type MockStore struct {
	mock.Mock
}

var _ store.Store = (*MockStore)(nil)

func (m *MockStore) List(ctx context.Context, userID, folderPath string) (store.Listing, error) {
	args := m.Called(ctx, userID, folderPath)
	return args.Get(0).(store.Listing), args.Error(1)
}

func (m *MockStore) Upload(ctx context.Context, userID, folderPath string, files []store.UploadFile) (store.UploadResult, error) {
	args := m.Called(ctx, userID, folderPath, files)
	return args.Get(0).(store.UploadResult), args.Error(1)
}

func (m *MockStore) CreateFolder(ctx context.Context, userID, name, parentPath string) (models.Folder, error) {
	args := m.Called(ctx, userID, name, parentPath)
	return args.Get(0).(models.Folder), args.Error(1)
}

func (m *MockStore) DeleteFolder(ctx context.Context, userID, fullPath string) error {
	args := m.Called(ctx, userID, fullPath)
	return args.Error(0)
}

func (m *MockStore) DeleteFile(ctx context.Context, userID, storageKey string) error {
	args := m.Called(ctx, userID, storageKey)
	return args.Error(0)
}

func (m *MockStore) Download(ctx context.Context, userID, storageKey string) (io.ReadCloser, error) {
	args := m.Called(ctx, userID, storageKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockStore) StorageUsage(ctx context.Context, userID string) (models.StorageUsage, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.StorageUsage), args.Error(1)
}

func (m *MockStore) ClearAll(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
