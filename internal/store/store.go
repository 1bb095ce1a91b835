// Package store is the remote file store the drive workspace reconciles against.
//
// Two implementations are provided: HTTPStore speaks the REST wire of the
// CloudBox file backend, S3Store talks to object storage directly via minio-go.
// Both report entity ids derived from storage keys and paths so that ids stay
// stable across refreshes.
package store

import (
	"bytes"
	"context"
	"io"

	"github.com/damacus/iron-drive/internal/models"
)

// Listing is the authoritative content of one folder
type Listing struct {
	Files   []models.File   `json:"files"`
	Folders []models.Folder `json:"folders"`
}

// UploadFile is one source blob of an upload batch. Open may be called more than once.
type UploadFile struct {
	Name        string
	ContentType string
	Size        int64
	Open        func() (io.ReadCloser, error)
}

// BytesFile wraps an in-memory blob as an UploadFile
func BytesFile(name, contentType string, data []byte) UploadFile {
	return UploadFile{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}

// UploadResult is the aggregate outcome of an upload batch
type UploadResult struct {
	Uploaded int      `json:"uploaded"`
	Keys     []string `json:"keys"`
}

// Store is the capability the workspace consumes. Every call is scoped to a user id.
type Store interface {
	List(ctx context.Context, userID, folderPath string) (Listing, error)
	Upload(ctx context.Context, userID, folderPath string, files []UploadFile) (UploadResult, error)
	CreateFolder(ctx context.Context, userID, name, parentPath string) (models.Folder, error)
	DeleteFolder(ctx context.Context, userID, fullPath string) error
	DeleteFile(ctx context.Context, userID, storageKey string) error
	Download(ctx context.Context, userID, storageKey string) (io.ReadCloser, error)
	StorageUsage(ctx context.Context, userID string) (models.StorageUsage, error)
	ClearAll(ctx context.Context, userID string) error
}
