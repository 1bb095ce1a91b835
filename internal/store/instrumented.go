package store

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/damacus/iron-drive/internal/logging"
	"github.com/damacus/iron-drive/internal/metrics"
	"github.com/damacus/iron-drive/internal/models"
)

// Instrumented wraps a Store with call metrics and structured logs
type Instrumented struct {
	next Store
}

// Instrument wraps next
func Instrument(next Store) *Instrumented {
	return &Instrumented{next: next}
}

func observe(op string, start time.Time, err error, fields ...zap.Field) {
	d := time.Since(start)
	metrics.RecordStoreCall(op, err, d)
	fields = append(fields, logging.String("op", op), logging.Duration("duration", d))
	if err != nil {
		logging.L().Warn("store call failed", append(fields, logging.Err(err))...)
		return
	}
	logging.L().Debug("store call", fields...)
}

func (i *Instrumented) List(ctx context.Context, userID, folderPath string) (Listing, error) {
	start := time.Now()
	l, err := i.next.List(ctx, userID, folderPath)
	observe("list", start, err, logging.String("user", userID), logging.String("path", folderPath),
		logging.Int("files", len(l.Files)), logging.Int("folders", len(l.Folders)))
	return l, err
}

func (i *Instrumented) Upload(ctx context.Context, userID, folderPath string, files []UploadFile) (UploadResult, error) {
	start := time.Now()
	r, err := i.next.Upload(ctx, userID, folderPath, files)
	observe("upload", start, err, logging.String("user", userID), logging.String("path", folderPath),
		logging.Int("files", len(files)))
	return r, err
}

func (i *Instrumented) CreateFolder(ctx context.Context, userID, name, parentPath string) (models.Folder, error) {
	start := time.Now()
	f, err := i.next.CreateFolder(ctx, userID, name, parentPath)
	observe("create-folder", start, err, logging.String("user", userID), logging.String("path", models.JoinPath(parentPath, name)))
	return f, err
}

func (i *Instrumented) DeleteFolder(ctx context.Context, userID, fullPath string) error {
	start := time.Now()
	err := i.next.DeleteFolder(ctx, userID, fullPath)
	observe("delete-folder", start, err, logging.String("user", userID), logging.String("path", fullPath))
	return err
}

func (i *Instrumented) DeleteFile(ctx context.Context, userID, storageKey string) error {
	start := time.Now()
	err := i.next.DeleteFile(ctx, userID, storageKey)
	observe("delete-file", start, err, logging.String("user", userID), logging.String("key", storageKey))
	return err
}

func (i *Instrumented) Download(ctx context.Context, userID, storageKey string) (io.ReadCloser, error) {
	start := time.Now()
	rc, err := i.next.Download(ctx, userID, storageKey)
	observe("download", start, err, logging.String("user", userID), logging.String("key", storageKey))
	return rc, err
}

func (i *Instrumented) StorageUsage(ctx context.Context, userID string) (models.StorageUsage, error) {
	start := time.Now()
	u, err := i.next.StorageUsage(ctx, userID)
	observe("storage-usage", start, err, logging.String("user", userID))
	return u, err
}

func (i *Instrumented) ClearAll(ctx context.Context, userID string) error {
	start := time.Now()
	err := i.next.ClearAll(ctx, userID)
	observe("clear-all", start, err, logging.String("user", userID))
	return err
}
