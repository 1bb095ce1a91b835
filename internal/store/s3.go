package store

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"github.com/damacus/iron-drive/internal/models"
	"github.com/damacus/iron-drive/internal/services"
	"github.com/damacus/iron-drive/internal/utils"
)

// S3Store keeps every user's tree as objects under "<userId>/" in one bucket.
// Folders are common prefixes, created explicitly as empty "<path>/" marker objects.
type S3Store struct {
	client   services.MinioClient
	admin    services.MinioAdminClient
	bucket   string
	maxBytes int64
	now      func() time.Time
}

// S3Config holds S3Store configuration
type S3Config struct {
	Bucket       string
	MaxStorageMB int64
	// Admin is optional; when set a bucket size quota lowers the per-user maximum
	Admin services.MinioAdminClient
}

// NewS3Store creates a store backed by client
func NewS3Store(client services.MinioClient, cfg S3Config) *S3Store {
	maxMB := cfg.MaxStorageMB
	if maxMB <= 0 {
		maxMB = 1024
	}
	return &S3Store{
		client:   client,
		admin:    cfg.Admin,
		bucket:   cfg.Bucket,
		maxBytes: maxMB * 1024 * 1024,
		now:      time.Now,
	}
}

// EnsureBucket creates the bucket if it does not exist yet
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("ensure bucket: %w", err)
	}
	return nil
}

func userPrefix(userID string) string {
	return userID + "/"
}

func folderPrefix(userID, folderPath string) string {
	p := userPrefix(userID)
	if fp := models.NormalizePath(folderPath); fp != "" {
		p += fp + "/"
	}
	return p
}

// displayName strips the "<uuid>_" prefix uploads carry in their key
func displayName(key string) string {
	name := key[strings.LastIndex(key, "/")+1:]
	if idx := strings.Index(name, "_"); idx == 36 {
		if _, err := uuid.Parse(name[:idx]); err == nil {
			return name[idx+1:]
		}
	}
	return name
}

func (s *S3Store) checkUserID(op, userID string) error {
	if userID == "" || strings.Contains(userID, "/") {
		return &StatusError{Op: op, Code: http.StatusBadRequest, Message: "invalid user id"}
	}
	return nil
}

// List returns the files and direct subfolders under folderPath
func (s *S3Store) List(ctx context.Context, userID, folderPath string) (Listing, error) {
	if err := s.checkUserID("list", userID); err != nil {
		return Listing{}, err
	}
	folderPath = models.NormalizePath(folderPath)
	prefix := folderPrefix(userID, folderPath)

	objects, err := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: false,
	})
	if err != nil {
		return Listing{}, fmt.Errorf("list: %w", err)
	}

	listing := Listing{Files: []models.File{}, Folders: []models.Folder{}}
	for _, obj := range objects {
		if obj.Key == prefix {
			continue
		}
		if strings.HasSuffix(obj.Key, "/") {
			name := strings.TrimSuffix(strings.TrimPrefix(obj.Key, prefix), "/")
			if name == "" || strings.Contains(name, "/") {
				continue
			}
			full := models.JoinPath(folderPath, name)
			listing.Folders = append(listing.Folders, models.Folder{
				ID:       FolderID(userID, full),
				Name:     name,
				Modified: s.now(),
				FullPath: full,
			})
			continue
		}
		listing.Files = append(listing.Files, models.File{
			ID:         FileID(obj.Key),
			Name:       displayName(obj.Key),
			Size:       utils.FormatFileSize(obj.Size),
			SizeBytes:  obj.Size,
			Modified:   obj.LastModified,
			Key:        obj.Key,
			FolderPath: folderPath,
		})
	}
	return listing, nil
}

func (s *S3Store) usedBytes(ctx context.Context, userID string) (int64, error) {
	objects, err := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    userPrefix(userID),
		Recursive: true,
	})
	if err != nil {
		return 0, err
	}
	var total int64
	for _, obj := range objects {
		if !strings.HasSuffix(obj.Key, "/") {
			total += obj.Size
		}
	}
	return total, nil
}

// limit returns the per-user maximum, lowered by a bucket size quota when one is set
func (s *S3Store) limit(ctx context.Context) int64 {
	if s.admin == nil {
		return s.maxBytes
	}
	quota, err := s.admin.GetBucketQuota(ctx, s.bucket)
	if err != nil || quota.Size == 0 {
		return s.maxBytes
	}
	if q := int64(quota.Size); q > 0 && q < s.maxBytes {
		return q
	}
	return s.maxBytes
}

// Upload stores every file under folderPath after checking the user's quota
func (s *S3Store) Upload(ctx context.Context, userID, folderPath string, files []UploadFile) (UploadResult, error) {
	if err := s.checkUserID("upload", userID); err != nil {
		return UploadResult{}, err
	}
	var batch int64
	for _, f := range files {
		batch += f.Size
	}

	used, err := s.usedBytes(ctx, userID)
	if err != nil {
		return UploadResult{}, fmt.Errorf("upload: %w", err)
	}
	maxBytes := s.limit(ctx)
	if used+batch > maxBytes {
		return UploadResult{}, &StatusError{
			Op:      "upload",
			Code:    http.StatusBadRequest,
			Message: fmt.Sprintf("Storage limit exceeded. Maximum %dMB allowed.", maxBytes/(1024*1024)),
		}
	}

	prefix := folderPrefix(userID, folderPath)
	var result UploadResult
	for _, f := range files {
		key := prefix + uuid.NewString() + "_" + f.Name
		if err := s.put(ctx, key, f); err != nil {
			return result, &StatusError{
				Op:      "upload",
				Code:    http.StatusBadRequest,
				Message: "Failed to upload file: " + err.Error(),
			}
		}
		result.Uploaded++
		result.Keys = append(result.Keys, key)
	}
	return result, nil
}

func (s *S3Store) put(ctx context.Context, key string, f UploadFile) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	_, err = s.client.PutObject(ctx, s.bucket, key, rc, f.Size, minio.PutObjectOptions{ContentType: ct})
	return err
}

// CreateFolder writes the folder marker object for parentPath/name
func (s *S3Store) CreateFolder(ctx context.Context, userID, name, parentPath string) (models.Folder, error) {
	if err := s.checkUserID("create-folder", userID); err != nil {
		return models.Folder{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, "/") {
		return models.Folder{}, &StatusError{Op: "create-folder", Code: http.StatusBadRequest, Message: "invalid folder name"}
	}
	full := models.JoinPath(parentPath, name)
	key := userPrefix(userID) + full + "/"

	if _, err := s.client.PutObject(ctx, s.bucket, key, strings.NewReader(""), 0, minio.PutObjectOptions{}); err != nil {
		return models.Folder{}, fmt.Errorf("create-folder: %w", err)
	}
	return models.Folder{
		ID:       FolderID(userID, full),
		Name:     name,
		Modified: s.now(),
		FullPath: full,
	}, nil
}

func (s *S3Store) removePrefix(ctx context.Context, op, prefix string) error {
	objects, err := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	for _, obj := range objects {
		if err := s.client.RemoveObject(ctx, s.bucket, obj.Key, minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("%s: remove %s: %w", op, obj.Key, err)
		}
	}
	return nil
}

// DeleteFolder removes the folder marker and every object below it
func (s *S3Store) DeleteFolder(ctx context.Context, userID, fullPath string) error {
	if err := s.checkUserID("delete-folder", userID); err != nil {
		return err
	}
	fullPath = models.NormalizePath(fullPath)
	if fullPath == "" {
		return &StatusError{Op: "delete-folder", Code: http.StatusBadRequest, Message: "folder path is required"}
	}
	return s.removePrefix(ctx, "delete-folder", folderPrefix(userID, fullPath))
}

func (s *S3Store) checkKey(op, userID, key string) error {
	if err := s.checkUserID(op, userID); err != nil {
		return err
	}
	if !strings.HasPrefix(key, userPrefix(userID)) || strings.HasSuffix(key, "/") {
		return &StatusError{Op: op, Code: http.StatusForbidden, Message: "key does not belong to user"}
	}
	return nil
}

// DeleteFile removes a single object
func (s *S3Store) DeleteFile(ctx context.Context, userID, storageKey string) error {
	if err := s.checkKey("delete-file", userID, storageKey); err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, storageKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete-file: %w", err)
	}
	return nil
}

// Download streams a single object. The caller closes the reader.
func (s *S3Store) Download(ctx context.Context, userID, storageKey string) (io.ReadCloser, error) {
	if err := s.checkKey("download", userID, storageKey); err != nil {
		return nil, err
	}
	rc, _, err := s.client.GetObjectReader(ctx, s.bucket, storageKey, minio.GetObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, &StatusError{Op: "download", Code: http.StatusNotFound, Message: "file not found"}
		}
		return nil, fmt.Errorf("download: %w", err)
	}
	return rc, nil
}

// StorageUsage sums the user's objects against the configured maximum
func (s *S3Store) StorageUsage(ctx context.Context, userID string) (models.StorageUsage, error) {
	if err := s.checkUserID("storage-usage", userID); err != nil {
		return models.StorageUsage{}, err
	}
	used, err := s.usedBytes(ctx, userID)
	if err != nil {
		return models.StorageUsage{}, fmt.Errorf("storage-usage: %w", err)
	}
	maxBytes := s.limit(ctx)
	usedMB := utils.BytesToMB(used)
	maxMB := utils.BytesToMB(maxBytes)
	return models.StorageUsage{
		UsedMB:      utils.RoundTo(usedMB, 1),
		MaxMB:       utils.RoundTo(maxMB, 0),
		Percentage:  utils.RoundTo(float64(used)/float64(maxBytes)*100, 1),
		AvailableMB: utils.RoundTo(maxMB-usedMB, 1),
	}, nil
}

// ClearAll removes every object of the user
func (s *S3Store) ClearAll(ctx context.Context, userID string) error {
	if err := s.checkUserID("clear-all", userID); err != nil {
		return err
	}
	return s.removePrefix(ctx, "clear-all", userPrefix(userID))
}
