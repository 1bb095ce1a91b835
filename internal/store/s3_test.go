package store

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/minio/madmin-go/v3"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testBucket = "cloudbox"

func newTestS3Store(client *MockMinioClient) *S3Store {
	s := NewS3Store(client, S3Config{Bucket: testBucket, MaxStorageMB: 1})
	s.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestS3Store_List(t *testing.T) {
	client := new(MockMinioClient)
	s := newTestS3Store(client)
	modified := time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)

	client.On("ListObjects", mock.Anything, testBucket, minio.ListObjectsOptions{Prefix: "alice/Reports/", Recursive: false}).
		Return([]minio.ObjectInfo{
			{Key: "alice/Reports/"},
			{Key: "alice/Reports/2024/"},
			{Key: "alice/Reports/0b7f0a52-3f3e-4c4a-9d84-5c1f9b8e2a11_Report.pdf", Size: 2048, LastModified: modified},
			{Key: "alice/Reports/notes.txt", Size: 12, LastModified: modified},
		}, nil)

	listing, err := s.List(context.Background(), "alice", "/Reports/")
	require.NoError(t, err)

	require.Len(t, listing.Folders, 1)
	assert.Equal(t, "2024", listing.Folders[0].Name)
	assert.Equal(t, "Reports/2024", listing.Folders[0].FullPath)
	assert.Equal(t, FolderID("alice", "Reports/2024"), listing.Folders[0].ID)

	require.Len(t, listing.Files, 2)
	assert.Equal(t, "Report.pdf", listing.Files[0].Name)
	assert.Equal(t, "2.0 KB", listing.Files[0].Size)
	assert.Equal(t, int64(2048), listing.Files[0].SizeBytes)
	assert.Equal(t, "Reports", listing.Files[0].FolderPath)
	assert.Equal(t, modified, listing.Files[0].Modified)
	assert.Equal(t, FileID("alice/Reports/0b7f0a52-3f3e-4c4a-9d84-5c1f9b8e2a11_Report.pdf"), listing.Files[0].ID)
	assert.Equal(t, "notes.txt", listing.Files[1].Name)
	client.AssertExpectations(t)
}

func TestS3Store_List_IDsAreStable(t *testing.T) {
	client := new(MockMinioClient)
	s := newTestS3Store(client)
	client.On("ListObjects", mock.Anything, testBucket, mock.Anything).
		Return([]minio.ObjectInfo{{Key: "alice/a.txt", Size: 1}}, nil)

	first, err := s.List(context.Background(), "alice", "")
	require.NoError(t, err)
	second, err := s.List(context.Background(), "alice", "")
	require.NoError(t, err)

	assert.Equal(t, first.Files[0].ID, second.Files[0].ID)
}

func TestS3Store_List_Error(t *testing.T) {
	client := new(MockMinioClient)
	s := newTestS3Store(client)
	client.On("ListObjects", mock.Anything, testBucket, mock.Anything).Return(nil, errors.New("connection refused"))

	_, err := s.List(context.Background(), "alice", "")
	assert.ErrorContains(t, err, "connection refused")
}

func TestS3Store_RejectsEmptyUser(t *testing.T) {
	s := newTestS3Store(new(MockMinioClient))

	_, err := s.List(context.Background(), "", "")
	assert.True(t, IsStatus(err, http.StatusBadRequest))
}

func TestS3Store_Upload(t *testing.T) {
	client := new(MockMinioClient)
	s := newTestS3Store(client)

	client.On("ListObjects", mock.Anything, testBucket, minio.ListObjectsOptions{Prefix: "alice/", Recursive: true}).
		Return([]minio.ObjectInfo{{Key: "alice/old.bin", Size: 100}}, nil)
	client.On("PutObject", mock.Anything, testBucket, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "alice/Reports/") && strings.HasSuffix(key, "_a.txt")
	}), mock.Anything, int64(5), minio.PutObjectOptions{ContentType: "text/plain"}).
		Return(minio.UploadInfo{}, nil).Once()

	result, err := s.Upload(context.Background(), "alice", "Reports", []UploadFile{
		BytesFile("a.txt", "text/plain", []byte("hello")),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Uploaded)
	require.Len(t, result.Keys, 1)
	assert.Equal(t, "a.txt", displayName(result.Keys[0]))
	client.AssertExpectations(t)
}

func TestS3Store_Upload_QuotaExceeded(t *testing.T) {
	client := new(MockMinioClient)
	s := newTestS3Store(client)

	client.On("ListObjects", mock.Anything, testBucket, mock.Anything).
		Return([]minio.ObjectInfo{{Key: "alice/big.bin", Size: 1024 * 1024}}, nil)

	_, err := s.Upload(context.Background(), "alice", "", []UploadFile{
		BytesFile("a.txt", "", []byte("x")),
	})
	require.Error(t, err)
	assert.Equal(t, "Storage limit exceeded. Maximum 1MB allowed.", Message(err))
	client.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestS3Store_CreateFolder(t *testing.T) {
	client := new(MockMinioClient)
	s := newTestS3Store(client)

	client.On("PutObject", mock.Anything, testBucket, "alice/Reports/", mock.Anything, int64(0), minio.PutObjectOptions{}).
		Return(minio.UploadInfo{}, nil)

	folder, err := s.CreateFolder(context.Background(), "alice", "Reports", "")
	require.NoError(t, err)
	assert.Equal(t, "Reports", folder.Name)
	assert.Equal(t, "Reports", folder.FullPath)
	client.AssertExpectations(t)
}

func TestS3Store_DeleteFolder(t *testing.T) {
	client := new(MockMinioClient)
	s := newTestS3Store(client)

	client.On("ListObjects", mock.Anything, testBucket, minio.ListObjectsOptions{Prefix: "alice/Reports/", Recursive: true}).
		Return([]minio.ObjectInfo{{Key: "alice/Reports/"}, {Key: "alice/Reports/a.txt"}}, nil)
	client.On("RemoveObject", mock.Anything, testBucket, "alice/Reports/", mock.Anything).Return(nil)
	client.On("RemoveObject", mock.Anything, testBucket, "alice/Reports/a.txt", mock.Anything).Return(nil)

	require.NoError(t, s.DeleteFolder(context.Background(), "alice", "Reports"))
	client.AssertExpectations(t)
}

func TestS3Store_DeleteFile_ForeignKey(t *testing.T) {
	client := new(MockMinioClient)
	s := newTestS3Store(client)

	err := s.DeleteFile(context.Background(), "alice", "bob/secret.txt")
	assert.True(t, IsStatus(err, http.StatusForbidden))
	client.AssertNotCalled(t, "RemoveObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestS3Store_Download(t *testing.T) {
	client := new(MockMinioClient)
	s := newTestS3Store(client)

	client.On("GetObjectReader", mock.Anything, testBucket, "alice/a.txt", mock.Anything).
		Return(io.NopCloser(strings.NewReader("hello")), int64(5), nil)

	rc, err := s.Download(context.Background(), "alice", "alice/a.txt")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestS3Store_StorageUsage(t *testing.T) {
	client := new(MockMinioClient)
	s := NewS3Store(client, S3Config{Bucket: testBucket, MaxStorageMB: 1024})

	client.On("ListObjects", mock.Anything, testBucket, minio.ListObjectsOptions{Prefix: "alice/", Recursive: true}).
		Return([]minio.ObjectInfo{
			{Key: "alice/Reports/"},
			{Key: "alice/a.bin", Size: 256 * 1024 * 1024},
		}, nil)

	usage, err := s.StorageUsage(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 256.0, usage.UsedMB)
	assert.Equal(t, 1024.0, usage.MaxMB)
	assert.Equal(t, 25.0, usage.Percentage)
	assert.Equal(t, 768.0, usage.AvailableMB)
}

func TestS3Store_StorageUsage_BucketQuota(t *testing.T) {
	client := new(MockMinioClient)
	s := NewS3Store(client, S3Config{Bucket: testBucket, MaxStorageMB: 1024, Admin: client})

	client.On("ListObjects", mock.Anything, testBucket, mock.Anything).Return([]minio.ObjectInfo{}, nil)
	client.On("GetBucketQuota", mock.Anything, testBucket).Return(madmin.BucketQuota{Size: 512 * 1024 * 1024}, nil)

	usage, err := s.StorageUsage(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 512.0, usage.MaxMB)
	assert.Equal(t, 512.0, usage.AvailableMB)
}

func TestS3Store_ClearAll(t *testing.T) {
	client := new(MockMinioClient)
	s := newTestS3Store(client)

	client.On("ListObjects", mock.Anything, testBucket, minio.ListObjectsOptions{Prefix: "alice/", Recursive: true}).
		Return([]minio.ObjectInfo{{Key: "alice/a.txt"}}, nil)
	client.On("RemoveObject", mock.Anything, testBucket, "alice/a.txt", mock.Anything).Return(errors.New("denied"))

	err := s.ClearAll(context.Background(), "alice")
	assert.ErrorContains(t, err, "denied")
}

func TestS3Store_EnsureBucket(t *testing.T) {
	client := new(MockMinioClient)
	s := newTestS3Store(client)

	client.On("BucketExists", mock.Anything, testBucket).Return(false, nil)
	client.On("MakeBucket", mock.Anything, testBucket, minio.MakeBucketOptions{}).Return(nil)

	require.NoError(t, s.EnsureBucket(context.Background()))
	client.AssertExpectations(t)
}
