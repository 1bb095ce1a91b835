package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/damacus/iron-drive/internal/models"
	"github.com/damacus/iron-drive/internal/utils"
)

// HTTPStore talks to the CloudBox REST file backend (/files/...)
type HTTPStore struct {
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// HTTPConfig holds HTTPStore configuration
type HTTPConfig struct {
	BaseURL string
	Timeout time.Duration
	// Client overrides the default transport (tests)
	Client *http.Client
}

// NewHTTPStore creates a store for the backend rooted at cfg.BaseURL
func NewHTTPStore(cfg HTTPConfig) *HTTPStore {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout:   10 * time.Second,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				MaxIdleConns:        100,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		}
	}
	return &HTTPStore{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: client,
		now:        time.Now,
	}
}

// envelope is the common response shape of the backend
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

type wireFile struct {
	Name      string `json:"name"`
	Size      string `json:"size"`
	SizeBytes int64  `json:"sizeBytes"`
	Modified  string `json:"modified"`
	Key       string `json:"key"`
}

type wireFolder struct {
	Name     string `json:"name"`
	Modified string `json:"modified"`
	FullPath string `json:"fullPath"`
}

type listResponse struct {
	envelope
	Files   []wireFile   `json:"files"`
	Folders []wireFolder `json:"folders"`
}

type folderResponse struct {
	envelope
	Folder wireFolder `json:"folder"`
}

type uploadResponse struct {
	envelope
	File wireFile `json:"file"`
}

type usageResponse struct {
	envelope
	UsedMB      float64 `json:"usedMB"`
	MaxMB       float64 `json:"maxMB"`
	Percentage  float64 `json:"percentage"`
	AvailableMB float64 `json:"availableMB"`
}

func (s *HTTPStore) endpoint(path string, query url.Values) string {
	u := s.baseURL + "/files" + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do sends req and decodes a JSON body into out. Non-2xx and success=false become StatusError.
func (s *HTTPStore) do(op string, req *http.Request, out interface{}) error {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read body: %w", op, err)
	}

	var env envelope
	_ = json.Unmarshal(body, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: op, Code: resp.StatusCode, Message: env.Error}
	}
	if len(body) > 0 && !env.Success && env.Error != "" {
		return &StatusError{Op: op, Code: http.StatusBadRequest, Message: env.Error}
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func (s *HTTPStore) parseTime(v string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
		return t
	}
	return s.now()
}

func (s *HTTPStore) toFile(w wireFile, folderPath string) models.File {
	size := w.Size
	if size == "" {
		size = utils.FormatFileSize(w.SizeBytes)
	}
	return models.File{
		ID:         FileID(w.Key),
		Name:       w.Name,
		Size:       size,
		SizeBytes:  w.SizeBytes,
		Modified:   s.parseTime(w.Modified),
		Key:        w.Key,
		FolderPath: folderPath,
	}
}

func (s *HTTPStore) toFolder(userID string, w wireFolder) models.Folder {
	full := models.NormalizePath(w.FullPath)
	return models.Folder{
		ID:       FolderID(userID, full),
		Name:     w.Name,
		Modified: s.parseTime(w.Modified),
		FullPath: full,
	}
}

// List returns the files and folders directly under folderPath
func (s *HTTPStore) List(ctx context.Context, userID, folderPath string) (Listing, error) {
	folderPath = models.NormalizePath(folderPath)
	q := url.Values{"userId": {userID}}
	if folderPath != "" {
		q.Set("folderPath", folderPath)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint("/list", q), nil)
	if err != nil {
		return Listing{}, err
	}

	var resp listResponse
	if err := s.do("list", req, &resp); err != nil {
		return Listing{}, err
	}

	listing := Listing{
		Files:   make([]models.File, 0, len(resp.Files)),
		Folders: make([]models.Folder, 0, len(resp.Folders)),
	}
	for _, f := range resp.Files {
		listing.Files = append(listing.Files, s.toFile(f, folderPath))
	}
	for _, f := range resp.Folders {
		listing.Folders = append(listing.Folders, s.toFolder(userID, f))
	}
	return listing, nil
}

// Upload sends all files as one multipart batch
func (s *HTTPStore) Upload(ctx context.Context, userID, folderPath string, files []UploadFile) (UploadResult, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range files {
		if err := writePart(mw, f); err != nil {
			return UploadResult{}, fmt.Errorf("upload: %w", err)
		}
	}
	_ = mw.WriteField("userId", userID)
	if fp := models.NormalizePath(folderPath); fp != "" {
		_ = mw.WriteField("folderPath", fp)
	}
	if err := mw.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint("/upload", nil), &buf)
	if err != nil {
		return UploadResult{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var resp uploadResponse
	if err := s.do("upload", req, &resp); err != nil {
		return UploadResult{}, err
	}
	result := UploadResult{Uploaded: len(files)}
	if resp.File.Key != "" {
		result.Keys = append(result.Keys, resp.File.Key)
	}
	return result, nil
}

func writePart(mw *multipart.Writer, f UploadFile) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, escapeQuotes(f.Name)))
	ct := f.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)

	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	_, err = io.Copy(part, rc)
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// CreateFolder creates name under parentPath
func (s *HTTPStore) CreateFolder(ctx context.Context, userID, name, parentPath string) (models.Folder, error) {
	form := url.Values{"folderName": {name}, "userId": {userID}}
	if pp := models.NormalizePath(parentPath); pp != "" {
		form.Set("parentFolderPath", pp)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint("/folder", nil), strings.NewReader(form.Encode()))
	if err != nil {
		return models.Folder{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp folderResponse
	if err := s.do("create-folder", req, &resp); err != nil {
		return models.Folder{}, err
	}
	if resp.Folder.FullPath == "" {
		resp.Folder.FullPath = models.JoinPath(parentPath, name)
	}
	if resp.Folder.Name == "" {
		resp.Folder.Name = name
	}
	return s.toFolder(userID, resp.Folder), nil
}

// DeleteFolder removes the folder and everything under it
func (s *HTTPStore) DeleteFolder(ctx context.Context, userID, fullPath string) error {
	q := url.Values{"userId": {userID}, "folderPath": {models.NormalizePath(fullPath)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.endpoint("/folder", q), nil)
	if err != nil {
		return err
	}
	return s.do("delete-folder", req, nil)
}

// DeleteFile removes the object stored under storageKey
func (s *HTTPStore) DeleteFile(ctx context.Context, userID, storageKey string) error {
	q := url.Values{"s3Key": {storageKey}, "userId": {userID}}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.endpoint("/file", q), nil)
	if err != nil {
		return err
	}
	return s.do("delete-file", req, nil)
}

// Download streams the blob stored under storageKey. The caller closes the reader.
func (s *HTTPStore) Download(ctx context.Context, userID, storageKey string) (io.ReadCloser, error) {
	q := url.Values{"s3Key": {storageKey}, "userId": {userID}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint("/download", q), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		var env envelope
		_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&env)
		return nil, &StatusError{Op: "download", Code: resp.StatusCode, Message: env.Error}
	}
	return resp.Body, nil
}

// StorageUsage returns the user's usage snapshot as computed by the backend
func (s *HTTPStore) StorageUsage(ctx context.Context, userID string) (models.StorageUsage, error) {
	q := url.Values{"userId": {userID}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint("/storage-usage", q), nil)
	if err != nil {
		return models.StorageUsage{}, err
	}
	var resp usageResponse
	if err := s.do("storage-usage", req, &resp); err != nil {
		return models.StorageUsage{}, err
	}
	return models.StorageUsage{
		UsedMB:      resp.UsedMB,
		MaxMB:       resp.MaxMB,
		Percentage:  resp.Percentage,
		AvailableMB: resp.AvailableMB,
	}, nil
}

// ClearAll removes every file and folder of the user
func (s *HTTPStore) ClearAll(ctx context.Context, userID string) error {
	q := url.Values{"userId": {userID}}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.endpoint("/clear-all", q), nil)
	if err != nil {
		return err
	}
	return s.do("clear-all", req, nil)
}
