package workspace

import (
	"context"
	"fmt"
	"time"

	"github.com/damacus/iron-drive/internal/logging"
	"github.com/damacus/iron-drive/internal/metrics"
	"github.com/damacus/iron-drive/internal/store"
)

// UploadState is the coordinator state. A failed upload returns to Idle
// straight away with Error set.
type UploadState string

const (
	UploadIdle       UploadState = "idle"
	UploadUploading  UploadState = "uploading"
	UploadCompleting UploadState = "completing"
)

const (
	// synthetic progress never passes progressCap before the store answers
	progressCap  = 90.0
	progressStep = 15.0
)

// UploadStatus is the observable state of the upload coordinator
type UploadStatus struct {
	State      UploadState `json:"state"`
	Progress   float64     `json:"progress"`
	FolderPath string      `json:"folderPath"`
	Files      int         `json:"files"`
	Error      string      `json:"error,omitempty"`
}

// UploadStatus returns the coordinator state
func (w *Workspace) UploadStatus() UploadStatus {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.upload
}

// Upload sends files to the open folder and blocks until the coordinator is
// Idle again. It is rejected while another upload runs.
func (w *Workspace) Upload(ctx context.Context, files []store.UploadFile) (store.UploadResult, error) {
	path, err := w.beginUpload(files)
	if err != nil {
		return store.UploadResult{}, err
	}
	return w.runUpload(ctx, path, files)
}

// StartUpload is Upload without waiting: the admission check is synchronous,
// the transfer runs in the background. There is no cancellation.
func (w *Workspace) StartUpload(ctx context.Context, files []store.UploadFile) error {
	path, err := w.beginUpload(files)
	if err != nil {
		return err
	}
	go func() {
		_, _ = w.runUpload(ctx, path, files)
	}()
	return nil
}

func (w *Workspace) beginUpload(files []store.UploadFile) (string, error) {
	if _, err := w.userID(); err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", ErrNoFiles
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.upload.State != UploadIdle {
		return "", ErrUploadInProgress
	}
	w.upload = UploadStatus{State: UploadUploading, FolderPath: w.path, Files: len(files)}
	return w.path, nil
}

func (w *Workspace) runUpload(ctx context.Context, path string, files []store.UploadFile) (store.UploadResult, error) {
	stop := make(chan struct{})
	done := make(chan struct{})
	go w.tickProgress(stop, done)

	result, err := w.store.Upload(ctx, w.session.UserID, path, files)
	close(stop)
	<-done
	metrics.RecordUpload(err, result.Uploaded)

	if err != nil {
		msg := store.Message(err)
		w.mu.Lock()
		w.upload = UploadStatus{State: UploadIdle, Error: msg}
		w.mu.Unlock()
		w.log.Warn("upload failed", logging.String("path", path), logging.Int("files", len(files)), logging.Err(err))
		w.notes.Error("Upload failed: " + msg)
		return result, err
	}

	w.mu.Lock()
	w.upload.State = UploadCompleting
	w.upload.Progress = 100
	w.mu.Unlock()

	if w.opts.UploadSettle > 0 {
		time.Sleep(w.opts.UploadSettle)
	}
	_ = w.Refresh(ctx)

	w.mu.Lock()
	w.upload = UploadStatus{State: UploadIdle}
	w.mu.Unlock()

	if len(files) == 1 {
		w.notes.Success("File uploaded successfully")
	} else {
		w.notes.Success(fmt.Sprintf("%d files uploaded successfully", len(files)))
	}
	return result, nil
}

func (w *Workspace) tickProgress(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(w.opts.UploadTick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			w.mu.Lock()
			if w.upload.State == UploadUploading {
				w.upload.Progress = advance(w.upload.Progress, w.opts.Rand())
			}
			w.mu.Unlock()
		}
	}
}

// advance adds a bounded random step to p without passing progressCap
func advance(p, r float64) float64 {
	if p >= progressCap {
		return p
	}
	p += r * progressStep
	if p > progressCap {
		p = progressCap
	}
	return p
}
