// Package workspace is the per-session drive state: the entity cache for the
// open folder, the local trash ledger and favorites overlays, the derived
// views, the upload coordinator and the notification queue.
//
// All bookkeeping happens under one mutex so handlers never interleave within
// a mutation. Store calls are made outside the lock.
package workspace

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/damacus/iron-drive/internal/logging"
	"github.com/damacus/iron-drive/internal/metrics"
	"github.com/damacus/iron-drive/internal/models"
	"github.com/damacus/iron-drive/internal/notify"
	"github.com/damacus/iron-drive/internal/store"
)

// Options tunes the timings of a workspace. Zero values take the defaults.
type Options struct {
	NotificationTTL time.Duration
	UploadTick      time.Duration
	UploadSettle    time.Duration
	// Rand returns a number in [0,1) for synthetic upload progress
	Rand func() float64
	Now  func() time.Time
}

func (o Options) withDefaults() Options {
	if o.NotificationTTL <= 0 {
		o.NotificationTTL = notify.DefaultTTL
	}
	if o.UploadTick <= 0 {
		o.UploadTick = 200 * time.Millisecond
	}
	if o.UploadSettle < 0 {
		o.UploadSettle = 0
	}
	if o.Rand == nil {
		o.Rand = rand.Float64
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Workspace is the drive state of one session
type Workspace struct {
	session models.Session
	store   store.Store
	notes   *notify.Queue
	opts    Options
	log     *zap.Logger

	mu       sync.Mutex
	path     string
	files    []models.File
	folders  []models.Folder
	usage    models.StorageUsage
	issued   uint64
	applied  uint64
	trash    ledger
	favs     favorites
	section  models.Section
	search   string
	viewMode models.ViewMode
	upload   UploadStatus
	closed   bool
}

// New creates the workspace for session backed by s
func New(session models.Session, s store.Store, opts Options) *Workspace {
	opts = opts.withDefaults()
	metrics.WorkspaceOpened()
	return &Workspace{
		session:  session,
		store:    s,
		notes:    notify.New(opts.NotificationTTL, notify.WithClock(opts.Now)),
		opts:     opts,
		log:      logging.L().With(logging.String("user", session.UserID)),
		usage:    models.DefaultStorageUsage(),
		favs:     favorites{},
		section:  models.SectionMyDrive,
		viewMode: models.ViewGrid,
		upload:   UploadStatus{State: UploadIdle},
	}
}

// Session returns the identity the workspace operates for
func (w *Workspace) Session() models.Session {
	return w.session
}

// Close drops pending notifications. Running uploads finish against a closed queue.
func (w *Workspace) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()

	w.notes.Close()
	metrics.WorkspaceClosed()
}

func (w *Workspace) userID() (string, error) {
	if w.session.UserID == "" {
		return "", ErrNoIdentity
	}
	return w.session.UserID, nil
}

// Path is the currently open folder
func (w *Workspace) Path() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.path
}

// Loaded reports whether any listing has been applied yet
func (w *Workspace) Loaded() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.applied > 0
}

// Breadcrumbs for the currently open folder
func (w *Workspace) Breadcrumbs() []models.Breadcrumb {
	return models.Breadcrumbs(w.Path())
}

// Refresh replaces the cache with the store's listing of the current folder
func (w *Workspace) Refresh(ctx context.Context) error {
	if _, err := w.userID(); err != nil {
		return err
	}
	w.mu.Lock()
	seq, path := w.nextSeqLocked()
	w.mu.Unlock()
	return w.refresh(ctx, seq, path)
}

// OpenFolder navigates to path and lists it
func (w *Workspace) OpenFolder(ctx context.Context, path string) error {
	if _, err := w.userID(); err != nil {
		return err
	}
	path = models.NormalizePath(path)

	w.mu.Lock()
	if path != w.path {
		w.path = path
		w.files = nil
		w.folders = nil
	}
	seq, path := w.nextSeqLocked()
	w.mu.Unlock()
	return w.refresh(ctx, seq, path)
}

// GoRoot navigates back to the root folder
func (w *Workspace) GoRoot(ctx context.Context) error {
	return w.OpenFolder(ctx, "")
}

func (w *Workspace) nextSeqLocked() (uint64, string) {
	w.issued++
	return w.issued, w.path
}

// refresh lists path and applies the result unless a newer listing was
// applied meanwhile or the workspace moved to another folder.
func (w *Workspace) refresh(ctx context.Context, seq uint64, path string) error {
	listing, err := w.store.List(ctx, w.session.UserID, path)

	w.mu.Lock()
	stale := seq < w.applied || path != w.path
	if err != nil {
		w.mu.Unlock()
		if stale {
			// A newer listing already stands; the failure is not the user's view.
			w.log.Debug("stale listing failed", logging.String("path", path), logging.Err(err))
			return err
		}
		w.notes.Error("Failed to load files")
		return err
	}
	if stale {
		w.mu.Unlock()
		metrics.RecordStaleRefresh()
		w.log.Debug("discarded stale listing",
			logging.String("path", path),
			logging.Uint64("seq", seq),
			logging.Uint64("applied", w.applied))
		return nil
	}
	w.applied = seq
	w.files, w.folders = w.trash.without(listing.Files, listing.Folders)
	w.mu.Unlock()

	usage, err := w.store.StorageUsage(ctx, w.session.UserID)
	if err != nil {
		// Usage stays at the last known value.
		w.log.Warn("storage usage unavailable", logging.Err(err))
		return nil
	}
	w.mu.Lock()
	w.usage = usage
	w.mu.Unlock()
	return nil
}

// Storage is the last storage usage snapshot
func (w *Workspace) Storage() models.StorageUsage {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.usage
}

// Notifications lists the live notifications
func (w *Workspace) Notifications() []notify.Notification {
	return w.notes.List()
}

// DismissNotification removes a notification before its TTL
func (w *Workspace) DismissNotification(id int64) bool {
	return w.notes.Dismiss(id)
}

// SetSection switches the active section
func (w *Workspace) SetSection(s models.Section) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.section = s
}

// SetSearch sets the free-text search filter
func (w *Workspace) SetSearch(q string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.search = q
}

// SetViewMode records the grid/list preference
func (w *Workspace) SetViewMode(m models.ViewMode) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.viewMode = m
}

func findFile(files []models.File, id string) (int, bool) {
	for i, f := range files {
		if f.ID == id {
			return i, true
		}
	}
	return -1, false
}

func findFolder(folders []models.Folder, id string) (int, bool) {
	for i, f := range folders {
		if f.ID == id {
			return i, true
		}
	}
	return -1, false
}
