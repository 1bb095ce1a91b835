package workspace

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/damacus/iron-drive/internal/models"
)

// CreateFolder creates name in the open folder and relists it.
// A blank name is rejected without a store call or a notification.
func (w *Workspace) CreateFolder(ctx context.Context, name string) (models.Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Folder{}, ErrEmptyFolderName
	}
	uid, err := w.userID()
	if err != nil {
		return models.Folder{}, err
	}

	parent := w.Path()
	folder, err := w.store.CreateFolder(ctx, uid, name, parent)
	if err != nil {
		w.notes.Error("Failed to create folder")
		return models.Folder{}, err
	}

	_ = w.Refresh(ctx)
	w.notes.Success(fmt.Sprintf("Folder \"%s\" created successfully", name))
	return folder, nil
}

// DeleteFile removes a cached file from the store directly, skipping the trash
func (w *Workspace) DeleteFile(ctx context.Context, id string) error {
	uid, err := w.userID()
	if err != nil {
		return err
	}

	w.mu.Lock()
	i, ok := findFile(w.files, id)
	if !ok {
		w.mu.Unlock()
		return ErrUnknownEntity
	}
	f := w.files[i]
	w.mu.Unlock()

	if err := w.store.DeleteFile(ctx, uid, f.Key); err != nil {
		w.notes.Error("Failed to delete file")
		return err
	}

	w.mu.Lock()
	w.favs.remove(id)
	w.mu.Unlock()

	_ = w.Refresh(ctx)
	w.notes.Success(fmt.Sprintf("\"%s\" deleted successfully", f.Name))
	return nil
}

// DeleteFolder removes the folder at fullPath and everything in it from the
// store. If the open folder was inside it, the workspace moves to its parent.
func (w *Workspace) DeleteFolder(ctx context.Context, fullPath string) error {
	uid, err := w.userID()
	if err != nil {
		return err
	}
	fullPath = models.NormalizePath(fullPath)
	if fullPath == "" {
		return ErrUnknownEntity
	}

	if err := w.store.DeleteFolder(ctx, uid, fullPath); err != nil {
		w.notes.Error("Failed to delete folder")
		return err
	}

	w.mu.Lock()
	if w.path == fullPath || strings.HasPrefix(w.path, fullPath+"/") {
		w.path = models.ParentPath(fullPath)
		w.files, w.folders = nil, nil
	}
	w.mu.Unlock()

	_ = w.Refresh(ctx)
	w.notes.Success(fmt.Sprintf("Folder \"%s\" deleted successfully", models.BaseName(fullPath)))
	return nil
}

// ClearAll removes every file and folder of the user from the store
func (w *Workspace) ClearAll(ctx context.Context) error {
	uid, err := w.userID()
	if err != nil {
		return err
	}

	if err := w.store.ClearAll(ctx, uid); err != nil {
		w.notes.Error("Failed to clear all")
		return err
	}

	_ = w.Refresh(ctx)
	w.notes.Success("All files and folders cleared successfully")
	return nil
}

// Download opens the blob of a cached or trashed file. The caller closes the reader.
// A failure leaves local state untouched.
func (w *Workspace) Download(ctx context.Context, id string) (io.ReadCloser, models.File, error) {
	uid, err := w.userID()
	if err != nil {
		return nil, models.File{}, err
	}

	w.mu.Lock()
	f, ok := w.lookupFileLocked(id)
	w.mu.Unlock()
	if !ok {
		return nil, models.File{}, ErrUnknownEntity
	}

	rc, err := w.store.Download(ctx, uid, f.Key)
	if err != nil {
		w.notes.Error("Download failed")
		return nil, f, err
	}
	return rc, f, nil
}

func (w *Workspace) lookupFileLocked(id string) (models.File, bool) {
	if i, ok := findFile(w.files, id); ok {
		return w.files[i], true
	}
	if i, ok := findFile(w.trash.files, id); ok {
		return w.trash.files[i], true
	}
	return models.File{}, false
}
