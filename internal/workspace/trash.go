package workspace

import (
	"context"
	"fmt"

	"github.com/damacus/iron-drive/internal/models"
)

// ledger is the client-local trash. Entries keep insertion order.
type ledger struct {
	files   []models.File
	folders []models.Folder
}

func (l *ledger) hasFile(id string) bool {
	_, ok := findFile(l.files, id)
	return ok
}

func (l *ledger) hasFolder(id string) bool {
	_, ok := findFolder(l.folders, id)
	return ok
}

func (l *ledger) takeFile(id string) (models.File, bool) {
	i, ok := findFile(l.files, id)
	if !ok {
		return models.File{}, false
	}
	f := l.files[i]
	l.files = append(l.files[:i:i], l.files[i+1:]...)
	return f, true
}

func (l *ledger) takeFolder(id string) (models.Folder, bool) {
	i, ok := findFolder(l.folders, id)
	if !ok {
		return models.Folder{}, false
	}
	f := l.folders[i]
	l.folders = append(l.folders[:i:i], l.folders[i+1:]...)
	return f, true
}

// without drops listed entities that are staged, so an entry is never both
// trashed and visible in the cache.
func (l *ledger) without(files []models.File, folders []models.Folder) ([]models.File, []models.Folder) {
	outFiles := make([]models.File, 0, len(files))
	for _, f := range files {
		if !l.hasFile(f.ID) {
			outFiles = append(outFiles, f)
		}
	}
	outFolders := make([]models.Folder, 0, len(folders))
	for _, f := range folders {
		if !l.hasFolder(f.ID) {
			outFolders = append(outFolders, f)
		}
	}
	return outFiles, outFolders
}

// StageFile moves a cached file into the trash. No store call is made.
func (w *Workspace) StageFile(id string) bool {
	w.mu.Lock()
	i, ok := findFile(w.files, id)
	if !ok {
		w.mu.Unlock()
		return false
	}
	f := w.files[i]
	w.files = append(w.files[:i:i], w.files[i+1:]...)
	w.trash.files = append(w.trash.files, f)
	w.mu.Unlock()

	w.notes.Success(fmt.Sprintf("\"%s\" moved to trash", f.Name))
	return true
}

// StageFolder moves a cached folder into the trash. No store call is made.
func (w *Workspace) StageFolder(id string) bool {
	w.mu.Lock()
	i, ok := findFolder(w.folders, id)
	if !ok {
		w.mu.Unlock()
		return false
	}
	f := w.folders[i]
	w.folders = append(w.folders[:i:i], w.folders[i+1:]...)
	w.trash.folders = append(w.trash.folders, f)
	w.mu.Unlock()

	w.notes.Success(fmt.Sprintf("Folder \"%s\" moved to trash", f.Name))
	return true
}

// RestoreFile moves a trashed file back. It reappears in the cache when it
// belongs to the open folder, otherwise the next listing of its folder shows it.
func (w *Workspace) RestoreFile(id string) bool {
	w.mu.Lock()
	f, ok := w.trash.takeFile(id)
	if !ok {
		w.mu.Unlock()
		return false
	}
	if f.FolderPath == w.path {
		if _, dup := findFile(w.files, f.ID); !dup {
			w.files = append(w.files, f)
		}
	}
	w.mu.Unlock()

	w.notes.Success(fmt.Sprintf("\"%s\" restored successfully", f.Name))
	return true
}

// RestoreFolder moves a trashed folder back
func (w *Workspace) RestoreFolder(id string) bool {
	w.mu.Lock()
	f, ok := w.trash.takeFolder(id)
	if !ok {
		w.mu.Unlock()
		return false
	}
	if f.ParentPath() == w.path {
		if _, dup := findFolder(w.folders, f.ID); !dup {
			w.folders = append(w.folders, f)
		}
	}
	w.mu.Unlock()

	w.notes.Success(fmt.Sprintf("Folder \"%s\" restored successfully", f.Name))
	return true
}

// PurgeFile deletes a trashed file from the store. The ledger entry is only
// dropped once the store confirms; on failure it stays and an error is queued.
func (w *Workspace) PurgeFile(ctx context.Context, id string) error {
	uid, err := w.userID()
	if err != nil {
		return err
	}

	w.mu.Lock()
	i, ok := findFile(w.trash.files, id)
	if !ok {
		w.mu.Unlock()
		return ErrUnknownEntity
	}
	f := w.trash.files[i]
	w.mu.Unlock()

	if err := w.store.DeleteFile(ctx, uid, f.Key); err != nil {
		w.notes.Error(fmt.Sprintf("Failed to permanently delete \"%s\"", f.Name))
		return err
	}

	w.mu.Lock()
	w.trash.takeFile(id)
	if i, ok := findFile(w.files, id); ok {
		w.files = append(w.files[:i:i], w.files[i+1:]...)
	}
	w.favs.remove(id)
	w.mu.Unlock()

	w.notes.Success(fmt.Sprintf("\"%s\" permanently deleted", f.Name))
	_ = w.Refresh(ctx)
	return nil
}

// PurgeFolder forgets a trashed folder. This never reaches the store: the
// folder and its contents stay in remote storage.
func (w *Workspace) PurgeFolder(id string) bool {
	w.mu.Lock()
	f, ok := w.trash.takeFolder(id)
	w.mu.Unlock()
	if !ok {
		return false
	}

	w.notes.Success(fmt.Sprintf("Folder \"%s\" permanently deleted", f.Name))
	return true
}
