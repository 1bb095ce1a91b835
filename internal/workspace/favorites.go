package workspace

import "fmt"

// favorites is a set of file ids. Marks for ids that no longer exist are inert.
type favorites map[string]struct{}

func (f favorites) has(id string) bool {
	_, ok := f[id]
	return ok
}

func (f favorites) remove(id string) {
	delete(f, id)
}

// ToggleFavorite flips the mark on a file and reports whether it is now a favorite.
// The name for the message is looked up in the cache and then the trash; an id
// found in neither only changes the set.
func (w *Workspace) ToggleFavorite(id string) bool {
	w.mu.Lock()
	name, known := w.fileNameLocked(id)
	marked := !w.favs.has(id)
	if marked {
		w.favs[id] = struct{}{}
	} else {
		w.favs.remove(id)
	}
	w.mu.Unlock()

	if known {
		if marked {
			w.notes.Success(fmt.Sprintf("\"%s\" added to favorites", name))
		} else {
			w.notes.Success(fmt.Sprintf("\"%s\" removed from favorites", name))
		}
	}
	return marked
}

// IsFavorite reports whether id is marked
func (w *Workspace) IsFavorite(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.favs.has(id)
}

func (w *Workspace) fileNameLocked(id string) (string, bool) {
	if i, ok := findFile(w.files, id); ok {
		return w.files[i].Name, true
	}
	if i, ok := findFile(w.trash.files, id); ok {
		return w.trash.files[i].Name, true
	}
	return "", false
}
