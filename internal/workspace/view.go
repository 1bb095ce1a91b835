package workspace

import (
	"strings"
	"time"

	"github.com/damacus/iron-drive/internal/models"
	"github.com/damacus/iron-drive/internal/utils"
)

// recentLimit bounds the recent-items view
const recentLimit = 8

// FilterInput is everything the visible set is derived from
type FilterInput struct {
	Section      models.Section
	Search       string
	Files        []models.File
	Folders      []models.Folder
	TrashFiles   []models.File
	TrashFolders []models.Folder
	Favorites    map[string]struct{}
}

// Filter derives the visible files and folders. It has no side effects and
// keeps the order entities arrived in.
func Filter(in FilterInput) ([]models.File, []models.Folder) {
	var files []models.File
	var folders []models.Folder

	switch in.Section {
	case models.SectionShared:
		return []models.File{}, []models.Folder{}
	case models.SectionTrash:
		files, folders = in.TrashFiles, in.TrashFolders
	case models.SectionFavourite:
		for _, f := range in.Files {
			if _, ok := in.Favorites[f.ID]; ok {
				files = append(files, f)
			}
		}
	default:
		files, folders = in.Files, in.Folders
	}

	return matchFiles(files, in.Search), matchFolders(folders, in.Search)
}

func matches(name, q string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(q))
}

func matchFiles(files []models.File, q string) []models.File {
	out := make([]models.File, 0, len(files))
	for _, f := range files {
		if matches(f.Name, q) {
			out = append(out, f)
		}
	}
	return out
}

func matchFolders(folders []models.Folder, q string) []models.Folder {
	out := make([]models.Folder, 0, len(folders))
	for _, f := range folders {
		if matches(f.Name, q) {
			out = append(out, f)
		}
	}
	return out
}

// RecentGroup is one relative-day bucket of the recent-items view
type RecentGroup struct {
	Label string     `json:"label"`
	Files []FileItem `json:"files"`
}

// Recent groups the first eight cached files, after search, by calendar day
// relative to now. Groups appear in the order of their first file.
func Recent(files []models.File, search string, favs map[string]struct{}, now time.Time) []RecentGroup {
	if len(files) > recentLimit {
		files = files[:recentLimit]
	}
	var groups []RecentGroup
	index := map[string]int{}
	for _, f := range matchFiles(files, search) {
		label := utils.RelativeDay(f.Modified, now)
		i, ok := index[label]
		if !ok {
			i = len(groups)
			index[label] = i
			groups = append(groups, RecentGroup{Label: label})
		}
		groups[i].Files = append(groups[i].Files, toItem(f, favs))
	}
	return groups
}

// FileItem is a visible file with its display fields
type FileItem struct {
	models.File
	Favorite      bool   `json:"favorite"`
	ModifiedLabel string `json:"modifiedLabel"`
}

func toItem(f models.File, favs map[string]struct{}) FileItem {
	_, fav := favs[f.ID]
	return FileItem{File: f, Favorite: fav, ModifiedLabel: utils.FormatTimestamp(f.Modified)}
}

// View is a snapshot of what the session currently shows
type View struct {
	Section     models.Section      `json:"section"`
	Title       string              `json:"title"`
	Search      string              `json:"search"`
	ViewMode    models.ViewMode     `json:"viewMode"`
	Path        string              `json:"path"`
	Breadcrumbs []models.Breadcrumb `json:"breadcrumbs"`
	Files       []FileItem          `json:"files"`
	Folders     []models.Folder     `json:"folders"`
	Recent      []RecentGroup       `json:"recent,omitempty"`
	Storage     models.StorageUsage `json:"storage"`
	Upload      UploadStatus        `json:"upload"`
}

// View derives the visible snapshot from the current state
func (w *Workspace) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()

	favs := make(map[string]struct{}, len(w.favs))
	for id := range w.favs {
		favs[id] = struct{}{}
	}
	files, folders := Filter(FilterInput{
		Section:      w.section,
		Search:       w.search,
		Files:        w.files,
		Folders:      w.folders,
		TrashFiles:   w.trash.files,
		TrashFolders: w.trash.folders,
		Favorites:    favs,
	})

	v := View{
		Section:     w.section,
		Title:       w.section.Title(),
		Search:      w.search,
		ViewMode:    w.viewMode,
		Path:        w.path,
		Breadcrumbs: models.Breadcrumbs(w.path),
		Files:       make([]FileItem, 0, len(files)),
		Folders:     folders,
		Storage:     w.usage,
		Upload:      w.upload,
	}
	for _, f := range files {
		v.Files = append(v.Files, toItem(f, favs))
	}
	if w.section == models.SectionMyDrive {
		v.Recent = Recent(w.files, w.search, favs, w.opts.Now())
	}
	return v
}
