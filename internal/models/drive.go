// Package models contains data structures shared by the workspace, the stores and the handlers
package models

import "time"

// File is a stored file as reported by the remote store
type File struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Size       string    `json:"size"`
	SizeBytes  int64     `json:"sizeBytes"`
	Modified   time.Time `json:"modified"`
	Key        string    `json:"key"`
	FolderPath string    `json:"folderPath"`
}

// Folder is a directory in the path-string tree. FullPath is its own absolute path.
type Folder struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Modified time.Time `json:"modified"`
	FullPath string    `json:"fullPath"`
}

// ParentPath returns the path of the folder containing f
func (f Folder) ParentPath() string {
	return ParentPath(f.FullPath)
}

// StorageUsage is the last storage snapshot reported for a user
type StorageUsage struct {
	UsedMB      float64 `json:"usedMB"`
	MaxMB       float64 `json:"maxMB"`
	Percentage  float64 `json:"percentage"`
	AvailableMB float64 `json:"availableMB"`
}

// DefaultStorageUsage is what a workspace shows before the first snapshot arrives
func DefaultStorageUsage() StorageUsage {
	return StorageUsage{UsedMB: 0, MaxMB: 1024, Percentage: 0, AvailableMB: 1024}
}

// Session is the resolved identity a workspace operates for. ID is unique per
// login, so two sign-ins of the same user never share a workspace.
type Session struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// Breadcrumb for navigation
type Breadcrumb struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// Section is one of the top-level views partitioning what is visible
type Section string

const (
	SectionMyDrive   Section = "mydrive"
	SectionShared    Section = "shared"
	SectionFavourite Section = "favourite"
	SectionTrash     Section = "trash"
)

// ParseSection maps user input to a Section, falling back to My Drive
func ParseSection(s string) Section {
	switch Section(s) {
	case SectionShared, SectionFavourite, SectionTrash:
		return Section(s)
	default:
		return SectionMyDrive
	}
}

// Title is the heading shown for the section
func (s Section) Title() string {
	switch s {
	case SectionShared:
		return "Shared with me"
	case SectionFavourite:
		return "Favourite"
	case SectionTrash:
		return "Trash"
	default:
		return "My Drive"
	}
}

// ViewMode is a display preference only
type ViewMode string

const (
	ViewGrid ViewMode = "grid"
	ViewList ViewMode = "list"
)

// ParseViewMode maps user input to a ViewMode, falling back to grid
func ParseViewMode(s string) ViewMode {
	if ViewMode(s) == ViewList {
		return ViewList
	}
	return ViewGrid
}
