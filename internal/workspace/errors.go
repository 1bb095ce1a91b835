package workspace

import "errors"

var (
	// ErrNoIdentity means the session carries no resolved user id. Nothing is sent to the store.
	ErrNoIdentity = errors.New("workspace: no resolved user identity")
	// ErrEmptyFolderName rejects a blank folder name before any store call
	ErrEmptyFolderName = errors.New("workspace: folder name is required")
	// ErrUploadInProgress is returned when an upload is requested while one is running
	ErrUploadInProgress = errors.New("workspace: an upload is already in progress")
	// ErrUnknownEntity means the id is in neither the cache nor the trash
	ErrUnknownEntity = errors.New("workspace: unknown file or folder")
	// ErrNoFiles rejects an upload request with an empty batch
	ErrNoFiles = errors.New("workspace: no files to upload")
)
