package store

import (
	"github.com/google/uuid"
)

var (
	fileSpace   = uuid.MustParse("5b0f3c1e-8f42-4d1a-9a57-0c7a54e3b1f2")
	folderSpace = uuid.MustParse("a3d9e7b4-21c6-4f08-b5e2-6f1d8c9a0e37")
)

// FileID is the stable id of the file stored under key
func FileID(key string) string {
	return uuid.NewSHA1(fileSpace, []byte(key)).String()
}

// FolderID is the stable id of the folder at fullPath for a user
func FolderID(userID, fullPath string) string {
	return uuid.NewSHA1(folderSpace, []byte(userID+"/"+fullPath)).String()
}
