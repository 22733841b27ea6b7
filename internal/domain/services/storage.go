package services

import (
	"io"
)

// ContentStore maps a file's ownership chain to a physical location and
// performs the filesystem half of every paired DB/filesystem mutation.
type ContentStore interface {
	// PathFor returns {root}/user-{uid}/data-room-{roomID}/folder-{folderID|None}/{leafName}
	PathFor(userID, dataRoomID int64, folderID *int64, leafName string) (string, error)

	// Store writes content to PathFor(...) without ever exposing a partial file there
	Store(userID, dataRoomID int64, folderID *int64, filename string, content io.Reader) (string, error)

	// Retrieve opens stored bytes; domain.ErrNotFound when the path is missing
	Retrieve(path string) (io.ReadCloser, error)

	// Remove deletes one stored file; missing files are not an error
	Remove(path string) error

	// Relocate moves a file or directory; a missing source is not an error
	Relocate(from, to string) error

	// RemoveSubtree recursively deletes a directory; missing directories are not an error
	RemoveSubtree(dir string) error

	UserDir(userID int64) string
	DataRoomDir(userID, dataRoomID int64) string
	FolderDir(userID, dataRoomID int64, folderID *int64) string
}
