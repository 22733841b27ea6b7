package models

import (
	"time"
)

// Folder is a node in a tree rooted at a data room.
// Children are always looked up by parent_folder_id, never embedded.
type Folder struct {
	ID               int64     `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	OwnerID          int64     `json:"owner_id" db:"owner_id"`
	ParentDataRoomID int64     `json:"parent_data_room_id" db:"parent_data_room_id"`
	ParentFolderID   *int64    `json:"parent_folder_id" db:"parent_folder_id"` // NULL = direct child of the data room
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// FolderDetail is a folder together with its immediate children
type FolderDetail struct {
	ID               int64       `json:"id"`
	Name             string      `json:"name"`
	ParentDataRoomID int64       `json:"parent_data_room_id"`
	ParentFolderID   *int64      `json:"parent_folder_id"`
	OwnerID          int64       `json:"owner_id"`
	ChildrenFolders  []ChildItem `json:"children_folders"`
	ChildrenFiles    []ChildItem `json:"children_files"`
}

// ChildItem is the id/name summary used in child listings
type ChildItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// FolderItems summarizes folders as child items
func FolderItems(folders []Folder) []ChildItem {
	items := make([]ChildItem, 0, len(folders))
	for _, f := range folders {
		items = append(items, ChildItem{ID: f.ID, Name: f.Name})
	}
	return items
}
