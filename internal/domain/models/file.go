package models

import (
	"time"
)

// File is a leaf of the hierarchy. Content holds the filesystem path of the stored bytes.
type File struct {
	ID               int64     `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	Content          string    `json:"-" db:"content"`
	OwnerID          int64     `json:"owner_id" db:"owner_id"`
	ParentDataRoomID int64     `json:"parent_data_room_id" db:"parent_data_room_id"`
	ParentFolderID   *int64    `json:"parent_folder_id" db:"parent_folder_id"` // NULL = direct child of the data room
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// FileItems summarizes files as child items
func FileItems(files []File) []ChildItem {
	items := make([]ChildItem, 0, len(files))
	for _, f := range files {
		items = append(items, ChildItem{ID: f.ID, Name: f.Name})
	}
	return items
}
