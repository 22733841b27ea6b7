package models

import (
	"time"
)

// DataRoom is the top-level container owned by a single user
type DataRoom struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	OwnerID   int64     `json:"owner_id" db:"owner_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// DataRoomDetail is a data room with its direct children (parent_folder_id IS NULL)
type DataRoomDetail struct {
	ID      int64       `json:"id"`
	Name    string      `json:"name"`
	Files   []ChildItem `json:"files"`
	Folders []ChildItem `json:"folders"`
}
