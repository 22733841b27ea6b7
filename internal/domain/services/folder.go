package services

import (
	"context"

	"dataroom/internal/domain/models"
)

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	UserID           int64  `json:"-"`
	Name             string `json:"name"`
	ParentDataRoomID int64  `json:"parent_data_room_id"`
	ParentFolderID   *int64 `json:"parent_folder_id,omitempty"` // null for the room root
}

// MoveFolderRequest renames and/or re-parents a folder
type MoveFolderRequest struct {
	Name             string `json:"name"`
	ParentDataRoomID int64  `json:"parent_data_room_id"`
	ParentFolderID   *int64 `json:"parent_folder_id,omitempty"`
}

// FolderService handles folder business logic
type FolderService interface {
	GetFolder(ctx context.Context, userID, folderID int64) (*models.FolderDetail, error)

	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*models.Folder, error)

	MoveFolder(ctx context.Context, userID, folderID int64, req *MoveFolderRequest) (*models.FolderDetail, error)

	// DeleteFolder deletes a folder and all its descendants, on disk first
	DeleteFolder(ctx context.Context, userID, folderID int64) error
}
