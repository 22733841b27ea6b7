package repositories

import (
	"context"

	"dataroom/internal/domain/models"
)

// FolderRepository defines data access operations for folders
type FolderRepository interface {
	Create(ctx context.Context, folder *models.Folder) error

	GetByID(ctx context.Context, id int64) (*models.Folder, error)

	// Update persists name and parent fields
	Update(ctx context.Context, folder *models.Folder) error

	// ListChildren lists folders directly under (dataRoomID, parentFolderID).
	// A nil parentFolderID lists the room's root folders.
	ListChildren(ctx context.Context, dataRoomID int64, parentFolderID *int64) ([]models.Folder, error)

	// DeleteByIDs deletes the given folders in one statement
	DeleteByIDs(ctx context.Context, ids []int64) error

	// DeleteByDataRoom deletes every folder in a room
	DeleteByDataRoom(ctx context.Context, dataRoomID int64) error
}
