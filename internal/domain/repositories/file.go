package repositories

import (
	"context"

	"dataroom/internal/domain/models"
)

// FileRepository defines data access operations for file records
type FileRepository interface {
	Create(ctx context.Context, file *models.File) error

	GetByID(ctx context.Context, id int64) (*models.File, error)

	// Update persists name, content and parent fields
	Update(ctx context.Context, file *models.File) error

	Delete(ctx context.Context, id int64) error

	// ListChildren lists files directly under (dataRoomID, parentFolderID)
	ListChildren(ctx context.Context, dataRoomID int64, parentFolderID *int64) ([]models.File, error)

	// ListByFolders lists files whose parent folder is one of folderIDs
	ListByFolders(ctx context.Context, folderIDs []int64) ([]models.File, error)

	// DeleteByFolders deletes files whose parent folder is one of folderIDs
	DeleteByFolders(ctx context.Context, folderIDs []int64) error

	// DeleteByDataRoom deletes every file in a room
	DeleteByDataRoom(ctx context.Context, dataRoomID int64) error
}
