package auth

import (
	"context"
	"fmt"

	"dataroom/internal/domain"
	"dataroom/internal/domain/models"
	"dataroom/internal/domain/repositories"
	"dataroom/internal/domain/services"
)

// OwnerBasedAuthorizer implements ResourceAuthorizer using ownership checks.
// A user can act on an entity iff the entity's owner_id is the user's id.
// Every entity carries its own owner_id, so no parent lookup is needed.
type OwnerBasedAuthorizer struct {
	dataRoomRepo repositories.DataRoomRepository
	folderRepo   repositories.FolderRepository
	fileRepo     repositories.FileRepository
}

var _ services.ResourceAuthorizer = (*OwnerBasedAuthorizer)(nil)

// NewOwnerBasedAuthorizer creates a new ownership-based authorizer
func NewOwnerBasedAuthorizer(
	dataRoomRepo repositories.DataRoomRepository,
	folderRepo repositories.FolderRepository,
	fileRepo repositories.FileRepository,
) *OwnerBasedAuthorizer {
	return &OwnerBasedAuthorizer{
		dataRoomRepo: dataRoomRepo,
		folderRepo:   folderRepo,
		fileRepo:     fileRepo,
	}
}

// AuthorizeDataRoom loads a data room and checks the user owns it
func (a *OwnerBasedAuthorizer) AuthorizeDataRoom(ctx context.Context, userID, dataRoomID int64) (*models.DataRoom, error) {
	room, err := a.dataRoomRepo.GetByID(ctx, dataRoomID)
	if err != nil {
		return nil, fmt.Errorf("get data room for auth: %w", err)
	}
	if room.OwnerID != userID {
		return nil, domain.Unauthorized("data room", dataRoomID)
	}
	return room, nil
}

// AuthorizeFolder loads a folder and checks the user owns it
func (a *OwnerBasedAuthorizer) AuthorizeFolder(ctx context.Context, userID, folderID int64) (*models.Folder, error) {
	folder, err := a.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("get folder for auth: %w", err)
	}
	if folder.OwnerID != userID {
		return nil, domain.Unauthorized("folder", folderID)
	}
	return folder, nil
}

// AuthorizeFile loads a file and checks the user owns it
func (a *OwnerBasedAuthorizer) AuthorizeFile(ctx context.Context, userID, fileID int64) (*models.File, error) {
	file, err := a.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("get file for auth: %w", err)
	}
	if file.OwnerID != userID {
		return nil, domain.Unauthorized("file", fileID)
	}
	return file, nil
}
