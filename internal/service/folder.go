package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"dataroom/internal/config"
	"dataroom/internal/domain"
	"dataroom/internal/domain/models"
	"dataroom/internal/domain/repositories"
	"dataroom/internal/domain/services"
)

type folderService struct {
	*hierarchy
	txManager  repositories.TransactionManager
	authorizer services.ResourceAuthorizer
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	dataRoomRepo repositories.DataRoomRepository,
	folderRepo repositories.FolderRepository,
	fileRepo repositories.FileRepository,
	store services.ContentStore,
	txManager repositories.TransactionManager,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) services.FolderService {
	return &folderService{
		hierarchy: &hierarchy{
			dataRoomRepo: dataRoomRepo,
			folderRepo:   folderRepo,
			fileRepo:     fileRepo,
			store:        store,
		},
		txManager:  txManager,
		authorizer: authorizer,
		logger:     logger,
	}
}

// GetFolder retrieves a folder with its immediate children
func (s *folderService) GetFolder(ctx context.Context, userID, folderID int64) (*models.FolderDetail, error) {
	var detail *models.FolderDetail

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		folder, err := s.authorizer.AuthorizeFolder(ctx, userID, folderID)
		if err != nil {
			return err
		}
		detail, err = s.detail(ctx, folder)
		return err
	})
	if err != nil {
		return nil, err
	}

	return detail, nil
}

// CreateFolder creates a folder at the room root or under a parent folder
func (s *folderService) CreateFolder(ctx context.Context, req *services.CreateFolderRequest) (*models.Folder, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateCreateRequest(req); err != nil {
		return nil, invalid(err)
	}

	now := time.Now()
	folder := &models.Folder{
		Name:             req.Name,
		OwnerID:          req.UserID,
		ParentDataRoomID: req.ParentDataRoomID,
		ParentFolderID:   req.ParentFolderID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if _, err := s.resolveTarget(ctx, req.UserID, req.ParentDataRoomID, req.ParentFolderID); err != nil {
			return err
		}
		if err := s.checkNameAvailable(ctx, req.ParentDataRoomID, req.ParentFolderID, 0, req.Name); err != nil {
			return err
		}
		return s.folderRepo.Create(ctx, folder)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("folder created",
		"id", folder.ID,
		"name", folder.Name,
		"data_room_id", folder.ParentDataRoomID,
		"parent_folder_id", folder.ParentFolderID,
		"owner_id", folder.OwnerID,
	)

	return folder, nil
}

// MoveFolder renames and/or re-parents a folder. Moving to another room
// re-homes every descendant and relocates their directories on disk.
func (s *folderService) MoveFolder(ctx context.Context, userID, folderID int64, req *services.MoveFolderRequest) (*models.FolderDetail, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateMoveRequest(req); err != nil {
		return nil, invalid(err)
	}

	var (
		detail *models.FolderDetail
		moved  []relocation
	)

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		folder, err := s.authorizer.AuthorizeFolder(ctx, userID, folderID)
		if err != nil {
			return err
		}
		parent, err := s.resolveTarget(ctx, userID, req.ParentDataRoomID, req.ParentFolderID)
		if err != nil {
			return err
		}
		if parent != nil {
			if err := s.validateNoCircularReference(ctx, folder.ID, parent); err != nil {
				return err
			}
		}
		if err := s.checkNameAvailable(ctx, req.ParentDataRoomID, req.ParentFolderID, folder.ID, req.Name); err != nil {
			return err
		}

		oldRoomID := folder.ParentDataRoomID
		crossRoom := oldRoomID != req.ParentDataRoomID

		// Collect before any row changes room
		var ids []int64
		if crossRoom {
			if ids, err = s.subtree(ctx, oldRoomID, folder.ID); err != nil {
				return err
			}
		}

		folder.Name = req.Name
		folder.ParentDataRoomID = req.ParentDataRoomID
		folder.ParentFolderID = req.ParentFolderID
		folder.UpdatedAt = time.Now()
		if err := s.folderRepo.Update(ctx, folder); err != nil {
			return err
		}

		if crossRoom {
			moved, err = s.rehome(ctx, folder.OwnerID, oldRoomID, req.ParentDataRoomID, ids)
			if err != nil {
				return err
			}
		}

		detail, err = s.detail(ctx, folder)
		return err
	})
	if err != nil {
		for _, undoErr := range undoRelocations(s.store, moved) {
			s.logger.Error("failed to restore folder content after aborted move",
				"folder_id", folderID,
				"error", undoErr,
			)
		}
		return nil, err
	}

	s.logger.Info("folder moved",
		"id", folderID,
		"name", detail.Name,
		"data_room_id", detail.ParentDataRoomID,
		"parent_folder_id", detail.ParentFolderID,
	)

	return detail, nil
}

// rehome moves the subtree ids (root first) from one room to another: rows
// first, then each folder-{id} directory. Returns the directory moves made.
func (s *folderService) rehome(ctx context.Context, ownerID, fromRoomID, toRoomID int64, ids []int64) ([]relocation, error) {
	for _, id := range ids[1:] {
		child, err := s.folderRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		child.ParentDataRoomID = toRoomID
		child.UpdatedAt = time.Now()
		if err := s.folderRepo.Update(ctx, child); err != nil {
			return nil, err
		}
	}

	files, err := s.fileRepo.ListByFolders(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range files {
		f := &files[i]
		path, err := s.store.PathFor(ownerID, toRoomID, f.ParentFolderID, f.Name)
		if err != nil {
			return nil, err
		}
		f.ParentDataRoomID = toRoomID
		f.Content = path
		f.UpdatedAt = time.Now()
		if err := s.fileRepo.Update(ctx, f); err != nil {
			return nil, err
		}
	}

	var moved []relocation
	for _, id := range ids {
		from := s.store.FolderDir(ownerID, fromRoomID, &id)
		to := s.store.FolderDir(ownerID, toRoomID, &id)
		if err := s.store.Relocate(from, to); err != nil {
			return moved, err
		}
		moved = append(moved, relocation{from: from, to: to})
	}

	return moved, nil
}

// DeleteFolder deletes a folder and all its descendants.
// Every folder-{id} directory in the subtree is removed before any row.
func (s *folderService) DeleteFolder(ctx context.Context, userID, folderID int64) error {
	var count int

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		folder, err := s.authorizer.AuthorizeFolder(ctx, userID, folderID)
		if err != nil {
			return err
		}

		ids, err := s.subtree(ctx, folder.ParentDataRoomID, folder.ID)
		if err != nil {
			return err
		}
		count = len(ids)

		for _, id := range ids {
			if err := s.store.RemoveSubtree(s.store.FolderDir(folder.OwnerID, folder.ParentDataRoomID, &id)); err != nil {
				return err
			}
		}

		if err := s.fileRepo.DeleteByFolders(ctx, ids); err != nil {
			return err
		}
		return s.folderRepo.DeleteByIDs(ctx, ids)
	})
	if err != nil {
		return err
	}

	s.logger.Info("folder deleted", "id", folderID, "folders_removed", count)

	return nil
}

// resolveTarget checks the user owns the target room and, when given, the
// parent folder, and that the parent lives in that room.
func (s *folderService) resolveTarget(ctx context.Context, userID, dataRoomID int64, parentFolderID *int64) (*models.Folder, error) {
	return resolveTarget(ctx, s.authorizer, userID, dataRoomID, parentFolderID)
}

// validateNoCircularReference rejects a parent that is the folder itself or
// one of its descendants by walking the parent's ancestor chain.
func (s *folderService) validateNoCircularReference(ctx context.Context, folderID int64, parent *models.Folder) error {
	current := parent
	for {
		if current.ID == folderID {
			return &domain.ValidationError{Message: "cannot move a folder into itself or one of its descendants"}
		}
		if current.ParentFolderID == nil {
			return nil
		}
		next, err := s.folderRepo.GetByID(ctx, *current.ParentFolderID)
		if err != nil {
			return fmt.Errorf("walk folder ancestors: %w", err)
		}
		current = next
	}
}

// checkNameAvailable scans sibling folders for name, ignoring excludeID
func (s *folderService) checkNameAvailable(ctx context.Context, dataRoomID int64, parentFolderID *int64, excludeID int64, name string) error {
	siblings, err := s.folderRepo.ListChildren(ctx, dataRoomID, parentFolderID)
	if err != nil {
		return fmt.Errorf("failed to check for duplicate names: %w", err)
	}
	for _, sibling := range siblings {
		if sibling.ID != excludeID && sibling.Name == name {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists in this location", name),
				ResourceType: "folder",
				ResourceID:   sibling.ID,
			}
		}
	}
	return nil
}

func (s *folderService) detail(ctx context.Context, folder *models.Folder) (*models.FolderDetail, error) {
	folders, err := s.folderRepo.ListChildren(ctx, folder.ParentDataRoomID, &folder.ID)
	if err != nil {
		return nil, err
	}
	files, err := s.fileRepo.ListChildren(ctx, folder.ParentDataRoomID, &folder.ID)
	if err != nil {
		return nil, err
	}
	return &models.FolderDetail{
		ID:               folder.ID,
		Name:             folder.Name,
		ParentDataRoomID: folder.ParentDataRoomID,
		ParentFolderID:   folder.ParentFolderID,
		OwnerID:          folder.OwnerID,
		ChildrenFolders:  models.FolderItems(folders),
		ChildrenFiles:    models.FileItems(files),
	}, nil
}

// validateCreateRequest validates a folder creation request
func (s *folderService) validateCreateRequest(req *services.CreateFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, nameRules(config.MaxFolderNameLength)...),
		validation.Field(&req.ParentDataRoomID, validation.Required),
	)
}

// validateMoveRequest validates a folder move request
func (s *folderService) validateMoveRequest(req *services.MoveFolderRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, nameRules(config.MaxFolderNameLength)...),
		validation.Field(&req.ParentDataRoomID, validation.Required),
	)
}

// resolveTarget is shared by folder and file placement
func resolveTarget(ctx context.Context, authorizer services.ResourceAuthorizer, userID, dataRoomID int64, parentFolderID *int64) (*models.Folder, error) {
	if _, err := authorizer.AuthorizeDataRoom(ctx, userID, dataRoomID); err != nil {
		return nil, err
	}
	if parentFolderID == nil {
		return nil, nil
	}

	parent, err := authorizer.AuthorizeFolder(ctx, userID, *parentFolderID)
	if err != nil {
		return nil, err
	}
	if parent.ParentDataRoomID != dataRoomID {
		return nil, &domain.ValidationError{
			Message: fmt.Sprintf("parent folder %d is not in data room %d", parent.ID, dataRoomID),
		}
	}
	return parent, nil
}
