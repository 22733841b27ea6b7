package service

import (
	"context"
	"fmt"
	"io"
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

type fileService struct {
	fileRepo   repositories.FileRepository
	store      services.ContentStore
	txManager  repositories.TransactionManager
	authorizer services.ResourceAuthorizer
	logger     *slog.Logger
}

// NewFileService creates a new file service
func NewFileService(
	fileRepo repositories.FileRepository,
	store services.ContentStore,
	txManager repositories.TransactionManager,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) services.FileService {
	return &fileService{
		fileRepo:   fileRepo,
		store:      store,
		txManager:  txManager,
		authorizer: authorizer,
		logger:     logger,
	}
}

// GetFile retrieves file metadata
func (s *fileService) GetFile(ctx context.Context, userID, fileID int64) (*models.File, error) {
	return s.authorizer.AuthorizeFile(ctx, userID, fileID)
}

// DownloadFile opens the stored bytes of a file the user owns
func (s *fileService) DownloadFile(ctx context.Context, userID, fileID int64) (*models.File, io.ReadCloser, error) {
	file, err := s.authorizer.AuthorizeFile(ctx, userID, fileID)
	if err != nil {
		return nil, nil, err
	}

	rc, err := s.store.Retrieve(file.Content)
	if err != nil {
		s.logger.Warn("stored content unavailable",
			"file_id", file.ID,
			"path", file.Content,
			"error", err,
		)
		return nil, nil, err
	}

	return file, rc, nil
}

// CreateFile records a file and writes its bytes. The row is inserted in the
// open transaction before the bytes are written, and the bytes are removed
// again if the transaction does not commit.
func (s *fileService) CreateFile(ctx context.Context, req *services.CreateFileRequest) (*models.File, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		req.Name = strings.TrimSpace(req.Filename)
	}
	if err := s.validateCreateRequest(req); err != nil {
		return nil, invalid(err)
	}

	now := time.Now()
	file := &models.File{
		Name:             req.Name,
		OwnerID:          req.UserID,
		ParentDataRoomID: req.ParentDataRoomID,
		ParentFolderID:   req.ParentFolderID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	stored := false
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if _, err := resolveTarget(ctx, s.authorizer, req.UserID, req.ParentDataRoomID, req.ParentFolderID); err != nil {
			return err
		}
		if err := s.checkNameAvailable(ctx, req.ParentDataRoomID, req.ParentFolderID, 0, req.Name); err != nil {
			return err
		}

		path, err := s.store.PathFor(req.UserID, req.ParentDataRoomID, req.ParentFolderID, req.Name)
		if err != nil {
			return err
		}
		file.Content = path

		if err := s.fileRepo.Create(ctx, file); err != nil {
			return err
		}

		if _, err := s.store.Store(req.UserID, req.ParentDataRoomID, req.ParentFolderID, req.Name, req.Content); err != nil {
			return err
		}
		stored = true
		return nil
	})
	if err != nil {
		if stored {
			if rmErr := s.store.Remove(file.Content); rmErr != nil {
				s.logger.Error("failed to remove content after aborted upload",
					"path", file.Content,
					"error", rmErr,
				)
			}
		}
		return nil, err
	}

	s.logger.Info("file created",
		"id", file.ID,
		"name", file.Name,
		"data_room_id", file.ParentDataRoomID,
		"parent_folder_id", file.ParentFolderID,
		"owner_id", file.OwnerID,
	)

	return file, nil
}

// MoveFile renames and/or re-parents a file and relocates its bytes
func (s *fileService) MoveFile(ctx context.Context, userID, fileID int64, req *services.MoveFileRequest) (*models.File, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateMoveRequest(req); err != nil {
		return nil, invalid(err)
	}

	var (
		file  *models.File
		moved []relocation
	)

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		file, err = s.authorizer.AuthorizeFile(ctx, userID, fileID)
		if err != nil {
			return err
		}
		if _, err := resolveTarget(ctx, s.authorizer, userID, req.ParentDataRoomID, req.ParentFolderID); err != nil {
			return err
		}
		if err := s.checkNameAvailable(ctx, req.ParentDataRoomID, req.ParentFolderID, file.ID, req.Name); err != nil {
			return err
		}

		newPath, err := s.store.PathFor(file.OwnerID, req.ParentDataRoomID, req.ParentFolderID, req.Name)
		if err != nil {
			return err
		}
		oldPath := file.Content

		file.Name = req.Name
		file.ParentDataRoomID = req.ParentDataRoomID
		file.ParentFolderID = req.ParentFolderID
		file.Content = newPath
		file.UpdatedAt = time.Now()
		if err := s.fileRepo.Update(ctx, file); err != nil {
			return err
		}

		if err := s.store.Relocate(oldPath, newPath); err != nil {
			return err
		}
		moved = append(moved, relocation{from: oldPath, to: newPath})
		return nil
	})
	if err != nil {
		for _, undoErr := range undoRelocations(s.store, moved) {
			s.logger.Error("failed to restore file content after aborted move",
				"file_id", fileID,
				"error", undoErr,
			)
		}
		return nil, err
	}

	s.logger.Info("file moved",
		"id", file.ID,
		"name", file.Name,
		"data_room_id", file.ParentDataRoomID,
		"parent_folder_id", file.ParentFolderID,
	)

	return file, nil
}

// DeleteFile removes the stored bytes and then the row
func (s *fileService) DeleteFile(ctx context.Context, userID, fileID int64) error {
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		file, err := s.authorizer.AuthorizeFile(ctx, userID, fileID)
		if err != nil {
			return err
		}
		if err := s.store.Remove(file.Content); err != nil {
			return err
		}
		return s.fileRepo.Delete(ctx, file.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("file deleted", "id", fileID, "owner_id", userID)

	return nil
}

// checkNameAvailable scans sibling files for name, ignoring excludeID
func (s *fileService) checkNameAvailable(ctx context.Context, dataRoomID int64, parentFolderID *int64, excludeID int64, name string) error {
	siblings, err := s.fileRepo.ListChildren(ctx, dataRoomID, parentFolderID)
	if err != nil {
		return fmt.Errorf("failed to check for duplicate names: %w", err)
	}
	for _, sibling := range siblings {
		if sibling.ID != excludeID && sibling.Name == name {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a file named %q already exists in this location", name),
				ResourceType: "file",
				ResourceID:   sibling.ID,
			}
		}
	}
	return nil
}

func (s *fileService) validateCreateRequest(req *services.CreateFileRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, nameRules(config.MaxFileNameLength)...),
		validation.Field(&req.ParentDataRoomID, validation.Required),
		validation.Field(&req.Content, validation.NotNil.Error("file content is required")),
	)
}

func (s *fileService) validateMoveRequest(req *services.MoveFileRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.Name, nameRules(config.MaxFileNameLength)...),
		validation.Field(&req.ParentDataRoomID, validation.Required),
	)
}
