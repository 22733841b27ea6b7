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

// dataRoomService implements the DataRoomService interface
type dataRoomService struct {
	*hierarchy
	txManager  repositories.TransactionManager
	authorizer services.ResourceAuthorizer
	logger     *slog.Logger
}

// NewDataRoomService creates a new data room service
func NewDataRoomService(
	dataRoomRepo repositories.DataRoomRepository,
	folderRepo repositories.FolderRepository,
	fileRepo repositories.FileRepository,
	store services.ContentStore,
	txManager repositories.TransactionManager,
	authorizer services.ResourceAuthorizer,
	logger *slog.Logger,
) services.DataRoomService {
	return &dataRoomService{
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

// ListDataRooms retrieves all of a user's rooms with their root children
func (s *dataRoomService) ListDataRooms(ctx context.Context, userID int64) ([]models.DataRoomDetail, error) {
	details := []models.DataRoomDetail{}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		rooms, err := s.dataRoomRepo.ListByOwner(ctx, userID)
		if err != nil {
			return err
		}
		for i := range rooms {
			detail, err := s.detail(ctx, &rooms[i])
			if err != nil {
				return err
			}
			details = append(details, *detail)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return details, nil
}

// GetDataRoom retrieves a room with its root files and folders.
// Any root child owned by someone else fails the whole request.
func (s *dataRoomService) GetDataRoom(ctx context.Context, userID, dataRoomID int64) (*models.DataRoomDetail, error) {
	var detail *models.DataRoomDetail

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		room, err := s.authorizer.AuthorizeDataRoom(ctx, userID, dataRoomID)
		if err != nil {
			return err
		}

		folders, err := s.folderRepo.ListChildren(ctx, room.ID, nil)
		if err != nil {
			return err
		}
		files, err := s.fileRepo.ListChildren(ctx, room.ID, nil)
		if err != nil {
			return err
		}

		for _, f := range folders {
			if f.OwnerID != userID {
				return domain.Unauthorized("folder", f.ID)
			}
		}
		for _, f := range files {
			if f.OwnerID != userID {
				return domain.Unauthorized("file", f.ID)
			}
		}

		detail = &models.DataRoomDetail{
			ID:      room.ID,
			Name:    room.Name,
			Files:   models.FileItems(files),
			Folders: models.FolderItems(folders),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return detail, nil
}

// CreateDataRoom creates a new room for the user
func (s *dataRoomService) CreateDataRoom(ctx context.Context, req *services.CreateDataRoomRequest) (*models.DataRoom, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateName(req.Name); err != nil {
		return nil, err
	}

	now := time.Now()
	room := &models.DataRoom{
		Name:      req.Name,
		OwnerID:   req.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.checkNameAvailable(ctx, req.UserID, 0, req.Name); err != nil {
			return err
		}
		return s.dataRoomRepo.Create(ctx, room)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("data room created",
		"id", room.ID,
		"name", room.Name,
		"owner_id", room.OwnerID,
	)

	return room, nil
}

// RenameDataRoom changes a room's name
func (s *dataRoomService) RenameDataRoom(ctx context.Context, userID, dataRoomID int64, req *services.RenameDataRoomRequest) (*models.DataRoomDetail, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateName(req.Name); err != nil {
		return nil, err
	}

	var detail *models.DataRoomDetail

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		room, err := s.authorizer.AuthorizeDataRoom(ctx, userID, dataRoomID)
		if err != nil {
			return err
		}

		if room.Name != req.Name {
			if err := s.checkNameAvailable(ctx, userID, room.ID, req.Name); err != nil {
				return err
			}
			room.Name = req.Name
			room.UpdatedAt = time.Now()
			if err := s.dataRoomRepo.Update(ctx, room); err != nil {
				return err
			}
		}

		detail, err = s.detail(ctx, room)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("data room renamed", "id", dataRoomID, "name", req.Name)

	return detail, nil
}

// DeleteDataRoom removes the room directory and then every row under the room
func (s *dataRoomService) DeleteDataRoom(ctx context.Context, userID, dataRoomID int64) error {
	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		room, err := s.authorizer.AuthorizeDataRoom(ctx, userID, dataRoomID)
		if err != nil {
			return err
		}

		if err := s.store.RemoveSubtree(s.store.DataRoomDir(room.OwnerID, room.ID)); err != nil {
			return err
		}

		return s.purgeDataRoom(ctx, room.ID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("data room deleted", "id", dataRoomID, "owner_id", userID)

	return nil
}

// checkNameAvailable scans the user's rooms for name, ignoring excludeID
func (s *dataRoomService) checkNameAvailable(ctx context.Context, userID, excludeID int64, name string) error {
	rooms, err := s.dataRoomRepo.ListByOwner(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to check for duplicate names: %w", err)
	}
	for _, r := range rooms {
		if r.ID != excludeID && r.Name == name {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a data room named %q already exists", name),
				ResourceType: "data_room",
				ResourceID:   r.ID,
			}
		}
	}
	return nil
}

func (s *dataRoomService) detail(ctx context.Context, room *models.DataRoom) (*models.DataRoomDetail, error) {
	folders, err := s.folderRepo.ListChildren(ctx, room.ID, nil)
	if err != nil {
		return nil, err
	}
	files, err := s.fileRepo.ListChildren(ctx, room.ID, nil)
	if err != nil {
		return nil, err
	}
	return &models.DataRoomDetail{
		ID:      room.ID,
		Name:    room.Name,
		Files:   models.FileItems(files),
		Folders: models.FolderItems(folders),
	}, nil
}

func (s *dataRoomService) validateName(name string) error {
	if err := validation.Validate(name, nameRules(config.MaxDataRoomNameLength)...); err != nil {
		return invalid(fmt.Errorf("name: %w", err))
	}
	return nil
}
