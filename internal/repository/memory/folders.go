package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"dataroom/internal/domain"
	"dataroom/internal/domain/models"
	"dataroom/internal/domain/repositories"
)

type folderRepository struct {
	s *Store
}

// NewFolderRepository creates a folder repository backed by the store
func NewFolderRepository(s *Store) repositories.FolderRepository {
	return &folderRepository{s: s}
}

func (r *folderRepository) Create(ctx context.Context, folder *models.Folder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.check(folder); err != nil {
		return err
	}
	folder.ID = r.s.newID()
	stored := *folder
	stored.ParentFolderID = clonePtr(folder.ParentFolderID)
	r.s.folders[folder.ID] = stored
	return nil
}

func (r *folderRepository) GetByID(ctx context.Context, id int64) (*models.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.folders[id]
	if !ok {
		return nil, domain.NotFound("folder", id)
	}
	f.ParentFolderID = clonePtr(f.ParentFolderID)
	return &f, nil
}

func (r *folderRepository) Update(ctx context.Context, folder *models.Folder) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.folders[folder.ID]; !ok {
		return domain.NotFound("folder", folder.ID)
	}
	if err := r.check(folder); err != nil {
		return err
	}
	stored := *folder
	stored.ParentFolderID = clonePtr(folder.ParentFolderID)
	r.s.folders[folder.ID] = stored
	return nil
}

func (r *folderRepository) ListChildren(ctx context.Context, dataRoomID int64, parentFolderID *int64) ([]models.Folder, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	folders := []models.Folder{}
	for _, f := range r.s.folders {
		if f.ParentDataRoomID == dataRoomID && sameParent(f.ParentFolderID, parentFolderID) {
			f.ParentFolderID = clonePtr(f.ParentFolderID)
			folders = append(folders, f)
		}
	}
	slices.SortFunc(folders, func(a, b models.Folder) int { return cmp.Compare(a.ID, b.ID) })
	return folders, nil
}

func (r *folderRepository) DeleteByIDs(ctx context.Context, ids []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	// Same end-of-statement check as the self-referencing foreign key
	for _, f := range r.s.folders {
		if f.ParentFolderID != nil && slices.Contains(ids, *f.ParentFolderID) && !slices.Contains(ids, f.ID) {
			return fmt.Errorf("folder %d still has children: %w", *f.ParentFolderID, domain.ErrConflict)
		}
	}
	for _, f := range r.s.files {
		if f.ParentFolderID != nil && slices.Contains(ids, *f.ParentFolderID) {
			return fmt.Errorf("folder %d still has files: %w", *f.ParentFolderID, domain.ErrConflict)
		}
	}
	for _, id := range ids {
		delete(r.s.folders, id)
	}
	return nil
}

func (r *folderRepository) DeleteByDataRoom(ctx context.Context, dataRoomID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, f := range r.s.folders {
		if f.ParentDataRoomID == dataRoomID {
			delete(r.s.folders, id)
		}
	}
	return nil
}

// check mirrors the foreign keys and the sibling name indexes
func (r *folderRepository) check(folder *models.Folder) error {
	if _, ok := r.s.rooms[folder.ParentDataRoomID]; !ok {
		return &domain.ValidationError{Message: "parent data room or folder does not exist"}
	}
	if folder.ParentFolderID != nil {
		if _, ok := r.s.folders[*folder.ParentFolderID]; !ok {
			return &domain.ValidationError{Message: "parent data room or folder does not exist"}
		}
	}
	for _, other := range r.s.folders {
		if other.ID != folder.ID &&
			other.ParentDataRoomID == folder.ParentDataRoomID &&
			sameParent(other.ParentFolderID, folder.ParentFolderID) &&
			other.Name == folder.Name {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists in this location", folder.Name),
				ResourceType: "folder",
			}
		}
	}
	return nil
}
