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

type fileRepository struct {
	s *Store
}

// NewFileRepository creates a file repository backed by the store
func NewFileRepository(s *Store) repositories.FileRepository {
	return &fileRepository{s: s}
}

func (r *fileRepository) Create(ctx context.Context, file *models.File) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.check(file); err != nil {
		return err
	}
	file.ID = r.s.newID()
	r.put(file)
	return nil
}

func (r *fileRepository) GetByID(ctx context.Context, id int64) (*models.File, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	f, ok := r.s.files[id]
	if !ok {
		return nil, domain.NotFound("file", id)
	}
	f.ParentFolderID = clonePtr(f.ParentFolderID)
	return &f, nil
}

func (r *fileRepository) Update(ctx context.Context, file *models.File) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.files[file.ID]; !ok {
		return domain.NotFound("file", file.ID)
	}
	if err := r.check(file); err != nil {
		return err
	}
	r.put(file)
	return nil
}

func (r *fileRepository) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.files[id]; !ok {
		return domain.NotFound("file", id)
	}
	delete(r.s.files, id)
	return nil
}

func (r *fileRepository) ListChildren(ctx context.Context, dataRoomID int64, parentFolderID *int64) ([]models.File, error) {
	return r.list(func(f models.File) bool {
		return f.ParentDataRoomID == dataRoomID && sameParent(f.ParentFolderID, parentFolderID)
	}), nil
}

func (r *fileRepository) ListByFolders(ctx context.Context, folderIDs []int64) ([]models.File, error) {
	return r.list(func(f models.File) bool {
		return f.ParentFolderID != nil && slices.Contains(folderIDs, *f.ParentFolderID)
	}), nil
}

func (r *fileRepository) DeleteByFolders(ctx context.Context, folderIDs []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, f := range r.s.files {
		if f.ParentFolderID != nil && slices.Contains(folderIDs, *f.ParentFolderID) {
			delete(r.s.files, id)
		}
	}
	return nil
}

func (r *fileRepository) DeleteByDataRoom(ctx context.Context, dataRoomID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, f := range r.s.files {
		if f.ParentDataRoomID == dataRoomID {
			delete(r.s.files, id)
		}
	}
	return nil
}

func (r *fileRepository) list(match func(models.File) bool) []models.File {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	files := []models.File{}
	for _, f := range r.s.files {
		if match(f) {
			f.ParentFolderID = clonePtr(f.ParentFolderID)
			files = append(files, f)
		}
	}
	slices.SortFunc(files, func(a, b models.File) int { return cmp.Compare(a.ID, b.ID) })
	return files
}

func (r *fileRepository) put(file *models.File) {
	stored := *file
	stored.ParentFolderID = clonePtr(file.ParentFolderID)
	r.s.files[file.ID] = stored
}

// check mirrors the foreign keys and the sibling name indexes
func (r *fileRepository) check(file *models.File) error {
	if _, ok := r.s.rooms[file.ParentDataRoomID]; !ok {
		return &domain.ValidationError{Message: "parent data room or folder does not exist"}
	}
	if file.ParentFolderID != nil {
		if _, ok := r.s.folders[*file.ParentFolderID]; !ok {
			return &domain.ValidationError{Message: "parent data room or folder does not exist"}
		}
	}
	for _, other := range r.s.files {
		if other.ID != file.ID &&
			other.ParentDataRoomID == file.ParentDataRoomID &&
			sameParent(other.ParentFolderID, file.ParentFolderID) &&
			other.Name == file.Name {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a file named %q already exists in this location", file.Name),
				ResourceType: "file",
			}
		}
	}
	return nil
}
