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

type dataRoomRepository struct {
	s *Store
}

// NewDataRoomRepository creates a data room repository backed by the store
func NewDataRoomRepository(s *Store) repositories.DataRoomRepository {
	return &dataRoomRepository{s: s}
}

func (r *dataRoomRepository) Create(ctx context.Context, room *models.DataRoom) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[room.OwnerID]; !ok {
		return domain.NotFound("user", room.OwnerID)
	}
	if err := r.checkUnique(room); err != nil {
		return err
	}
	room.ID = r.s.newID()
	r.s.rooms[room.ID] = *room
	return nil
}

func (r *dataRoomRepository) GetByID(ctx context.Context, id int64) (*models.DataRoom, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	room, ok := r.s.rooms[id]
	if !ok {
		return nil, domain.NotFound("data room", id)
	}
	return &room, nil
}

func (r *dataRoomRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.DataRoom, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	rooms := []models.DataRoom{}
	for _, room := range r.s.rooms {
		if room.OwnerID == ownerID {
			rooms = append(rooms, room)
		}
	}
	slices.SortFunc(rooms, func(a, b models.DataRoom) int { return cmp.Compare(a.ID, b.ID) })
	return rooms, nil
}

func (r *dataRoomRepository) Update(ctx context.Context, room *models.DataRoom) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.rooms[room.ID]; !ok {
		return domain.NotFound("data room", room.ID)
	}
	if err := r.checkUnique(room); err != nil {
		return err
	}
	r.s.rooms[room.ID] = *room
	return nil
}

func (r *dataRoomRepository) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.rooms[id]; !ok {
		return domain.NotFound("data room", id)
	}
	for _, f := range r.s.folders {
		if f.ParentDataRoomID == id {
			return fmt.Errorf("data room %d is not empty: %w", id, domain.ErrConflict)
		}
	}
	for _, f := range r.s.files {
		if f.ParentDataRoomID == id {
			return fmt.Errorf("data room %d is not empty: %w", id, domain.ErrConflict)
		}
	}
	delete(r.s.rooms, id)
	return nil
}

func (r *dataRoomRepository) checkUnique(room *models.DataRoom) error {
	for _, other := range r.s.rooms {
		if other.ID != room.ID && other.OwnerID == room.OwnerID && other.Name == room.Name {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a data room named %q already exists", room.Name),
				ResourceType: "data_room",
				ResourceID:   other.ID,
			}
		}
	}
	return nil
}
