package repositories

import (
	"context"

	"dataroom/internal/domain/models"
)

// DataRoomRepository defines data access operations for data rooms
type DataRoomRepository interface {
	Create(ctx context.Context, room *models.DataRoom) error

	// GetByID retrieves a data room by ID regardless of owner
	GetByID(ctx context.Context, id int64) (*models.DataRoom, error)

	// ListByOwner lists the rooms owned by a user, ordered by id
	ListByOwner(ctx context.Context, ownerID int64) ([]models.DataRoom, error)

	// Update updates the room name
	Update(ctx context.Context, room *models.DataRoom) error

	// Delete deletes the room row only; contents must be removed first
	Delete(ctx context.Context, id int64) error
}
