package repositories

import (
	"context"

	"dataroom/internal/domain/models"
)

// UserRepository defines data access operations for users
type UserRepository interface {
	// Create inserts a user; returns a ConflictError when username or email is taken
	Create(ctx context.Context, user *models.User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByUsername retrieves a user by exact username
	GetByUsername(ctx context.Context, username string) (*models.User, error)

	// FindByUsernameOrEmail lists users holding either value
	FindByUsernameOrEmail(ctx context.Context, username, email string) ([]models.User, error)

	// Update updates username and email
	Update(ctx context.Context, user *models.User) error

	// Delete deletes the user row only; owned rooms must be removed first
	Delete(ctx context.Context, id int64) error
}
