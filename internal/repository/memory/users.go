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

type userRepository struct {
	s *Store
}

// NewUserRepository creates a user repository backed by the store
func NewUserRepository(s *Store) repositories.UserRepository {
	return &userRepository{s: s}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.checkUnique(user); err != nil {
		return err
	}
	user.ID = r.s.newID()
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.NotFound("user", id)
	}
	return &u, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, &domain.NotFoundError{Message: fmt.Sprintf("user %q not found", username)}
}

func (r *userRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := []models.User{}
	for _, u := range r.s.users {
		if u.Username == username || u.Email == email {
			users = append(users, u)
		}
	}
	slices.SortFunc(users, func(a, b models.User) int { return cmp.Compare(a.ID, b.ID) })
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[user.ID]; !ok {
		return domain.NotFound("user", user.ID)
	}
	if err := r.checkUnique(user); err != nil {
		return err
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[id]; !ok {
		return domain.NotFound("user", id)
	}
	for _, room := range r.s.rooms {
		if room.OwnerID == id {
			return fmt.Errorf("user %d still owns data rooms: %w", id, domain.ErrConflict)
		}
	}
	delete(r.s.users, id)
	return nil
}

func (r *userRepository) checkUnique(user *models.User) error {
	for _, u := range r.s.users {
		if u.ID == user.ID {
			continue
		}
		if u.Username == user.Username {
			return &domain.ConflictError{Message: fmt.Sprintf("username %q is already taken", user.Username), ResourceType: "user"}
		}
		if u.Email == user.Email {
			return &domain.ConflictError{Message: fmt.Sprintf("email %q is already registered", user.Email), ResourceType: "user"}
		}
	}
	return nil
}
