package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"

	"dataroom/internal/config"
	"dataroom/internal/domain"
	"dataroom/internal/domain/models"
	"dataroom/internal/domain/repositories"
	"dataroom/internal/domain/services"
)

// provisionedEmailDomain is used for users created on first login
const provisionedEmailDomain = "example.com"

type userService struct {
	*hierarchy
	userRepo  repositories.UserRepository
	issuer    services.TokenIssuer
	txManager repositories.TransactionManager
	logger    *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	dataRoomRepo repositories.DataRoomRepository,
	folderRepo repositories.FolderRepository,
	fileRepo repositories.FileRepository,
	store services.ContentStore,
	issuer services.TokenIssuer,
	txManager repositories.TransactionManager,
	logger *slog.Logger,
) services.UserService {
	return &userService{
		hierarchy: &hierarchy{
			dataRoomRepo: dataRoomRepo,
			folderRepo:   folderRepo,
			fileRepo:     fileRepo,
			store:        store,
		},
		userRepo:  userRepo,
		issuer:    issuer,
		txManager: txManager,
		logger:    logger,
	}
}

// Login returns a token for the username, creating the user on first sight
func (s *userService) Login(ctx context.Context, req *services.LoginRequest) (*services.TokenResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validation.ValidateStruct(req,
		validation.Field(&req.Username, validation.Required, validation.Length(1, config.MaxUsernameLength)),
	); err != nil {
		return nil, invalid(err)
	}

	var (
		user    *models.User
		created bool
	)

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		existing, err := s.userRepo.GetByUsername(ctx, req.Username)
		if err == nil {
			user = existing
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		email, err := s.provisionedEmail(ctx, req.Username)
		if err != nil {
			return err
		}

		now := time.Now()
		user = &models.User{
			Username:  req.Username,
			Email:     email,
			CreatedAt: now,
			UpdatedAt: now,
		}
		created = true
		return s.userRepo.Create(ctx, user)
	})
	if created && errors.Is(err, domain.ErrConflict) {
		// a concurrent first login for the same username won the insert
		if winner, getErr := s.userRepo.GetByUsername(ctx, req.Username); getErr == nil {
			user, err, created = winner, nil, false
		}
	}
	if err != nil {
		return nil, err
	}

	if created {
		s.logger.Info("user provisioned", "id", user.ID, "username", user.Username)
	}

	return s.tokenFor(user)
}

// provisionedEmail returns username@example.com, or a tagged variant when
// another account already registered that address
func (s *userService) provisionedEmail(ctx context.Context, username string) (string, error) {
	email := fmt.Sprintf("%s@%s", username, provisionedEmailDomain)
	holders, err := s.userRepo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return "", fmt.Errorf("failed to check for existing users: %w", err)
	}
	if len(holders) == 0 {
		return email, nil
	}
	tag := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s+%s@%s", username, tag, provisionedEmailDomain), nil
}

// Register creates a user explicitly
func (s *userService) Register(ctx context.Context, req *services.RegisterRequest) (*services.TokenResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validateProfile(&req.Username, &req.Email, req); err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if err := s.checkIdentityAvailable(ctx, 0, req.Username, req.Email); err != nil {
			return err
		}
		return s.userRepo.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "id", user.ID, "username", user.Username)

	return s.tokenFor(user)
}

// GetUser retrieves the caller's profile
func (s *userService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

// UpdateUser replaces username and email
func (s *userService) UpdateUser(ctx context.Context, userID int64, req *services.UpdateUserRequest) (*models.User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validateProfile(&req.Username, &req.Email, req); err != nil {
		return nil, err
	}

	var user *models.User

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		var err error
		user, err = s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := s.checkIdentityAvailable(ctx, userID, req.Username, req.Email); err != nil {
			return err
		}

		user.Username = req.Username
		user.Email = req.Email
		user.UpdatedAt = time.Now()
		return s.userRepo.Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user updated", "id", user.ID, "username", user.Username)

	return user, nil
}

// DeleteUser removes the user's directory and then every owned row
func (s *userService) DeleteUser(ctx context.Context, userID int64) error {
	var roomCount int

	err := s.txManager.ExecTx(ctx, func(ctx context.Context) error {
		if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
			return err
		}

		if err := s.store.RemoveSubtree(s.store.UserDir(userID)); err != nil {
			return err
		}

		rooms, err := s.dataRoomRepo.ListByOwner(ctx, userID)
		if err != nil {
			return err
		}
		roomCount = len(rooms)
		for _, room := range rooms {
			if err := s.purgeDataRoom(ctx, room.ID); err != nil {
				return fmt.Errorf("purge data room %d: %w", room.ID, err)
			}
		}

		return s.userRepo.Delete(ctx, userID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("user deleted", "id", userID, "data_rooms_removed", roomCount)

	return nil
}

// checkIdentityAvailable rejects a username or email held by any user other than excludeID
func (s *userService) checkIdentityAvailable(ctx context.Context, excludeID int64, username, email string) error {
	users, err := s.userRepo.FindByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return fmt.Errorf("failed to check for existing users: %w", err)
	}
	for _, u := range users {
		if u.ID == excludeID {
			continue
		}
		msg := fmt.Sprintf("username %q is already taken", username)
		if u.Username != username {
			msg = fmt.Sprintf("email %q is already registered", email)
		}
		return &domain.ConflictError{Message: msg, ResourceType: "user", ResourceID: u.ID}
	}
	return nil
}

// validateProfile validates the username and email fields of a register or update request
func (s *userService) validateProfile(username, email *string, req any) error {
	err := validation.ValidateStruct(req,
		validation.Field(username, validation.Required, validation.Length(1, config.MaxUsernameLength)),
		validation.Field(email, validation.Required, validation.Length(1, config.MaxEmailLength), is.EmailFormat),
	)
	if err != nil {
		return invalid(err)
	}
	return nil
}

func (s *userService) tokenFor(user *models.User) (*services.TokenResponse, error) {
	token, err := s.issuer.IssueToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &services.TokenResponse{AccessToken: token, User: user}, nil
}
