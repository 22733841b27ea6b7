package services

import (
	"context"

	"dataroom/internal/domain/models"
)

// LoginRequest auto-provisions unknown usernames
type LoginRequest struct {
	Username string `json:"username"`
}

// RegisterRequest creates a user explicitly
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// UpdateUserRequest replaces username and email
type UpdateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenResponse carries an issued access token
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

// UserService handles identity provisioning and profile management
type UserService interface {
	// Login returns a token for username, creating the user when absent
	Login(ctx context.Context, req *LoginRequest) (*TokenResponse, error)

	// Register creates a new user and returns a token
	Register(ctx context.Context, req *RegisterRequest) (*TokenResponse, error)

	GetUser(ctx context.Context, userID int64) (*models.User, error)

	UpdateUser(ctx context.Context, userID int64, req *UpdateUserRequest) (*models.User, error)

	// DeleteUser removes the user and everything it owns, on disk first
	DeleteUser(ctx context.Context, userID int64) error
}
