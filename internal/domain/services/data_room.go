package services

import (
	"context"

	"dataroom/internal/domain/models"
)

// CreateDataRoomRequest represents a data room creation request
type CreateDataRoomRequest struct {
	UserID int64  `json:"-"`
	Name   string `json:"name"`
}

// RenameDataRoomRequest represents a data room rename request
type RenameDataRoomRequest struct {
	Name string `json:"name"`
}

// DataRoomService defines business logic operations for data rooms
type DataRoomService interface {
	// ListDataRooms returns the user's rooms with their direct children
	ListDataRooms(ctx context.Context, userID int64) ([]models.DataRoomDetail, error)

	GetDataRoom(ctx context.Context, userID, dataRoomID int64) (*models.DataRoomDetail, error)

	CreateDataRoom(ctx context.Context, req *CreateDataRoomRequest) (*models.DataRoom, error)

	RenameDataRoom(ctx context.Context, userID, dataRoomID int64, req *RenameDataRoomRequest) (*models.DataRoomDetail, error)

	// DeleteDataRoom removes the room directory, then every descendant row
	DeleteDataRoom(ctx context.Context, userID, dataRoomID int64) error
}
