package services

import (
	"context"
	"io"

	"dataroom/internal/domain/models"
)

// CreateFileRequest represents an upload
type CreateFileRequest struct {
	UserID           int64
	Name             string // defaults to Filename when empty
	ParentDataRoomID int64
	ParentFolderID   *int64
	Filename         string
	Content          io.Reader
}

// MoveFileRequest renames and/or re-parents a file
type MoveFileRequest struct {
	Name             string `json:"name"`
	ParentDataRoomID int64  `json:"parent_data_room_id"`
	ParentFolderID   *int64 `json:"parent_folder_id,omitempty"`
}

// FileService handles file records and their stored bytes
type FileService interface {
	GetFile(ctx context.Context, userID, fileID int64) (*models.File, error)

	// DownloadFile returns the file record and a reader over its bytes.
	// The caller must close the reader.
	DownloadFile(ctx context.Context, userID, fileID int64) (*models.File, io.ReadCloser, error)

	CreateFile(ctx context.Context, req *CreateFileRequest) (*models.File, error)

	MoveFile(ctx context.Context, userID, fileID int64, req *MoveFileRequest) (*models.File, error)

	DeleteFile(ctx context.Context, userID, fileID int64) error
}
