package services

import (
	"context"

	"dataroom/internal/domain/models"
)

// ResourceAuthorizer checks if a user can act on an entity.
// The only rule is ownership: E.owner_id == userID.
//
// Each method returns the loaded entity so callers do not fetch it twice.
// A missing entity yields domain.ErrNotFound, a foreign one domain.ErrUnauthorized.
type ResourceAuthorizer interface {
	AuthorizeDataRoom(ctx context.Context, userID, dataRoomID int64) (*models.DataRoom, error)
	AuthorizeFolder(ctx context.Context, userID, folderID int64) (*models.Folder, error)
	AuthorizeFile(ctx context.Context, userID, fileID int64) (*models.File, error)
}

// TokenIssuer issues a signed identity token for a user id
type TokenIssuer interface {
	IssueToken(userID int64) (string, error)
}
