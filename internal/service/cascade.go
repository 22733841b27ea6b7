package service

import (
	"context"
	"fmt"

	"dataroom/internal/domain/repositories"
	"dataroom/internal/domain/services"
)

// hierarchy bundles the repositories and content store needed to walk and
// delete subtrees. Deletes always touch disk before rows.
type hierarchy struct {
	dataRoomRepo repositories.DataRoomRepository
	folderRepo   repositories.FolderRepository
	fileRepo     repositories.FileRepository
	store        services.ContentStore
}

// subtree returns rootID followed by every descendant folder id, breadth first.
// Children are found by parent_folder_id within the room.
func (h *hierarchy) subtree(ctx context.Context, dataRoomID, rootID int64) ([]int64, error) {
	ids := []int64{rootID}
	for i := 0; i < len(ids); i++ {
		parent := ids[i]
		children, err := h.folderRepo.ListChildren(ctx, dataRoomID, &parent)
		if err != nil {
			return nil, fmt.Errorf("list child folders of %d: %w", parent, err)
		}
		for _, child := range children {
			ids = append(ids, child.ID)
		}
	}
	return ids, nil
}

// purgeDataRoom deletes every file, folder and the room row itself.
// The caller has already removed the room directory.
func (h *hierarchy) purgeDataRoom(ctx context.Context, dataRoomID int64) error {
	if err := h.fileRepo.DeleteByDataRoom(ctx, dataRoomID); err != nil {
		return err
	}
	if err := h.folderRepo.DeleteByDataRoom(ctx, dataRoomID); err != nil {
		return err
	}
	return h.dataRoomRepo.Delete(ctx, dataRoomID)
}

// relocation is a completed on-disk move that can be reversed
type relocation struct {
	from, to string
}

// undoRelocations moves relocated content back, newest first.
// Failures are returned for logging.
func undoRelocations(store services.ContentStore, moved []relocation) []error {
	var errs []error
	for i := len(moved) - 1; i >= 0; i-- {
		if err := store.Relocate(moved[i].to, moved[i].from); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
