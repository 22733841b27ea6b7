package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dataroom/internal/domain"
	"dataroom/internal/domain/models"
	"dataroom/internal/domain/repositories"
)

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const folderColumns = "id, name, owner_id, parent_data_room_id, parent_folder_id, created_at, updated_at"

func scanFolder(row pgx.Row) (*models.Folder, error) {
	var f models.Folder
	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.OwnerID,
		&f.ParentDataRoomID,
		&f.ParentFolderID,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Create creates a new folder. The sibling unique indexes reject a
// concurrent duplicate that slipped past the service-level scan.
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, owner_id, parent_data_room_id, parent_folder_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, r.tables.Folders)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		folder.Name,
		folder.OwnerID,
		folder.ParentDataRoomID,
		folder.ParentFolderID,
		folder.CreatedAt,
		folder.UpdatedAt,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return folderConflict(folder.Name)
		}
		if IsPgForeignKeyError(err) {
			return &domain.ValidationError{Message: "parent data room or folder does not exist"}
		}
		return fmt.Errorf("create folder: %w", err)
	}

	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id int64) (*models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, folderColumns, r.tables.Folders)

	folder, err := scanFolder(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, domain.NotFound("folder", id)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}

	return folder, nil
}

// Update updates a folder's name and parents
func (r *PostgresFolderRepository) Update(ctx context.Context, folder *models.Folder) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, parent_data_room_id = $2, parent_folder_id = $3, updated_at = $4
		WHERE id = $5
	`, r.tables.Folders)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		folder.Name,
		folder.ParentDataRoomID,
		folder.ParentFolderID,
		folder.UpdatedAt,
		folder.ID,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return folderConflict(folder.Name)
		}
		if IsPgForeignKeyError(err) {
			return &domain.ValidationError{Message: "parent data room or folder does not exist"}
		}
		return fmt.Errorf("update folder: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NotFound("folder", folder.ID)
	}

	return nil
}

// ListChildren lists folders directly under (dataRoomID, parentFolderID), ordered by id
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, dataRoomID int64, parentFolderID *int64) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE parent_data_room_id = $1 AND parent_folder_id IS NOT DISTINCT FROM $2::bigint
		ORDER BY id
	`, folderColumns, r.tables.Folders)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, dataRoomID, parentFolderID)
	if err != nil {
		return nil, fmt.Errorf("list child folders: %w", err)
	}
	defer rows.Close()

	folders := []models.Folder{}
	for rows.Next() {
		f, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}

	return folders, nil
}

// DeleteByIDs deletes the given folders in one statement, so a whole
// subtree can go at once without tripping the self-referencing key.
func (r *PostgresFolderRepository) DeleteByIDs(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1)`, r.tables.Folders)
	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, ids); err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("folders still have children: %w", domain.ErrConflict)
		}
		return fmt.Errorf("delete folders: %w", err)
	}

	return nil
}

// DeleteByDataRoom deletes every folder in a room
func (r *PostgresFolderRepository) DeleteByDataRoom(ctx context.Context, dataRoomID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE parent_data_room_id = $1`, r.tables.Folders)
	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, dataRoomID); err != nil {
		return fmt.Errorf("delete data room folders: %w", err)
	}
	return nil
}

func folderConflict(name string) error {
	return &domain.ConflictError{
		Message:      fmt.Sprintf("folder '%s' already exists in this location", name),
		ResourceType: "folder",
	}
}
