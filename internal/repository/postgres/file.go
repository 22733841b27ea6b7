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

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *RepositoryConfig) repositories.FileRepository {
	return &PostgresFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const fileColumns = "id, name, content, owner_id, parent_data_room_id, parent_folder_id, created_at, updated_at"

func scanFile(row pgx.Row) (*models.File, error) {
	var f models.File
	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.Content,
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

func collectFiles(rows pgx.Rows) ([]models.File, error) {
	defer rows.Close()

	files := []models.File{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}
	return files, nil
}

// Create creates a new file record
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.File) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, content, owner_id, parent_data_room_id, parent_folder_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, r.tables.Files)

	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query,
		file.Name,
		file.Content,
		file.OwnerID,
		file.ParentDataRoomID,
		file.ParentFolderID,
		file.CreatedAt,
		file.UpdatedAt,
	).Scan(&file.ID, &file.CreatedAt, &file.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return fileConflict(file.Name)
		}
		if IsPgForeignKeyError(err) {
			return &domain.ValidationError{Message: "parent data room or folder does not exist"}
		}
		return fmt.Errorf("create file: %w", err)
	}

	return nil
}

// GetByID retrieves a file by ID
func (r *PostgresFileRepository) GetByID(ctx context.Context, id int64) (*models.File, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, fileColumns, r.tables.Files)

	file, err := scanFile(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, domain.NotFound("file", id)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}

	return file, nil
}

// Update updates name, content and parents
func (r *PostgresFileRepository) Update(ctx context.Context, file *models.File) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, content = $2, parent_data_room_id = $3, parent_folder_id = $4, updated_at = $5
		WHERE id = $6
	`, r.tables.Files)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		file.Name,
		file.Content,
		file.ParentDataRoomID,
		file.ParentFolderID,
		file.UpdatedAt,
		file.ID,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return fileConflict(file.Name)
		}
		if IsPgForeignKeyError(err) {
			return &domain.ValidationError{Message: "parent data room or folder does not exist"}
		}
		return fmt.Errorf("update file: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NotFound("file", file.ID)
	}

	return nil
}

// Delete deletes a file record
func (r *PostgresFileRepository) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Files)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NotFound("file", id)
	}

	return nil
}

// ListChildren lists files directly under (dataRoomID, parentFolderID), ordered by id
func (r *PostgresFileRepository) ListChildren(ctx context.Context, dataRoomID int64, parentFolderID *int64) ([]models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE parent_data_room_id = $1 AND parent_folder_id IS NOT DISTINCT FROM $2::bigint
		ORDER BY id
	`, fileColumns, r.tables.Files)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, dataRoomID, parentFolderID)
	if err != nil {
		return nil, fmt.Errorf("list child files: %w", err)
	}
	return collectFiles(rows)
}

// ListByFolders lists files whose parent folder is one of folderIDs
func (r *PostgresFileRepository) ListByFolders(ctx context.Context, folderIDs []int64) ([]models.File, error) {
	if len(folderIDs) == 0 {
		return []models.File{}, nil
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE parent_folder_id = ANY($1)
		ORDER BY id
	`, fileColumns, r.tables.Files)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, folderIDs)
	if err != nil {
		return nil, fmt.Errorf("list files by folders: %w", err)
	}
	return collectFiles(rows)
}

// DeleteByFolders deletes files whose parent folder is one of folderIDs
func (r *PostgresFileRepository) DeleteByFolders(ctx context.Context, folderIDs []int64) error {
	if len(folderIDs) == 0 {
		return nil
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE parent_folder_id = ANY($1)`, r.tables.Files)
	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, folderIDs); err != nil {
		return fmt.Errorf("delete files by folders: %w", err)
	}
	return nil
}

// DeleteByDataRoom deletes every file in a room
func (r *PostgresFileRepository) DeleteByDataRoom(ctx context.Context, dataRoomID int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE parent_data_room_id = $1`, r.tables.Files)
	if _, err := GetExecutor(ctx, r.pool).Exec(ctx, query, dataRoomID); err != nil {
		return fmt.Errorf("delete data room files: %w", err)
	}
	return nil
}

func fileConflict(name string) error {
	return &domain.ConflictError{
		Message:      fmt.Sprintf("file '%s' already exists in this location", name),
		ResourceType: "file",
	}
}
