package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"dataroom/internal/domain"
	"dataroom/internal/domain/models"
	"dataroom/internal/domain/repositories"
)

// PostgresDataRoomRepository implements the DataRoomRepository interface
type PostgresDataRoomRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewDataRoomRepository creates a new data room repository
func NewDataRoomRepository(config *RepositoryConfig) repositories.DataRoomRepository {
	return &PostgresDataRoomRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// Create creates a new data room
func (r *PostgresDataRoomRepository) Create(ctx context.Context, room *models.DataRoom) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, owner_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, r.tables.DataRooms)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		room.Name,
		room.OwnerID,
		room.CreatedAt,
		room.UpdatedAt,
	).Scan(&room.ID, &room.CreatedAt, &room.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return r.conflict(ctx, room)
		}
		if IsPgForeignKeyError(err) {
			return domain.NotFound("user", room.OwnerID)
		}
		return fmt.Errorf("create data room: %w", err)
	}

	return nil
}

// GetByID retrieves a data room by ID
func (r *PostgresDataRoomRepository) GetByID(ctx context.Context, id int64) (*models.DataRoom, error) {
	query := fmt.Sprintf(`
		SELECT id, name, owner_id, created_at, updated_at
		FROM %s
		WHERE id = $1
	`, r.tables.DataRooms)

	var room models.DataRoom
	err := GetExecutor(ctx, r.pool).QueryRow(ctx, query, id).Scan(
		&room.ID,
		&room.Name,
		&room.OwnerID,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, domain.NotFound("data room", id)
		}
		return nil, fmt.Errorf("get data room: %w", err)
	}

	return &room, nil
}

// ListByOwner lists a user's data rooms ordered by id
func (r *PostgresDataRoomRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.DataRoom, error) {
	query := fmt.Sprintf(`
		SELECT id, name, owner_id, created_at, updated_at
		FROM %s
		WHERE owner_id = $1
		ORDER BY id
	`, r.tables.DataRooms)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list data rooms: %w", err)
	}
	defer rows.Close()

	rooms := []models.DataRoom{}
	for rows.Next() {
		var room models.DataRoom
		if err := rows.Scan(
			&room.ID,
			&room.Name,
			&room.OwnerID,
			&room.CreatedAt,
			&room.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan data room: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate data rooms: %w", err)
	}

	return rooms, nil
}

// Update updates a data room's name
func (r *PostgresDataRoomRepository) Update(ctx context.Context, room *models.DataRoom) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET name = $1, updated_at = $2
		WHERE id = $3
	`, r.tables.DataRooms)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, room.Name, room.UpdatedAt, room.ID)
	if err != nil {
		if IsPgDuplicateError(err) {
			return r.conflict(ctx, room)
		}
		return fmt.Errorf("update data room: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NotFound("data room", room.ID)
	}

	return nil
}

// Delete deletes the data room row
func (r *PostgresDataRoomRepository) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.DataRooms)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("data room %d is not empty: %w", id, domain.ErrConflict)
		}
		return fmt.Errorf("delete data room: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NotFound("data room", id)
	}

	return nil
}

// conflict builds a ConflictError pointing at the existing room, when it can be found
func (r *PostgresDataRoomRepository) conflict(ctx context.Context, room *models.DataRoom) error {
	conflictErr := &domain.ConflictError{
		Message:      fmt.Sprintf("data room '%s' already exists", room.Name),
		ResourceType: "data_room",
	}

	// Inside a failed transaction this lookup errors out; the ID is best effort
	if repositories.GetTx(ctx) == nil {
		query := fmt.Sprintf(`SELECT id FROM %s WHERE owner_id = $1 AND name = $2`, r.tables.DataRooms)
		var existingID int64
		if err := r.pool.QueryRow(ctx, query, room.OwnerID, room.Name).Scan(&existingID); err == nil {
			conflictErr.ResourceID = existingID
		}
	}

	return conflictErr
}
