package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dataroom/internal/domain"
	"dataroom/internal/domain/models"
	"dataroom/internal/domain/repositories"
)

// PostgresUserRepository implements the UserRepository interface
type PostgresUserRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewUserRepository creates a new user repository
func NewUserRepository(config *RepositoryConfig) repositories.UserRepository {
	return &PostgresUserRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const userColumns = "id, username, email, created_at, updated_at"

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create creates a new user
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (username, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, r.tables.Users)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return userConflict(err, user)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, userColumns, r.tables.Users)

	user, err := scanUser(GetExecutor(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, domain.NotFound("user", id)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

// GetByUsername retrieves a user by exact username
func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE username = $1`, userColumns, r.tables.Users)

	user, err := scanUser(GetExecutor(ctx, r.pool).QueryRow(ctx, query, username))
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("user %q not found", username)}
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}

	return user, nil
}

// FindByUsernameOrEmail lists users holding either value
func (r *PostgresUserRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) ([]models.User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE username = $1 OR email = $2
		ORDER BY id
	`, userColumns, r.tables.Users)

	rows, err := GetExecutor(ctx, r.pool).Query(ctx, query, username, email)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// Update updates username and email
func (r *PostgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET username = $1, email = $2, updated_at = $3
		WHERE id = $4
	`, r.tables.Users)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query,
		user.Username,
		user.Email,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		if IsPgDuplicateError(err) {
			return userConflict(err, user)
		}
		return fmt.Errorf("update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NotFound("user", user.ID)
	}

	return nil
}

// Delete deletes the user row
func (r *PostgresUserRepository) Delete(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.tables.Users)

	result, err := GetExecutor(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		if IsPgForeignKeyError(err) {
			return fmt.Errorf("user %d still owns data rooms: %w", id, domain.ErrConflict)
		}
		return fmt.Errorf("delete user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NotFound("user", id)
	}

	return nil
}

func userConflict(err error, user *models.User) error {
	msg := fmt.Sprintf("username '%s' is already taken", user.Username)
	if strings.Contains(pgConstraint(err), "email") {
		msg = fmt.Sprintf("email '%s' is already registered", user.Email)
	}
	return &domain.ConflictError{Message: msg, ResourceType: "user"}
}
