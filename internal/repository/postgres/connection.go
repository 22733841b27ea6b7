package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dataroom/internal/domain/repositories"
)

// RepositoryConfig holds configuration for repository implementations
type RepositoryConfig struct {
	Pool   *pgxpool.Pool
	Tables *TableNames
	Logger *slog.Logger
}

// TableNames holds the table names used in queries
type TableNames struct {
	Users     string
	DataRooms string
	Folders   string
	Files     string
}

// NewTableNames returns the table names created by the embedded migrations
func NewTableNames() *TableNames {
	return &TableNames{
		Users:     "users",
		DataRooms: "data_rooms",
		Folders:   "folders",
		Files:     "files",
	}
}

// Pool sizing used when the connection string does not set pool_max_conns
// or pool_min_conns itself.
const (
	defaultMaxConns = 25
	defaultMinConns = 5
)

// CreateConnectionPool opens a pgx pool for databaseURL and pings it.
//
// A transaction-mode PgBouncer (port 6543) cannot keep prepared statements,
// so the exec mode drops to cache-describe there unless the URL picks one.
func CreateConnectionPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	params := config.ConnConfig.RuntimeParams
	if !strings.Contains(databaseURL, "pool_max_conns") {
		config.MaxConns = defaultMaxConns
	}
	if !strings.Contains(databaseURL, "pool_min_conns") {
		config.MinConns = min(defaultMinConns, config.MaxConns)
	}
	if _, ok := params["application_name"]; !ok {
		params["application_name"] = "dataroom"
	}

	if config.ConnConfig.Port == 6543 && !strings.Contains(databaseURL, "default_query_exec_mode") {
		config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeCacheDescribe
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// GetExecutor returns the transaction carried by ctx, or the pool when
// there is none, so repository calls join an open ExecTx automatically.
func GetExecutor(ctx context.Context, pool *pgxpool.Pool) repositories.DBTX {
	if tx := repositories.GetTx(ctx); tx != nil {
		return tx
	}
	return pool
}

// NewRepositorySet wires every repository over the configured pool
func NewRepositorySet(config *RepositoryConfig) repositories.Set {
	return repositories.Set{
		Users:     NewUserRepository(config),
		DataRooms: NewDataRoomRepository(config),
		Folders:   NewFolderRepository(config),
		Files:     NewFileRepository(config),
		TxManager: NewTransactionManager(config.Pool, config.Logger),
	}
}
