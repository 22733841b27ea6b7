//go:build integration

package postgres

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"dataroom/internal/domain"
	"dataroom/internal/domain/models"
)

var sharedDatabaseURL string

// TestMain starts one Postgres container for the package and migrates it
func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("dataroom_test"),
		tcpostgres.WithUsername("dataroom_test"),
		tcpostgres.WithPassword("dataroom_test"),
		tcpostgres.BasicWaitStrategies(),
	)
	if err != nil {
		slog.Error("failed to start postgres container", "error", err)
		os.Exit(1)
	}

	sharedDatabaseURL, err = container.ConnectionString(ctx, "sslmode=disable")
	if err == nil {
		err = RunMigrations(ctx, sharedDatabaseURL, testLogger())
	}
	if err != nil {
		slog.Error("failed to prepare database", "error", err)
		_ = testcontainers.TerminateContainer(container)
		os.Exit(1)
	}

	code := m.Run()
	_ = testcontainers.TerminateContainer(container)
	os.Exit(code)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	pool    *pgxpool.Pool
	cfg     *RepositoryConfig
	tx      *TransactionManager
	user    *models.User
	room    *models.DataRoom
	folders *PostgresFolderRepository
	files   *PostgresFileRepository
}

func newFixture(t *testing.T, username string) *fixture {
	t.Helper()
	ctx := context.Background()

	pool, err := CreateConnectionPool(ctx, sharedDatabaseURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	cfg := &RepositoryConfig{Pool: pool, Tables: NewTableNames(), Logger: testLogger()}
	now := time.Now()

	user := &models.User{Username: username, Email: username + "@example.com", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, NewUserRepository(cfg).Create(ctx, user))

	room := &models.DataRoom{Name: "Deals", OwnerID: user.ID, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, NewDataRoomRepository(cfg).Create(ctx, room))

	return &fixture{
		pool:    pool,
		cfg:     cfg,
		tx:      NewTransactionManager(pool, testLogger()).(*TransactionManager),
		user:    user,
		room:    room,
		folders: NewFolderRepository(cfg).(*PostgresFolderRepository),
		files:   NewFileRepository(cfg).(*PostgresFileRepository),
	}
}

func (f *fixture) folder(name string, parent *int64) *models.Folder {
	now := time.Now()
	return &models.Folder{
		Name:             name,
		OwnerID:          f.user.ID,
		ParentDataRoomID: f.room.ID,
		ParentFolderID:   parent,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func TestConcurrentRootFolderCreate(t *testing.T) {
	f := newFixture(t, "concurrent-root")
	ctx := context.Background()

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.tx.ExecTx(ctx, func(ctx context.Context) error {
				return f.folders.Create(ctx, f.folder("Q1", nil))
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				created++
			} else if assert.ErrorIs(t, err, domain.ErrConflict) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, workers-1, conflicts)

	roots, err := f.folders.ListChildren(ctx, f.room.ID, nil)
	require.NoError(t, err)
	assert.Len(t, roots, 1)
}

func TestSiblingIndexes(t *testing.T) {
	f := newFixture(t, "sibling-indexes")
	ctx := context.Background()

	parent := f.folder("Q1", nil)
	require.NoError(t, f.folders.Create(ctx, parent))

	require.NoError(t, f.folders.Create(ctx, f.folder("contracts", &parent.ID)))
	err := f.folders.Create(ctx, f.folder("contracts", &parent.ID))
	assert.ErrorIs(t, err, domain.ErrConflict)

	// a file may share a folder's name
	now := time.Now()
	file := &models.File{
		Name:             "contracts",
		Content:          "/tmp/contracts",
		OwnerID:          f.user.ID,
		ParentDataRoomID: f.room.ID,
		ParentFolderID:   &parent.ID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	require.NoError(t, f.files.Create(ctx, file))

	dup := *file
	dup.ID = 0
	assert.ErrorIs(t, f.files.Create(ctx, &dup), domain.ErrConflict)

	missing := int64(1 << 40)
	err = f.folders.Create(ctx, f.folder("orphan", &missing))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDeleteSubtreeInOneStatement(t *testing.T) {
	f := newFixture(t, "delete-subtree")
	ctx := context.Background()

	root := f.folder("Q1", nil)
	require.NoError(t, f.folders.Create(ctx, root))
	child := f.folder("contracts", &root.ID)
	require.NoError(t, f.folders.Create(ctx, child))
	grandchild := f.folder("signed", &child.ID)
	require.NoError(t, f.folders.Create(ctx, grandchild))

	err := f.tx.ExecTx(ctx, func(ctx context.Context) error {
		ids := []int64{root.ID, child.ID, grandchild.ID}
		if err := f.files.DeleteByFolders(ctx, ids); err != nil {
			return err
		}
		return f.folders.DeleteByIDs(ctx, ids)
	})
	require.NoError(t, err)

	_, err = f.folders.GetByID(ctx, child.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRollbackOnError(t *testing.T) {
	f := newFixture(t, "rollback")
	ctx := context.Background()

	err := f.tx.ExecTx(ctx, func(ctx context.Context) error {
		if err := f.folders.Create(ctx, f.folder("temp", nil)); err != nil {
			return err
		}
		return domain.NotFound("folder", 0)
	})
	require.ErrorIs(t, err, domain.ErrNotFound)

	roots, err := f.folders.ListChildren(ctx, f.room.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, roots)
}
