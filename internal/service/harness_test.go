package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dataroom/internal/auth"
	"dataroom/internal/domain"
	"dataroom/internal/domain/models"
	"dataroom/internal/domain/repositories"
	"dataroom/internal/domain/services"
	"dataroom/internal/repository/memory"
	authsvc "dataroom/internal/service/auth"
	"dataroom/internal/storage"
)

var (
	errCommitFailed = errors.New("commit failed")
	errDiskFault    = errors.New("input/output error")
)

// harness wires the real services over the in-memory repositories and a
// LocalStore rooted in a temp dir
type harness struct {
	t       *testing.T
	db      *memory.Store
	store   *storage.LocalStore
	faults  *faultyStore
	tx      *switchableTx
	users   services.UserService
	rooms   services.DataRoomService
	folders services.FolderService
	files   services.FileService
}

// switchableTx can be told to fail the next commit after fn succeeds
type switchableTx struct {
	inner      repositories.TransactionManager
	failCommit bool
}

func (s *switchableTx) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return s.inner.ExecTx(ctx, func(ctx context.Context) error {
		if err := fn(ctx); err != nil {
			return err
		}
		if s.failCommit {
			return errCommitFailed
		}
		return nil
	})
}

// faultyStore fails removals on demand and otherwise defers to the real store
type faultyStore struct {
	services.ContentStore
	failRemove        bool
	failRemoveSubtree bool
}

func (f *faultyStore) Remove(path string) error {
	if f.failRemove {
		return &domain.StorageError{Op: "remove", Path: path, Err: errDiskFault}
	}
	return f.ContentStore.Remove(path)
}

func (f *faultyStore) RemoveSubtree(dir string) error {
	if f.failRemoveSubtree {
		return &domain.StorageError{Op: "remove_subtree", Path: dir, Err: errDiskFault}
	}
	return f.ContentStore.RemoveSubtree(dir)
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store, err := storage.NewLocalStore(t.TempDir(), logger, nil)
	require.NoError(t, err)

	tokens, err := auth.NewHMACTokenService("test-secret", time.Hour, logger)
	require.NoError(t, err)

	db := memory.NewStore()
	userRepo := memory.NewUserRepository(db)
	roomRepo := memory.NewDataRoomRepository(db)
	folderRepo := memory.NewFolderRepository(db)
	fileRepo := memory.NewFileRepository(db)
	tx := &switchableTx{inner: memory.NewTransactionManager(db)}
	faults := &faultyStore{ContentStore: store}
	authorizer := authsvc.NewOwnerBasedAuthorizer(roomRepo, folderRepo, fileRepo)

	return &harness{
		t:       t,
		db:      db,
		store:   store,
		faults:  faults,
		tx:      tx,
		users:   NewUserService(userRepo, roomRepo, folderRepo, fileRepo, faults, tokens, tx, logger),
		rooms:   NewDataRoomService(roomRepo, folderRepo, fileRepo, faults, tx, authorizer, logger),
		folders: NewFolderService(roomRepo, folderRepo, fileRepo, faults, tx, authorizer, logger),
		files:   NewFileService(fileRepo, faults, tx, authorizer, logger),
	}
}

func (h *harness) login(username string) int64 {
	h.t.Helper()
	resp, err := h.users.Login(context.Background(), &services.LoginRequest{Username: username})
	require.NoError(h.t, err)
	return resp.User.ID
}

func (h *harness) room(userID int64, name string) *models.DataRoom {
	h.t.Helper()
	room, err := h.rooms.CreateDataRoom(context.Background(), &services.CreateDataRoomRequest{UserID: userID, Name: name})
	require.NoError(h.t, err)
	return room
}

func (h *harness) folder(userID, roomID int64, parentID *int64, name string) *models.Folder {
	h.t.Helper()
	folder, err := h.folders.CreateFolder(context.Background(), &services.CreateFolderRequest{
		UserID:           userID,
		Name:             name,
		ParentDataRoomID: roomID,
		ParentFolderID:   parentID,
	})
	require.NoError(h.t, err)
	return folder
}

func (h *harness) upload(userID, roomID int64, parentID *int64, name, content string) *models.File {
	h.t.Helper()
	file, err := h.files.CreateFile(context.Background(), &services.CreateFileRequest{
		UserID:           userID,
		ParentDataRoomID: roomID,
		ParentFolderID:   parentID,
		Filename:         name,
		Content:          strings.NewReader(content),
	})
	require.NoError(h.t, err)
	return file
}

func (h *harness) read(path string) string {
	h.t.Helper()
	rc, err := h.store.Retrieve(path)
	require.NoError(h.t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(h.t, err)
	return string(b)
}

func ptr(v int64) *int64 { return &v }

func names(items []models.ChildItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}
