// Package memory implements the repository interfaces over in-process maps.
//
// Transactions are serialized by a single lock and roll back by restoring a
// snapshot taken when the outermost transaction begins. Unique and foreign key
// checks mirror the Postgres schema so callers observe the same errors.
package memory

import (
	"context"
	"maps"
	"sync"

	"dataroom/internal/domain/models"
	"dataroom/internal/domain/repositories"
)

type txMarker struct{}

// Store holds every table
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	nextID  int64
	users   map[int64]models.User
	rooms   map[int64]models.DataRoom
	folders map[int64]models.Folder
	files   map[int64]models.File
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:   make(map[int64]models.User),
		rooms:   make(map[int64]models.DataRoom),
		folders: make(map[int64]models.Folder),
		files:   make(map[int64]models.File),
	}
}

// Ping always succeeds
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Counts reports the number of rows per table
func (s *Store) Counts() (users, rooms, folders, files int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), len(s.rooms), len(s.folders), len(s.files)
}

type snapshot struct {
	nextID  int64
	users   map[int64]models.User
	rooms   map[int64]models.DataRoom
	folders map[int64]models.Folder
	files   map[int64]models.File
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		nextID:  s.nextID,
		users:   maps.Clone(s.users),
		rooms:   maps.Clone(s.rooms),
		folders: maps.Clone(s.folders),
		files:   maps.Clone(s.files),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	// ids are not reused after a rollback, like a Postgres sequence
	s.users = snap.users
	s.rooms = snap.rooms
	s.folders = snap.folders
	s.files = snap.files
}

func (s *Store) newID() int64 {
	s.nextID++
	return s.nextID
}

// TransactionManager serializes transactions against a Store
type TransactionManager struct {
	store *Store
}

// NewTransactionManager creates a transaction manager for the store
func NewTransactionManager(store *Store) repositories.TransactionManager {
	return &TransactionManager{store: store}
}

// ExecTx runs fn under the store's transaction lock, restoring the
// previous state when fn fails. Nested calls join the outer transaction.
func (tm *TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	if ctx.Value(txMarker{}) != nil {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	tm.store.txMu.Lock()
	defer tm.store.txMu.Unlock()

	snap := tm.store.snapshot()
	if err := fn(context.WithValue(ctx, txMarker{}, true)); err != nil {
		tm.store.restore(snap)
		return err
	}
	return nil
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func clonePtr(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// NewRepositorySet wires every repository over the store
func NewRepositorySet(s *Store) repositories.Set {
	return repositories.Set{
		Users:     NewUserRepository(s),
		DataRooms: NewDataRoomRepository(s),
		Folders:   NewFolderRepository(s),
		Files:     NewFileRepository(s),
		TxManager: NewTransactionManager(s),
	}
}
