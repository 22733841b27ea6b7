package seed

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataroom/internal/auth"
	"dataroom/internal/repository/memory"
	"dataroom/internal/service"
	"dataroom/internal/storage"
)

func newSeeder(t *testing.T) (*Seeder, *memory.Store, string) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	root := t.TempDir()

	store, err := storage.NewLocalStore(root, logger, nil)
	require.NoError(t, err)
	tokens, err := auth.NewHMACTokenService("test-secret", time.Hour, logger)
	require.NoError(t, err)

	db := memory.NewStore()
	svc := service.NewServices(memory.NewRepositorySet(db), store, tokens, logger)
	return NewSeeder(svc, logger), db, root
}

func TestDefaultFixture(t *testing.T) {
	f, err := DefaultFixture()
	require.NoError(t, err)
	require.Len(t, f.Users, 2)
	assert.Equal(t, "alice", f.Users[0].Username)
	assert.Len(t, f.Users[0].DataRooms, 2)
}

func TestParseFixture(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{"minimal", "users:\n  - username: carol\n", false},
		{"unknown key", "users:\n  - username: carol\n    role: admin\n", true},
		{"not yaml", "users: [", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFixture([]byte(tt.yaml))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("users:\n  - username: carol\n    data_rooms:\n      - name: Ops\n"), 0o644))

	f, err := LoadFixture(path)
	require.NoError(t, err)
	assert.Equal(t, "Ops", f.Users[0].DataRooms[0].Name)

	_, err = LoadFixture(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSeedIsRepeatable(t *testing.T) {
	s, db, root := newSeeder(t)
	ctx := context.Background()

	f, err := DefaultFixture()
	require.NoError(t, err)

	first, err := s.Seed(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, Summary{Users: 2, DataRooms: 3, Folders: 4, Files: 4}, *first)

	users, rooms, folders, files := db.Counts()
	assert.Equal(t, []int{2, 3, 4, 4}, []int{users, rooms, folders, files})

	// alice is user 1 and Deals is the first row after her
	data, err := os.ReadFile(filepath.Join(root, "user-1", "data-room-2", "folder-None", "term-sheet.pdf"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "term sheet")

	second, err := s.Seed(ctx, f)
	require.NoError(t, err)
	assert.Equal(t, Summary{Users: 2, Skipped: 11}, *second)

	users, rooms, folders, files = db.Counts()
	assert.Equal(t, []int{2, 3, 4, 4}, []int{users, rooms, folders, files})
}

func TestSeedStopsOnInvalidName(t *testing.T) {
	s, _, _ := newSeeder(t)

	f, err := ParseFixture([]byte("users:\n  - username: carol\n    data_rooms:\n      - name: \"\"\n"))
	require.NoError(t, err)

	_, err = s.Seed(context.Background(), f)
	assert.ErrorContains(t, err, `user "carol"`)
}
