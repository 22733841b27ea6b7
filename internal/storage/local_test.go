package storage

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataroom/internal/domain"
	"dataroom/internal/metrics"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := NewLocalStore(t.TempDir(), logger, metrics.New(prometheus.NewRegistry()))
	require.NoError(t, err)
	return s
}

func ptr(v int64) *int64 { return &v }

func TestPathFor(t *testing.T) {
	s := newTestStore(t)

	tests := []struct {
		name     string
		userID   int64
		roomID   int64
		folderID *int64
		leaf     string
		want     string
		wantErr  bool
	}{
		{
			name:   "room root uses None segment",
			userID: 1, roomID: 2, leaf: "a.pdf",
			want: "user-1/data-room-2/folder-None/a.pdf",
		},
		{
			name:   "inside folder",
			userID: 7, roomID: 3, folderID: ptr(42), leaf: "term-sheet.pdf",
			want: "user-7/data-room-3/folder-42/term-sheet.pdf",
		},
		{name: "slash rejected", userID: 1, roomID: 1, leaf: "../etc/passwd", wantErr: true},
		{name: "backslash rejected", userID: 1, roomID: 1, leaf: `a\b`, wantErr: true},
		{name: "dot-dot rejected", userID: 1, roomID: 1, leaf: "..", wantErr: true},
		{name: "empty rejected", userID: 1, roomID: 1, leaf: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.PathFor(tt.userID, tt.roomID, tt.folderID, tt.leaf)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(s.Root(), filepath.FromSlash(tt.want)), got)
		})
	}
}

func TestPathFor_IsDeterministic(t *testing.T) {
	s := newTestStore(t)

	a, err := s.PathFor(5, 6, ptr(7), "x.txt")
	require.NoError(t, err)
	b, err := s.PathFor(5, 6, ptr(7), "x.txt")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestStoreAndRetrieve(t *testing.T) {
	s := newTestStore(t)

	path, err := s.Store(1, 2, nil, "notes.txt", strings.NewReader("hello"))
	require.NoError(t, err)

	want, _ := s.PathFor(1, 2, nil, "notes.txt")
	assert.Equal(t, want, path)

	rc, err := s.Retrieve(path)
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	// No temp files are left beside the stored file
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_Overwrites(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Store(1, 1, ptr(3), "a.bin", strings.NewReader("first"))
	require.NoError(t, err)
	path, err := s.Store(1, 1, ptr(3), "a.bin", strings.NewReader("second"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestStore_FailedCopyLeavesNothing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Store(1, 1, nil, "broken.bin", failingReader{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStorage))

	entries, err := os.ReadDir(s.FolderDir(1, 1, nil))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRetrieve_Missing(t *testing.T) {
	s := newTestStore(t)

	path, _ := s.PathFor(1, 1, nil, "ghost.txt")
	_, err := s.Retrieve(path)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestRetrieve_OutsideRoot(t *testing.T) {
	s := newTestStore(t)

	outside := filepath.Join(t.TempDir(), "secret.txt")
	require.NoError(t, os.WriteFile(outside, []byte("x"), 0644))

	_, err := s.Retrieve(outside)
	assert.True(t, errors.Is(err, domain.ErrStorage))
}

func TestRemove_Idempotent(t *testing.T) {
	s := newTestStore(t)

	path, err := s.Store(1, 1, nil, "a.txt", strings.NewReader("a"))
	require.NoError(t, err)

	require.NoError(t, s.Remove(path))
	require.NoError(t, s.Remove(path))

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestRemoveSubtree(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Store(1, 1, ptr(10), "a.txt", strings.NewReader("a"))
	require.NoError(t, err)
	_, err = s.Store(1, 1, nil, "b.txt", strings.NewReader("b"))
	require.NoError(t, err)

	require.NoError(t, s.RemoveSubtree(s.DataRoomDir(1, 1)))
	_, err = os.Stat(s.DataRoomDir(1, 1))
	assert.True(t, os.IsNotExist(err))

	// Second call on a missing directory is fine
	require.NoError(t, s.RemoveSubtree(s.DataRoomDir(1, 1)))
}

func TestRemoveSubtree_RefusesRoot(t *testing.T) {
	s := newTestStore(t)

	err := s.RemoveSubtree(s.Root())
	assert.True(t, errors.Is(err, domain.ErrStorage))
}

func TestRelocate(t *testing.T) {
	s := newTestStore(t)

	from, err := s.Store(1, 1, nil, "a.txt", strings.NewReader("payload"))
	require.NoError(t, err)
	to, err := s.PathFor(1, 2, ptr(9), "renamed.txt")
	require.NoError(t, err)

	require.NoError(t, s.Relocate(from, to))

	_, err = os.Stat(from)
	assert.True(t, os.IsNotExist(err))
	data, err := os.ReadFile(to)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestRelocate_Directory(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Store(1, 1, ptr(4), "a.txt", strings.NewReader("a"))
	require.NoError(t, err)

	from := s.FolderDir(1, 1, ptr(4))
	to := s.FolderDir(1, 2, ptr(4))
	require.NoError(t, s.Relocate(from, to))

	_, err = os.Stat(filepath.Join(to, "a.txt"))
	assert.NoError(t, err)
}

func TestRelocate_MissingSourceIsNoop(t *testing.T) {
	s := newTestStore(t)

	from, _ := s.PathFor(1, 1, nil, "ghost.txt")
	to, _ := s.PathFor(1, 1, nil, "other.txt")
	assert.NoError(t, s.Relocate(from, to))
}
