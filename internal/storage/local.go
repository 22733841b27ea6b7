package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"dataroom/internal/domain"
	"dataroom/internal/domain/services"
	"dataroom/internal/metrics"
)

// NoFolderSegment is the folder segment used for files stored directly in a
// data room. Existing stored paths depend on this exact token.
const NoFolderSegment = "None"

// Storage operation names used for metrics and errors
const (
	opStore    = "store"
	opRetrieve = "retrieve"
	opRemove   = "remove"
	opRelocate = "relocate"
	opRmtree   = "remove_subtree"
)

// LocalStore keeps file content in a directory tree that mirrors the
// ownership chain: user-{uid}/data-room-{id}/folder-{id|None}/{name}.
type LocalStore struct {
	root    string
	logger  *slog.Logger
	metrics *metrics.Metrics
}

var _ services.ContentStore = (*LocalStore)(nil)

// NewLocalStore creates the root directory if needed and returns a store rooted there
func NewLocalStore(root string, logger *slog.Logger, m *metrics.Metrics) (*LocalStore, error) {
	if root == "" {
		return nil, errors.New("storage root cannot be empty")
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve storage root: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	logger.Info("content store initialized", "root", abs)

	return &LocalStore{
		root:    filepath.Clean(abs),
		logger:  logger,
		metrics: m,
	}, nil
}

// Root returns the absolute storage root
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) UserDir(userID int64) string {
	return filepath.Join(s.root, "user-"+strconv.FormatInt(userID, 10))
}

func (s *LocalStore) DataRoomDir(userID, dataRoomID int64) string {
	return filepath.Join(s.UserDir(userID), "data-room-"+strconv.FormatInt(dataRoomID, 10))
}

func (s *LocalStore) FolderDir(userID, dataRoomID int64, folderID *int64) string {
	return filepath.Join(s.DataRoomDir(userID, dataRoomID), "folder-"+folderSegment(folderID))
}

func (s *LocalStore) PathFor(userID, dataRoomID int64, folderID *int64, leafName string) (string, error) {
	if err := ValidateLeafName(leafName); err != nil {
		return "", err
	}
	return filepath.Join(s.FolderDir(userID, dataRoomID, folderID), leafName), nil
}

// Store streams content into a temp file beside the target and renames it
// into place, so the final path holds either nothing or the complete bytes.
func (s *LocalStore) Store(userID, dataRoomID int64, folderID *int64, filename string, content io.Reader) (path string, err error) {
	defer func() { s.metrics.ObserveStorageOp(opStore, err) }()

	path, err = s.PathFor(userID, dataRoomID, folderID, filename)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", &domain.StorageError{Op: opStore, Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".upload-"+uuid.NewString()+"-*")
	if err != nil {
		return "", &domain.StorageError{Op: opStore, Path: dir, Err: err}
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	n, err := io.Copy(tmp, content)
	if err != nil {
		return "", &domain.StorageError{Op: opStore, Path: path, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		return "", &domain.StorageError{Op: opStore, Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return "", &domain.StorageError{Op: opStore, Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", &domain.StorageError{Op: opStore, Path: path, Err: err}
	}
	committed = true

	s.metrics.AddStoredBytes(n)
	s.logger.Debug("content stored", "path", path, "bytes", n)

	return path, nil
}

func (s *LocalStore) Retrieve(path string) (rc io.ReadCloser, err error) {
	defer func() { s.metrics.ObserveStorageOp(opRetrieve, err) }()

	if err := s.checkWithinRoot(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &domain.NotFoundError{Message: "stored content is missing"}
		}
		return nil, &domain.StorageError{Op: opRetrieve, Path: path, Err: err}
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, &domain.StorageError{Op: opRetrieve, Path: path, Err: err}
	}
	if info.IsDir() {
		f.Close()
		return nil, &domain.StorageError{Op: opRetrieve, Path: path, Err: errors.New("is a directory")}
	}

	return f, nil
}

func (s *LocalStore) Remove(path string) (err error) {
	defer func() { s.metrics.ObserveStorageOp(opRemove, err) }()

	if err := s.checkWithinRoot(path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &domain.StorageError{Op: opRemove, Path: path, Err: err}
	}
	return nil
}

func (s *LocalStore) Relocate(from, to string) (err error) {
	defer func() { s.metrics.ObserveStorageOp(opRelocate, err) }()

	if filepath.Clean(from) == filepath.Clean(to) {
		return nil
	}
	if err := s.checkWithinRoot(from); err != nil {
		return err
	}
	if err := s.checkWithinRoot(to); err != nil {
		return err
	}

	if _, err := os.Lstat(from); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return &domain.StorageError{Op: opRelocate, Path: from, Err: err}
	}
	if err := os.MkdirAll(filepath.Dir(to), 0755); err != nil {
		return &domain.StorageError{Op: opRelocate, Path: to, Err: err}
	}
	if err := os.Rename(from, to); err != nil {
		return &domain.StorageError{Op: opRelocate, Path: to, Err: err}
	}

	s.logger.Debug("content relocated", "from", from, "to", to)
	return nil
}

func (s *LocalStore) RemoveSubtree(dir string) (err error) {
	defer func() { s.metrics.ObserveStorageOp(opRmtree, err) }()

	if err := s.checkWithinRoot(dir); err != nil {
		return err
	}
	if filepath.Clean(dir) == s.root {
		return &domain.StorageError{Op: opRmtree, Path: dir, Err: errors.New("refusing to remove storage root")}
	}
	if err := os.RemoveAll(dir); err != nil {
		return &domain.StorageError{Op: opRmtree, Path: dir, Err: err}
	}

	s.logger.Debug("content subtree removed", "dir", dir)
	return nil
}

func (s *LocalStore) checkWithinRoot(path string) error {
	rel, err := filepath.Rel(s.root, filepath.Clean(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return &domain.StorageError{Op: "resolve", Path: path, Err: errors.New("path escapes storage root")}
	}
	return nil
}

func folderSegment(folderID *int64) string {
	if folderID == nil {
		return NoFolderSegment
	}
	return strconv.FormatInt(*folderID, 10)
}

// ValidateLeafName rejects names that cannot be a single path segment
func ValidateLeafName(name string) error {
	switch {
	case name == "", name == ".", name == "..":
		return &domain.ValidationError{Message: fmt.Sprintf("invalid file name %q", name)}
	case strings.ContainsAny(name, `/\`), strings.ContainsRune(name, 0):
		return &domain.ValidationError{Message: fmt.Sprintf("file name %q cannot contain path separators", name)}
	}
	return nil
}
