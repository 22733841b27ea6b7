// Package seed loads a YAML description of users, data rooms, folders and
// files and creates it through the domain services.
package seed

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"dataroom/internal/domain"
	"dataroom/internal/domain/services"
	"dataroom/internal/service"
)

//go:embed fixtures/*.yaml
var fixtureFiles embed.FS

// Fixture is the root of a seed file
type Fixture struct {
	Users []UserFixture `yaml:"users"`
}

// UserFixture is logged in (and so provisioned) by username.
// When Email is set the profile is updated to it.
type UserFixture struct {
	Username  string            `yaml:"username"`
	Email     string            `yaml:"email,omitempty"`
	DataRooms []DataRoomFixture `yaml:"data_rooms"`
}

type DataRoomFixture struct {
	Name    string          `yaml:"name"`
	Folders []FolderFixture `yaml:"folders"`
	Files   []FileFixture   `yaml:"files"`
}

type FolderFixture struct {
	Name    string          `yaml:"name"`
	Folders []FolderFixture `yaml:"folders"`
	Files   []FileFixture   `yaml:"files"`
}

type FileFixture struct {
	Name    string `yaml:"name"`
	Content string `yaml:"content"`
}

// Summary counts what a run created and what already existed
type Summary struct {
	Users     int
	DataRooms int
	Folders   int
	Files     int
	Skipped   int
}

// DefaultFixture returns the embedded demo fixture
func DefaultFixture() (*Fixture, error) {
	data, err := fixtureFiles.ReadFile("fixtures/default.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read default fixture: %w", err)
	}
	return ParseFixture(data)
}

// LoadFixture reads a fixture from disk
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes fixture YAML, rejecting unknown keys
func ParseFixture(data []byte) (*Fixture, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fixture: %w", err)
	}
	return &f, nil
}

// Seeder creates fixtures through the services so every ownership,
// uniqueness and on-disk rule applies. Re-running a fixture reuses what
// already exists.
type Seeder struct {
	svc    *service.Services
	logger *slog.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(svc *service.Services, logger *slog.Logger) *Seeder {
	return &Seeder{svc: svc, logger: logger}
}

// Seed creates everything in the fixture
func (s *Seeder) Seed(ctx context.Context, f *Fixture) (*Summary, error) {
	sum := &Summary{}

	for _, u := range f.Users {
		resp, err := s.svc.Users.Login(ctx, &services.LoginRequest{Username: u.Username})
		if err != nil {
			return sum, fmt.Errorf("user %q: %w", u.Username, err)
		}
		userID := resp.User.ID
		sum.Users++

		if u.Email != "" && u.Email != resp.User.Email {
			if _, err := s.svc.Users.UpdateUser(ctx, userID, &services.UpdateUserRequest{
				Username: resp.User.Username,
				Email:    u.Email,
			}); err != nil {
				return sum, fmt.Errorf("user %q: %w", u.Username, err)
			}
		}

		for _, r := range u.DataRooms {
			if err := s.seedDataRoom(ctx, sum, userID, r); err != nil {
				return sum, fmt.Errorf("user %q: %w", u.Username, err)
			}
		}
	}

	s.logger.Info("seed complete",
		"users", sum.Users,
		"data_rooms", sum.DataRooms,
		"folders", sum.Folders,
		"files", sum.Files,
		"skipped", sum.Skipped,
	)

	return sum, nil
}

func (s *Seeder) seedDataRoom(ctx context.Context, sum *Summary, userID int64, r DataRoomFixture) error {
	var roomID int64

	room, err := s.svc.DataRooms.CreateDataRoom(ctx, &services.CreateDataRoomRequest{UserID: userID, Name: r.Name})
	switch {
	case err == nil:
		roomID = room.ID
		sum.DataRooms++
	case existing(err) != 0:
		roomID = existing(err)
		sum.Skipped++
	default:
		return fmt.Errorf("data room %q: %w", r.Name, err)
	}

	if err := s.seedChildren(ctx, sum, userID, roomID, nil, r.Folders, r.Files); err != nil {
		return fmt.Errorf("data room %q: %w", r.Name, err)
	}
	return nil
}

func (s *Seeder) seedChildren(ctx context.Context, sum *Summary, userID, roomID int64, parentID *int64, folders []FolderFixture, files []FileFixture) error {
	for _, f := range files {
		_, err := s.svc.Files.CreateFile(ctx, &services.CreateFileRequest{
			UserID:           userID,
			Name:             f.Name,
			ParentDataRoomID: roomID,
			ParentFolderID:   parentID,
			Content:          strings.NewReader(f.Content),
		})
		switch {
		case err == nil:
			sum.Files++
		case errors.Is(err, domain.ErrConflict):
			sum.Skipped++
		default:
			return fmt.Errorf("file %q: %w", f.Name, err)
		}
	}

	for _, f := range folders {
		var folderID int64

		folder, err := s.svc.Folders.CreateFolder(ctx, &services.CreateFolderRequest{
			UserID:           userID,
			Name:             f.Name,
			ParentDataRoomID: roomID,
			ParentFolderID:   parentID,
		})
		switch {
		case err == nil:
			folderID = folder.ID
			sum.Folders++
		case existing(err) != 0:
			folderID = existing(err)
			sum.Skipped++
		default:
			return fmt.Errorf("folder %q: %w", f.Name, err)
		}

		if err := s.seedChildren(ctx, sum, userID, roomID, &folderID, f.Folders, f.Files); err != nil {
			return fmt.Errorf("folder %q: %w", f.Name, err)
		}
	}
	return nil
}

// existing returns the id of the resource a conflict collided with, or 0
func existing(err error) int64 {
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		return conflict.ResourceID
	}
	return 0
}
