package service

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dataroom/internal/domain"
	"dataroom/internal/domain/services"
)

func TestCreateFolderPlacement(t *testing.T) {
	h := newHarness(t)
	alice := h.login("alice")
	bob := h.login("bob")

	deals := h.room(alice, "Deals")
	board := h.room(alice, "Board")
	bobs := h.room(bob, "Bob's")
	q1 := h.folder(alice, deals.ID, nil, "Q1")
	elsewhere := h.folder(alice, board.ID, nil, "Minutes")
	foreign := h.folder(bob, bobs.ID, nil, "Private")

	tests := []struct {
		name    string
		roomID  int64
		parent  *int64
		folder  string
		wantErr error
	}{
		{name: "room root", roomID: deals.ID, folder: "Q2"},
		{name: "nested", roomID: deals.ID, parent: &q1.ID, folder: "contracts"},
		{name: "same name as sibling in another parent", roomID: deals.ID, parent: &q1.ID, folder: "Q1"},
		{name: "duplicate at root", roomID: deals.ID, folder: "Q1", wantErr: domain.ErrConflict},
		{name: "missing room", roomID: 9999, folder: "x", wantErr: domain.ErrNotFound},
		{name: "foreign room", roomID: bobs.ID, folder: "x", wantErr: domain.ErrUnauthorized},
		{name: "missing parent", roomID: deals.ID, parent: ptr(9999), folder: "x", wantErr: domain.ErrNotFound},
		{name: "foreign parent", roomID: deals.ID, parent: &foreign.ID, folder: "x", wantErr: domain.ErrUnauthorized},
		{name: "parent in another room", roomID: deals.ID, parent: &elsewhere.ID, folder: "x", wantErr: domain.ErrValidation},
		{name: "empty name", roomID: deals.ID, folder: " ", wantErr: domain.ErrValidation},
		{name: "separator in name", roomID: deals.ID, folder: "a/b", wantErr: domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			folder, err := h.folders.CreateFolder(context.Background(), &services.CreateFolderRequest{
				UserID:           alice,
				Name:             tt.folder,
				ParentDataRoomID: tt.roomID,
				ParentFolderID:   tt.parent,
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, alice, folder.OwnerID)
			assert.Equal(t, tt.roomID, folder.ParentDataRoomID)
		})
	}
}

func TestCreateFolderSharesNameWithFile(t *testing.T) {
	h := newHarness(t)
	alice := h.login("alice")
	room := h.room(alice, "Deals")

	h.upload(alice, room.ID, nil, "Q1", "not a folder")
	h.folder(alice, room.ID, nil, "Q1")
}

func TestCreateFolderConcurrentDuplicates(t *testing.T) {
	h := newHarness(t)
	alice := h.login("alice")
	room := h.room(alice, "Deals")

	const workers = 16
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
			_, err := h.folders.CreateFolder(context.Background(), &services.CreateFolderRequest{
				UserID:           alice,
				Name:             "Q1",
				ParentDataRoomID: room.ID,
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

	detail, err := h.rooms.GetDataRoom(context.Background(), alice, room.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q1"}, names(detail.Folders))
}

func TestGetFolder(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.login("alice")
	bob := h.login("bob")

	room := h.room(alice, "Deals")
	q1 := h.folder(alice, room.ID, nil, "Q1")
	h.folder(alice, room.ID, &q1.ID, "contracts")
	h.upload(alice, room.ID, &q1.ID, "nda.txt", "nda")

	detail, err := h.folders.GetFolder(ctx, alice, q1.ID)
	require.NoError(t, err)
	assert.Equal(t, "Q1", detail.Name)
	assert.Equal(t, room.ID, detail.ParentDataRoomID)
	assert.Nil(t, detail.ParentFolderID)
	assert.Equal(t, alice, detail.OwnerID)
	assert.Equal(t, []string{"contracts"}, names(detail.ChildrenFolders))
	assert.Equal(t, []string{"nda.txt"}, names(detail.ChildrenFiles))

	_, err = h.folders.GetFolder(ctx, bob, q1.ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = h.folders.GetFolder(ctx, alice, 9999)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMoveFolderWithinRoom(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.login("alice")

	room := h.room(alice, "Deals")
	q1 := h.folder(alice, room.ID, nil, "Q1")
	q2 := h.folder(alice, room.ID, nil, "Q2")
	file := h.upload(alice, room.ID, &q1.ID, "nda.txt", "nda")

	detail, err := h.folders.MoveFolder(ctx, alice, q1.ID, &services.MoveFolderRequest{
		Name:             "Q1-archived",
		ParentDataRoomID: room.ID,
		ParentFolderID:   &q2.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Q1-archived", detail.Name)
	assert.Equal(t, q2.ID, *detail.ParentFolderID)
	assert.Equal(t, []string{"nda.txt"}, names(detail.ChildrenFiles))

	// the folder directory is keyed by id, so the bytes stay where they were
	assert.Equal(t, "nda", h.read(file.Content))

	root, err := h.rooms.GetDataRoom(ctx, alice, room.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Q2"}, names(root.Folders))
}

func TestMoveFolderRejections(t *testing.T) {
	h := newHarness(t)
	alice := h.login("alice")
	bob := h.login("bob")

	room := h.room(alice, "Deals")
	q1 := h.folder(alice, room.ID, nil, "Q1")
	child := h.folder(alice, room.ID, &q1.ID, "contracts")
	grandchild := h.folder(alice, room.ID, &child.ID, "signed")
	h.folder(alice, room.ID, nil, "Q2")
	bobs := h.room(bob, "Bob's")

	tests := []struct {
		name     string
		userID   int64
		folderID int64
		req      services.MoveFolderRequest
		wantErr  error
	}{
		{
			name: "into itself", userID: alice, folderID: q1.ID,
			req:     services.MoveFolderRequest{Name: "Q1", ParentDataRoomID: room.ID, ParentFolderID: &q1.ID},
			wantErr: domain.ErrValidation,
		},
		{
			name: "into a descendant", userID: alice, folderID: q1.ID,
			req:     services.MoveFolderRequest{Name: "Q1", ParentDataRoomID: room.ID, ParentFolderID: &grandchild.ID},
			wantErr: domain.ErrValidation,
		},
		{
			name: "onto a sibling name", userID: alice, folderID: q1.ID,
			req:     services.MoveFolderRequest{Name: "Q2", ParentDataRoomID: room.ID},
			wantErr: domain.ErrConflict,
		},
		{
			name: "into a foreign room", userID: alice, folderID: q1.ID,
			req:     services.MoveFolderRequest{Name: "Q1", ParentDataRoomID: bobs.ID},
			wantErr: domain.ErrUnauthorized,
		},
		{
			name: "by a non-owner", userID: bob, folderID: q1.ID,
			req:     services.MoveFolderRequest{Name: "Q1", ParentDataRoomID: bobs.ID},
			wantErr: domain.ErrUnauthorized,
		},
		{
			name: "missing folder", userID: alice, folderID: 9999,
			req:     services.MoveFolderRequest{Name: "Q1", ParentDataRoomID: room.ID},
			wantErr: domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := h.folders.MoveFolder(context.Background(), tt.userID, tt.folderID, &req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// nothing moved
	detail, err := h.folders.GetFolder(context.Background(), alice, q1.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.ParentFolderID)
	assert.Equal(t, room.ID, detail.ParentDataRoomID)
}

func TestMoveFolderAcrossRooms(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.login("alice")

	deals := h.room(alice, "Deals")
	archive := h.room(alice, "Archive")
	q1 := h.folder(alice, deals.ID, nil, "Q1")
	child := h.folder(alice, deals.ID, &q1.ID, "contracts")
	top := h.upload(alice, deals.ID, &q1.ID, "summary.txt", "summary")
	deep := h.upload(alice, deals.ID, &child.ID, "nda.txt", "nda")

	_, err := h.folders.MoveFolder(ctx, alice, q1.ID, &services.MoveFolderRequest{
		Name:             "Q1",
		ParentDataRoomID: archive.ID,
	})
	require.NoError(t, err)

	movedChild, err := h.folders.GetFolder(ctx, alice, child.ID)
	require.NoError(t, err)
	assert.Equal(t, archive.ID, movedChild.ParentDataRoomID)

	for _, f := range []struct {
		id      int64
		content string
	}{{top.ID, "summary"}, {deep.ID, "nda"}} {
		got, err := h.files.GetFile(ctx, alice, f.id)
		require.NoError(t, err)
		assert.Equal(t, archive.ID, got.ParentDataRoomID)
		assert.Equal(t, h.store.DataRoomDir(alice, archive.ID), filepath.Dir(filepath.Dir(got.Content)))
		assert.Equal(t, f.content, h.read(got.Content))
	}

	_, err = os.Stat(h.store.FolderDir(alice, deals.ID, &q1.ID))
	assert.True(t, os.IsNotExist(err))

	detail, err := h.rooms.GetDataRoom(ctx, alice, deals.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Folders)
}

func TestMoveFolderAbortedRestoresContent(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.login("alice")

	deals := h.room(alice, "Deals")
	archive := h.room(alice, "Archive")
	q1 := h.folder(alice, deals.ID, nil, "Q1")
	file := h.upload(alice, deals.ID, &q1.ID, "nda.txt", "nda")

	h.tx.failCommit = true
	_, err := h.folders.MoveFolder(ctx, alice, q1.ID, &services.MoveFolderRequest{Name: "Q1", ParentDataRoomID: archive.ID})
	h.tx.failCommit = false
	require.ErrorIs(t, err, errCommitFailed)

	got, err := h.files.GetFile(ctx, alice, file.ID)
	require.NoError(t, err)
	assert.Equal(t, deals.ID, got.ParentDataRoomID)
	assert.Equal(t, "nda", h.read(got.Content))
}

func TestDeleteFolderCascades(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.login("alice")
	bob := h.login("bob")

	room := h.room(alice, "Deals")
	q1 := h.folder(alice, room.ID, nil, "Q1")
	child := h.folder(alice, room.ID, &q1.ID, "contracts")
	grandchild := h.folder(alice, room.ID, &child.ID, "signed")
	sibling := h.folder(alice, room.ID, nil, "Q2")
	deep := h.upload(alice, room.ID, &grandchild.ID, "nda.txt", "nda")
	kept := h.upload(alice, room.ID, &sibling.ID, "kept.txt", "kept")

	require.ErrorIs(t, h.folders.DeleteFolder(ctx, bob, q1.ID), domain.ErrUnauthorized)
	require.NoError(t, h.folders.DeleteFolder(ctx, alice, q1.ID))

	for _, id := range []int64{q1.ID, child.ID, grandchild.ID} {
		_, err := h.folders.GetFolder(ctx, alice, id)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		_, err = os.Stat(h.store.FolderDir(alice, room.ID, &id))
		assert.True(t, os.IsNotExist(err))
	}
	_, err := h.files.GetFile(ctx, alice, deep.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, "kept", h.read(kept.Content))
}

func TestDeleteFolderStorageFailureKeepsRows(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.login("alice")

	room := h.room(alice, "Deals")
	q1 := h.folder(alice, room.ID, nil, "Q1")
	child := h.folder(alice, room.ID, &q1.ID, "contracts")
	file := h.upload(alice, room.ID, &child.ID, "nda.txt", "nda")

	h.faults.failRemoveSubtree = true
	err := h.folders.DeleteFolder(ctx, alice, q1.ID)
	h.faults.failRemoveSubtree = false
	require.ErrorIs(t, err, domain.ErrStorage)

	for _, id := range []int64{q1.ID, child.ID} {
		_, err := h.folders.GetFolder(ctx, alice, id)
		assert.NoError(t, err)
	}
	got, err := h.files.GetFile(ctx, alice, file.ID)
	require.NoError(t, err)
	assert.Equal(t, "nda", h.read(got.Content))
}
