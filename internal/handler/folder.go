package handler

import (
	"log/slog"
	"net/http"

	"dataroom/internal/domain/services"
	"dataroom/internal/httputil"
)

// FolderHandler handles folder HTTP requests
type FolderHandler struct {
	*errorResponder
	folderService services.FolderService
	logger        *slog.Logger
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(folderService services.FolderService, logger *slog.Logger, debug bool) *FolderHandler {
	return &FolderHandler{
		errorResponder: newErrorResponder(logger, debug),
		folderService:  folderService,
		logger:         logger,
	}
}

// GetFolder retrieves a folder with its immediate children
// GET /folder/{id}
func (h *FolderHandler) GetFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	id, err := httputil.PathID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	folder, err := h.folderService.GetFolder(r.Context(), userID, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// CreateFolder creates a new folder
// POST /folder
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req services.CreateFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	req.UserID = userID

	folder, err := h.folderService.CreateFolder(r.Context(), &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, folder)
}

// MoveFolder renames and/or re-parents a folder
// PUT /folder/{id}
func (h *FolderHandler) MoveFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	id, err := httputil.PathID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	var req services.MoveFolderRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	folder, err := h.folderService.MoveFolder(r.Context(), userID, id, &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, folder)
}

// DeleteFolder deletes a folder and its descendants
// DELETE /folder/{id}
func (h *FolderHandler) DeleteFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	id, err := httputil.PathID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if err := h.folderService.DeleteFolder(r.Context(), userID, id); err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondMessage(w, http.StatusOK, "folder deleted")
}
