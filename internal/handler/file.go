package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"dataroom/internal/domain"
	"dataroom/internal/domain/services"
	"dataroom/internal/httputil"
)

// multipartMemory is how much of an upload is buffered in memory before spilling to temp files
const multipartMemory = 32 << 20

// FileHandler handles file upload, download and metadata requests
type FileHandler struct {
	*errorResponder
	fileService    services.FileService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(fileService services.FileService, maxUploadBytes int64, logger *slog.Logger, debug bool) *FileHandler {
	return &FileHandler{
		errorResponder: newErrorResponder(logger, debug),
		fileService:    fileService,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// DownloadFile streams a file's bytes as an attachment
// GET /file/{id}
func (h *FileHandler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	id, err := httputil.PathID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	file, content, err := h.fileService.DownloadFile(r.Context(), userID, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	defer content.Close()

	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))

	if rs, ok := content.(io.ReadSeeker); ok {
		http.ServeContent(w, r, file.Name, file.UpdatedAt, rs)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, content); err != nil {
		h.logger.Warn("download interrupted", "file_id", file.ID, "error", err)
	}
}

// GetFileMetadata returns a file's record without its bytes
// GET /file/{id}/metadata
func (h *FileHandler) GetFileMetadata(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	id, err := httputil.PathID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	file, err := h.fileService.GetFile(r.Context(), userID, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// UploadFile stores a multipart upload.
// Form fields: files (the content), name, parent_data_room_id, parent_folder_id.
// POST /file
func (h *FileHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.RespondError(w, http.StatusRequestEntityTooLarge, "bad_request",
				fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		h.handleError(w, r, &domain.ValidationError{Message: fmt.Sprintf("invalid multipart form: %v", err)})
		return
	}
	defer r.MultipartForm.RemoveAll()

	roomID, err := httputil.OptionalID(r.FormValue("parent_data_room_id"), "parent_data_room_id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	if roomID == nil {
		h.handleError(w, r, &domain.ValidationError{Message: "parent_data_room_id is required"})
		return
	}
	parentFolderID, err := httputil.OptionalID(r.FormValue("parent_folder_id"), "parent_folder_id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	part, header, err := r.FormFile("files")
	if err != nil {
		h.handleError(w, r, &domain.ValidationError{Message: "a file must be uploaded in the \"files\" field"})
		return
	}
	defer part.Close()

	file, err := h.fileService.CreateFile(r.Context(), &services.CreateFileRequest{
		UserID:           userID,
		Name:             r.FormValue("name"),
		ParentDataRoomID: *roomID,
		ParentFolderID:   parentFolderID,
		Filename:         header.Filename,
		Content:          part,
	})
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, file)
}

// MoveFile renames and/or re-parents a file
// PUT /file/{id}
func (h *FileHandler) MoveFile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	id, err := httputil.PathID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	var req services.MoveFileRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	file, err := h.fileService.MoveFile(r.Context(), userID, id, &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, file)
}

// DeleteFile deletes a file and its bytes
// DELETE /file/{id}
func (h *FileHandler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	id, err := httputil.PathID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if err := h.fileService.DeleteFile(r.Context(), userID, id); err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondMessage(w, http.StatusOK, "file deleted")
}
