package handler

import (
	"log/slog"
	"net/http"

	"dataroom/internal/domain/models"
	"dataroom/internal/domain/services"
	"dataroom/internal/httputil"
)

// DataRoomHandler handles data room HTTP requests
type DataRoomHandler struct {
	*errorResponder
	dataRoomService services.DataRoomService
	logger          *slog.Logger
}

// NewDataRoomHandler creates a new data room handler
func NewDataRoomHandler(dataRoomService services.DataRoomService, logger *slog.Logger, debug bool) *DataRoomHandler {
	return &DataRoomHandler{
		errorResponder:  newErrorResponder(logger, debug),
		dataRoomService: dataRoomService,
		logger:          logger,
	}
}

// dataRoomList wraps the caller's rooms
type dataRoomList struct {
	UserDataRooms []models.DataRoomDetail `json:"user_data_rooms"`
}

// ListDataRooms returns every room the caller owns
// GET /data-room
func (h *DataRoomHandler) ListDataRooms(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	rooms, err := h.dataRoomService.ListDataRooms(r.Context(), userID)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, dataRoomList{UserDataRooms: rooms})
}

// GetDataRoom returns a room with its root files and folders
// GET /data-room/{id}
func (h *DataRoomHandler) GetDataRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	id, err := httputil.PathID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	room, err := h.dataRoomService.GetDataRoom(r.Context(), userID, id)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, room)
}

// CreateDataRoom creates a room
// POST /data-room
func (h *DataRoomHandler) CreateDataRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req services.CreateDataRoomRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}
	req.UserID = userID

	room, err := h.dataRoomService.CreateDataRoom(r.Context(), &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusCreated, room)
}

// RenameDataRoom renames a room
// PUT /data-room/{id}
func (h *DataRoomHandler) RenameDataRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	id, err := httputil.PathID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	var req services.RenameDataRoomRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		h.handleError(w, r, err)
		return
	}

	room, err := h.dataRoomService.RenameDataRoom(r.Context(), userID, id, &req)
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, room)
}

// DeleteDataRoom deletes a room and everything in it
// DELETE /data-room/{id}
func (h *DataRoomHandler) DeleteDataRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	id, err := httputil.PathID(r, "id")
	if err != nil {
		h.handleError(w, r, err)
		return
	}

	if err := h.dataRoomService.DeleteDataRoom(r.Context(), userID, id); err != nil {
		h.handleError(w, r, err)
		return
	}

	httputil.RespondMessage(w, http.StatusOK, "data room deleted")
}
