package handler

import (
	"net/http"

	"dataroom/internal/auth"
	"dataroom/internal/middleware"
)

// Router holds everything needed to register the HTTP surface
type Router struct {
	Users     *UserHandler
	DataRooms *DataRoomHandler
	Folders   *FolderHandler
	Files     *FileHandler
	Health    *HealthHandler

	Verifier    auth.JWTVerifier
	AuthLimiter *middleware.IPRateLimiter // nil disables rate limiting
	Metrics     http.Handler              // nil leaves /metrics unregistered
}

// Register adds every route to mux. Token-protected routes are wrapped individually
// so /login, POST /user, /health and /metrics stay public.
func (rt *Router) Register(mux *http.ServeMux) {
	logger := rt.Users.logger
	authed := middleware.Auth(rt.Verifier, logger)
	protect := func(h http.HandlerFunc) http.Handler { return authed(h) }

	limited := func(h http.HandlerFunc) http.Handler { return h }
	if rt.AuthLimiter != nil {
		limit := middleware.RateLimit(rt.AuthLimiter)
		limited = func(h http.HandlerFunc) http.Handler { return limit(h) }
	}

	// Public
	mux.Handle("POST /login", limited(rt.Users.Login))
	mux.Handle("POST /user", limited(rt.Users.Register))
	mux.HandleFunc("GET /health", rt.Health.Health)
	if rt.Metrics != nil {
		mux.Handle("GET /metrics", rt.Metrics)
	}

	// Users
	mux.Handle("GET /user", protect(rt.Users.GetUser))
	mux.Handle("PUT /user", protect(rt.Users.UpdateUser))
	mux.Handle("DELETE /user", protect(rt.Users.DeleteUser))

	// Data rooms
	mux.Handle("GET /data-room", protect(rt.DataRooms.ListDataRooms))
	mux.Handle("POST /data-room", protect(rt.DataRooms.CreateDataRoom))
	mux.Handle("GET /data-room/{id}", protect(rt.DataRooms.GetDataRoom))
	mux.Handle("PUT /data-room/{id}", protect(rt.DataRooms.RenameDataRoom))
	mux.Handle("DELETE /data-room/{id}", protect(rt.DataRooms.DeleteDataRoom))

	// Folders
	mux.Handle("POST /folder", protect(rt.Folders.CreateFolder))
	mux.Handle("GET /folder/{id}", protect(rt.Folders.GetFolder))
	mux.Handle("PUT /folder/{id}", protect(rt.Folders.MoveFolder))
	mux.Handle("DELETE /folder/{id}", protect(rt.Folders.DeleteFolder))

	// Files
	mux.Handle("POST /file", protect(rt.Files.UploadFile))
	mux.Handle("GET /file/{id}", protect(rt.Files.DownloadFile))
	mux.Handle("GET /file/{id}/metadata", protect(rt.Files.GetFileMetadata))
	mux.Handle("PUT /file/{id}", protect(rt.Files.MoveFile))
	mux.Handle("DELETE /file/{id}", protect(rt.Files.DeleteFile))
}
