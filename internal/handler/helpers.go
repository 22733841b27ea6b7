package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"dataroom/internal/domain"
	"dataroom/internal/httputil"
)

// storageProblemType marks 500s caused by the content tree rather than the database
const storageProblemType = "storage-error"

// errorResponder converts domain errors to problem documents
type errorResponder struct {
	logger *slog.Logger
	debug  bool
}

func newErrorResponder(logger *slog.Logger, debug bool) *errorResponder {
	return &errorResponder{logger: logger, debug: debug}
}

// handleError converts domain errors to HTTP responses
func (e *errorResponder) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var httpErr domain.HTTPError
	if errors.As(err, &httpErr) {
		status = httpErr.StatusCode()
	} else {
		switch {
		case errors.Is(err, domain.ErrValidation):
			status = http.StatusBadRequest
		case errors.Is(err, domain.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, domain.ErrUnauthorized):
			status = http.StatusUnauthorized
		case errors.Is(err, domain.ErrConflict):
			status = http.StatusConflict
		}
	}

	if status < http.StatusInternalServerError {
		problem := httputil.NewProblem(status, domain.Kind(err), err.Error())
		var conflictErr *domain.ConflictError
		if errors.As(err, &conflictErr) {
			problem = problem.WithResource(conflictErr.ResourceType, conflictErr.ResourceID)
		}
		httputil.RespondProblem(w, problem)
		return
	}

	e.logger.Error("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", httputil.GetRequestID(r.Context()),
		"error", err,
	)

	detail := "internal server error"
	if e.debug {
		detail = err.Error()
	}

	problem := httputil.NewProblem(status, domain.Kind(err), detail)
	if errors.Is(err, domain.ErrStorage) {
		problem = problem.WithType(storageProblemType)
	}
	httputil.RespondProblem(w, problem)
}

// currentUser returns the authenticated user id, writing a 401 when absent
func (e *errorResponder) currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := httputil.GetUserID(r)
	if !ok {
		e.handleError(w, r, &domain.UnauthorizedError{Message: "missing user identity"})
		return 0, false
	}
	return userID, true
}
