package handlers

import (
	"errors"
	"net/http"

	"taskmanager/internal/domain"
	"taskmanager/internal/logger"
	"taskmanager/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

type Handler struct {
	Auth  *service.AuthService
	Tasks *service.TaskService

	// DevMode leaks internal error strings in 500 responses
	DevMode bool
}

func NewHandler(auth *service.AuthService, tasks *service.TaskService, devMode bool) *Handler {
	return &Handler{Auth: auth, Tasks: tasks, DevMode: devMode}
}

// getUserID reads the id the auth middleware stored in the gin context.
func getUserID(c *gin.Context) (uuid.UUID, bool) {
	val, ok := c.Get("user_id")
	if !ok {
		return uuid.Nil, false
	}
	id, ok := val.(uuid.UUID)
	return id, ok
}

// respondError maps domain errors onto the response envelope. Anything
// outside the taxonomy is logged and reported as a generic 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	var status int
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrWeakPassword),
		errors.Is(err, domain.ErrPasswordTooLong),
		errors.Is(err, domain.ErrDuplicateEmail):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials),
		errors.Is(err, domain.ErrTokenMalformed),
		errors.Is(err, domain.ErrTokenSignature),
		errors.Is(err, domain.ErrTokenExpired):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrStoreUnavailable), isConnError(err):
		status = http.StatusServiceUnavailable
		err = domain.ErrStoreUnavailable
	default:
		logger.Error("unhandled error", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		msg := "server error"
		if h.DevMode {
			msg = err.Error()
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": msg})
		return
	}

	c.JSON(status, gin.H{"success": false, "message": errorMessage(err)})
}

// isConnError reports whether err means the database itself is unreachable,
// as opposed to a failed query.
func isConnError(err error) bool {
	var connErr *pgconn.ConnectError
	return errors.As(err, &connErr)
}

func errorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid request"
	case errors.Is(err, domain.ErrWeakPassword):
		return "password must be at least 6 characters"
	case errors.Is(err, domain.ErrPasswordTooLong):
		return "password too long"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return "email already registered"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid email or password"
	case errors.Is(err, domain.ErrTokenExpired):
		return "session expired, please log in again"
	case errors.Is(err, domain.ErrTokenMalformed), errors.Is(err, domain.ErrTokenSignature):
		return "invalid token"
	case errors.Is(err, domain.ErrForbidden):
		return "not authorized to access this task"
	case errors.Is(err, domain.ErrNotFound):
		return "not found"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "service temporarily unavailable"
	}
	return err.Error()
}
