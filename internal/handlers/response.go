package handlers

import (
	"net/http"
	"strconv"
	"time"

	"borehole-workflow/internal/boreholes"
	"borehole-workflow/internal/database"
	"borehole-workflow/internal/lock"
	"borehole-workflow/internal/middleware"
	"borehole-workflow/internal/models"
	"borehole-workflow/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewError(message string) Response {
	return Response{Status: "fail", Message: message}
}

func NewResponse(data interface{}) Response {
	return Response{Status: "success", Data: data}
}

type lockedBy struct {
	LockedByID uint   `json:"lockedById"`
	LockedAt   string `json:"lockedAt"`
}

// writeError maps domain errors to HTTP statuses. Anything unknown is a 500
// and its details stay in the log.
func writeError(c *gin.Context, err error) {
	var locked *lock.AlreadyLockedError
	if errors.As(err, &locked) {
		c.JSON(http.StatusConflict, Response{
			Status:  "fail",
			Message: err.Error(),
			Data:    lockedBy{LockedByID: locked.By, LockedAt: locked.Since.UTC().Format(time.RFC3339)},
		})
		return
	}

	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		middleware.GetLogger(c).WithError(err).Error("request failed")
		c.JSON(status, NewError("internal error"))
		return
	}
	c.JSON(status, NewError(err.Error()))
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, workflow.ErrNotFound),
		errors.Is(err, boreholes.ErrNotFound),
		errors.Is(err, lock.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, workflow.ErrNoOp),
		errors.Is(err, workflow.ErrConflict),
		errors.Is(err, lock.ErrAlreadyLocked),
		errors.Is(err, lock.ErrNotHolder):
		return http.StatusConflict
	case errors.Is(err, workflow.ErrForbidden),
		errors.Is(err, boreholes.ErrForbidden),
		errors.Is(err, boreholes.ErrNotMember):
		return http.StatusForbidden
	case errors.Is(err, workflow.ErrIllegalTransition),
		errors.Is(err, workflow.ErrUnknownField),
		errors.Is(err, workflow.ErrInvalidTab),
		errors.Is(err, boreholes.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrIncompleteChecklist):
		return http.StatusUnprocessableEntity
	case errors.Is(err, database.ErrUserNotFound):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

func parseID(c *gin.Context, key string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, NewError("invalid "+key))
		return 0, false
	}
	return uint(id), true
}

// user returns the session user; RequireAuth guarantees it on API routes.
func user(c *gin.Context) (*models.User, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewError("authentication required"))
	}
	return u, ok
}
