package handlers

import (
	"net/http"

	"borehole-workflow/internal/boreholes"
	"borehole-workflow/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

func (h *Handler) AcquireLock(c *gin.Context) {
	u, id, ok := h.lockTarget(c)
	if !ok {
		return
	}
	token, err := h.locks.Acquire(c.Request.Context(), id, u.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResponse(token))
}

func (h *Handler) ReleaseLock(c *gin.Context) {
	u, id, ok := h.lockTarget(c)
	if !ok {
		return
	}
	if err := h.locks.Release(c.Request.Context(), id, u.ID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResponse(nil))
}

func (h *Handler) LockStatus(c *gin.Context) {
	u, ok := user(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if _, err := h.boreholes.RoleFor(c.Request.Context(), u, id); err != nil {
		writeError(c, err)
		return
	}
	state, err := h.locks.Status(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResponse(state))
}

// lockTarget resolves the borehole of a lock request. Viewers cannot edit,
// so they cannot lock either.
func (h *Handler) lockTarget(c *gin.Context) (*models.User, uint, bool) {
	u, ok := user(c)
	if !ok {
		return nil, 0, false
	}
	id, ok := parseID(c, "id")
	if !ok {
		return nil, 0, false
	}
	role, err := h.boreholes.RoleFor(c.Request.Context(), u, id)
	if err != nil {
		writeError(c, err)
		return nil, 0, false
	}
	if role < models.RoleEditor {
		writeError(c, errors.Wrap(boreholes.ErrForbidden, "viewers cannot lock boreholes"))
		return nil, 0, false
	}
	return u, id, true
}
