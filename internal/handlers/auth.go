package handlers

import (
	"net/http"
	"strings"

	"borehole-workflow/internal/database"
	"borehole-workflow/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewError("username and password are required"))
		return
	}

	u, err := h.users.GetByUsername(c.Request.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, NewError("invalid username or password"))
			return
		}
		writeError(c, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, NewError("invalid username or password"))
		return
	}

	if err := middleware.Login(c, u.ID); err != nil {
		writeError(c, errors.Wrap(err, "failed to save session"))
		return
	}
	middleware.GetLogger(c).WithField("user_id", u.ID).Info("user logged in")
	c.JSON(http.StatusOK, NewResponse(u))
}

func (h *Handler) Logout(c *gin.Context) {
	if err := middleware.Logout(c); err != nil {
		writeError(c, errors.Wrap(err, "failed to clear session"))
		return
	}
	c.JSON(http.StatusOK, NewResponse(nil))
}

func (h *Handler) Me(c *gin.Context) {
	u, ok := user(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, NewResponse(u))
}
