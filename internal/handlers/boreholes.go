package handlers

import (
	"net/http"

	"borehole-workflow/internal/boreholes"
	"borehole-workflow/internal/models"

	"github.com/gin-gonic/gin"
)

type boreholeView struct {
	*models.Borehole
	Role models.Role `json:"role"`
}

func (h *Handler) CreateBorehole(c *gin.Context) {
	u, ok := user(c)
	if !ok {
		return
	}
	var in boreholes.CreateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, NewError("invalid request body"))
		return
	}

	b, err := h.boreholes.Create(c.Request.Context(), u, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewResponse(b))
}

func (h *Handler) GetBorehole(c *gin.Context) {
	u, ok := user(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	role, err := h.boreholes.RoleFor(c.Request.Context(), u, id)
	if err != nil {
		writeError(c, err)
		return
	}
	b, err := h.boreholes.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResponse(boreholeView{Borehole: b, Role: role}))
}

func (h *Handler) UpdateBorehole(c *gin.Context) {
	u, ok := user(c)
	if !ok {
		return
	}
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var in boreholes.UpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, NewError("invalid request body"))
		return
	}

	b, err := h.boreholes.Update(c.Request.Context(), id, u, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResponse(b))
}
