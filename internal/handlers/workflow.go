package handlers

import (
	"net/http"

	"borehole-workflow/internal/models"
	"borehole-workflow/internal/workflow"

	"github.com/gin-gonic/gin"
)

type workflowChangeRequest struct {
	BoreholeID          uint                   `json:"boreholeId" binding:"required"`
	NewStatus           *models.WorkflowStatus `json:"newStatus"`
	Comment             *string                `json:"comment"`
	NewAssigneeID       *uint                  `json:"newAssigneeId"`
	HasRequestedChanges *bool                  `json:"hasRequestedChanges"`
}

type workflowTabStatusChangeRequest struct {
	BoreholeID uint            `json:"boreholeId" binding:"required"`
	Tab        string          `json:"tab" binding:"required"`
	Changes    map[string]bool `json:"changes" binding:"required"`
}

type tabStatusChangeRequest struct {
	BoreholeID uint   `json:"boreholeId" binding:"required"`
	Tab        string `json:"tab" binding:"required"`
	Field      string `json:"field" binding:"required"`
	NewStatus  *bool  `json:"newStatus" binding:"required"`
}

type transitionResult struct {
	Change   *models.WorkflowChange `json:"change,omitempty"`
	Workflow *models.Workflow       `json:"workflow"`
}

func (h *Handler) GetWorkflow(c *gin.Context) {
	wf, ok := h.boreholeWorkflow(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, NewResponse(wf))
}

func (h *Handler) WorkflowHistory(c *gin.Context) {
	wf, ok := h.boreholeWorkflow(c)
	if !ok {
		return
	}
	list, err := h.workflows.History(c.Request.Context(), wf.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResponse(list))
}

// ChangeWorkflow applies a WorkflowChangeRequest. Without newStatus it only
// reassigns.
func (h *Handler) ChangeWorkflow(c *gin.Context) {
	u, ok := user(c)
	if !ok {
		return
	}
	var req workflowChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewError("invalid request body"))
		return
	}
	if req.NewStatus == nil && req.NewAssigneeID == nil {
		c.JSON(http.StatusBadRequest, NewError("newStatus or newAssigneeId is required"))
		return
	}

	ctx := c.Request.Context()
	actor, wf, err := h.boreholes.ResolveWorkflow(ctx, u, req.BoreholeID)
	if err != nil {
		writeError(c, err)
		return
	}

	if req.NewStatus == nil {
		out, err := h.workflows.Reassign(ctx, wf.ID, actor, req.NewAssigneeID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, NewResponse(transitionResult{Workflow: out}))
		return
	}

	change, err := h.workflows.RequestTransition(ctx, workflow.TransitionRequest{
		WorkflowID:          wf.ID,
		Actor:               actor,
		NewStatus:           *req.NewStatus,
		Comment:             req.Comment,
		NewAssigneeID:       req.NewAssigneeID,
		HasRequestedChanges: req.HasRequestedChanges,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	head, err := h.workflows.Get(ctx, wf.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResponse(transitionResult{Change: change, Workflow: head}))
}

func (h *Handler) UpdateTabStatus(c *gin.Context) {
	u, ok := user(c)
	if !ok {
		return
	}
	var req workflowTabStatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewError("invalid request body"))
		return
	}
	tab, err := models.ParseTab(req.Tab)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewError(err.Error()))
		return
	}

	ctx := c.Request.Context()
	actor, wf, err := h.boreholes.ResolveWorkflow(ctx, u, req.BoreholeID)
	if err != nil {
		writeError(c, err)
		return
	}
	out, err := h.workflows.UpdateTabStatus(ctx, workflow.TabStatusRequest{
		WorkflowID: wf.ID,
		Actor:      actor,
		Tab:        tab,
		Changes:    req.Changes,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResponse(out))
}

func (h *Handler) SetTabStatusField(c *gin.Context) {
	u, ok := user(c)
	if !ok {
		return
	}
	var req tabStatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewError("invalid request body"))
		return
	}
	tab, err := models.ParseTab(req.Tab)
	if err != nil {
		c.JSON(http.StatusBadRequest, NewError(err.Error()))
		return
	}

	ctx := c.Request.Context()
	actor, wf, err := h.boreholes.ResolveWorkflow(ctx, u, req.BoreholeID)
	if err != nil {
		writeError(c, err)
		return
	}
	out, err := h.workflows.SetTabField(ctx, wf.ID, actor, tab, req.Field, *req.NewStatus)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewResponse(out))
}

// boreholeWorkflow loads the workflow of the :id borehole for a member.
func (h *Handler) boreholeWorkflow(c *gin.Context) (*models.Workflow, bool) {
	u, ok := user(c)
	if !ok {
		return nil, false
	}
	id, ok := parseID(c, "id")
	if !ok {
		return nil, false
	}
	_, wf, err := h.boreholes.ResolveWorkflow(c.Request.Context(), u, id)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return wf, true
}
