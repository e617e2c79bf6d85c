package handlers

import (
	"context"

	"borehole-workflow/internal/boreholes"
	"borehole-workflow/internal/lock"
	"borehole-workflow/internal/models"
	"borehole-workflow/internal/workflow"
)

type UserService interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type BoreholeService interface {
	Create(ctx context.Context, user *models.User, in boreholes.CreateInput) (*models.Borehole, error)
	Get(ctx context.Context, id uint) (*models.Borehole, error)
	Update(ctx context.Context, id uint, user *models.User, in boreholes.UpdateInput) (*models.Borehole, error)
	RoleFor(ctx context.Context, user *models.User, boreholeID uint) (models.Role, error)
	ResolveWorkflow(ctx context.Context, user *models.User, boreholeID uint) (workflow.Actor, *models.Workflow, error)
}

type WorkflowService interface {
	Get(ctx context.Context, workflowID uint) (*models.Workflow, error)
	History(ctx context.Context, workflowID uint) ([]models.WorkflowChange, error)
	RequestTransition(ctx context.Context, req workflow.TransitionRequest) (*models.WorkflowChange, error)
	UpdateTabStatus(ctx context.Context, req workflow.TabStatusRequest) (*models.Workflow, error)
	SetTabField(ctx context.Context, workflowID uint, actor workflow.Actor, tab models.Tab, field string, value bool) (*models.Workflow, error)
	Reassign(ctx context.Context, workflowID uint, actor workflow.Actor, assigneeID *uint) (*models.Workflow, error)
}

type LockService interface {
	Acquire(ctx context.Context, boreholeID, userID uint) (*lock.Token, error)
	Release(ctx context.Context, boreholeID, userID uint) error
	Status(ctx context.Context, boreholeID uint) (*lock.State, error)
}

// Handler serves the JSON API.
type Handler struct {
	users     UserService
	boreholes BoreholeService
	workflows WorkflowService
	locks     LockService
}

func New(users UserService, boreholes BoreholeService, workflows WorkflowService, locks LockService) *Handler {
	return &Handler{
		users:     users,
		boreholes: boreholes,
		workflows: workflows,
		locks:     locks,
	}
}
