package handlers

import (
	"context"

	"borehole-workflow/internal/boreholes"
	"borehole-workflow/internal/lock"
	"borehole-workflow/internal/models"
	"borehole-workflow/internal/workflow"

	"github.com/stretchr/testify/mock"
)

type mockUsers struct{ mock.Mock }

func (m *mockUsers) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

type mockBoreholes struct{ mock.Mock }

func (m *mockBoreholes) Create(ctx context.Context, user *models.User, in boreholes.CreateInput) (*models.Borehole, error) {
	args := m.Called(ctx, user, in)
	b, _ := args.Get(0).(*models.Borehole)
	return b, args.Error(1)
}

func (m *mockBoreholes) Get(ctx context.Context, id uint) (*models.Borehole, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).(*models.Borehole)
	return b, args.Error(1)
}

func (m *mockBoreholes) Update(ctx context.Context, id uint, user *models.User, in boreholes.UpdateInput) (*models.Borehole, error) {
	args := m.Called(ctx, id, user, in)
	b, _ := args.Get(0).(*models.Borehole)
	return b, args.Error(1)
}

func (m *mockBoreholes) RoleFor(ctx context.Context, user *models.User, boreholeID uint) (models.Role, error) {
	args := m.Called(ctx, user, boreholeID)
	return args.Get(0).(models.Role), args.Error(1)
}

func (m *mockBoreholes) ResolveWorkflow(ctx context.Context, user *models.User, boreholeID uint) (workflow.Actor, *models.Workflow, error) {
	args := m.Called(ctx, user, boreholeID)
	wf, _ := args.Get(1).(*models.Workflow)
	return args.Get(0).(workflow.Actor), wf, args.Error(2)
}

type mockWorkflows struct{ mock.Mock }

func (m *mockWorkflows) Get(ctx context.Context, workflowID uint) (*models.Workflow, error) {
	args := m.Called(ctx, workflowID)
	wf, _ := args.Get(0).(*models.Workflow)
	return wf, args.Error(1)
}

func (m *mockWorkflows) History(ctx context.Context, workflowID uint) ([]models.WorkflowChange, error) {
	args := m.Called(ctx, workflowID)
	list, _ := args.Get(0).([]models.WorkflowChange)
	return list, args.Error(1)
}

func (m *mockWorkflows) RequestTransition(ctx context.Context, req workflow.TransitionRequest) (*models.WorkflowChange, error) {
	args := m.Called(ctx, req)
	c, _ := args.Get(0).(*models.WorkflowChange)
	return c, args.Error(1)
}

func (m *mockWorkflows) UpdateTabStatus(ctx context.Context, req workflow.TabStatusRequest) (*models.Workflow, error) {
	args := m.Called(ctx, req)
	wf, _ := args.Get(0).(*models.Workflow)
	return wf, args.Error(1)
}

func (m *mockWorkflows) SetTabField(ctx context.Context, workflowID uint, actor workflow.Actor, tab models.Tab, field string, value bool) (*models.Workflow, error) {
	args := m.Called(ctx, workflowID, actor, tab, field, value)
	wf, _ := args.Get(0).(*models.Workflow)
	return wf, args.Error(1)
}

func (m *mockWorkflows) Reassign(ctx context.Context, workflowID uint, actor workflow.Actor, assigneeID *uint) (*models.Workflow, error) {
	args := m.Called(ctx, workflowID, actor, assigneeID)
	wf, _ := args.Get(0).(*models.Workflow)
	return wf, args.Error(1)
}

type mockLocks struct{ mock.Mock }

func (m *mockLocks) Acquire(ctx context.Context, boreholeID, userID uint) (*lock.Token, error) {
	args := m.Called(ctx, boreholeID, userID)
	t, _ := args.Get(0).(*lock.Token)
	return t, args.Error(1)
}

func (m *mockLocks) Release(ctx context.Context, boreholeID, userID uint) error {
	return m.Called(ctx, boreholeID, userID).Error(0)
}

func (m *mockLocks) Status(ctx context.Context, boreholeID uint) (*lock.State, error) {
	args := m.Called(ctx, boreholeID)
	s, _ := args.Get(0).(*lock.State)
	return s, args.Error(1)
}
