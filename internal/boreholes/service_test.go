package boreholes

import (
	"context"
	"errors"
	"testing"
	"time"

	"borehole-workflow/internal/lock"
	"borehole-workflow/internal/models"
	"borehole-workflow/internal/testutil"
	"borehole-workflow/internal/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	svc       *Service
	workflows *workflow.Service
	locks     *lock.Manager
	group     models.Workgroup
	users     map[models.Role]*models.User
	admin     *models.User
	outsider  *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	f := &fixture{
		db:        db,
		workflows: workflow.NewService(db, workflow.DefaultPolicy()),
		locks:     lock.NewManager(db, 30*time.Minute),
		users:     map[models.Role]*models.User{},
	}
	f.svc = NewService(db, f.workflows, f.locks)

	f.group = models.Workgroup{Name: "Geology"}
	require.NoError(t, db.Create(&f.group).Error)

	for _, role := range []models.Role{models.RoleView, models.RoleEditor, models.RoleController, models.RoleValidator, models.RolePublisher} {
		u := &models.User{Username: role.String() + "@test"}
		require.NoError(t, db.Create(u).Error)
		require.NoError(t, db.Create(&models.UserWorkgroupRole{UserID: u.ID, WorkgroupID: f.group.ID, Role: role}).Error)
		f.users[role] = u
	}

	f.admin = &models.User{Username: "admin@test", IsAdmin: true}
	require.NoError(t, db.Create(f.admin).Error)
	f.outsider = &models.User{Username: "outsider@test"}
	require.NoError(t, db.Create(f.outsider).Error)
	return f
}

func (f *fixture) create(t *testing.T) *models.Borehole {
	t.Helper()
	b, err := f.svc.Create(context.Background(), f.users[models.RoleEditor], CreateInput{Name: "BH-1", WorkgroupID: f.group.ID})
	require.NoError(t, err)
	return b
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	b, err := f.svc.Create(ctx, f.users[models.RoleEditor], CreateInput{Name: "  BH-1 ", Remarks: "first", WorkgroupID: f.group.ID})
	require.NoError(t, err)
	assert.Equal(t, "BH-1", b.Name)
	require.NotNil(t, b.Workflow)
	assert.Equal(t, models.StatusDraft, b.Workflow.Status)

	wf, err := f.workflows.GetByBorehole(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.Workflow.ID, wf.ID)
	assert.False(t, wf.HasRequestedChanges)

	_, err = f.svc.Create(ctx, f.users[models.RoleView], CreateInput{Name: "BH-2", WorkgroupID: f.group.ID})
	assert.True(t, errors.Is(err, ErrForbidden))

	_, err = f.svc.Create(ctx, f.outsider, CreateInput{Name: "BH-2", WorkgroupID: f.group.ID})
	assert.True(t, errors.Is(err, ErrNotMember))

	_, err = f.svc.Create(ctx, f.users[models.RoleEditor], CreateInput{Name: " ", WorkgroupID: f.group.ID})
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestGet(t *testing.T) {
	f := newFixture(t)
	b := f.create(t)

	got, err := f.svc.Get(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.Name, got.Name)
	require.NotNil(t, got.Workflow)

	_, err = f.svc.Get(context.Background(), 999)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("unlocked draft is editable by an editor", func(t *testing.T) {
		f := newFixture(t)
		b := f.create(t)

		name := "BH-1a"
		out, err := f.svc.Update(ctx, b.ID, f.users[models.RoleEditor], UpdateInput{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "BH-1a", out.Name)

		got, err := f.svc.Get(ctx, b.ID)
		require.NoError(t, err)
		assert.Equal(t, "BH-1a", got.Name)
	})

	t.Run("viewer cannot edit", func(t *testing.T) {
		f := newFixture(t)
		b := f.create(t)
		remarks := "x"
		_, err := f.svc.Update(ctx, b.ID, f.users[models.RoleView], UpdateInput{Remarks: &remarks})
		assert.True(t, errors.Is(err, ErrForbidden))
	})

	t.Run("lock of another user blocks", func(t *testing.T) {
		f := newFixture(t)
		b := f.create(t)
		_, err := f.locks.Acquire(ctx, b.ID, f.users[models.RoleController].ID)
		require.NoError(t, err)

		remarks := "x"
		_, err = f.svc.Update(ctx, b.ID, f.users[models.RoleEditor], UpdateInput{Remarks: &remarks})
		assert.True(t, errors.Is(err, lock.ErrAlreadyLocked))

		_, err = f.svc.Update(ctx, b.ID, f.users[models.RoleController], UpdateInput{Remarks: &remarks})
		require.NoError(t, err)
	})

	t.Run("in review needs the controller", func(t *testing.T) {
		f := newFixture(t)
		b := f.create(t)
		editor := f.users[models.RoleEditor]
		_, err := f.workflows.RequestTransition(ctx, workflow.TransitionRequest{
			WorkflowID: b.Workflow.ID,
			Actor:      workflow.Actor{UserID: editor.ID, Role: models.RoleEditor},
			NewStatus:  models.StatusInReview,
		})
		require.NoError(t, err)

		remarks := "late fix"
		_, err = f.svc.Update(ctx, b.ID, editor, UpdateInput{Remarks: &remarks})
		assert.True(t, errors.Is(err, ErrForbidden))

		_, err = f.svc.Update(ctx, b.ID, f.users[models.RoleController], UpdateInput{Remarks: &remarks})
		require.NoError(t, err)
	})

	t.Run("empty name", func(t *testing.T) {
		f := newFixture(t)
		b := f.create(t)
		empty := ""
		_, err := f.svc.Update(ctx, b.ID, f.users[models.RoleEditor], UpdateInput{Name: &empty})
		assert.True(t, errors.Is(err, ErrInvalidInput))
	})
}

func TestUpdateLeavesWorkflowUntouched(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.create(t)

	var tables []string
	record := func(db *gorm.DB) {
		tables = append(tables, db.Statement.Table)
	}
	require.NoError(t, f.db.Callback().Create().Before("gorm:create").Register("test:record_create", record))
	require.NoError(t, f.db.Callback().Update().Before("gorm:update").Register("test:record_update", record))

	name := "renamed"
	out, err := f.svc.Update(ctx, b.ID, f.users[models.RoleEditor], UpdateInput{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "renamed", out.Name)

	assert.Equal(t, []string{"boreholes"}, tables)

	wf, err := f.workflows.GetByBorehole(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, wf.Version)
}

func TestRoleFor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	b := f.create(t)

	role, err := f.svc.RoleFor(ctx, f.users[models.RoleValidator], b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleValidator, role)

	role, err = f.svc.RoleFor(ctx, f.admin, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RolePublisher, role)

	_, err = f.svc.RoleFor(ctx, f.outsider, b.ID)
	assert.True(t, errors.Is(err, ErrNotMember))

	_, err = f.svc.RoleFor(ctx, f.admin, 999)
	assert.True(t, errors.Is(err, ErrNotFound))

	actor, wf, err := f.svc.ResolveWorkflow(ctx, f.users[models.RoleController], b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleController, actor.Role)
	assert.Equal(t, f.users[models.RoleController].ID, actor.UserID)
	assert.Equal(t, b.Workflow.ID, wf.ID)

	_, _, err = f.svc.ResolveWorkflow(ctx, f.admin, 999)
	assert.True(t, errors.Is(err, ErrNotFound))
}
