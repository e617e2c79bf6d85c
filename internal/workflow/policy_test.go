package workflow

import (
	"testing"

	"borehole-workflow/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestRequiredRole(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, models.RoleEditor, p.RequiredRole(models.StatusDraft))
	assert.Equal(t, models.RoleEditor, p.RequiredRole(models.StatusInReview))
	assert.Equal(t, models.RoleController, p.RequiredRole(models.StatusReviewed))
	assert.Equal(t, models.RolePublisher, p.RequiredRole(models.StatusPublished))

	p.ValidatorCanPublish = true
	assert.Equal(t, models.RoleValidator, p.RequiredRole(models.StatusPublished))
}

func TestAllowedTransition(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name string
		role models.Role
		from models.WorkflowStatus
		to   models.WorkflowStatus
		want bool
	}{
		{"editor submits", models.RoleEditor, models.StatusDraft, models.StatusInReview, true},
		{"viewer cannot submit", models.RoleView, models.StatusDraft, models.StatusInReview, false},
		{"editor cannot review", models.RoleEditor, models.StatusInReview, models.StatusReviewed, false},
		{"controller reviews", models.RoleController, models.StatusInReview, models.StatusReviewed, true},
		{"validator reviews like controller", models.RoleValidator, models.StatusInReview, models.StatusReviewed, true},
		{"validator cannot publish", models.RoleValidator, models.StatusReviewed, models.StatusPublished, false},
		{"publisher publishes", models.RolePublisher, models.StatusReviewed, models.StatusPublished, true},
		{"skip is never allowed", models.RolePublisher, models.StatusDraft, models.StatusPublished, false},
		{"backward step other than draft", models.RolePublisher, models.StatusPublished, models.StatusReviewed, false},
		{"same status", models.RolePublisher, models.StatusReviewed, models.StatusReviewed, false},
		{"editor rejects in review", models.RoleEditor, models.StatusInReview, models.StatusDraft, true},
		{"controller rejects reviewed", models.RoleController, models.StatusReviewed, models.StatusDraft, true},
		{"editor cannot reject reviewed", models.RoleEditor, models.StatusReviewed, models.StatusDraft, false},
		{"controller cannot reject published", models.RoleController, models.StatusPublished, models.StatusDraft, false},
		{"publisher rejects published", models.RolePublisher, models.StatusPublished, models.StatusDraft, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.AllowedTransition(tt.role, tt.from, tt.to))
		})
	}

	t.Run("validator publishes when allowed", func(t *testing.T) {
		p := DefaultPolicy()
		p.ValidatorCanPublish = true
		assert.True(t, p.AllowedTransition(models.RoleValidator, models.StatusReviewed, models.StatusPublished))
		assert.False(t, p.AllowedTransition(models.RoleController, models.StatusReviewed, models.StatusPublished))
	})
}

func TestEditRole(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, models.RoleEditor, p.EditRole(models.StatusDraft))
	assert.Equal(t, models.RoleController, p.EditRole(models.StatusInReview))
	assert.Equal(t, models.RolePublisher, p.EditRole(models.StatusReviewed))
	assert.Equal(t, models.RolePublisher, p.EditRole(models.StatusPublished))
}
