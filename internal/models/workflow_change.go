package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrImmutableChange = errors.New("workflow changes are append-only")

// WorkflowChange is one audit entry of the workflow history. There is no
// updated_at/updated_by: rows are written once and never touched again.
type WorkflowChange struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	WorkflowID uint           `gorm:"index;not null" json:"workflowId"`
	FromStatus WorkflowStatus `gorm:"type:varchar(20);not null" json:"fromStatus"`
	ToStatus   WorkflowStatus `gorm:"type:varchar(20);not null" json:"toStatus"`
	Comment    *string        `gorm:"type:text" json:"comment"`

	CreatedByID *uint     `json:"createdById"`
	CreatedAt   time.Time `gorm:"index;not null" json:"createdAt"`

	// assignee at the time of the change
	AssigneeID *uint `json:"assigneeId"`
}

func (WorkflowChange) TableName() string {
	return "workflow_changes"
}

func (WorkflowChange) BeforeUpdate(*gorm.DB) error {
	return ErrImmutableChange
}

func (WorkflowChange) BeforeDelete(*gorm.DB) error {
	return ErrImmutableChange
}
