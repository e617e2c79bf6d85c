package workflow

import (
	"context"

	"borehole-workflow/internal/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var ErrInconsistentHistory = errors.New("workflow status does not match its history")

// HistoryStore is the append-only ledger of status transitions. It has no
// update or delete on purpose; models.WorkflowChange hooks refuse both.
type HistoryStore interface {
	Append(ctx context.Context, change *models.WorkflowChange) (uint, error)
	// ListFor returns the changes of a workflow oldest first.
	ListFor(ctx context.Context, workflowID uint) ([]models.WorkflowChange, error)
	Last(ctx context.Context, workflowID uint) (*models.WorkflowChange, error)
}

func NewHistoryStore(db *gorm.DB) HistoryStore {
	return &historyStore{db: db}
}

type historyStore struct {
	db *gorm.DB
}

func (s *historyStore) Append(ctx context.Context, change *models.WorkflowChange) (uint, error) {
	if change.ID != 0 {
		return 0, errors.Wrap(models.ErrImmutableChange, "change already has an id")
	}
	if err := s.db.WithContext(ctx).Create(change).Error; err != nil {
		return 0, errors.Wrap(err, "failed to append workflow change")
	}
	return change.ID, nil
}

func (s *historyStore) ListFor(ctx context.Context, workflowID uint) ([]models.WorkflowChange, error) {
	list := []models.WorkflowChange{}
	err := s.db.WithContext(ctx).
		Where("workflow_id = ?", workflowID).
		Order("created_at").
		Order("id").
		Find(&list).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list workflow changes")
	}
	return list, nil
}

func (s *historyStore) Last(ctx context.Context, workflowID uint) (*models.WorkflowChange, error) {
	var rec models.WorkflowChange
	err := s.db.WithContext(ctx).
		Where("workflow_id = ?", workflowID).
		Order("created_at desc").
		Order("id desc").
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "failed to load last workflow change")
	}
	return &rec, nil
}

// checkConsistency compares the head with the newest history entry. A
// workflow without history must still be in Draft.
func checkConsistency(head *models.Workflow, last *models.WorkflowChange) error {
	if last == nil {
		if head.Status != models.StatusDraft {
			return errors.Wrapf(ErrInconsistentHistory, "workflow %d is %s without history", head.ID, head.Status)
		}
		return nil
	}
	if last.ToStatus != head.Status {
		return errors.Wrapf(ErrInconsistentHistory, "workflow %d is %s, last change ends in %s",
			head.ID, head.Status, last.ToStatus)
	}
	return nil
}
