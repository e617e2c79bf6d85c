package workflow

import (
	"context"
	"strings"
	"time"

	"borehole-workflow/internal/metrics"
	"borehole-workflow/internal/models"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// Actor is the acting user with the role already resolved for the
// borehole's workgroup.
type Actor struct {
	UserID uint
	Role   models.Role
}

type TransitionRequest struct {
	WorkflowID          uint
	Actor               Actor
	NewStatus           models.WorkflowStatus
	Comment             *string
	NewAssigneeID       *uint
	HasRequestedChanges *bool
}

type TabStatusRequest struct {
	WorkflowID uint
	Actor      Actor
	Tab        models.Tab
	Changes    map[string]bool
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// Service is the review state machine. Every write runs in its own
// transaction and is guarded by the head row version.
type Service struct {
	db      *gorm.DB
	policy  Policy
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(db *gorm.DB, policy Policy, opts ...Option) *Service {
	s := &Service{
		db:     db,
		policy: policy,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Policy() Policy {
	return s.policy
}

// Create starts a Draft workflow for a borehole inside the caller's transaction.
func (s *Service) Create(ctx context.Context, tx *gorm.DB, boreholeID uint) (*models.Workflow, error) {
	rec := &models.Workflow{
		BoreholeID: boreholeID,
		Status:     models.StatusDraft,
		Version:    1,
	}
	if err := NewHeadStore(tx).Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) Get(ctx context.Context, workflowID uint) (*models.Workflow, error) {
	return NewHeadStore(s.db).GetByID(ctx, workflowID)
}

func (s *Service) GetByBorehole(ctx context.Context, boreholeID uint) (*models.Workflow, error) {
	return NewHeadStore(s.db).GetByBorehole(ctx, boreholeID)
}

func (s *Service) History(ctx context.Context, workflowID uint) ([]models.WorkflowChange, error) {
	if _, err := NewHeadStore(s.db).GetByID(ctx, workflowID); err != nil {
		return nil, err
	}
	return NewHistoryStore(s.db).ListFor(ctx, workflowID)
}

// CheckConsistency verifies that the head status equals the target status of
// the newest history entry.
func (s *Service) CheckConsistency(ctx context.Context, workflowID uint) error {
	head, err := NewHeadStore(s.db).GetByID(ctx, workflowID)
	if err != nil {
		return err
	}
	last, err := NewHistoryStore(s.db).Last(ctx, workflowID)
	if err != nil {
		return err
	}
	return checkConsistency(head, last)
}

// RequestTransition validates and applies a status change. The history entry
// and the new head are written in one transaction; a concurrent writer makes
// the call fail with ErrConflict and nothing is stored.
func (s *Service) RequestTransition(ctx context.Context, req TransitionRequest) (*models.WorkflowChange, error) {
	logger := log.WithField("workflow_id", req.WorkflowID).
		WithField("user_id", req.Actor.UserID).
		WithField("to", string(req.NewStatus))

	var (
		from   models.WorkflowStatus
		change *models.WorkflowChange
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		heads := NewHeadStore(tx)
		history := NewHistoryStore(tx)

		wf, err := heads.GetByID(ctx, req.WorkflowID)
		if err != nil {
			return err
		}
		from = wf.Status

		reject, err := s.checkTransition(wf, req)
		if err != nil {
			return err
		}

		assignee := wf.AssigneeID
		if req.NewAssigneeID != nil {
			assignee = req.NewAssigneeID
		}
		actor := req.Actor.UserID

		c := &models.WorkflowChange{
			WorkflowID:  wf.ID,
			FromStatus:  wf.Status,
			ToStatus:    req.NewStatus,
			Comment:     normalizeComment(req.Comment),
			CreatedByID: &actor,
			CreatedAt:   s.now(),
			AssigneeID:  assignee,
		}
		if _, err := history.Append(ctx, c); err != nil {
			return err
		}

		expected := wf.Version
		wf.Status = req.NewStatus
		wf.AssigneeID = assignee
		wf.HasRequestedChanges = reject
		wf.Version++
		if err := heads.Update(ctx, wf, expected); err != nil {
			return err
		}

		change = c
		return nil
	})
	if err != nil {
		s.metrics.Transition(string(from), string(req.NewStatus), metrics.ResultError)
		if errors.Is(err, ErrConflict) {
			s.metrics.Conflict()
			logger.Warn("workflow transition lost a concurrent update")
		} else if !isDomainError(err) {
			logger.WithError(err).Error("workflow transition failed")
		}
		return nil, err
	}

	s.metrics.Transition(string(from), string(req.NewStatus), metrics.ResultSuccess)
	logger.WithField("from", string(from)).
		WithField("change_id", change.ID).
		Info("workflow transition applied")
	return change, nil
}

// checkTransition returns whether req is a reject back to Draft.
func (s *Service) checkTransition(wf *models.Workflow, req TransitionRequest) (reject bool, err error) {
	to := req.NewStatus
	if !to.Valid() {
		return false, errors.Wrapf(ErrIllegalTransition, "unknown status %q", to)
	}
	if to == wf.Status {
		return false, ErrNoOp
	}

	if to == models.StatusDraft {
		if req.HasRequestedChanges == nil || !*req.HasRequestedChanges {
			return false, errors.Wrap(ErrIllegalTransition, "returning to draft requires hasRequestedChanges")
		}
		if normalizeComment(req.Comment) == nil {
			return false, errors.Wrap(ErrIllegalTransition, "returning to draft requires a comment")
		}
		reject = true
	} else if !isAdjacent(wf.Status, to) {
		return false, errors.Wrapf(ErrIllegalTransition, "%s -> %s is not a single forward step", wf.Status, to)
	}

	if !s.policy.AllowedTransition(req.Actor.Role, wf.Status, to) {
		return false, errors.Wrapf(ErrForbidden, "%s may not move %s -> %s", req.Actor.Role, wf.Status, to)
	}

	switch to {
	case models.StatusReviewed:
		if s.policy.RequireReviewedTabsComplete && !IsComplete(wf.ReviewedTabs) {
			return false, errors.Wrap(ErrIncompleteChecklist, "reviewed tabs")
		}
	case models.StatusPublished:
		if s.policy.RequirePublishedTabsComplete && !IsComplete(wf.PublishedTabs) {
			return false, errors.Wrap(ErrIncompleteChecklist, "published tabs")
		}
	}
	return reject, nil
}

// UpdateTabStatus applies a batch of checklist changes to one tab. Unknown
// field names reject the whole batch before anything is written.
func (s *Service) UpdateTabStatus(ctx context.Context, req TabStatusRequest) (*models.Workflow, error) {
	if _, err := models.ParseTab(string(req.Tab)); err != nil {
		return nil, errors.Wrap(ErrInvalidTab, err.Error())
	}

	var out *models.Workflow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		heads := NewHeadStore(tx)

		wf, err := heads.GetByID(ctx, req.WorkflowID)
		if err != nil {
			return err
		}
		if req.Actor.Role < models.RoleEditor {
			return errors.Wrap(ErrForbidden, "viewers cannot change tab status")
		}
		if req.Tab == models.TabPublished && wf.Status == models.StatusPublished &&
			s.policy.ProtectPublishedTabs && req.Actor.Role < s.policy.RequiredRole(models.StatusPublished) {
			return errors.Wrap(ErrForbidden, "published tabs of a published borehole are locked")
		}

		updated, err := ApplyChanges(wf.Tabs(req.Tab), req.Changes)
		if err != nil {
			return err
		}
		wf.SetTabs(req.Tab, updated)

		expected := wf.Version
		wf.Version++
		if err := heads.Update(ctx, wf, expected); err != nil {
			return err
		}
		out = wf
		return nil
	})
	if err != nil {
		s.metrics.TabUpdate(string(req.Tab), metrics.ResultError)
		if errors.Is(err, ErrConflict) {
			s.metrics.Conflict()
		}
		return nil, err
	}

	s.metrics.TabUpdate(string(req.Tab), metrics.ResultSuccess)
	log.WithField("workflow_id", req.WorkflowID).
		WithField("tab", string(req.Tab)).
		WithField("changes", len(req.Changes)).
		Debug("tab status updated")
	return out, nil
}

// SetTabField is the single-field form of UpdateTabStatus.
func (s *Service) SetTabField(ctx context.Context, workflowID uint, actor Actor, tab models.Tab, field string, value bool) (*models.Workflow, error) {
	return s.UpdateTabStatus(ctx, TabStatusRequest{
		WorkflowID: workflowID,
		Actor:      actor,
		Tab:        tab,
		Changes:    map[string]bool{field: value},
	})
}

// Reassign changes the assignee without touching the status. It writes no
// history entry; the assignee is recorded with the next transition.
func (s *Service) Reassign(ctx context.Context, workflowID uint, actor Actor, assigneeID *uint) (*models.Workflow, error) {
	if actor.Role < models.RoleEditor {
		return nil, errors.Wrap(ErrForbidden, "viewers cannot reassign")
	}

	var out *models.Workflow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		heads := NewHeadStore(tx)
		wf, err := heads.GetByID(ctx, workflowID)
		if err != nil {
			return err
		}

		expected := wf.Version
		wf.AssigneeID = assigneeID
		wf.Version++
		if err := heads.Update(ctx, wf, expected); err != nil {
			return err
		}
		out = wf
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			s.metrics.Conflict()
		}
		return nil, err
	}

	log.WithField("workflow_id", workflowID).
		WithField("user_id", actor.UserID).
		Info("workflow reassigned")
	return out, nil
}

func normalizeComment(comment *string) *string {
	if comment == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*comment)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func isDomainError(err error) bool {
	for _, target := range []error{
		ErrNotFound, ErrNoOp, ErrForbidden, ErrIllegalTransition,
		ErrIncompleteChecklist, ErrUnknownField, ErrInvalidTab, ErrConflict,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
