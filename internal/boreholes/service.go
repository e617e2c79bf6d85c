// Package boreholes owns the borehole record around the review workflow:
// creation with its Draft workflow, the lock- and role-gated edit of the few
// fields the engine keeps, and resolution of a user's role for a borehole.
package boreholes

import (
	"context"
	"strings"

	"borehole-workflow/internal/lock"
	"borehole-workflow/internal/models"
	"borehole-workflow/internal/workflow"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("borehole not found")
	ErrForbidden    = errors.New("user may not edit this borehole")
	ErrNotMember    = errors.New("user is not a member of the borehole's workgroup")
	ErrInvalidInput = errors.New("invalid borehole data")
)

type CreateInput struct {
	Name        string `json:"name"`
	Remarks     string `json:"remarks"`
	WorkgroupID uint   `json:"workgroupId"`
}

// UpdateInput changes only the fields that are set.
type UpdateInput struct {
	Name    *string `json:"name"`
	Remarks *string `json:"remarks"`
}

type Service struct {
	db        *gorm.DB
	workflows *workflow.Service
	locks     *lock.Manager
}

func NewService(db *gorm.DB, workflows *workflow.Service, locks *lock.Manager) *Service {
	return &Service{db: db, workflows: workflows, locks: locks}
}

// Create stores a borehole together with its Draft workflow.
func (s *Service) Create(ctx context.Context, user *models.User, in CreateInput) (*models.Borehole, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, errors.Wrap(ErrInvalidInput, "name is required")
	}
	if in.WorkgroupID == 0 {
		return nil, errors.Wrap(ErrInvalidInput, "workgroupId is required")
	}

	role, err := s.roleInWorkgroup(ctx, s.db, user, in.WorkgroupID)
	if err != nil {
		return nil, err
	}
	if role < models.RoleEditor {
		return nil, errors.Wrapf(ErrForbidden, "%s cannot create boreholes", role)
	}

	b := &models.Borehole{
		Name:        in.Name,
		Remarks:     in.Remarks,
		WorkgroupID: in.WorkgroupID,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(b).Error; err != nil {
			return errors.Wrap(err, "failed to create borehole")
		}
		wf, err := s.workflows.Create(ctx, tx, b.ID)
		if err != nil {
			return err
		}
		b.Workflow = wf
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithField("borehole_id", b.ID).
		WithField("user_id", user.ID).
		Info("borehole created")
	return b, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Borehole, error) {
	return getBorehole(s.db.WithContext(ctx), id)
}

// Update edits name and remarks. The caller must hold the lock (or the
// borehole must be unlocked) and have the edit role of the current status.
func (s *Service) Update(ctx context.Context, id uint, user *models.User, in UpdateInput) (*models.Borehole, error) {
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		if trimmed == "" {
			return nil, errors.Wrap(ErrInvalidInput, "name must not be empty")
		}
		in.Name = &trimmed
	}

	var out *models.Borehole
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := getBorehole(tx, id)
		if err != nil {
			return err
		}
		role, err := s.roleInWorkgroup(ctx, tx, user, b.WorkgroupID)
		if err != nil {
			return err
		}
		if err := s.locks.CheckEditable(b, user.ID); err != nil {
			return err
		}
		if need := s.workflows.Policy().EditRole(b.Workflow.Status); role < need {
			return errors.Wrapf(ErrForbidden, "%s borehole needs %s to edit", b.Workflow.Status, need)
		}

		updates := map[string]interface{}{}
		if in.Name != nil {
			updates["name"] = *in.Name
			b.Name = *in.Name
		}
		if in.Remarks != nil {
			updates["remarks"] = *in.Remarks
			b.Remarks = *in.Remarks
		}
		if len(updates) > 0 {
			// b carries the preloaded workflow; updating through it would
			// also upsert the workflow head outside its versioned write.
			err := tx.Model(&models.Borehole{}).
				Where("id = ?", b.ID).
				Updates(updates).Error
			if err != nil {
				return errors.Wrap(err, "failed to update borehole")
			}
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RoleFor resolves the role of user for the borehole's workgroup.
func (s *Service) RoleFor(ctx context.Context, user *models.User, boreholeID uint) (models.Role, error) {
	b, err := getBorehole(s.db.WithContext(ctx), boreholeID)
	if err != nil {
		return models.RoleView, err
	}
	return s.roleInWorkgroup(ctx, s.db, user, b.WorkgroupID)
}

// ResolveWorkflow returns the borehole's workflow and the acting user with
// the role resolved for the borehole's workgroup.
func (s *Service) ResolveWorkflow(ctx context.Context, user *models.User, boreholeID uint) (workflow.Actor, *models.Workflow, error) {
	b, err := getBorehole(s.db.WithContext(ctx), boreholeID)
	if err != nil {
		return workflow.Actor{}, nil, err
	}
	role, err := s.roleInWorkgroup(ctx, s.db, user, b.WorkgroupID)
	if err != nil {
		return workflow.Actor{}, nil, err
	}
	return workflow.Actor{UserID: user.ID, Role: role}, b.Workflow, nil
}

// Admins act as Publisher everywhere.
func (s *Service) roleInWorkgroup(ctx context.Context, db *gorm.DB, user *models.User, workgroupID uint) (models.Role, error) {
	if user.IsAdmin {
		return models.RolePublisher, nil
	}
	var grant models.UserWorkgroupRole
	err := db.WithContext(ctx).
		Where("user_id = ? AND workgroup_id = ?", user.ID, workgroupID).
		First(&grant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RoleView, ErrNotMember
		}
		return models.RoleView, errors.Wrap(err, "failed to load workgroup role")
	}
	return grant.Role, nil
}

func getBorehole(db *gorm.DB, id uint) (*models.Borehole, error) {
	var b models.Borehole
	if err := db.Preload("Workflow").First(&b, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to load borehole")
	}
	if b.Workflow == nil {
		return nil, errors.Errorf("borehole %d has no workflow", id)
	}
	return &b, nil
}
