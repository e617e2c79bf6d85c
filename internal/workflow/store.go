package workflow

import (
	"context"

	"borehole-workflow/internal/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// HeadStore persists the mutable Workflow row.
type HeadStore interface {
	Create(ctx context.Context, rec *models.Workflow) error
	GetByID(ctx context.Context, id uint) (*models.Workflow, error)
	GetByBorehole(ctx context.Context, boreholeID uint) (*models.Workflow, error)
	// Update writes rec only if the stored version still equals expectedVersion.
	Update(ctx context.Context, rec *models.Workflow, expectedVersion int) error
}

// NewHeadStore binds the store to db, which may be a transaction.
func NewHeadStore(db *gorm.DB) HeadStore {
	return &headStore{db: db}
}

type headStore struct {
	db *gorm.DB
}

func (s *headStore) Create(ctx context.Context, rec *models.Workflow) error {
	if rec.Status == "" {
		rec.Status = models.StatusDraft
	}
	if rec.Version == 0 {
		rec.Version = 1
	}
	if err := s.db.WithContext(ctx).Create(rec).Error; err != nil {
		return errors.Wrap(err, "failed to create workflow")
	}
	return nil
}

func (s *headStore) GetByID(ctx context.Context, id uint) (*models.Workflow, error) {
	var rec models.Workflow
	err := s.db.WithContext(ctx).First(&rec, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to load workflow")
	}
	return &rec, nil
}

func (s *headStore) GetByBorehole(ctx context.Context, boreholeID uint) (*models.Workflow, error) {
	var rec models.Workflow
	err := s.db.WithContext(ctx).
		Where("borehole_id = ?", boreholeID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to load workflow")
	}
	return &rec, nil
}

func (s *headStore) Update(ctx context.Context, rec *models.Workflow, expectedVersion int) error {
	res := s.db.WithContext(ctx).
		Model(rec).
		Where("version = ?", expectedVersion).
		Select("*").
		Omit("id", "created_at", "borehole_id").
		Updates(rec)
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to update workflow")
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}
