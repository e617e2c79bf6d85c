package database

import (
	"context"

	"borehole-workflow/internal/models"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

type UserStore interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

func NewUserStore(db *gorm.DB) UserStore {
	return &userStore{db: db}
}

type userStore struct {
	db *gorm.DB
}

func (s *userStore) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, userErr(err)
	}
	return &user, nil
}

func (s *userStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, userErr(err)
	}
	return &user, nil
}

func userErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	}
	return errors.Wrap(err, "failed to load user")
}
