package database

import (
	"borehole-workflow/internal/models"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const DemoWorkgroup = "Demo"

// SeedAdmin creates the administrator if no admin exists yet.
func SeedAdmin(db *gorm.DB, username, password string) error {
	var count int64
	if err := db.Model(&models.User{}).
		Where("is_admin = ?", true).
		Count(&count).Error; err != nil {
		return errors.Wrap(err, "failed to check admin user")
	}
	if count > 0 {
		return nil
	}

	admin, err := newUser(username, password)
	if err != nil {
		return err
	}
	admin.IsAdmin = true
	if err := db.Create(&admin).Error; err != nil {
		return errors.Wrap(err, "failed to create default admin")
	}

	log.WithField("username", username).Info("created default admin user")
	return nil
}

// SeedDemoUsers creates a demo workgroup with one account per role.
func SeedDemoUsers(db *gorm.DB) error {
	type seedUser struct {
		Username string
		Password string
		Role     models.Role
	}

	users := []seedUser{
		{Username: "viewer@bdms.local", Password: "Viewer123!", Role: models.RoleView},
		{Username: "editor@bdms.local", Password: "Editor123!", Role: models.RoleEditor},
		{Username: "controller@bdms.local", Password: "Controller123!", Role: models.RoleController},
		{Username: "validator@bdms.local", Password: "Validator123!", Role: models.RoleValidator},
		{Username: "publisher@bdms.local", Password: "Publisher123!", Role: models.RolePublisher},
	}

	wg := models.Workgroup{Name: DemoWorkgroup}
	if err := db.Where(models.Workgroup{Name: DemoWorkgroup}).FirstOrCreate(&wg).Error; err != nil {
		return errors.Wrap(err, "failed to create demo workgroup")
	}

	for _, u := range users {
		logger := log.WithField("username", u.Username)

		var count int64
		if err := db.Model(&models.User{}).
			Where("username = ?", u.Username).
			Count(&count).Error; err != nil {
			logger.WithError(err).Error("failed to check seed user")
			continue
		}
		if count > 0 {
			continue
		}

		user, err := newUser(u.Username, u.Password)
		if err != nil {
			logger.WithError(err).Error("failed to hash seed user password")
			continue
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			return tx.Create(&models.UserWorkgroupRole{
				UserID:      user.ID,
				WorkgroupID: wg.ID,
				Role:        u.Role,
			}).Error
		})
		if err != nil {
			logger.WithError(err).Error("failed to create seed user")
			continue
		}

		logger.WithField("role", u.Role.String()).Info("created seed user")
	}
	return nil
}

func newUser(username, password string) (models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, errors.Wrap(err, "failed to hash password")
	}
	return models.User{
		Username:     username,
		PasswordHash: string(hash),
	}, nil
}
