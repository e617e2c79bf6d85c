package database

import (
	"time"

	"borehole-workflow/internal/models"

	gormlogrus "github.com/onrik/gorm-logrus"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

type Options struct {
	Driver      string
	DSN         string
	MaxAttempts int
	RetryDelay  time.Duration
	Debug       bool
}

// Open connects with retries; the database container usually starts slower
// than the service.
func Open(opts Options) (*gorm.DB, error) {
	attempts := opts.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var (
		db  *gorm.DB
		err error
	)
	for i := 1; i <= attempts; i++ {
		log.WithField("attempt", i).WithField("max_attempts", attempts).Info("connecting to DB")

		db, err = gorm.Open(dialector(opts.Driver, opts.DSN), &gorm.Config{
			Logger: gormlogrus.New(),
		})
		if err == nil {
			break
		}

		log.WithError(err).Warn("failed to connect to DB")
		if i < attempts {
			time.Sleep(opts.RetryDelay)
		}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to connect to db after %d attempts", attempts)
	}

	if opts.Debug {
		db.Logger = logger.Default.LogMode(logger.Info)
		db = db.Debug()
	}
	log.WithField("driver", opts.Driver).Info("connected to DB successfully")
	return db, nil
}

func dialector(driver, dsn string) gorm.Dialector {
	if driver == "sqlite" {
		return sqlite.Open(dsn)
	}
	return postgres.Open(dsn)
}

// Init opens the connection and keeps it in DB for the command entrypoints.
func Init(opts Options) error {
	db, err := Open(opts)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Workgroup{},
		&models.UserWorkgroupRole{},
		&models.Borehole{},
		&models.Workflow{},
		&models.WorkflowChange{},
	)
	if err != nil {
		return errors.Wrap(err, "failed to migrate")
	}
	return nil
}
