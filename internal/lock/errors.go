package lock

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrNotFound      = errors.New("borehole not found")
	ErrAlreadyLocked = errors.New("borehole is locked by another user")
	ErrNotHolder     = errors.New("lock is not held by this user")
)

// AlreadyLockedError reports who holds the lock and since when.
type AlreadyLockedError struct {
	By    uint
	Since time.Time
}

func (e *AlreadyLockedError) Error() string {
	return fmt.Sprintf("borehole is locked by user %d since %s", e.By, e.Since.Format(time.RFC3339))
}

func (e *AlreadyLockedError) Is(target error) bool {
	return target == ErrAlreadyLocked
}
