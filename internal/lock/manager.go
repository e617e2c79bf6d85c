// Package lock implements the single-editor lock on a borehole record.
//
// The lock lives in the locked_at and locked_by_id columns of the borehole
// row. Every state change is one conditional UPDATE, so two callers racing
// for the same record cannot both win. A lock untouched for longer than the
// TTL is considered abandoned and may be taken over by anyone.
package lock

import (
	"context"
	"time"

	"borehole-workflow/internal/metrics"
	"borehole-workflow/internal/models"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const DefaultTTL = 30 * time.Minute

// Token describes a successful Acquire.
type Token struct {
	BoreholeID uint      `json:"boreholeId"`
	UserID     uint      `json:"userId"`
	LockedAt   time.Time `json:"lockedAt"`
	Refreshed  bool      `json:"refreshed"`
	// Displaced is the previous holder of a stale lock that was taken over.
	Displaced *uint `json:"displaced,omitempty"`
}

// State is the lock view of one borehole.
type State struct {
	BoreholeID uint       `json:"boreholeId"`
	LockedByID *uint      `json:"lockedById"`
	LockedAt   *time.Time `json:"lockedAt"`
	ExpiresAt  *time.Time `json:"expiresAt"`
	Stale      bool       `json:"stale"`
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

type Manager struct {
	db      *gorm.DB
	ttl     time.Duration
	now     func() time.Time
	metrics *metrics.Metrics
}

func NewManager(db *gorm.DB, ttl time.Duration, opts ...Option) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Manager{
		db:  db,
		ttl: ttl,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// IsStale reports whether a lock taken at lockedAt has outlived ttl.
func IsStale(lockedAt *time.Time, now time.Time, ttl time.Duration) bool {
	return lockedAt != nil && now.Sub(*lockedAt) > ttl
}

// Acquire locks the borehole for userID. Acquiring a lock the user already
// holds refreshes it. A stale lock of another user is taken over.
func (m *Manager) Acquire(ctx context.Context, boreholeID, userID uint) (*Token, error) {
	now := m.now().UTC()
	cutoff := now.Add(-m.ttl)
	logger := log.WithField("borehole_id", boreholeID).WithField("user_id", userID)

	var token *Token
	err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		prev, err := loadLock(tx, boreholeID)
		if err != nil {
			return err
		}

		res := tx.Model(&models.Borehole{}).
			Where("id = ?", boreholeID).
			Where("locked_at IS NULL OR locked_by_id = ? OR locked_at < ?", userID, cutoff).
			UpdateColumns(map[string]interface{}{
				"locked_at":    now,
				"locked_by_id": userID,
			})
		if res.Error != nil {
			return errors.Wrap(res.Error, "failed to acquire lock")
		}
		if res.RowsAffected == 0 {
			cur, err := loadLock(tx, boreholeID)
			if err != nil {
				return err
			}
			if cur.LockedByID == nil || cur.LockedAt == nil {
				return errors.Wrap(ErrAlreadyLocked, "lock changed concurrently")
			}
			return &AlreadyLockedError{By: *cur.LockedByID, Since: *cur.LockedAt}
		}

		token = &Token{BoreholeID: boreholeID, UserID: userID, LockedAt: now}
		if prev.LockedByID != nil {
			if *prev.LockedByID == userID {
				token.Refreshed = true
			} else {
				displaced := *prev.LockedByID
				token.Displaced = &displaced
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyLocked) {
			m.metrics.Lock(metrics.LockRejected)
			logger.Debug("borehole lock rejected")
		}
		return nil, err
	}

	switch {
	case token.Displaced != nil:
		m.metrics.Lock(metrics.LockStolen)
		logger.WithField("displaced_user_id", *token.Displaced).Warn("stale borehole lock taken over")
	case token.Refreshed:
		m.metrics.Lock(metrics.LockRefreshed)
	default:
		m.metrics.Lock(metrics.LockAcquired)
		logger.Debug("borehole locked")
	}
	return token, nil
}

// Release clears the lock if userID holds it.
func (m *Manager) Release(ctx context.Context, boreholeID, userID uint) error {
	res := m.db.WithContext(ctx).
		Model(&models.Borehole{}).
		Where("id = ? AND locked_by_id = ?", boreholeID, userID).
		UpdateColumns(map[string]interface{}{
			"locked_at":    nil,
			"locked_by_id": nil,
		})
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to release lock")
	}
	if res.RowsAffected == 0 {
		if _, err := loadLock(m.db.WithContext(ctx), boreholeID); err != nil {
			return err
		}
		m.metrics.Lock(metrics.LockNotHolder)
		return ErrNotHolder
	}

	m.metrics.Lock(metrics.LockReleased)
	log.WithField("borehole_id", boreholeID).WithField("user_id", userID).Debug("borehole unlocked")
	return nil
}

// ReleaseStale clears every lock older than the TTL and returns how many
// were cleared.
func (m *Manager) ReleaseStale(ctx context.Context) (int64, error) {
	cutoff := m.now().UTC().Add(-m.ttl)
	res := m.db.WithContext(ctx).
		Model(&models.Borehole{}).
		Where("locked_at IS NOT NULL AND locked_at < ?", cutoff).
		UpdateColumns(map[string]interface{}{
			"locked_at":    nil,
			"locked_by_id": nil,
		})
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "failed to release stale locks")
	}
	m.metrics.LockN(metrics.LockSweptStale, res.RowsAffected)
	return res.RowsAffected, nil
}

func (m *Manager) Status(ctx context.Context, boreholeID uint) (*State, error) {
	b, err := loadLock(m.db.WithContext(ctx), boreholeID)
	if err != nil {
		return nil, err
	}
	return m.state(b), nil
}

// CheckEditable returns an AlreadyLockedError if b is locked by someone
// other than userID. Stale locks do not block.
func (m *Manager) CheckEditable(b *models.Borehole, userID uint) error {
	if b.LockedByID == nil || *b.LockedByID == userID {
		return nil
	}
	if IsStale(b.LockedAt, m.now(), m.ttl) {
		return nil
	}
	since := time.Time{}
	if b.LockedAt != nil {
		since = *b.LockedAt
	}
	return &AlreadyLockedError{By: *b.LockedByID, Since: since}
}

func (m *Manager) state(b *models.Borehole) *State {
	s := &State{
		BoreholeID: b.ID,
		LockedByID: b.LockedByID,
		LockedAt:   b.LockedAt,
	}
	if b.LockedAt != nil {
		expires := b.LockedAt.Add(m.ttl)
		s.ExpiresAt = &expires
		s.Stale = IsStale(b.LockedAt, m.now(), m.ttl)
	}
	return s
}

func loadLock(db *gorm.DB, boreholeID uint) (*models.Borehole, error) {
	var b models.Borehole
	err := db.Select("id", "locked_at", "locked_by_id").First(&b, boreholeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to load borehole lock")
	}
	return &b, nil
}
