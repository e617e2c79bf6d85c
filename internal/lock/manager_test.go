package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"borehole-workflow/internal/models"
	"borehole-workflow/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"gorm.io/gorm"
)

type manualClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *manualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func setup(t *testing.T) (*Manager, *manualClock, *gorm.DB, uint) {
	t.Helper()
	db := testutil.NewDB(t)
	clock := &manualClock{now: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}

	bh := models.Borehole{Name: "BH-7", WorkgroupID: 1}
	require.NoError(t, db.Create(&bh).Error)

	return NewManager(db, 30*time.Minute, WithClock(clock.Now)), clock, db, bh.ID
}

func loadBorehole(t *testing.T, db *gorm.DB, id uint) models.Borehole {
	t.Helper()
	var bh models.Borehole
	require.NoError(t, db.First(&bh, id).Error)
	return bh
}

func TestAcquire(t *testing.T) {
	ctx := context.Background()

	t.Run("unlocked borehole", func(t *testing.T) {
		m, clock, db, id := setup(t)

		token, err := m.Acquire(ctx, id, 1)
		require.NoError(t, err)
		assert.Equal(t, uint(1), token.UserID)
		assert.False(t, token.Refreshed)
		assert.Nil(t, token.Displaced)

		bh := loadBorehole(t, db, id)
		require.NotNil(t, bh.LockedByID)
		assert.Equal(t, uint(1), *bh.LockedByID)
		require.NotNil(t, bh.LockedAt)
		assert.True(t, clock.Now().Equal(*bh.LockedAt))
	})

	t.Run("re-acquire refreshes", func(t *testing.T) {
		m, clock, db, id := setup(t)

		_, err := m.Acquire(ctx, id, 1)
		require.NoError(t, err)
		clock.Advance(10 * time.Minute)

		token, err := m.Acquire(ctx, id, 1)
		require.NoError(t, err)
		assert.True(t, token.Refreshed)

		bh := loadBorehole(t, db, id)
		assert.Equal(t, uint(1), *bh.LockedByID)
		assert.True(t, clock.Now().Equal(*bh.LockedAt))
	})

	t.Run("held by another user", func(t *testing.T) {
		m, clock, _, id := setup(t)

		_, err := m.Acquire(ctx, id, 1)
		require.NoError(t, err)
		since := clock.Now()
		clock.Advance(5 * time.Minute)

		_, err = m.Acquire(ctx, id, 2)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrAlreadyLocked))

		var locked *AlreadyLockedError
		require.True(t, errors.As(err, &locked))
		assert.Equal(t, uint(1), locked.By)
		assert.True(t, since.Equal(locked.Since))
	})

	t.Run("stale lock is taken over", func(t *testing.T) {
		m, clock, db, id := setup(t)

		_, err := m.Acquire(ctx, id, 1)
		require.NoError(t, err)
		clock.Advance(31 * time.Minute)

		token, err := m.Acquire(ctx, id, 2)
		require.NoError(t, err)
		require.NotNil(t, token.Displaced)
		assert.Equal(t, uint(1), *token.Displaced)

		bh := loadBorehole(t, db, id)
		assert.Equal(t, uint(2), *bh.LockedByID)
	})

	t.Run("unknown borehole", func(t *testing.T) {
		m, _, _, _ := setup(t)
		_, err := m.Acquire(ctx, 999, 1)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("concurrent acquire has one winner", func(t *testing.T) {
		m, _, db, id := setup(t)

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			winners []uint
		)
		for u := uint(1); u <= 6; u++ {
			wg.Add(1)
			go func(user uint) {
				defer wg.Done()
				_, err := m.Acquire(ctx, id, user)
				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					winners = append(winners, user)
					return
				}
				assert.True(t, errors.Is(err, ErrAlreadyLocked), "unexpected error: %v", err)
			}(u)
		}
		wg.Wait()

		require.Len(t, winners, 1)
		bh := loadBorehole(t, db, id)
		assert.Equal(t, winners[0], *bh.LockedByID)
	})
}

func TestRelease(t *testing.T) {
	ctx := context.Background()

	t.Run("holder releases", func(t *testing.T) {
		m, _, db, id := setup(t)
		_, err := m.Acquire(ctx, id, 1)
		require.NoError(t, err)

		require.NoError(t, m.Release(ctx, id, 1))
		bh := loadBorehole(t, db, id)
		assert.Nil(t, bh.LockedAt)
		assert.Nil(t, bh.LockedByID)

		_, err = m.Acquire(ctx, id, 2)
		require.NoError(t, err)
	})

	t.Run("non-holder is rejected", func(t *testing.T) {
		m, _, db, id := setup(t)
		_, err := m.Acquire(ctx, id, 1)
		require.NoError(t, err)

		err = m.Release(ctx, id, 2)
		assert.True(t, errors.Is(err, ErrNotHolder))
		assert.Equal(t, uint(1), *loadBorehole(t, db, id).LockedByID)
	})

	t.Run("releasing an unlocked borehole", func(t *testing.T) {
		m, _, _, id := setup(t)
		assert.True(t, errors.Is(m.Release(ctx, id, 1), ErrNotHolder))
	})

	t.Run("unknown borehole", func(t *testing.T) {
		m, _, _, _ := setup(t)
		assert.True(t, errors.Is(m.Release(ctx, 999, 1), ErrNotFound))
	})
}

func TestIsStale(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ttl := 30 * time.Minute

	assert.False(t, IsStale(nil, now, ttl))

	fresh := now.Add(-29 * time.Minute)
	assert.False(t, IsStale(&fresh, now, ttl))

	edge := now.Add(-ttl)
	assert.False(t, IsStale(&edge, now, ttl))

	old := now.Add(-31 * time.Minute)
	assert.True(t, IsStale(&old, now, ttl))
}

func TestReleaseStaleAndStatus(t *testing.T) {
	ctx := context.Background()
	m, clock, db, id := setup(t)

	other := models.Borehole{Name: "BH-8", WorkgroupID: 1}
	require.NoError(t, db.Create(&other).Error)

	_, err := m.Acquire(ctx, id, 1)
	require.NoError(t, err)
	clock.Advance(20 * time.Minute)
	_, err = m.Acquire(ctx, other.ID, 2)
	require.NoError(t, err)
	clock.Advance(15 * time.Minute)

	state, err := m.Status(ctx, id)
	require.NoError(t, err)
	assert.True(t, state.Stale)
	require.NotNil(t, state.ExpiresAt)

	n, err := m.ReleaseStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	state, err = m.Status(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, state.LockedByID)
	assert.False(t, state.Stale)

	state, err = m.Status(ctx, other.ID)
	require.NoError(t, err)
	require.NotNil(t, state.LockedByID)
	assert.Equal(t, uint(2), *state.LockedByID)

	_, err = m.Status(ctx, 999)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCheckEditable(t *testing.T) {
	m, clock, _, _ := setup(t)
	holder := uint(1)
	lockedAt := clock.Now()
	bh := &models.Borehole{LockedByID: &holder, LockedAt: &lockedAt}

	assert.NoError(t, m.CheckEditable(&models.Borehole{}, 2))
	assert.NoError(t, m.CheckEditable(bh, 1))
	assert.True(t, errors.Is(m.CheckEditable(bh, 2), ErrAlreadyLocked))

	clock.Advance(time.Hour)
	assert.NoError(t, m.CheckEditable(bh, 2))
}

func TestSweeperStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	s, err := NewSweeper(NewManager(nil, time.Minute), "@every 1h")
	require.NoError(t, err)
	s.Start()
	s.Start()
	s.Stop()
	s.Stop()
}

func TestSweeperRejectsBadSchedule(t *testing.T) {
	_, err := NewSweeper(NewManager(nil, time.Minute), "every now and then")
	assert.Error(t, err)
}

func TestSweep(t *testing.T) {
	m, clock, db, id := setup(t)
	_, err := m.Acquire(context.Background(), id, 1)
	require.NoError(t, err)
	clock.Advance(time.Hour)

	s, err := NewSweeper(m, "@every 1h")
	require.NoError(t, err)
	s.sweep()

	assert.Nil(t, loadBorehole(t, db, id).LockedByID)
}
