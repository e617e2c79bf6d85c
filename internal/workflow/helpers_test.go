package workflow

import (
	"context"
	"sync"
	"testing"
	"time"

	"borehole-workflow/internal/models"
	"borehole-workflow/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.NewDB(t)
}

// testClock hands out strictly increasing timestamps.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestService(t *testing.T, policy Policy) (*Service, *gorm.DB) {
	t.Helper()
	db := setupTestDB(t)
	return NewService(db, policy, WithClock(newTestClock().Now)), db
}

func newWorkflow(t *testing.T, db *gorm.DB, svc *Service) *models.Workflow {
	t.Helper()
	bh := models.Borehole{Name: "BH-1", WorkgroupID: 1}
	require.NoError(t, db.Create(&bh).Error)

	wf, err := svc.Create(context.Background(), db, bh.ID)
	require.NoError(t, err)
	return wf
}

func completeTabs() map[string]bool {
	changes := map[string]bool{}
	for _, f := range models.TabFields {
		changes[f.String()] = true
	}
	return changes
}

func actor(id uint, role models.Role) Actor {
	return Actor{UserID: id, Role: role}
}

func ptr[T any](v T) *T {
	return &v
}
