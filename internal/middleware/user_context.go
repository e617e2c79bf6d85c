package middleware

import (
	"context"
	"strconv"
	"time"

	"borehole-workflow/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

const (
	currentUserKey = "CurrentUser"
	userCacheKey   = "UserCache"
)

type UserLoader interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// UserCache keeps recently loaded session users for a short while so that
// every API call does not hit the users table.
type UserCache struct {
	users UserLoader
	cache *cache.Cache
}

func NewUserCache(users UserLoader, ttl time.Duration) *UserCache {
	return &UserCache{
		users: users,
		cache: cache.New(ttl, 2*ttl),
	}
}

func (uc *UserCache) Get(ctx context.Context, id uint) (*models.User, error) {
	key := strconv.FormatUint(uint64(id), 10)
	if cached, ok := uc.cache.Get(key); ok {
		return cached.(*models.User), nil
	}
	user, err := uc.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	uc.cache.SetDefault(key, user)
	return user, nil
}

// Forget drops id so the next request reloads the user.
func (uc *UserCache) Forget(id uint) {
	uc.cache.Delete(strconv.FormatUint(uint64(id), 10))
}

func InjectUser(users *UserCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(userCacheKey, users)
		sess := sessions.Default(c)

		if uidRaw := sess.Get(SessionUserKey); uidRaw != nil {
			if uid, ok := uidRaw.(uint); ok && uid > 0 {
				if user, err := users.Get(c.Request.Context(), uid); err == nil {
					c.Set(currentUserKey, user)
				} else {
					GetLogger(c).WithError(err).Warn("session user could not be loaded")
				}
			}
		}

		c.Next()
	}
}

func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// SetCurrentUser is used by tests and by handlers that authenticate inline.
func SetCurrentUser(c *gin.Context, user *models.User) {
	c.Set(currentUserKey, user)
}

func forgetCurrentUser(c *gin.Context) {
	user, ok := CurrentUser(c)
	if !ok {
		return
	}
	if v, ok := c.Get(userCacheKey); ok {
		if users, ok := v.(*UserCache); ok {
			users.Forget(user.ID)
		}
	}
}
