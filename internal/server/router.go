package server

import (
	"net/http"
	"time"

	"borehole-workflow/internal/config"
	"borehole-workflow/internal/database"
	"borehole-workflow/internal/handlers"
	"borehole-workflow/internal/middleware"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

const userCacheTTL = time.Minute

// Deps are the services the router exposes.
type Deps struct {
	DB       *gorm.DB
	Handler  *handlers.Handler
	Users    database.UserStore
	Gatherer prometheus.Gatherer
}

func NewRouter(cfg *config.Config, deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	store := cookie.NewStore([]byte(cfg.App.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int((12 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("bdms_session", store))
	r.Use(middleware.InjectUser(middleware.NewUserCache(deps.Users, userCacheTTL)))

	// HEALTHCHECK
	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := deps.DB.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.String(http.StatusServiceUnavailable, "database unavailable")
			return
		}
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))

	h := deps.Handler
	api := r.Group("/api/v1")

	// AUTH
	api.POST("/login", h.Login)
	api.POST("/logout", h.Logout)

	auth := api.Group("")
	auth.Use(middleware.RequireAuth())
	auth.GET("/me", h.Me)

	// BOREHOLES
	auth.POST("/boreholes", h.CreateBorehole)
	auth.GET("/boreholes/:id", h.GetBorehole)
	auth.PUT("/boreholes/:id", h.UpdateBorehole)

	// EDIT LOCK
	auth.POST("/boreholes/:id/lock", h.AcquireLock)
	auth.DELETE("/boreholes/:id/lock", h.ReleaseLock)
	auth.GET("/boreholes/:id/lock", h.LockStatus)

	// WORKFLOW
	auth.GET("/boreholes/:id/workflow", h.GetWorkflow)
	auth.GET("/boreholes/:id/workflow/history", h.WorkflowHistory)
	auth.POST("/workflow/change", h.ChangeWorkflow)
	auth.PUT("/workflow/tabstatus", h.UpdateTabStatus)
	auth.PUT("/workflow/tabstatus/field", h.SetTabStatusField)

	return r
}
