package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prasertw/voltbook/internal/auth"
	"github.com/prasertw/voltbook/internal/server/handlers"
)

// Deps bundles the handlers and middleware the router wires up.
type Deps struct {
	Records   *handlers.RecordHandler
	Dashboard *handlers.DashboardHandler
	Import    *handlers.ImportHandler
	Users     *handlers.UserHandler
	Auth      *auth.Middleware
}

// New wires the Gin engine with required routes and middlewares. Everything
// under /api requires an authenticated, whitelisted caller; the management
// and import surface additionally requires the admin role.
func New(deps Deps, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	api.Use(deps.Auth.Authenticate())
	{
		api.GET("/me", deps.Users.Me)

		api.GET("/records", deps.Records.List)
		api.POST("/records", deps.Records.Save)
		api.GET("/records/lookup", deps.Records.Lookup)

		api.GET("/dashboard/summary", deps.Dashboard.Summary)
		api.GET("/dashboard/months/:month", deps.Dashboard.MonthBreakdown)

		admin := api.Group("")
		admin.Use(auth.RequireAdmin())
		{
			admin.DELETE("/records/:id", deps.Records.Delete)
			admin.POST("/import", deps.Import.Import)
			admin.GET("/users", deps.Users.List)
			admin.PUT("/users/:id/role", deps.Users.UpdateRole)
		}
	}

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
