package routes

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"taskapp/internal/adapter/http/handler"
	"taskapp/internal/adapter/http/middleware"
	"taskapp/internal/core/port"
	"taskapp/internal/core/telemetry"
	"taskapp/pkg/config"
)

type HandlersConfig struct {
	AuthHandler    *handler.AuthHandler
	AccountHandler *handler.AccountHandler
	AvatarHandler  *handler.AvatarHandler
	TokenService   port.TokenService
}

func SetupRouter(handlers HandlersConfig, metrics *telemetry.AppMetrics, rateLimiter *middleware.RateLimiter, cfg *config.AppConfig, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	middleware.SetupObservability(router, "taskapp", metrics)

	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	if cfg.EnforceHTTPS {
		router.Use(middleware.EnforceHTTPS(logger))
	}

	if cfg.RateLimitEnabled && rateLimiter != nil {
		router.Use(rateLimiter.Middleware())
	}

	setupPublicRoutes(router, handlers)
	setupProtectedRoutes(router, handlers)

	return router
}

func setupPublicRoutes(router *gin.Engine, handlers HandlersConfig) {
	public := router.Group("/")
	{
		public.POST("/users", handlers.AuthHandler.SignUp)
		public.POST("/users/login", handlers.AuthHandler.Login)
		public.GET("/users/:uuid/avatar", handlers.AvatarHandler.Fetch)
	}
}

func setupProtectedRoutes(router *gin.Engine, handlers HandlersConfig) {
	protected := router.Group("/")
	protected.Use(middleware.BearerAuth(handlers.TokenService))
	{
		protected.POST("/users/logout", handlers.AccountHandler.Logout)
		protected.POST("/users/logoutAll", handlers.AccountHandler.LogoutAll)

		protected.GET("/users/me", handlers.AccountHandler.Profile)
		protected.PATCH("/users/me", handlers.AccountHandler.Update)
		protected.DELETE("/users/me", handlers.AccountHandler.Delete)

		protected.POST("/users/me/avatar", handlers.AvatarHandler.Upload)
		protected.DELETE("/users/me/avatar", handlers.AvatarHandler.Remove)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// SetupRouterForTests wires the routes without telemetry or rate
// limiting.
func SetupRouterForTests(handlers HandlersConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	setupPublicRoutes(router, handlers)
	setupProtectedRoutes(router, handlers)

	return router
}
