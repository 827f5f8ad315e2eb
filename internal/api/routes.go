package api

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/marble-roulette/internal/api/handlers"
	"github.com/playmatatu/marble-roulette/internal/catalog"
	"github.com/playmatatu/marble-roulette/internal/config"
	"github.com/playmatatu/marble-roulette/internal/middleware"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, store *catalog.Store, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	if !cfg.IsProduction() {
		router.Use(func(c *gin.Context) {
			c.Header("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
			c.Header("Pragma", "no-cache")
			c.Header("Expires", "0")
			c.Next()
		})
		log.Println("[DEV MODE] no-cache headers enabled for all routes")
	}

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)
		v1.GET("/config", handlers.GetConfig(cfg))
		v1.GET("/runs", handlers.ListRuns)

		balls := v1.Group("/catalog")
		{
			balls.GET("", handlers.GetCatalog(store))
			balls.PUT("", middleware.AdminAuth(cfg), handlers.PutCatalog(store))
			balls.DELETE("", middleware.AdminAuth(cfg), handlers.RestoreCatalog(store))
			balls.POST("/upload-check", handlers.CheckUpload)
		}

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", handlers.CreateSession(cfg, store))
			sessions.GET("/:token/state", handlers.GetSessionState)
			sessions.GET("/:token/ws", middleware.WebSocketCORSCheck(cfg), handlers.HandleSessionWebSocket())

			host := sessions.Group("/:token", middleware.HostAuth(cfg))
			{
				host.POST("/counts", handlers.SetCounts)
				host.POST("/drop-x", handlers.SetDropX)
				host.POST("/start", handlers.StartSession)
				host.POST("/reset", handlers.ResetSession)
				host.POST("/pause", handlers.TogglePause)
				host.POST("/drop", handlers.DropOne)
				host.POST("/drop-all", handlers.DropAll)
				host.POST("/advance", handlers.AdvanceSession)
				host.POST("/speed", handlers.SetSpeed)
				host.DELETE("", handlers.EndSession)
			}
		}
	}
}
