package router

import (
	"github.com/gin-gonic/gin"

	"riskreward.app/web/internal/http/handler"
	"riskreward.app/web/internal/http/middleware"
	"riskreward.app/web/internal/service"
)

type RouterConfig struct {
	Session middleware.SessionConfig
}

func SetupRoutes(router *gin.Engine, services *service.Services, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	auth := services.Auth()
	sessions := router.Group("/", middleware.Session(auth, cfg.Session))

	authHandler := handler.NewAuthHandler(auth, cfg.Session.IsProduction)
	AuthRouter(sessions, authHandler)

	boardHandler := handler.NewBoardHandler(services.Boards(), auth, cfg.Session.IsProduction)
	BoardRouter(sessions.Group("/", middleware.RequireCredential(auth, cfg.Session)), boardHandler)
}
