package router

import (
	"github.com/gin-gonic/gin"

	"riskreward.app/web/internal/http/handler"
	"riskreward.app/web/internal/http/middleware"
)

func AuthRouter(rg *gin.RouterGroup, h *handler.AuthHandler) {
	rg.GET(middleware.CallbackPath, h.Callback)
	rg.GET("/logout", h.Logout)
}
