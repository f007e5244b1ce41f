package router

import (
	"github.com/gin-gonic/gin"

	"riskreward.app/web/internal/http/handler"
)

func BoardRouter(rg *gin.RouterGroup, h *handler.BoardHandler) {
	rg.GET("/", h.List)
	rg.GET("/boards/:id", h.Show)
	rg.POST("/boards/:id/cards/:card", h.Classify)
}
