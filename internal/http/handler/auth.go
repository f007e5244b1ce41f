package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dghubble/oauth1"
	"github.com/gin-gonic/gin"

	"riskreward.app/web/internal/http/middleware"
	"riskreward.app/web/internal/service"
)

type AuthHandler struct {
	authService  service.AuthService
	isProduction bool
}

func NewAuthHandler(authService service.AuthService, isProduction bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		isProduction: isProduction,
	}
}

// Callback finishes the OAuth1 handshake started by
// middleware.RequireCredential.
func (h *AuthHandler) Callback(c *gin.Context) {
	ctx := c.Request.Context()

	token, verifier, err := oauth1.ParseAuthorizationCallback(c.Request)
	if err != nil {
		slog.WarnContext(ctx, "authorization not granted", "error", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization not granted"})
		return
	}

	session := middleware.SessionFrom(c)
	if session == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session not loaded"})
		return
	}

	returnTo, err := h.authService.CompleteLogin(ctx, session, token, verifier)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			slog.WarnContext(ctx, "oauth token mismatch")
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid oauth token"})
			return
		}
		slog.ErrorContext(ctx, "failed to complete login", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete login"})
		return
	}

	c.Redirect(http.StatusFound, returnTo)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	ctx := c.Request.Context()

	if session := middleware.SessionFrom(c); session != nil {
		if err := h.authService.Logout(ctx, session); err != nil {
			slog.WarnContext(ctx, "failed to delete session", "error", err)
		}
	}

	middleware.ClearSessionCookie(c, h.isProduction)
	c.Redirect(http.StatusFound, "/")
}
