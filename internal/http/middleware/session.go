package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"riskreward.app/web/common/logger"
	"riskreward.app/web/internal/model"
	"riskreward.app/web/internal/service"
)

const (
	SessionCookieName = "riskreward_session"
	CallbackPath      = "/auth/trello/callback"

	sessionKey    = "riskreward.session"
	credentialKey = "riskreward.credential"
)

type SessionConfig struct {
	TTL          time.Duration
	IsProduction bool
	// BaseURL overrides the scheme and host of the OAuth callback. When
	// empty they are taken from the request.
	BaseURL string
}

// Session loads the browser session named by the session cookie, or starts
// a new one, and stores it on the gin context.
func Session(auth service.AuthService, cfg SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		token, _ := c.Cookie(SessionCookieName)

		session, err := auth.LoadSession(ctx, token)
		if errors.Is(err, service.ErrSessionExpired) {
			session, err = auth.NewSession(ctx)
			if err == nil {
				SetSessionCookie(c, session.Token, cfg)
			}
		}
		if err != nil {
			slog.ErrorContext(ctx, "failed to load session", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to load session"})
			return
		}

		ctx = logger.WithLogFields(ctx, logger.LogFields{SessionID: logger.Ptr(session.ID)})
		c.Request = c.Request.WithContext(ctx)
		c.Set(sessionKey, session)
		c.Next()
	}
}

// RequireCredential lets the request through when the session holds an
// access token. Otherwise it starts the OAuth1 handshake and redirects the
// browser to the authorize page.
func RequireCredential(auth service.AuthService, cfg SessionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := SessionFrom(c)
		if session == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session not loaded"})
			return
		}
		if session.Authenticated() {
			c.Set(credentialKey, session.Credential())
			c.Next()
			return
		}

		ctx := c.Request.Context()
		authURL, err := auth.BeginLogin(ctx, session, CallbackURL(c, cfg.BaseURL), returnTo(c))
		if err != nil {
			slog.ErrorContext(ctx, "failed to initiate login", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to initiate login"})
			return
		}

		c.Redirect(http.StatusFound, authURL)
		c.Abort()
	}
}

func SessionFrom(c *gin.Context) *model.Session {
	v, ok := c.Get(sessionKey)
	if !ok {
		return nil
	}
	session, _ := v.(*model.Session)
	return session
}

func CredentialFrom(c *gin.Context) (model.Credential, bool) {
	v, ok := c.Get(credentialKey)
	if !ok {
		return model.Credential{}, false
	}
	cred, ok := v.(model.Credential)
	return cred, ok && cred.Valid()
}

// CallbackURL is the absolute URL the authorize page sends the user back to.
func CallbackURL(c *gin.Context, baseURL string) string {
	if baseURL != "" {
		return strings.TrimSuffix(baseURL, "/") + CallbackPath
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + c.Request.Host + CallbackPath
}

// returnTo is where the browser goes once login completes. Only GET
// requests can be replayed by a redirect.
func returnTo(c *gin.Context) string {
	if c.Request.Method != http.MethodGet {
		return "/"
	}
	return c.Request.URL.RequestURI()
}

func SetSessionCookie(c *gin.Context, token string, cfg SessionConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		SessionCookieName,
		token,
		int(cfg.TTL.Seconds()),
		"/",
		"",
		cfg.IsProduction,
		true,
	)
}

func ClearSessionCookie(c *gin.Context, isProduction bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(
		SessionCookieName,
		"",
		-1,
		"/",
		"",
		isProduction,
		true,
	)
}
