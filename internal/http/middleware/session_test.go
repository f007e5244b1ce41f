package middleware_test

import (
	"context"
	"crypto/tls"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"riskreward.app/web/internal/http/middleware"
	"riskreward.app/web/internal/model"
	"riskreward.app/web/internal/service"
)

// stubAuth is an AuthService backed by a map of sessions.
type stubAuth struct {
	sessions   map[string]*model.Session
	loadErr    error
	beginErr   error
	begun      []string
	newSession *model.Session
}

func (s *stubAuth) LoadSession(_ context.Context, token string) (*model.Session, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if session, ok := s.sessions[token]; ok {
		return session, nil
	}
	return nil, service.ErrSessionExpired
}

func (s *stubAuth) NewSession(context.Context) (*model.Session, error) {
	return s.newSession, nil
}

func (s *stubAuth) BeginLogin(_ context.Context, _ *model.Session, callbackURL, returnTo string) (string, error) {
	if s.beginErr != nil {
		return "", s.beginErr
	}
	s.begun = append(s.begun, returnTo)
	return "https://auth.example/authorize?cb=" + callbackURL, nil
}

func (s *stubAuth) CompleteLogin(context.Context, *model.Session, string, string) (string, error) {
	return "/", nil
}

func (s *stubAuth) Logout(context.Context, *model.Session) error {
	return nil
}

var _ = Describe("Session", func() {
	var (
		router *gin.Engine
		auth   *stubAuth
		cfg    middleware.SessionConfig
	)

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		auth = &stubAuth{
			sessions: map[string]*model.Session{
				"known": {ID: 1, Token: "known", AccessToken: "at", AccessSecret: "as"},
				"anon":  {ID: 2, Token: "anon"},
			},
			newSession: &model.Session{ID: 3, Token: "fresh"},
		}
		cfg = middleware.SessionConfig{TTL: time.Hour, IsProduction: true}

		router = gin.New()
		router.Use(middleware.Session(auth, cfg))
		router.GET("/whoami", func(c *gin.Context) {
			c.String(http.StatusOK, middleware.SessionFrom(c).Token)
		})
		router.GET("/private", middleware.RequireCredential(auth, cfg), func(c *gin.Context) {
			cred, ok := middleware.CredentialFrom(c)
			Expect(ok).To(BeTrue())
			c.String(http.StatusOK, cred.Token)
		})
	})

	serve := func(path, cookie string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if cookie != "" {
			req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: cookie})
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	It("loads the session named by the cookie", func() {
		w := serve("/whoami", "known")

		Expect(w.Body.String()).To(Equal("known"))
		Expect(w.Header().Get("Set-Cookie")).To(BeEmpty())
	})

	It("starts a new session with a secure cookie when none is known", func() {
		w := serve("/whoami", "stale")

		Expect(w.Body.String()).To(Equal("fresh"))
		cookie := w.Header().Get("Set-Cookie")
		Expect(cookie).To(ContainSubstring(middleware.SessionCookieName + "=fresh"))
		Expect(cookie).To(ContainSubstring("Max-Age=3600"))
		Expect(cookie).To(ContainSubstring("HttpOnly"))
		Expect(cookie).To(ContainSubstring("Secure"))
	})

	It("fails with 500 when the store is unavailable", func() {
		auth.loadErr = errors.New("connection refused")

		w := serve("/whoami", "known")

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
	})

	Describe("RequireCredential", func() {
		It("passes the access token pair on", func() {
			w := serve("/private", "known")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(Equal("at"))
		})

		It("redirects an anonymous session to the authorize page", func() {
			w := serve("/private?x=1", "anon")

			Expect(w.Code).To(Equal(http.StatusFound))
			Expect(w.Header().Get("Location")).To(Equal("https://auth.example/authorize?cb=http://example.com/auth/trello/callback"))
			Expect(auth.begun).To(Equal([]string{"/private?x=1"}))
		})

		It("fails with 500 when the handshake cannot start", func() {
			auth.beginErr = errors.New("upstream down")

			w := serve("/private", "anon")

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})
	})
})

var _ = Describe("CallbackURL", func() {
	newContext := func(req *http.Request) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = req
		return c
	}

	It("prefers the configured base URL", func() {
		c := newContext(httptest.NewRequest(http.MethodGet, "/", nil))
		Expect(middleware.CallbackURL(c, "https://rr.example.com/")).To(Equal("https://rr.example.com/auth/trello/callback"))
	})

	It("derives the scheme from TLS", func() {
		req := httptest.NewRequest(http.MethodGet, "https://rr.example.com/", nil)
		req.TLS = &tls.ConnectionState{}
		Expect(middleware.CallbackURL(newContext(req), "")).To(Equal("https://rr.example.com/auth/trello/callback"))
	})

	It("honors X-Forwarded-Proto", func() {
		req := httptest.NewRequest(http.MethodGet, "http://rr.example.com/", nil)
		req.Header.Set("X-Forwarded-Proto", "https")
		Expect(middleware.CallbackURL(newContext(req), "")).To(Equal("https://rr.example.com/auth/trello/callback"))
	})
})
