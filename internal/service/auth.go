package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"riskreward.app/web/common/id"
	"riskreward.app/web/internal/model"
	"riskreward.app/web/internal/store"
	"riskreward.app/web/internal/trello"
)

var (
	ErrSessionExpired = errors.New("session expired")
	ErrInvalidToken   = errors.New("oauth token does not match pending request")
)

const sessionTokenBytes = 32

type AuthService interface {
	// LoadSession returns ErrSessionExpired when token names no live session.
	LoadSession(ctx context.Context, token string) (*model.Session, error)
	// NewSession builds an unsaved session; BeginLogin persists it.
	NewSession(ctx context.Context) (*model.Session, error)
	BeginLogin(ctx context.Context, session *model.Session, callbackURL, returnTo string) (string, error)
	// CompleteLogin stores the access token pair and returns where the user
	// was headed when the handshake started.
	CompleteLogin(ctx context.Context, session *model.Session, oauthToken, verifier string) (string, error)
	Logout(ctx context.Context, session *model.Session) error
}

type authService struct {
	sessions   store.SessionStore
	authorizer trello.Authorizer
	ttl        time.Duration
	now        func() time.Time
}

func NewAuthService(sessions store.SessionStore, authorizer trello.Authorizer, ttl time.Duration) AuthService {
	return &authService{
		sessions:   sessions,
		authorizer: authorizer,
		ttl:        ttl,
		now:        time.Now,
	}
}

func (s *authService) LoadSession(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, ErrSessionExpired
	}
	session, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return session, nil
}

func (s *authService) NewSession(_ context.Context) (*model.Session, error) {
	token, err := newSessionToken()
	if err != nil {
		return nil, fmt.Errorf("generating session token: %w", err)
	}
	now := s.now()
	return &model.Session{
		ID:        id.New(),
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}, nil
}

func (s *authService) BeginLogin(ctx context.Context, session *model.Session, callbackURL, returnTo string) (string, error) {
	requestToken, requestSecret, err := s.authorizer.RequestToken(ctx, callbackURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to obtain request token", "error", err)
		return "", fmt.Errorf("starting login: %w", err)
	}

	authURL, err := s.authorizer.AuthorizationURL(requestToken)
	if err != nil {
		return "", fmt.Errorf("starting login: %w", err)
	}

	session.RequestToken = requestToken
	session.RequestSecret = requestSecret
	session.ReturnTo = returnTo
	if err := s.sessions.Save(ctx, session); err != nil {
		return "", fmt.Errorf("saving session: %w", err)
	}

	slog.InfoContext(ctx, "login started", "return_to", returnTo)
	return authURL, nil
}

func (s *authService) CompleteLogin(ctx context.Context, session *model.Session, oauthToken, verifier string) (string, error) {
	if session.RequestToken == "" || session.RequestToken != oauthToken {
		return "", ErrInvalidToken
	}

	accessToken, accessSecret, err := s.authorizer.AccessToken(ctx, session.RequestToken, session.RequestSecret, verifier)
	if err != nil {
		slog.ErrorContext(ctx, "failed to exchange access token", "error", err)
		return "", fmt.Errorf("completing login: %w", err)
	}

	returnTo := session.ReturnTo
	if returnTo == "" {
		returnTo = "/"
	}

	session.AccessToken = accessToken
	session.AccessSecret = accessSecret
	session.RequestToken = ""
	session.RequestSecret = ""
	session.ReturnTo = ""
	if err := s.sessions.Save(ctx, session); err != nil {
		return "", fmt.Errorf("saving session: %w", err)
	}

	slog.InfoContext(ctx, "user authenticated")
	return returnTo, nil
}

func (s *authService) Logout(ctx context.Context, session *model.Session) error {
	if err := s.sessions.Delete(ctx, session.Token); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func newSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
