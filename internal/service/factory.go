package service

import (
	"time"

	"riskreward.app/web/internal/store"
	"riskreward.app/web/internal/trello"
)

type ServicesConfig struct {
	SessionTTL time.Duration
}

type Services struct {
	sessions   store.SessionStore
	authorizer trello.Authorizer
	clients    trello.ClientFactory
	cfg        ServicesConfig
}

func NewServices(sessions store.SessionStore, authorizer trello.Authorizer, clients trello.ClientFactory, cfg ServicesConfig) *Services {
	return &Services{
		sessions:   sessions,
		authorizer: authorizer,
		clients:    clients,
		cfg:        cfg,
	}
}

func (s *Services) Auth() AuthService {
	return NewAuthService(s.sessions, s.authorizer, s.cfg.SessionTTL)
}

func (s *Services) Boards() BoardService {
	return NewBoardService(s.clients)
}
