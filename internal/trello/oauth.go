package trello

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dghubble/oauth1"

	"riskreward.app/web/internal/model"
)

const DefaultAuthURL = "https://trello.com"

// Authorizer runs the three legs of the OAuth1 handshake.
type Authorizer interface {
	RequestToken(ctx context.Context, callbackURL string) (token, secret string, err error)
	AuthorizationURL(requestToken string) (string, error)
	AccessToken(ctx context.Context, requestToken, requestSecret, verifier string) (token, secret string, err error)
}

// ClientFactory builds a Client signing requests with one credential.
type ClientFactory interface {
	Client(ctx context.Context, cred model.Credential) Client
}

type ConnectorConfig struct {
	APIKey      string
	OAuthSecret string
	APIURL      string
	AuthURL     string
	AppName     string
	Scope       string
	Expiration  string
	Timeout     time.Duration
}

// Connector holds the consumer credentials of this application. It is both
// the Authorizer and the ClientFactory.
type Connector struct {
	cfg  ConnectorConfig
	base *http.Client
}

func NewConnector(cfg ConnectorConfig) *Connector {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.AuthURL == "" {
		cfg.AuthURL = DefaultAuthURL
	}
	if cfg.Scope == "" {
		cfg.Scope = "read,write"
	}
	if cfg.Expiration == "" {
		cfg.Expiration = "30days"
	}
	return &Connector{
		cfg:  cfg,
		base: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Connector) oauthConfig(callbackURL string) *oauth1.Config {
	authURL := strings.TrimSuffix(c.cfg.AuthURL, "/")
	return &oauth1.Config{
		ConsumerKey:    c.cfg.APIKey,
		ConsumerSecret: c.cfg.OAuthSecret,
		CallbackURL:    callbackURL,
		Endpoint: oauth1.Endpoint{
			RequestTokenURL: authURL + "/1/OAuthGetRequestToken",
			AuthorizeURL:    authURL + "/1/OAuthAuthorizeToken",
			AccessTokenURL:  authURL + "/1/OAuthGetAccessToken",
		},
	}
}

func (c *Connector) RequestToken(_ context.Context, callbackURL string) (string, string, error) {
	token, secret, err := c.oauthConfig(callbackURL).RequestToken()
	if err != nil {
		return "", "", fmt.Errorf("obtaining request token: %w", err)
	}
	return token, secret, nil
}

// AuthorizationURL is where the user approves the request token. It asks
// for the configured scope, app name and token lifetime.
func (c *Connector) AuthorizationURL(requestToken string) (string, error) {
	u, err := c.oauthConfig("").AuthorizationURL(requestToken)
	if err != nil {
		return "", fmt.Errorf("building authorization URL: %w", err)
	}
	q := u.Query()
	q.Set("scope", c.cfg.Scope)
	q.Set("expiration", c.cfg.Expiration)
	if c.cfg.AppName != "" {
		q.Set("name", c.cfg.AppName)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Connector) AccessToken(_ context.Context, requestToken, requestSecret, verifier string) (string, string, error) {
	token, secret, err := c.oauthConfig("").AccessToken(requestToken, requestSecret, verifier)
	if err != nil {
		return "", "", fmt.Errorf("exchanging access token: %w", err)
	}
	return token, secret, nil
}

func (c *Connector) Client(ctx context.Context, cred model.Credential) Client {
	ctx = context.WithValue(ctx, oauth1.HTTPClient, c.base)
	httpClient := c.oauthConfig("").Client(ctx, oauth1.NewToken(cred.Token, cred.Secret))
	httpClient.Timeout = c.cfg.Timeout
	return NewClient(httpClient, c.cfg.APIURL)
}
