package model

import "time"

// Session holds the OAuth1 token pairs for one browser. RequestToken and
// RequestSecret are only set while a handshake is pending.
type Session struct {
	CreatedAt     time.Time `json:"created_at"`
	ExpiresAt     time.Time `json:"expires_at"`
	ID            int64     `json:"id"`
	Token         string    `json:"token"`
	RequestToken  string    `json:"request_token,omitempty"`
	RequestSecret string    `json:"request_secret,omitempty"`
	AccessToken   string    `json:"access_token,omitempty"`
	AccessSecret  string    `json:"access_secret,omitempty"`
	ReturnTo      string    `json:"return_to,omitempty"`
}

func (s *Session) Authenticated() bool {
	return s.AccessToken != ""
}

func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Credential returns the access token pair used to sign upstream calls.
func (s *Session) Credential() Credential {
	return Credential{Token: s.AccessToken, Secret: s.AccessSecret}
}

// Credential is an OAuth1 access token pair issued by the board API.
type Credential struct {
	Token  string
	Secret string
}

func (c Credential) Valid() bool {
	return c.Token != ""
}
