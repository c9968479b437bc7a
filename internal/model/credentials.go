package model

import (
	"time"

	"golang.org/x/oauth2"
)

// CredentialBundle is the OAuth token set authorizing Gmail calls on behalf
// of one user. It is persisted inside automation entries (json tags match
// the on-disk automation file) and must never appear in logs.
type CredentialBundle struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Scope        string    `json:"scope,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry_date,omitempty"`
}

// OAuthToken converts the bundle into an oauth2.Token usable as the base of
// a refreshing token source.
func (c *CredentialBundle) OAuthToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    c.TokenType,
		Expiry:       c.Expiry,
	}
}
