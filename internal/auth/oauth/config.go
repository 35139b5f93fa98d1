// Package oauth runs the Google authorization-code flow with PKCE and
// distills the provider's response into a profile the account reconciler
// accepts.
package oauth

import (
	"fmt"
	"strings"
	"time"

	"github.com/evereld/staffdesk/internal/platform/config"
)

// Google's published OAuth 2.0 endpoints.
const (
	defaultAuthorizeURL = "https://accounts.google.com/o/oauth2/v2/auth"
	defaultTokenURL     = "https://oauth2.googleapis.com/token"
	defaultUserinfoURL  = "https://openidconnect.googleapis.com/v1/userinfo"
	defaultScopes       = "openid email profile"
)

// DefaultStateTTL bounds how long a pending authorization may sit between
// the redirect out and the callback in.
const DefaultStateTTL = 10 * time.Minute

type oauthEnv struct {
	ClientID     string `env:"STAFFDESK_GOOGLE_CLIENT_ID"`
	ClientSecret string `env:"STAFFDESK_GOOGLE_CLIENT_SECRET"`
	RedirectURI  string `env:"STAFFDESK_GOOGLE_REDIRECT_URI"`
	Scopes       string `env:"STAFFDESK_GOOGLE_SCOPES"`
}

// Config holds the provider endpoints and client registration for the flow.
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	Scopes       string
	AuthorizeURL string
	TokenURL     string
	UserinfoURL  string
	StateTTL     time.Duration
}

// LoadConfigFromEnv reads the Google client registration from the
// environment. Endpoint URLs always default to Google's published values;
// only tests override them.
func LoadConfigFromEnv() (Config, error) {
	var raw oauthEnv
	if err := config.ParseEnv(&raw); err != nil {
		return Config{}, err
	}

	cfg := Config{
		ClientID:     strings.TrimSpace(raw.ClientID),
		ClientSecret: strings.TrimSpace(raw.ClientSecret),
		RedirectURI:  strings.TrimSpace(raw.RedirectURI),
		Scopes:       strings.TrimSpace(raw.Scopes),
	}
	if cfg.ClientID == "" {
		return Config{}, fmt.Errorf("STAFFDESK_GOOGLE_CLIENT_ID is required")
	}
	if cfg.ClientSecret == "" {
		return Config{}, fmt.Errorf("STAFFDESK_GOOGLE_CLIENT_SECRET is required")
	}
	if cfg.RedirectURI == "" {
		return Config{}, fmt.Errorf("STAFFDESK_GOOGLE_REDIRECT_URI is required")
	}
	return cfg.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	if c.Scopes == "" {
		c.Scopes = defaultScopes
	}
	if c.AuthorizeURL == "" {
		c.AuthorizeURL = defaultAuthorizeURL
	}
	if c.TokenURL == "" {
		c.TokenURL = defaultTokenURL
	}
	if c.UserinfoURL == "" {
		c.UserinfoURL = defaultUserinfoURL
	}
	if c.StateTTL <= 0 {
		c.StateTTL = DefaultStateTTL
	}
	return c
}
