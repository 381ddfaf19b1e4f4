package rest

import (
	"fmt"
	"net/url"
	"time"
)

// AuthMethod represents how requests are authenticated.
type AuthMethod string

const (
	// AuthMethodAPIKey sends "Authorization: Apikey <key>".
	AuthMethodAPIKey AuthMethod = "apikey"

	// AuthMethodBearer sends "Authorization: Bearer <token>".
	AuthMethodBearer AuthMethod = "bearer"

	// AuthMethodBasic uses HTTP basic auth with Username and Password.
	AuthMethodBasic AuthMethod = "basic"

	// AuthMethodNone sends no credentials.
	AuthMethodNone AuthMethod = "none"
)

// Config holds the connection settings of one provider API.
type Config struct {
	// Provider names the API in errors, logs and metrics (e.g. "gandi.net").
	Provider string

	// BaseURL is prefixed to every request path.
	BaseURL string

	// AuthMethod specifies which authentication method to use.
	AuthMethod AuthMethod

	// Token is the API key or bearer token.
	Token string

	// Username and Password are used by basic auth.
	Username string
	Password string

	// Timeout bounds each request. Zero means no timeout beyond the context.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}

	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base url: %q", c.BaseURL)
	}

	switch c.AuthMethod {
	case AuthMethodAPIKey, AuthMethodBearer:
		if c.Token == "" {
			return fmt.Errorf("token is required for %s authentication", c.AuthMethod)
		}
	case AuthMethodBasic:
		if c.Username == "" || c.Password == "" {
			return fmt.Errorf("username and password are required for basic authentication")
		}
	case AuthMethodNone, "":
	default:
		return fmt.Errorf("unsupported auth method: %s", c.AuthMethod)
	}

	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}

	return nil
}
