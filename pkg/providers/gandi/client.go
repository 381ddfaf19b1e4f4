// Package gandi talks to the Gandi v5 API: domain availability and purchase,
// email forwards and mailboxes, and LiveDNS records.
package gandi

import (
	"net/http"
	"time"

	"github.com/launchwolf/launchwolf/pkg/transports/rest"
)

// ProviderName identifies Gandi in logs, metrics and the feature table.
const ProviderName = "gandi.net"

// DefaultBaseURL is the production API. The sandbox lives at
// https://api.sandbox.gandi.net/v5.
const DefaultBaseURL = "https://api.gandi.net/v5"

// Config configures a Client.
type Config struct {
	BaseURL string
	APIKey  string

	// DryRun asks Gandi to validate purchases without placing an order.
	DryRun bool

	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
}

// Client is a Gandi API client.
type Client struct {
	api    *rest.Client
	dryRun bool
}

// New creates a Client authenticated with an API key.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	api, err := rest.NewClient(rest.Config{
		Provider:   ProviderName,
		BaseURL:    cfg.BaseURL,
		AuthMethod: rest.AuthMethodAPIKey,
		Token:      cfg.APIKey,
		Timeout:    cfg.Timeout,
		UserAgent:  cfg.UserAgent,
	}, cfg.HTTPClient)
	if err != nil {
		return nil, err
	}

	return &Client{api: api, dryRun: cfg.DryRun}, nil
}

// DryRun reports whether purchases are only validated.
func (c *Client) DryRun() bool {
	return c.dryRun
}
