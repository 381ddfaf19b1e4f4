// Package netlify sets up continuous deployment with the Netlify CLI and
// attaches the launched domain to the Netlify site.
package netlify

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/launchwolf/launchwolf/pkg/transports/rest"
)

// ProviderName identifies Netlify in logs, metrics and the feature table.
const ProviderName = "netlify.com"

// DefaultBaseURL is the Netlify REST API.
const DefaultBaseURL = "https://api.netlify.com/api/v1"

// Config configures a Client.
type Config struct {
	BaseURL     string
	AccessToken string
	Timeout     time.Duration
	UserAgent   string
	HTTPClient  *http.Client
}

// Client is a Netlify API client.
type Client struct {
	api *rest.Client
}

// Site is the subset of a Netlify site used here.
type Site struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	URL           string `json:"url"`
	CustomDomain  string `json:"custom_domain"`
	DefaultDomain string `json:"default_domain"`
	SSL           bool   `json:"ssl"`
}

// LoadBalancerTarget is the hostname DNS records should point at.
func (s *Site) LoadBalancerTarget() string {
	if s.DefaultDomain != "" {
		return s.DefaultDomain
	}
	return s.Name + ".netlify.app"
}

// New creates a Client authenticated with a personal access token.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	api, err := rest.NewClient(rest.Config{
		Provider:   ProviderName,
		BaseURL:    cfg.BaseURL,
		AuthMethod: rest.AuthMethodBearer,
		Token:      cfg.AccessToken,
		Timeout:    cfg.Timeout,
		UserAgent:  cfg.UserAgent,
	}, cfg.HTTPClient)
	if err != nil {
		return nil, err
	}
	return &Client{api: api}, nil
}

// GetSite fetches a site by ID.
func (c *Client) GetSite(ctx context.Context, siteID string) (*Site, error) {
	var s Site
	if err := c.api.Get(ctx, "get_site", "/sites/"+url.PathEscape(siteID), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSite sets the custom domain of a site and enables SSL.
func (c *Client) UpdateSite(ctx context.Context, siteID, customDomain string) (*Site, error) {
	body := struct {
		CustomDomain string `json:"custom_domain"`
		SSL          bool   `json:"ssl"`
	}{customDomain, true}

	var s Site
	if err := c.api.Patch(ctx, "update_site", "/sites/"+url.PathEscape(siteID), body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// AddDomainToSite makes domain the custom domain of the site. A site that
// already uses it is returned unchanged.
func (c *Client) AddDomainToSite(ctx context.Context, siteID, domain string) (*Site, error) {
	site, err := c.GetSite(ctx, siteID)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(site.CustomDomain, domain) {
		return site, nil
	}
	return c.UpdateSite(ctx, siteID, domain)
}
