// Package mailjet registers a sending domain and a contact list with the
// Mailjet v3 REST API.
package mailjet

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/launchwolf/launchwolf/pkg/engine"
	"github.com/launchwolf/launchwolf/pkg/transports/rest"
)

// ProviderName identifies Mailjet in logs, metrics and the feature table.
const ProviderName = "mailjet.com"

// DefaultBaseURL is the Mailjet v3 API.
const DefaultBaseURL = "https://api.mailjet.com/v3"

// StatusOK is the SPF and DKIM status of a verified domain.
const StatusOK = "OK"

var (
	// ErrSenderNotCreated is returned when Mailjet accepted a sender but the
	// domain does not show up.
	ErrSenderNotCreated = errors.New("error creating sender")

	// ErrDNSNotVerified is returned when SPF and DKIM never validate.
	ErrDNSNotVerified = errors.New("mailjet could not verify the SPF and DKIM records of the domain")
)

// Config configures a Client.
type Config struct {
	BaseURL    string
	PublicKey  string
	PrivateKey string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
}

// Client is a Mailjet API client.
type Client struct {
	api *rest.Client
}

// DNS is the sending setup Mailjet expects for a domain.
type DNS struct {
	ID                       int64  `json:"ID"`
	Domain                   string `json:"Domain"`
	DKIMRecordName           string `json:"DKIMRecordName"`
	DKIMRecordValue          string `json:"DKIMRecordValue"`
	DKIMStatus               string `json:"DKIMStatus"`
	SPFRecordValue           string `json:"SPFRecordValue"`
	SPFStatus                string `json:"SPFStatus"`
	OwnerShipToken           string `json:"OwnerShipToken"`
	OwnerShipTokenRecordName string `json:"OwnerShipTokenRecordName"`
}

// DNSCheck is the result of a DNS check.
type DNSCheck struct {
	DKIMStatus string   `json:"DKIMStatus"`
	DKIMErrors []string `json:"DKIMErrors"`
	SPFStatus  string   `json:"SPFStatus"`
	SPFErrors  []string `json:"SPFErrors"`
}

// Verified reports whether both SPF and DKIM are valid.
func (c *DNSCheck) Verified() bool {
	return c != nil && c.SPFStatus == StatusOK && c.DKIMStatus == StatusOK
}

// Sender is a sender address or domain.
type Sender struct {
	ID        int64  `json:"ID"`
	Name      string `json:"Name"`
	Email     string `json:"Email"`
	EmailType string `json:"EmailType"`
	Status    string `json:"Status"`
}

// ContactList is a list of subscribers.
type ContactList struct {
	ID              int64  `json:"ID"`
	Name            string `json:"Name"`
	Address         string `json:"Address"`
	SubscriberCount int    `json:"SubscriberCount"`
}

type envelope[T any] struct {
	Count int `json:"Count"`
	Total int `json:"Total"`
	Data  []T `json:"Data"`
}

// New creates a Client authenticated with an API key pair.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	api, err := rest.NewClient(rest.Config{
		Provider:   ProviderName,
		BaseURL:    cfg.BaseURL,
		AuthMethod: rest.AuthMethodBasic,
		Username:   cfg.PublicKey,
		Password:   cfg.PrivateKey,
		Timeout:    cfg.Timeout,
		UserAgent:  cfg.UserAgent,
	}, cfg.HTTPClient)
	if err != nil {
		return nil, err
	}
	return &Client{api: api}, nil
}

func first[T any](items []T, match func(T) bool) *T {
	if i := slices.IndexFunc(items, match); i >= 0 {
		return &items[i]
	}
	return nil
}

// GetDNS returns the DNS setup of domain, or nil when Mailjet does not know
// the domain.
func (c *Client) GetDNS(ctx context.Context, domain string) (*DNS, error) {
	var resp envelope[DNS]
	if err := c.api.Get(ctx, "get_dns", "/REST/dns", nil, &resp); err != nil {
		return nil, err
	}
	return first(resp.Data, func(d DNS) bool { return d.Domain == domain }), nil
}

// SetupDomainForSending registers "*@domain" as a bulk sender unless the
// domain is already known. It reports whether the sender was created.
func (c *Client) SetupDomainForSending(ctx context.Context, domain string) (*DNS, bool, error) {
	dns, err := c.GetDNS(ctx, domain)
	if err != nil {
		return nil, false, err
	}
	if dns != nil {
		return dns, false, nil
	}

	body := struct {
		EmailType string `json:"EmailType"`
		Name      string `json:"Name"`
		Email     string `json:"Email"`
	}{"bulk", domain, "*@" + domain}
	var resp envelope[Sender]
	if err := c.api.Post(ctx, "create_sender", "/REST/sender", body, &resp); err != nil {
		return nil, false, err
	}
	if first(resp.Data, func(s Sender) bool { return s.Name == domain }) == nil {
		return nil, false, fmt.Errorf("%w: sender %q missing from response", ErrSenderNotCreated, domain)
	}

	dns, err = c.GetDNS(ctx, domain)
	if err != nil {
		return nil, false, err
	}
	if dns == nil {
		return nil, false, fmt.Errorf("%w: no DNS setup for %q", ErrSenderNotCreated, domain)
	}
	return dns, true, nil
}

// CheckDNS asks Mailjet to check the SPF and DKIM records now.
func (c *Client) CheckDNS(ctx context.Context, dnsID int64) (*DNSCheck, error) {
	var resp envelope[DNSCheck]
	path := "/REST/dns/" + strconv.FormatInt(dnsID, 10) + "/check"
	if err := c.api.Post(ctx, "check_dns", path, struct{}{}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return &DNSCheck{}, nil
	}
	return &resp.Data[0], nil
}

// WaitForDNS checks the domain until SPF and DKIM are OK.
func (c *Client) WaitForDNS(ctx context.Context, dnsID int64, attempts int, delay time.Duration, onRetry func(attempt int)) (*DNSCheck, error) {
	return engine.Poll(ctx,
		func(ctx context.Context) (*DNSCheck, error) { return c.CheckDNS(ctx, dnsID) },
		(*DNSCheck).Verified,
		ErrDNSNotVerified,
		delay,
		attempts,
		onRetry,
	)
}

// GetContactLists returns all contact lists of the account.
func (c *Client) GetContactLists(ctx context.Context) ([]ContactList, error) {
	var resp envelope[ContactList]
	if err := c.api.Get(ctx, "list_contactslists", "/REST/contactslist", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetContactListForDomain returns the list named after domain, or nil.
func (c *Client) GetContactListForDomain(ctx context.Context, domain string) (*ContactList, error) {
	lists, err := c.GetContactLists(ctx)
	if err != nil {
		return nil, err
	}
	return first(lists, func(l ContactList) bool { return l.Name == domain }), nil
}

// CreateContactListForDomain creates a list named after domain.
func (c *Client) CreateContactListForDomain(ctx context.Context, domain string) (*ContactList, error) {
	body := struct {
		Name string `json:"Name"`
	}{domain}

	var resp envelope[ContactList]
	if err := c.api.Post(ctx, "create_contactslist", "/REST/contactslist", body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 || resp.Data[0].Name != domain {
		return nil, fmt.Errorf("unexpected contact list response for %q", domain)
	}
	return &resp.Data[0], nil
}
