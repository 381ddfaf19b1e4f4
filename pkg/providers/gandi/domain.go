package gandi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"

	"github.com/launchwolf/launchwolf/pkg/config"
	"github.com/launchwolf/launchwolf/pkg/transports/rest"
)

const (
	statusClientTransferProhibited = "clientTransferProhibited"
	processCreate                  = "create"
	durationUnitYear               = "y"

	creationLaunchedMessage = "Creation operation launched"
)

var (
	// ErrDomainUnavailable is returned when a domain cannot be registered in
	// the requested currency.
	ErrDomainUnavailable = errors.New("unfortunately, this domain is unavailable")

	// ErrUnexpectedResponse is returned when a purchase is accepted with a
	// body that does not confirm the order.
	ErrUnexpectedResponse = errors.New("unexpected purchase response")
)

// DomainInfo is the subset of GET /domain/domains/{fqdn} used here.
type DomainInfo struct {
	FQDN   string   `json:"fqdn"`
	Status []string `json:"status"`
}

// Owned reports whether the account holds the domain. A registered domain
// carries the clientTransferProhibited lock.
func (d DomainInfo) Owned() bool {
	return slices.Contains(d.Status, statusClientTransferProhibited)
}

// Availability is the response of GET /domain/check.
type Availability struct {
	Currency string    `json:"currency"`
	Products []Product `json:"products"`
}

// Product is one registration process offered for a domain.
type Product struct {
	Name    string  `json:"name"`
	Process string  `json:"process"`
	Status  string  `json:"status"`
	Prices  []Price `json:"prices"`
}

// Price is one price line of a product.
type Price struct {
	DurationUnit     string  `json:"duration_unit"`
	MinDuration      int     `json:"min_duration"`
	MaxDuration      int     `json:"max_duration"`
	PriceAfterTaxes  float64 `json:"price_after_taxes"`
	PriceBeforeTaxes float64 `json:"price_before_taxes"`
}

// Offer picks the yearly price of the create process. It fails with
// ErrDomainUnavailable unless the product is available and quoted in
// currency.
func (a *Availability) Offer(currency string) (Price, error) {
	if a == nil || a.Currency != currency {
		return Price{}, ErrDomainUnavailable
	}

	i := slices.IndexFunc(a.Products, func(p Product) bool { return p.Process == processCreate })
	if i < 0 || a.Products[i].Status != "available" {
		return Price{}, ErrDomainUnavailable
	}

	prices := a.Products[i].Prices
	j := slices.IndexFunc(prices, func(p Price) bool { return p.DurationUnit == durationUnitYear })
	if j < 0 {
		return Price{}, ErrDomainUnavailable
	}
	return prices[j], nil
}

// Quote is the price of registering a domain for a number of years.
type Quote struct {
	Domain    string
	Currency  string
	Years     int
	UnitPrice float64
	Total     float64
}

// Describe renders the purchase question shown to the user.
func (q Quote) Describe() string {
	unit := "years"
	if q.Years == 1 {
		unit = "year"
	}
	return fmt.Sprintf("Do you want to purchase domain %q at %.2f%s total for %d %s?",
		q.Domain, q.Total, q.Currency, q.Years, unit)
}

// Owner is the registrant block of a purchase request.
type Owner struct {
	Country    string  `json:"country"`
	Email      string  `json:"email"`
	Family     string  `json:"family"`
	Given      string  `json:"given"`
	StreetAddr string  `json:"streetaddr"`
	City       string  `json:"city"`
	Zip        string  `json:"zip"`
	Phone      string  `json:"phone"`
	Type       int     `json:"type"`
	Currency   string  `json:"currency,omitempty"`
	Price      float64 `json:"price,omitempty"`
}

// PurchaseRequest is the body of POST /domain/domains.
type PurchaseRequest struct {
	FQDN     string `json:"fqdn"`
	Duration int    `json:"duration"`
	Owner    Owner  `json:"owner"`
}

// NewPurchaseRequest builds a purchase body from a quote and the stored
// domain owner.
func NewPurchaseRequest(q Quote, owner config.DomainOwner) PurchaseRequest {
	return PurchaseRequest{
		FQDN:     q.Domain,
		Duration: q.Years,
		Owner: Owner{
			Country:    owner.CountryISO,
			Email:      owner.Email,
			Family:     owner.LastName,
			Given:      owner.FirstName,
			StreetAddr: owner.StreetAddress,
			City:       owner.City,
			Zip:        owner.Zip,
			Phone:      owner.Phone,
			Type:       owner.DomainOwnerTypeNumeric,
			Currency:   q.Currency,
			Price:      q.UnitPrice,
		},
	}
}

type purchaseResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// GetDomain fetches a domain from the account.
func (c *Client) GetDomain(ctx context.Context, fqdn string) (*DomainInfo, error) {
	var info DomainInfo
	if err := c.api.Get(ctx, "get_domain", "/domain/domains/"+url.PathEscape(fqdn), nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// IsDomainAlreadyOwned reports whether the account already holds fqdn. A 404
// means it does not. Other errors are returned.
func (c *Client) IsDomainAlreadyOwned(ctx context.Context, fqdn string) (bool, error) {
	info, err := c.GetDomain(ctx, fqdn)
	if err != nil {
		if rest.IsStatus(err, http.StatusNotFound) {
			return false, nil
		}
		return false, err
	}
	return info.Owned(), nil
}

// CheckAvailability asks whether fqdn can be created and at what price.
func (c *Client) CheckAvailability(ctx context.Context, fqdn, currency string) (*Availability, error) {
	query := url.Values{
		"name":      {fqdn},
		"processes": {processCreate},
		"currency":  {currency},
	}

	var a Availability
	if err := c.api.Get(ctx, "check_availability", "/domain/check", query, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Quote prices registering fqdn for years in currency.
func (c *Client) Quote(ctx context.Context, fqdn, currency string, years int) (*Quote, error) {
	a, err := c.CheckAvailability(ctx, fqdn, currency)
	if err != nil {
		return nil, err
	}

	price, err := a.Offer(currency)
	if err != nil {
		return nil, err
	}

	return &Quote{
		Domain:    fqdn,
		Currency:  a.Currency,
		Years:     years,
		UnitPrice: price.PriceAfterTaxes,
		Total:     float64(years) * price.PriceAfterTaxes,
	}, nil
}

// Purchase places the order. In dry-run mode Gandi only validates the
// request and answers with status "success".
func (c *Client) Purchase(ctx context.Context, req PurchaseRequest) error {
	dryRun := "0"
	if c.dryRun {
		dryRun = "1"
	}

	var resp purchaseResponse
	_, err := c.api.Do(ctx, rest.Request{
		Operation: "purchase_domain",
		Method:    http.MethodPost,
		Path:      "/domain/domains",
		Header:    http.Header{"Dry-Run": {dryRun}},
		Body:      req,
	}, &resp)
	if err != nil {
		return err
	}

	if c.dryRun {
		if resp.Status != "success" {
			return fmt.Errorf("%w: dry run status %q", ErrUnexpectedResponse, resp.Status)
		}
		return nil
	}
	if resp.Message != creationLaunchedMessage {
		return fmt.Errorf("%w: %q", ErrUnexpectedResponse, resp.Message)
	}
	return nil
}
