package gandi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/launchwolf/launchwolf/pkg/providers/dns"
	"github.com/launchwolf/launchwolf/pkg/transports/rest"
)

// DefaultTTL is used for records created by launch.
const DefaultTTL = 1800

// Record is a LiveDNS rrset.
type Record struct {
	Name   string   `json:"rrset_name"`
	Type   string   `json:"rrset_type"`
	TTL    int      `json:"rrset_ttl"`
	Values []string `json:"rrset_values"`
}

func recordPath(fqdn, name, typ string) string {
	return "/livedns/domains/" + url.PathEscape(fqdn) + "/records/" + url.PathEscape(name) + "/" + url.PathEscape(typ)
}

// GetRecord fetches one rrset. A missing rrset returns nil without error.
func (c *Client) GetRecord(ctx context.Context, fqdn, name, typ string) (*Record, error) {
	var r Record
	if err := c.api.Get(ctx, "get_record", recordPath(fqdn, name, typ), nil, &r); err != nil {
		if rest.IsStatus(err, http.StatusNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

// PutRecord creates or replaces an rrset.
func (c *Client) PutRecord(ctx context.Context, fqdn string, r Record) error {
	if r.TTL == 0 {
		r.TTL = DefaultTTL
	}
	body := struct {
		TTL    int      `json:"rrset_ttl"`
		Values []string `json:"rrset_values"`
	}{r.TTL, r.Values}
	return c.api.Put(ctx, "put_record", recordPath(fqdn, r.Name, r.Type), body, nil)
}

// EnsureSPFInclude merges include into the apex SPF record of fqdn, keeping
// any other TXT values. It reports whether the record changed.
func (c *Client) EnsureSPFInclude(ctx context.Context, fqdn, include string) (bool, error) {
	return c.mergeTXT(ctx, fqdn, "@", func(values []string) string {
		existing, _ := dns.FindSPF(values)
		return dns.MergeSPF(existing, include)
	})
}

// EnsureTXT adds value to the TXT rrset name of fqdn.
func (c *Client) EnsureTXT(ctx context.Context, fqdn, name, value string) (bool, error) {
	return c.mergeTXT(ctx, fqdn, name, func([]string) string { return value })
}

func (c *Client) mergeTXT(ctx context.Context, fqdn, name string, build func(values []string) string) (bool, error) {
	current, err := c.GetRecord(ctx, fqdn, name, "TXT")
	if err != nil {
		return false, err
	}

	var values []string
	ttl := DefaultTTL
	if current != nil {
		values = current.Values
		ttl = current.TTL
	}

	merged := dns.MergeTXT(values, build(values))
	if equalValues(values, merged) {
		return false, nil
	}

	return true, c.PutRecord(ctx, fqdn, Record{Name: name, Type: "TXT", TTL: ttl, Values: merged})
}

// EnsureTarget points name at target with a single-valued record of typ,
// such as an apex ALIAS or a www CNAME.
func (c *Client) EnsureTarget(ctx context.Context, fqdn, name, typ, target string) (bool, error) {
	current, err := c.GetRecord(ctx, fqdn, name, typ)
	if err != nil {
		return false, err
	}
	if current != nil && len(current.Values) == 1 && current.Values[0] == target {
		return false, nil
	}
	return true, c.PutRecord(ctx, fqdn, Record{Name: name, Type: typ, Values: []string{target}})
}

func equalValues(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if dns.Quote(a[i]) != b[i] {
			return false
		}
	}
	return true
}
