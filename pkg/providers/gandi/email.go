package gandi

import (
	"context"
	"net/url"
	"slices"
)

// Forward is an email forwarding address.
type Forward struct {
	Source       string   `json:"source"`
	Destinations []string `json:"destinations"`
}

// Mailbox is a hosted mailbox.
type Mailbox struct {
	ID          string `json:"id"`
	Login       string `json:"login"`
	Address     string `json:"address"`
	MailboxType string `json:"mailbox_type"`
}

// ListForwards returns the forwarding addresses of domain.
func (c *Client) ListForwards(ctx context.Context, domain string) ([]Forward, error) {
	var out []Forward
	if err := c.api.Get(ctx, "list_forwards", "/email/forwards/"+url.PathEscape(domain), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListMailboxes returns the mailboxes of domain.
func (c *Client) ListMailboxes(ctx context.Context, domain string) ([]Mailbox, error) {
	var out []Mailbox
	if err := c.api.Get(ctx, "list_mailboxes", "/email/mailboxes/"+url.PathEscape(domain), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// EnsureForward makes source@domain forward to destinations. It creates the
// forward when missing and replaces its destinations when they differ. The
// returned flag is false when nothing had to change.
func (c *Client) EnsureForward(ctx context.Context, domain, source string, destinations []string) (bool, error) {
	forwards, err := c.ListForwards(ctx, domain)
	if err != nil {
		return false, err
	}

	i := slices.IndexFunc(forwards, func(f Forward) bool { return f.Source == source })
	if i < 0 {
		body := Forward{Source: source, Destinations: destinations}
		if err := c.api.Post(ctx, "create_forward", "/email/forwards/"+url.PathEscape(domain), body, nil); err != nil {
			return false, err
		}
		return true, nil
	}

	current := slices.Clone(forwards[i].Destinations)
	wanted := slices.Clone(destinations)
	slices.Sort(current)
	slices.Sort(wanted)
	if slices.Equal(current, wanted) {
		return false, nil
	}

	body := struct {
		Destinations []string `json:"destinations"`
	}{destinations}
	path := "/email/forwards/" + url.PathEscape(domain) + "/" + url.PathEscape(source)
	if err := c.api.Put(ctx, "update_forward", path, body, nil); err != nil {
		return false, err
	}
	return true, nil
}
