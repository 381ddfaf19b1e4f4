package gandi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/launchwolf/launchwolf/pkg/config"
	"github.com/launchwolf/launchwolf/pkg/engine"
	"github.com/launchwolf/launchwolf/pkg/telemetry"
)

// ErrPurchaseUnconfirmed is returned when the purchased domain never shows
// up in the account.
var ErrPurchaseUnconfirmed = errors.New("couldn't confirm domain purchase. Please review the domain purchase in the Gandi admin console. It should be in the orders tab at: https://admin.gandi.net/billing")

// ErrCodePurchaseUnconfirmed is the engine error code of an unconfirmed
// purchase.
const ErrCodePurchaseUnconfirmed = "PURCHASE_UNCONFIRMED"

// PurchaseResult tells how a purchase sequence ended.
type PurchaseResult int

const (
	// PurchaseCompleted means the domain was bought and is now owned.
	PurchaseCompleted PurchaseResult = iota

	// PurchaseDeclined means the user answered no to the price.
	PurchaseDeclined

	// PurchaseValidated means a dry run was accepted; nothing was bought.
	PurchaseValidated
)

// PurchaseFlow buys a domain: quote, guard, confirm, order, then wait until
// the account owns it.
type PurchaseFlow struct {
	Client *Client
	Out    io.Writer

	// Owner loads the registrant. It is called only after the user agreed
	// to the price.
	Owner func(ctx context.Context) (*config.DomainOwner, error)

	// Guard may veto a quote before the user is asked. Nil allows all.
	Guard func(ctx context.Context, q *Quote) error

	// Confirm asks the user to accept the quote.
	Confirm func(ctx context.Context, q *Quote) (bool, error)

	Attempts int
	Delay    time.Duration

	// OnRetry is called after each failed ownership check that will be
	// retried, after the retry message was printed.
	OnRetry func(attempt int)
}

// Run performs the purchase sequence for domain.
func (f *PurchaseFlow) Run(ctx context.Context, domain, currency string, years int) (PurchaseResult, error) {
	logger := telemetry.FromContext(ctx).WithProvider(ProviderName)

	quote, err := f.Client.Quote(ctx, domain, currency, years)
	if err != nil {
		return 0, err
	}
	logger.WithField("total", quote.Total).WithField("currency", quote.Currency).Info("Received domain quote")

	if f.Guard != nil {
		if err := f.Guard(ctx, quote); err != nil {
			return 0, err
		}
	}

	ok, err := f.Confirm(ctx, quote)
	if err != nil {
		return 0, err
	}
	if !ok {
		fmt.Fprintln(f.Out, "Ok, aborting domain purchase. Continuing with the next step.")
		return PurchaseDeclined, nil
	}
	fmt.Fprintln(f.Out, "Great, attempting to purchase domain...")

	owner, err := f.Owner(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load domain owner: %w", err)
	}

	if err := f.Client.Purchase(ctx, NewPurchaseRequest(*quote, *owner)); err != nil {
		return 0, err
	}

	if f.Client.DryRun() {
		fmt.Fprintln(f.Out, "Dry run: Gandi accepted the purchase request, no order was placed.")
		return PurchaseValidated, nil
	}

	fmt.Fprintln(f.Out, "Domain purchase seems to have succeeded, checking account for purchased domain to confirm payment (this may take a few tries)...")
	if err := f.waitForOwnership(ctx, domain); err != nil {
		return 0, err
	}

	fmt.Fprintln(f.Out, "Domain purchase was successful, congratulations!")
	fmt.Fprintln(f.Out, "You can view the purchased domain in the Gandi admin console at https://admin.gandi.net/domain")
	return PurchaseCompleted, nil
}

func (f *PurchaseFlow) waitForOwnership(ctx context.Context, domain string) error {
	attempts := f.Attempts
	if attempts < 1 {
		attempts = 1
	}

	checks := 0
	_, err := engine.Poll(ctx,
		func(ctx context.Context) (bool, error) {
			checks++
			return f.Client.IsDomainAlreadyOwned(ctx, domain)
		},
		func(owned bool) bool { return owned },
		ErrPurchaseUnconfirmed,
		f.Delay,
		attempts,
		func(attempt int) {
			fmt.Fprintf(f.Out, "Attempt %d/%d failed, retrying in %s...\n", attempt, attempts, f.Delay)
			if f.OnRetry != nil {
				f.OnRetry(attempt)
			}
		},
	)
	if errors.Is(err, ErrPurchaseUnconfirmed) {
		return engine.NewPermanentError("domain purchase not confirmed", err).
			WithProvider(ProviderName).
			WithCode(ErrCodePurchaseUnconfirmed).
			WithDetail("domain", domain).
			WithDetail("checks", checks)
	}
	return err
}
