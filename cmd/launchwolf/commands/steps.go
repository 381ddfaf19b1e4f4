package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/launchwolf/launchwolf/pkg/config"
	"github.com/launchwolf/launchwolf/pkg/engine"
	"github.com/launchwolf/launchwolf/pkg/policy"
	"github.com/launchwolf/launchwolf/pkg/prompt"
	"github.com/launchwolf/launchwolf/pkg/providers/dns"
	"github.com/launchwolf/launchwolf/pkg/providers/gandi"
	"github.com/launchwolf/launchwolf/pkg/providers/mailjet"
	"github.com/launchwolf/launchwolf/pkg/providers/netlify"
	"github.com/launchwolf/launchwolf/pkg/telemetry"
)

// gandiClient returns the Gandi client, asking for the API key on first use.
func (l *launcher) gandiClient(ctx context.Context) (*gandi.Client, error) {
	if l.gandiAPI != nil {
		return l.gandiAPI, nil
	}

	apiKey, err := l.resolver.GetString(ctx, config.KeyGandiAPIKey, config.PromptParams{})
	if err != nil {
		return nil, err
	}

	c, err := gandi.New(gandi.Config{
		BaseURL:    l.settings.Providers.GandiURL,
		APIKey:     apiKey,
		DryRun:     l.settings.Gandi.DryRun,
		Timeout:    l.settings.Providers.Timeout,
		UserAgent:  l.userAgent,
		HTTPClient: l.httpClient,
	})
	if err != nil {
		return nil, err
	}
	l.gandiAPI = c
	return c, nil
}

// domainOwner resolves the registrant contact.
func (l *launcher) domainOwner(ctx context.Context) (*config.DomainOwner, error) {
	owner, err := config.GetAs[config.DomainOwner](ctx, l.resolver, config.KeyDomainOwner, config.PromptParams{})
	if err != nil {
		return nil, err
	}
	return &owner, nil
}

func (l *launcher) domainStep(ctx context.Context) error {
	client, err := l.gandiClient(ctx)
	if err != nil {
		return err
	}

	owned, err := client.IsDomainAlreadyOwned(ctx, l.domain)
	if err != nil {
		return err
	}
	if owned {
		fmt.Fprintf(l.out, "Seems like you already own %q.\n", l.domain)
		return nil
	}

	currency, err := l.resolver.GetString(ctx, config.KeyDomainPurchaseCurrency, config.PromptParams{})
	if err != nil {
		return err
	}
	if !config.ValidCurrency(currency) {
		return fmt.Errorf("unsupported currency %q, must be one of %s", currency, strings.Join(config.Currencies, ", "))
	}
	years, err := l.resolver.GetInt(ctx, config.KeyDomainPurchaseDurationInYears, config.PromptParams{})
	if err != nil {
		return err
	}
	maxPrice, err := l.resolver.GetFloat(ctx, config.KeyDomainPurchaseMaxPrice, config.PromptParams{})
	if err != nil {
		return err
	}

	attempts := l.settings.Poll.DomainAttempts
	flow := &gandi.PurchaseFlow{
		Client: client,
		Out:    l.out,
		Owner:  l.domainOwner,
		Guard:  l.purchaseGuard(currency, maxPrice, client.DryRun()),
		Confirm: func(ctx context.Context, q *gandi.Quote) (bool, error) {
			return l.prompts.Confirm(ctx, q.Describe(), "", false)
		},
		Attempts: attempts,
		Delay:    l.settings.Poll.DomainDelay,
		OnRetry: func(attempt int) {
			telemetry.RecordPollRetry(ctx, engine.StepDomain, "domain_ownership", attempt, attempts)
		},
	}

	result, err := flow.Run(ctx, l.domain, currency, years)
	if err != nil {
		return err
	}
	telemetry.FromContext(ctx).WithField("result", int(result)).Info("Domain purchase finished")
	return nil
}

// purchaseGuard evaluates the purchase policies against a quote.
func (l *launcher) purchaseGuard(currency string, maxPrice float64, dryRun bool) func(context.Context, *gandi.Quote) error {
	return func(ctx context.Context, q *gandi.Quote) error {
		res, err := l.policies.EvaluatePurchase(ctx, policy.PurchaseInput{
			Domain:           q.Domain,
			Currency:         q.Currency,
			ExpectedCurrency: currency,
			Duration:         q.Years,
			UnitPrice:        q.UnitPrice,
			Total:            q.Total,
			MaxPrice:         maxPrice,
			DryRun:           dryRun,
		})
		if err != nil {
			return err
		}

		for _, w := range res.Warnings {
			fmt.Fprintln(l.out, prompt.Warning(w))
		}
		for _, v := range res.Violations {
			l.tel.Events.PublishPolicyViolation(telemetry.RunIDFromContext(ctx), engine.StepDomain, v.Policy, v.Message)
			if !v.Severity.Blocking() {
				fmt.Fprintln(l.out, prompt.Warning(v.Message))
			}
		}

		if err := res.Err(); err != nil {
			return engine.NewPermanentError("domain purchase refused", err).
				WithProvider(gandi.ProviderName).
				WithStep(engine.StepDomain).
				WithCode(engine.ErrCodePolicyDenied)
		}
		return nil
	}
}

func (l *launcher) emailStep(ctx context.Context) error {
	client, err := l.gandiClient(ctx)
	if err != nil {
		return err
	}

	local, err := l.resolver.GetString(ctx, config.KeyEmail, config.PromptParams{Domain: l.domain})
	if err != nil {
		return err
	}
	address := local + "@" + l.domain

	mailboxes, err := client.ListMailboxes(ctx, l.domain)
	if err != nil {
		return err
	}
	if slices.ContainsFunc(mailboxes, func(m gandi.Mailbox) bool { return strings.EqualFold(m.Address, address) }) {
		fmt.Fprintf(l.out, "Seems like %s already is a mailbox, leaving it as is.\n", address)
		return nil
	}

	owner, err := l.domainOwner(ctx)
	if err != nil {
		return err
	}

	changed, err := client.EnsureForward(ctx, l.domain, local, []string{owner.Email})
	if err != nil {
		return err
	}
	if changed {
		fmt.Fprintln(l.out, prompt.Success(fmt.Sprintf("Emails to %s are now forwarded to %s.", address, owner.Email)))
	} else {
		fmt.Fprintf(l.out, "Emails to %s are already forwarded to %s.\n", address, owner.Email)
	}
	return nil
}

func (l *launcher) hostingStep(ctx context.Context) error {
	token, err := l.resolver.GetString(ctx, config.KeyNetlifyAccessToken, config.PromptParams{})
	if err != nil {
		return err
	}
	client, err := netlify.New(netlify.Config{
		BaseURL:     l.settings.Providers.NetlifyURL,
		AccessToken: token,
		Timeout:     l.settings.Providers.Timeout,
		UserAgent:   l.userAgent,
		HTTPClient:  l.httpClient,
	})
	if err != nil {
		return err
	}

	deployer := &netlify.Deployer{Dir: l.projectDir, Out: l.out, Runner: l.runner}
	siteID, err := deployer.SetupContinuousDeployment(ctx)
	if err != nil {
		return err
	}

	site, err := client.AddDomainToSite(ctx, siteID, l.domain)
	if err != nil {
		return err
	}
	fmt.Fprintf(l.out, "Netlify site %s now serves %s.\n", site.Name, l.domain)

	dnsClient, err := l.gandiClient(ctx)
	if err != nil {
		return err
	}
	target := site.LoadBalancerTarget() + "."
	for _, rec := range []struct{ name, typ string }{
		{"@", "ALIAS"},
		{"www", "CNAME"},
	} {
		changed, err := dnsClient.EnsureTarget(ctx, l.domain, rec.name, rec.typ, target)
		if err != nil {
			return err
		}
		if changed {
			fmt.Fprintf(l.out, "Pointed %s record %s at %s.\n", rec.typ, rec.name, target)
		}
	}

	fmt.Fprintf(l.out, "Your site will be available at https://%s once DNS has propagated and Netlify issued the certificate.\n", l.domain)
	return nil
}

func (l *launcher) mailingListStep(ctx context.Context) error {
	keys, err := config.GetAs[config.MailjetAPIKeys](ctx, l.resolver, config.KeyMailjetAPIKeys, config.PromptParams{})
	if err != nil {
		return err
	}
	client, err := mailjet.New(mailjet.Config{
		BaseURL:    l.settings.Providers.MailjetURL,
		PublicKey:  keys.PublicAPIKey,
		PrivateKey: keys.PrivateAPIKey,
		Timeout:    l.settings.Providers.Timeout,
		UserAgent:  l.userAgent,
		HTTPClient: l.httpClient,
	})
	if err != nil {
		return err
	}

	setup, created, err := client.SetupDomainForSending(ctx, l.domain)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintf(l.out, "Registered %s as a sending domain at Mailjet.\n", l.domain)
	}

	if err := l.publishSendingRecords(ctx, setup); err != nil {
		return err
	}

	fmt.Fprintln(l.out, "Waiting for Mailjet to verify the SPF and DKIM records (this may take a few tries)...")
	attempts := l.settings.Poll.DNSAttempts
	delay := l.settings.Poll.DNSDelay
	if _, err := client.WaitForDNS(ctx, setup.ID, attempts, delay, func(attempt int) {
		fmt.Fprintf(l.out, "Attempt %d/%d failed, retrying in %s...\n", attempt, attempts, delay)
		telemetry.RecordPollRetry(ctx, engine.StepMailingList, "dns_check", attempt, attempts)
	}); err != nil {
		return err
	}
	fmt.Fprintln(l.out, prompt.Success("SPF and DKIM records verified."))

	list, err := client.GetContactListForDomain(ctx, l.domain)
	if err != nil {
		return err
	}
	if list == nil {
		if list, err = client.CreateContactListForDomain(ctx, l.domain); err != nil {
			return err
		}
		fmt.Fprintln(l.out, prompt.Success(fmt.Sprintf("Created contact list %q (ID %d).", list.Name, list.ID)))
	} else {
		fmt.Fprintf(l.out, "Contact list %q (ID %d) already exists.\n", list.Name, list.ID)
	}
	return nil
}

// publishSendingRecords writes the SPF include, DKIM key and ownership
// token Mailjet asks for into the domain's LiveDNS zone.
func (l *launcher) publishSendingRecords(ctx context.Context, setup *mailjet.DNS) error {
	client, err := l.gandiClient(ctx)
	if err != nil {
		return err
	}

	for _, include := range dns.Includes(setup.SPFRecordValue) {
		changed, err := client.EnsureSPFInclude(ctx, l.domain, include)
		if err != nil {
			return err
		}
		if changed {
			fmt.Fprintf(l.out, "Added include:%s to the SPF record.\n", include)
		}
	}

	records := []struct{ name, value string }{
		{setup.DKIMRecordName, setup.DKIMRecordValue},
		{setup.OwnerShipTokenRecordName, setup.OwnerShipToken},
	}
	for _, rec := range records {
		if rec.name == "" || rec.value == "" {
			continue
		}
		name := dns.RelativeName(rec.name, l.domain)
		changed, err := client.EnsureTXT(ctx, l.domain, name, rec.value)
		if err != nil {
			return err
		}
		if changed {
			fmt.Fprintf(l.out, "Added TXT record %s.\n", name)
		}
	}
	return nil
}
