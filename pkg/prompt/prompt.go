// Package prompt implements the interactive questions of a launch with huh
// forms.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/go-playground/validator/v10"

	"github.com/launchwolf/launchwolf/pkg/config"
)

// ErrAborted is returned when the user cancels a prompt.
var ErrAborted = errors.New("prompt aborted by user")

var (
	domainPattern = regexp.MustCompile(`^([a-z0-9]([a-z0-9-]*[a-z0-9])?\.)+[a-z]{2,}$`)
	validate      = validator.New()
)

// Prompter asks questions on the terminal.
type Prompter struct {
	theme      *huh.Theme
	accessible bool
	in         io.Reader
	out        io.Writer
	countries  []Country
}

// Option configures a Prompter.
type Option func(*Prompter)

// WithAccessible switches forms to plain line-based prompts, suitable for
// screen readers and non-TTY input.
func WithAccessible(accessible bool) Option {
	return func(p *Prompter) {
		p.accessible = accessible
	}
}

// WithIO sets the input and output of the forms. Messages between forms go
// to out as well.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(p *Prompter) {
		p.in = in
		p.out = out
	}
}

// New creates a prompter.
func New(opts ...Option) (*Prompter, error) {
	countries, err := LoadCountries()
	if err != nil {
		return nil, err
	}

	p := &Prompter{
		theme:     Theme(),
		countries: countries,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

var _ config.Prompts = (*Prompter)(nil)

func (p *Prompter) run(ctx context.Context, groups ...*huh.Group) error {
	form := huh.NewForm(groups...).
		WithTheme(p.theme).
		WithAccessible(p.accessible)
	if p.in != nil {
		form = form.WithInput(p.in)
	}
	if p.out != nil {
		form = form.WithOutput(p.out)
	}

	err := form.RunWithContext(ctx)
	if errors.Is(err, huh.ErrUserAborted) {
		return ErrAborted
	}
	return err
}

// Input asks for a line of text.
func (p *Prompter) Input(ctx context.Context, title, description string, check func(string) error) (string, error) {
	var value string
	field := huh.NewInput().
		Title(title).
		Description(description).
		Value(&value)
	if check != nil {
		field = field.Validate(check)
	}

	if err := p.run(ctx, huh.NewGroup(field)); err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// Password asks for a secret without echoing it.
func (p *Prompter) Password(ctx context.Context, title, description string) (string, error) {
	var value string
	field := huh.NewInput().
		Title(title).
		Description(description).
		EchoMode(huh.EchoModePassword).
		Value(&value)

	if err := p.run(ctx, huh.NewGroup(field)); err != nil {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// Select asks for one of choices.
func (p *Prompter) Select(ctx context.Context, title string, choices []string) (string, error) {
	var value string
	field := huh.NewSelect[string]().
		Title(title).
		Options(huh.NewOptions(choices...)...).
		Value(&value)

	if err := p.run(ctx, huh.NewGroup(field)); err != nil {
		return "", err
	}
	return value, nil
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(ctx context.Context, title, description string, initial bool) (bool, error) {
	value := initial
	field := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&value)

	if err := p.run(ctx, huh.NewGroup(field)); err != nil {
		return false, err
	}
	return value, nil
}

// Domain asks for the domain to launch. A pasted URL is reduced to its
// domain.
func (p *Prompter) Domain(ctx context.Context) (string, error) {
	v, err := p.Input(ctx, "What domain do you want to launch?", "For example: example.com", validateDomainInput)
	return NormalizeDomain(v), err
}

// GandiAPIKey asks for the Gandi API key.
func (p *Prompter) GandiAPIKey(ctx context.Context) (string, error) {
	return p.Password(ctx, "Gandi API key",
		"Create one at https://account.gandi.net/ under Security > Production API key")
}

// Currency asks for the purchase currency.
func (p *Prompter) Currency(ctx context.Context) (string, error) {
	return p.Select(ctx, "Which currency do you want to pay domains in?", config.Currencies)
}

// Email asks for the local part of the primary address at domain.
func (p *Prompter) Email(ctx context.Context, domain string) (string, error) {
	return p.Input(ctx,
		fmt.Sprintf("What should be your primary email address? (____@%s)", domain),
		"Only the part before the @, for example: hello",
		ValidateEmailName)
}

// NetlifyAccessToken asks for a Netlify personal access token.
func (p *Prompter) NetlifyAccessToken(ctx context.Context) (string, error) {
	return p.Password(ctx, "Netlify personal access token",
		"Create one at https://app.netlify.com/user/applications#personal-access-tokens")
}

// MailjetAPIKeys asks for the Mailjet key pair.
func (p *Prompter) MailjetAPIKeys(ctx context.Context) (*config.MailjetAPIKeys, error) {
	keys := &config.MailjetAPIKeys{}
	group := huh.NewGroup(
		huh.NewInput().
			Title("Mailjet public API key").
			Description("Find both keys at https://app.mailjet.com/account/apikeys").
			EchoMode(huh.EchoModePassword).
			Validate(ValidateNotEmpty).
			Value(&keys.PublicAPIKey),
		huh.NewInput().
			Title("Mailjet private API key").
			EchoMode(huh.EchoModePassword).
			Validate(ValidateNotEmpty).
			Value(&keys.PrivateAPIKey),
	)

	if err := p.run(ctx, group); err != nil {
		return nil, err
	}
	if err := keys.Validate(); err != nil {
		return nil, nil
	}
	return keys, nil
}

// DomainOwner asks for the registrant contact until the user confirms it.
func (p *Prompter) DomainOwner(ctx context.Context) (*config.DomainOwner, error) {
	owner := &config.DomainOwner{}

	for {
		if err := p.run(ctx, p.ownerGroups(owner)...); err != nil {
			return nil, err
		}

		if err := owner.Validate(); err != nil {
			_, _ = fmt.Fprintln(p.messages(), Failure(err.Error()))
			continue
		}

		ok, err := p.Confirm(ctx, "Is this correct?", owner.Summary(), true)
		if err != nil {
			return nil, err
		}
		if ok {
			return owner, nil
		}
	}
}

// messages is where text printed between forms goes.
func (p *Prompter) messages() io.Writer {
	if p.out != nil {
		return p.out
	}
	return os.Stderr
}

// ownerGroups builds the owner form, prefilled with the current values.
func (p *Prompter) ownerGroups(owner *config.DomainOwner) []*huh.Group {
	countryOptions := make([]huh.Option[string], 0, len(p.countries))
	for _, c := range p.countries {
		countryOptions = append(countryOptions, huh.NewOption(c.Name, c.Code))
	}

	typeOptions := make([]huh.Option[int], 0, len(config.OwnerTypes))
	for i, t := range config.OwnerTypes {
		typeOptions = append(typeOptions, huh.NewOption(t, i))
	}

	return []*huh.Group{
		huh.NewGroup(
			huh.NewInput().Title("First name").Validate(ValidateNotEmpty).Value(&owner.FirstName),
			huh.NewInput().Title("Last name").Validate(ValidateNotEmpty).Value(&owner.LastName),
			huh.NewInput().Title("Street address").Validate(ValidateNotEmpty).Value(&owner.StreetAddress),
			huh.NewInput().Title("City").Validate(ValidateNotEmpty).Value(&owner.City),
			huh.NewInput().Title("Zip code").Validate(ValidateNotEmpty).Value(&owner.Zip),
			huh.NewInput().Title("Phone").Description("International format, for example +33.123456789").
				Validate(ValidateNotEmpty).Value(&owner.Phone),
			huh.NewInput().Title("Email").Validate(ValidateEmail).Value(&owner.Email),
		).Title("Domain owner").Description("Registrant contact used for domain purchases"),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Country").
				Description("Type / to filter").
				Options(countryOptions...).
				Filtering(true).
				Height(10).
				Value(&owner.CountryISO),
			huh.NewSelect[int]().
				Title("Owner type").
				Options(typeOptions...).
				Value(&owner.DomainOwnerTypeNumeric),
		),
	}
}

// ValidateNotEmpty rejects blank input.
func ValidateNotEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("this field is required")
	}
	return nil
}

// ValidateDomain accepts names like example.com or my-site.co.uk.
func ValidateDomain(s string) error {
	if !domainPattern.MatchString(strings.ToLower(strings.TrimSpace(s))) {
		return errors.New("enter a domain name like example.com")
	}
	return nil
}

// NormalizeDomain turns a pasted URL into a bare lowercase domain.
func NormalizeDomain(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	return strings.TrimSuffix(s, "/")
}

func validateDomainInput(s string) error {
	return ValidateDomain(NormalizeDomain(s))
}

// ValidateEmailName accepts the local part of an address.
func ValidateEmailName(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("this field is required")
	}
	if strings.ContainsAny(s, "@ ") {
		return errors.New("enter only the part before the @")
	}
	return nil
}

// ValidateEmail accepts a full email address.
func ValidateEmail(s string) error {
	if err := validate.Var(strings.TrimSpace(s), "required,email"); err != nil {
		return errors.New("enter a valid email address")
	}
	return nil
}
