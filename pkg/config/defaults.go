package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// Config file names.
const (
	LocalConfigFile  = "launchwolf-config.json"
	GlobalConfigFile = "launchwolf-global-config.json"
)

// DefaultLocalConfigPath returns the project config file in the working directory.
func DefaultLocalConfigPath() string {
	return LocalConfigFile
}

// DefaultGlobalConfigPath returns the per-user config file.
func DefaultGlobalConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(dir, "launchwolf", GlobalConfigFile), nil
}

// Prompts acquires launch answers interactively.
type Prompts interface {
	Domain(ctx context.Context) (string, error)
	GandiAPIKey(ctx context.Context) (string, error)
	Currency(ctx context.Context) (string, error)
	DomainOwner(ctx context.Context) (*DomainOwner, error)
	Email(ctx context.Context, domain string) (string, error)
	NetlifyAccessToken(ctx context.Context) (string, error)
	MailjetAPIKeys(ctx context.Context) (*MailjetAPIKeys, error)
}

// DefaultSchema returns the descriptors of every key a launch needs.
func DefaultSchema(p Prompts) (*Schema, error) {
	return NewSchema(
		Descriptor{
			Key:         KeyDomain,
			Description: "Domain to launch",
			Scope:       ScopeLocal,
			Fallback: Prompt{Run: func(ctx context.Context, _ PromptParams) (any, error) {
				return p.Domain(ctx)
			}},
		},
		Descriptor{
			Key:         KeyGandiAPIKey,
			Description: "Gandi API key",
			Scope:       ScopeGlobal,
			Secret:      true,
			Flag:        &FlagSpec{Kind: FlagString, Usage: "Gandi API key"},
			Fallback: Prompt{Run: func(ctx context.Context, _ PromptParams) (any, error) {
				return p.GandiAPIKey(ctx)
			}},
		},
		Descriptor{
			Key:         KeyDomainPurchaseCurrency,
			Description: "Currency used for domain purchases",
			Scope:       ScopeGlobal,
			Flag:        &FlagSpec{Kind: FlagString, Usage: "currency for domain purchases", Choices: Currencies},
			Fallback: Prompt{Run: func(ctx context.Context, _ PromptParams) (any, error) {
				return p.Currency(ctx)
			}},
		},
		Descriptor{
			Key:         KeyDomainOwner,
			Description: "Registrant contact for domain purchases",
			Scope:       ScopeGlobal,
			Fallback: Prompt{Run: func(ctx context.Context, _ PromptParams) (any, error) {
				owner, err := p.DomainOwner(ctx)
				if err != nil || owner == nil {
					return nil, err
				}
				return owner, nil
			}},
		},
		Descriptor{
			Key:         KeyDomainPurchaseDurationInYears,
			Description: "Registration period in years",
			Scope:       ScopeGlobal,
			Flag:        &FlagSpec{Kind: FlagInt, Usage: "registration period in years", Default: 0},
			Fallback:    Default{Value: 1},
		},
		Descriptor{
			Key:         KeyDomainPurchaseMaxPrice,
			Description: "Refuse purchases whose total exceeds this amount (0 disables)",
			Scope:       ScopeGlobal,
			Flag:        &FlagSpec{Kind: FlagFloat, Usage: "maximum total price of a domain purchase", Default: 0.0},
			Fallback:    Default{Value: 0},
		},
		Descriptor{
			Key:         KeyEmail,
			Description: "Primary email address at the domain",
			Scope:       ScopeLocal,
			Fallback: Prompt{Run: func(ctx context.Context, params PromptParams) (any, error) {
				return p.Email(ctx, params.Domain)
			}},
		},
		Descriptor{
			Key:         KeyNetlifyAccessToken,
			Description: "Netlify personal access token",
			Scope:       ScopeGlobal,
			Secret:      true,
			Flag:        &FlagSpec{Kind: FlagString, Usage: "Netlify personal access token"},
			Fallback: Prompt{Run: func(ctx context.Context, _ PromptParams) (any, error) {
				return p.NetlifyAccessToken(ctx)
			}},
		},
		Descriptor{
			Key:         KeyMailjetAPIKeys,
			Description: "Mailjet public and private API keys",
			Scope:       ScopeGlobal,
			Secret:      true,
			Fallback: Prompt{Run: func(ctx context.Context, _ PromptParams) (any, error) {
				keys, err := p.MailjetAPIKeys(ctx)
				if err != nil || keys == nil {
					return nil, err
				}
				return keys, nil
			}},
		},
	)
}
