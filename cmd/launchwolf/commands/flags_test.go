package commands

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchwolf/launchwolf/pkg/config"
)

func newFlagSource(t *testing.T, domain string, args ...string) *cobraFlags {
	t.Helper()
	schema, err := config.DefaultSchema(nil)
	require.NoError(t, err)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	registerConfigFlags(fs, schema)
	require.NoError(t, fs.Parse(args))
	return &cobraFlags{fs: fs, schema: schema, domain: domain}
}

func TestRegisterConfigFlags(t *testing.T) {
	f := newFlagSource(t, "")

	for _, name := range []string{"gandiAPIKey", "domainPurchaseCurrency", "domainPurchaseDurationInYears", "domainPurchaseMaxPrice", "netlifyAccessToken"} {
		assert.NotNil(t, f.fs.Lookup(name), name)
	}
	for _, name := range []string{"domain", "domainOwner", "email", "mailjetAPIKeys"} {
		assert.Nil(t, f.fs.Lookup(name), "%s has no flag", name)
	}
	assert.Contains(t, f.fs.Lookup("domainPurchaseCurrency").Usage, "one of EUR, USD")
}

func TestCobraFlags_Lookup(t *testing.T) {
	f := newFlagSource(t, "example.com",
		"--gandiAPIKey", "k",
		"--domainPurchaseDurationInYears", "2",
		"--domainPurchaseMaxPrice", "12.5",
	)

	tests := []struct {
		key  config.Key
		want any
		ok   bool
	}{
		{config.KeyDomain, "example.com", true},
		{config.KeyGandiAPIKey, "k", true},
		{config.KeyDomainPurchaseDurationInYears, 2, true},
		{config.KeyDomainPurchaseMaxPrice, 12.5, true},
		{config.KeyDomainPurchaseCurrency, nil, false},
		{config.KeyEmail, nil, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			v, ok := f.Lookup(tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestCobraFlags_DefaultIsNotSupplied(t *testing.T) {
	f := newFlagSource(t, "")

	_, ok := f.Lookup(config.KeyDomain)
	assert.False(t, ok)
	_, ok = f.Lookup(config.KeyDomainPurchaseDurationInYears)
	assert.False(t, ok, "unset int flag must fall through to the config files")
}

func TestValidateFlagChoices(t *testing.T) {
	f := newFlagSource(t, "", "--domainPurchaseCurrency", "USD")
	assert.NoError(t, validateFlagChoices(f.fs, f.schema))

	f = newFlagSource(t, "", "--domainPurchaseCurrency", "usd")
	assert.Error(t, validateFlagChoices(f.fs, f.schema))
}
