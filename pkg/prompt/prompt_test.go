package prompt

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchwolf/launchwolf/pkg/config"
)

func TestValidateDomain(t *testing.T) {
	valid := []string{"example.com", "my-site.co.uk", " Example.COM ", "a.io"}
	invalid := []string{"", "localhost", "-bad.com", "bad-.com", "exa mple.com", "example.c", "http://example.com"}

	for _, d := range valid {
		assert.NoError(t, ValidateDomain(d), d)
	}
	for _, d := range invalid {
		assert.Error(t, ValidateDomain(d), d)
	}
}

func TestNormalizeDomain(t *testing.T) {
	tests := map[string]string{
		"example.com":              "example.com",
		" Example.COM ":            "example.com",
		"https://example.com/":     "example.com",
		"http://www.example.com":   "example.com",
		"https://www.Example.com/": "example.com",
		"shop.example.co.uk":       "shop.example.co.uk",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeDomain(in), in)
	}
}

func TestValidateDomainInput_AcceptsPastedURL(t *testing.T) {
	assert.NoError(t, validateDomainInput("https://www.Example.com/"))
	assert.NoError(t, validateDomainInput("example.com"))
	assert.Error(t, validateDomainInput("https://localhost/"))
	assert.Error(t, ValidateDomain("https://www.Example.com/"), "the strict check still wants a bare domain")
}

func TestValidateEmailName(t *testing.T) {
	assert.NoError(t, ValidateEmailName("hello"))
	assert.NoError(t, ValidateEmailName("first.last"))
	assert.Error(t, ValidateEmailName(""))
	assert.Error(t, ValidateEmailName("hello@example.com"))
	assert.Error(t, ValidateEmailName("two words"))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("ada@example.com"))
	assert.Error(t, ValidateEmail("ada"))
	assert.Error(t, ValidateEmail(""))
}

func TestLoadCountries(t *testing.T) {
	countries, err := LoadCountries()
	require.NoError(t, err)
	require.Greater(t, len(countries), 200)

	seen := make(map[string]bool, len(countries))
	for _, c := range countries {
		assert.Len(t, c.Code, 2, c.Name)
		assert.False(t, seen[c.Code], "duplicate code %s", c.Code)
		seen[c.Code] = true

		owner := config.DomainOwner{
			FirstName: "a", LastName: "b", StreetAddress: "c", City: "d", Zip: "e", Phone: "f",
			Email: "a@example.com", CountryISO: c.Code,
		}
		assert.NoError(t, owner.Validate(), "country %s must pass owner validation", c.Code)
	}

	fr, ok := FindCountry(countries, "fr")
	require.True(t, ok)
	assert.Equal(t, "France", fr.Name)

	de, ok := FindCountry(countries, "germany")
	require.True(t, ok)
	assert.Equal(t, "DE", de.Code)

	_, ok = FindCountry(countries, "Atlantis")
	assert.False(t, ok)
}

func TestNew_ImplementsPrompts(t *testing.T) {
	p, err := New(WithAccessible(true))
	require.NoError(t, err)

	var prompts config.Prompts = p
	assert.NotNil(t, prompts)
	assert.True(t, p.accessible)
	assert.Len(t, p.ownerGroups(&config.DomainOwner{}), 2)
}

func TestPrompter_Messages(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	assert.Equal(t, os.Stderr, p.messages(), "messages must be visible without WithIO")

	var in, out bytes.Buffer
	p, err = New(WithIO(&in, &out))
	require.NoError(t, err)
	assert.Same(t, &in, p.in)
	assert.Same(t, &out, p.messages())
}
