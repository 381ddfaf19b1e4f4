package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Currencies accepted for domain purchases.
var Currencies = []string{"EUR", "USD", "GBP", "TWD", "CNY"}

// OwnerTypes lists the registrant types in the order Gandi numbers them.
var OwnerTypes = []string{"Person", "Company", "Association", "Public body", "Domain Reseller"}

// DomainOwner is the registrant contact used for domain purchases.
type DomainOwner struct {
	FirstName     string `json:"firstName" validate:"required"`
	LastName      string `json:"lastName" validate:"required"`
	StreetAddress string `json:"streetAddress" validate:"required"`
	City          string `json:"city" validate:"required"`
	Zip           string `json:"zip" validate:"required"`
	Phone         string `json:"phone" validate:"required"`
	Email         string `json:"email" validate:"required,email"`

	// CountryISO is the ISO 3166-1 alpha-2 code of the owner's country.
	CountryISO string `json:"countryISO" validate:"required,iso3166_1_alpha2"`

	// DomainOwnerTypeNumeric indexes OwnerTypes.
	DomainOwnerTypeNumeric int `json:"domainOwnerTypeNumeric" validate:"min=0,max=4"`
}

// OwnerType returns the human-readable registrant type.
func (o DomainOwner) OwnerType() string {
	if o.DomainOwnerTypeNumeric < 0 || o.DomainOwnerTypeNumeric >= len(OwnerTypes) {
		return "Unknown"
	}
	return OwnerTypes[o.DomainOwnerTypeNumeric]
}

// Summary renders the owner for confirmation prompts.
func (o DomainOwner) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Name:    %s %s\n", o.FirstName, o.LastName)
	fmt.Fprintf(&b, "Address: %s, %s %s, %s\n", o.StreetAddress, o.Zip, o.City, o.CountryISO)
	fmt.Fprintf(&b, "Phone:   %s\n", o.Phone)
	fmt.Fprintf(&b, "Email:   %s\n", o.Email)
	fmt.Fprintf(&b, "Type:    %s", o.OwnerType())
	return b.String()
}

// MailjetAPIKeys is the key pair used by the Mailjet v3 API.
type MailjetAPIKeys struct {
	PublicAPIKey  string `json:"publicAPIKey" validate:"required"`
	PrivateAPIKey string `json:"privateAPIKey" validate:"required"`
}

var validate = validator.New()

// Validate checks the owner's required fields and formats.
func (o *DomainOwner) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("invalid domain owner: %w", err)
	}
	return nil
}

// Validate checks that both keys are present.
func (k *MailjetAPIKeys) Validate() error {
	if err := validate.Struct(k); err != nil {
		return fmt.Errorf("invalid mailjet api keys: %w", err)
	}
	return nil
}

// ValidCurrency reports whether c is one of Currencies.
func ValidCurrency(c string) bool {
	for _, known := range Currencies {
		if c == known {
			return true
		}
	}
	return false
}
