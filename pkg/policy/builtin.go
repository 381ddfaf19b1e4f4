package policy

// GetBuiltinPolicies returns the policies every purchase is checked against.
func GetBuiltinPolicies() []Policy {
	return []Policy{
		purchaseDurationPolicy(),
		purchasePriceCapPolicy(),
		purchaseCurrencyPolicy(),
	}
}

// purchaseDurationPolicy keeps the registration period within what Gandi
// sells.
func purchaseDurationPolicy() Policy {
	return Policy{
		Name:        "purchase_duration",
		Description: "Registration period must be between 1 and 10 years",
		Severity:    SeverityError,
		Enabled:     true,
		Rego: `package launchwolf.purchase.duration

import rego.v1

deny contains violation if {
	input.duration < 1
	violation := {"message": sprintf("Purchase duration must be at least 1 year, got %v", [input.duration])}
}

deny contains violation if {
	input.duration > 10
	violation := {"message": sprintf("Purchase duration must be at most 10 years, got %v", [input.duration])}
}
`,
	}
}

// purchasePriceCapPolicy enforces domainPurchaseMaxPrice.
func purchasePriceCapPolicy() Policy {
	return Policy{
		Name:        "purchase_price_cap",
		Description: "Total price must not exceed the configured maximum",
		Severity:    SeverityError,
		Enabled:     true,
		Rego: `package launchwolf.purchase.price_cap

import rego.v1

deny contains violation if {
	input.max_price > 0
	input.total > input.max_price
	violation := {"message": sprintf("Total price %v %s exceeds the configured maximum of %v %s", [input.total, input.currency, input.max_price, input.currency])}
}
`,
	}
}

// purchaseCurrencyPolicy rejects quotes in another currency than the one
// the user pays in.
func purchaseCurrencyPolicy() Policy {
	return Policy{
		Name:        "purchase_currency",
		Description: "Quoted currency must match the configured currency",
		Severity:    SeverityError,
		Enabled:     true,
		Rego: `package launchwolf.purchase.currency

import rego.v1

deny contains violation if {
	input.expected_currency != ""
	input.currency != input.expected_currency
	violation := {"message": sprintf("Price is quoted in %s but purchases are made in %s", [input.currency, input.expected_currency])}
}
`,
	}
}
