package policy

import (
	"errors"
	"strings"
	"time"
)

// Severity represents the severity level of a policy violation.
type Severity string

const (
	// SeverityInfo is for informational messages.
	SeverityInfo Severity = "info"

	// SeverityWarning is printed but does not block the purchase.
	SeverityWarning Severity = "warning"

	// SeverityError blocks the purchase.
	SeverityError Severity = "error"
)

// Blocking reports whether a violation of this severity denies the purchase.
func (s Severity) Blocking() bool {
	return s == SeverityError
}

// ErrPurchaseDenied is matched by errors returned from Result.Err.
var ErrPurchaseDenied = errors.New("domain purchase denied by policy")

// Policy is a Rego module whose deny set is evaluated before a purchase.
type Policy struct {
	// Name is the unique name of the policy.
	Name string `json:"name"`

	Description string `json:"description"`

	// Rego contains the policy source. It must define a deny set.
	Rego string `json:"rego"`

	// Severity is the default severity of its violations.
	Severity Severity `json:"severity"`

	Enabled bool `json:"enabled"`

	// Source is the file the policy was loaded from, empty for builtins.
	Source string `json:"source,omitempty"`
}

// Violation is one entry of a policy's deny set.
type Violation struct {
	Policy   string   `json:"policy"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// PurchaseInput is the document policies see as input.
type PurchaseInput struct {
	Domain string `json:"domain"`

	// Currency is the currency Gandi quoted in; ExpectedCurrency is the one
	// configured by the user.
	Currency         string `json:"currency"`
	ExpectedCurrency string `json:"expected_currency"`

	// Duration is the registration period in years.
	Duration int `json:"duration"`

	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`

	// MaxPrice caps Total. Zero means no cap.
	MaxPrice float64 `json:"max_price"`

	DryRun bool `json:"dry_run"`
}

// Result is the outcome of evaluating all enabled policies.
type Result struct {
	Allowed           bool          `json:"allowed"`
	Violations        []Violation   `json:"violations,omitempty"`
	Warnings          []string      `json:"warnings,omitempty"`
	EvaluatedPolicies []string      `json:"evaluated_policies"`
	Duration          time.Duration `json:"duration"`
}

// Err returns nil when the purchase is allowed, otherwise a *DeniedError
// listing the blocking violations.
func (r *Result) Err() error {
	if r.Allowed {
		return nil
	}
	var blocking []Violation
	for _, v := range r.Violations {
		if v.Severity.Blocking() {
			blocking = append(blocking, v)
		}
	}
	return &DeniedError{Violations: blocking}
}

// DeniedError lists the violations that blocked a purchase.
type DeniedError struct {
	Violations []Violation
}

func (e *DeniedError) Error() string {
	msgs := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		msgs = append(msgs, v.Message)
	}
	return ErrPurchaseDenied.Error() + ": " + strings.Join(msgs, "; ")
}

// Is matches ErrPurchaseDenied.
func (e *DeniedError) Is(target error) bool {
	return target == ErrPurchaseDenied
}
