package config

import (
	"context"
	"testing"
)

func TestSchemaRegistry_RegisterAndGet(t *testing.T) {
	sr := NewSchemaRegistry()

	customSchema := `
#Custom: {
	field1: string
	field2: int
}
`

	if err := sr.RegisterSchema("custom", customSchema, "#Custom"); err != nil {
		t.Fatalf("failed to register schema: %v", err)
	}

	schema, ok := sr.GetSchema("custom")
	if !ok {
		t.Fatal("expected to find custom schema")
	}
	if schema.Err() != nil {
		t.Errorf("schema has errors: %v", schema.Err())
	}

	if err := sr.ValidateAgainstSchema(context.Background(), "custom", map[string]any{"field1": "a", "field2": 2}); err != nil {
		t.Errorf("expected valid data, got %v", err)
	}
}

func TestSchemaRegistry_RegisterInvalid(t *testing.T) {
	sr := NewSchemaRegistry()

	if err := sr.RegisterSchema("broken", "#X: {", ""); err == nil {
		t.Error("expected compile error")
	}
	if err := sr.RegisterSchema("missing", "#X: {}", "#Y"); err == nil {
		t.Error("expected missing definition error")
	}
}

func TestSchemaRegistry_BuiltInSchemas(t *testing.T) {
	sr := NewSchemaRegistry()

	names := sr.ListSchemas()
	if len(names) != 2 || names[0] != SchemaDomainOwner || names[1] != SchemaLaunchConfig {
		t.Errorf("unexpected built-in schemas %v", names)
	}
}

func TestSchemaRegistry_LaunchConfig(t *testing.T) {
	sr := NewSchemaRegistry()

	owner := map[string]any{
		"firstName":              "Ada",
		"lastName":               "Lovelace",
		"streetAddress":          "12 St James's Square",
		"city":                   "London",
		"zip":                    "SW1Y 4JH",
		"phone":                  "+44.2012345678",
		"email":                  "ada@example.com",
		"countryISO":             "GB",
		"domainOwnerTypeNumeric": 0,
	}

	tests := []struct {
		name    string
		data    map[string]any
		wantErr bool
	}{
		{"empty", map[string]any{}, false},
		{"full", map[string]any{
			"domain":                        "example.com",
			"domainPurchaseCurrency":        "EUR",
			"domainOwner":                   owner,
			"domainPurchaseDurationInYears": 2,
			"domainPurchaseMaxPrice":        25.5,
			"email":                         "hello",
			"mailjetAPIKeys":                map[string]any{"publicAPIKey": "pub", "privateAPIKey": "priv"},
		}, false},
		{"whole years from JSON numbers", map[string]any{"domainPurchaseDurationInYears": float64(3)}, false},
		{"unknown keys allowed", map[string]any{"somethingNew": true}, false},
		{"bad currency", map[string]any{"domainPurchaseCurrency": "BTC"}, true},
		{"duration too long", map[string]any{"domainPurchaseDurationInYears": 11}, true},
		{"fractional duration", map[string]any{"domainPurchaseDurationInYears": 1.5}, true},
		{"email with domain", map[string]any{"email": "hello@example.com"}, true},
		{"bad domain", map[string]any{"domain": "localhost"}, true},
		{"incomplete owner", map[string]any{"domainOwner": map[string]any{"firstName": "Ada"}}, true},
		{"missing mailjet private key", map[string]any{"mailjetAPIKeys": map[string]any{"publicAPIKey": "pub"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sr.ValidateAgainstSchema(context.Background(), SchemaLaunchConfig, tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("wantErr=%v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSchemaRegistry_UnknownSchema(t *testing.T) {
	sr := NewSchemaRegistry()

	if err := sr.ValidateAgainstSchema(context.Background(), "nope", map[string]any{}); err == nil {
		t.Error("expected unknown schema error")
	}
}
