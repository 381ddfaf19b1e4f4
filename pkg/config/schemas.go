package config

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// Built-in schema names.
const (
	SchemaLaunchConfig = "launchconfig"
	SchemaDomainOwner  = "domainowner"
)

// SchemaRegistry manages CUE schemas used to validate config files.
type SchemaRegistry struct {
	ctx     *cue.Context
	schemas map[string]cue.Value
	mu      sync.RWMutex
}

// NewSchemaRegistry creates a new schema registry with built-in schemas.
func NewSchemaRegistry() *SchemaRegistry {
	sr := &SchemaRegistry{
		ctx:     cuecontext.New(),
		schemas: make(map[string]cue.Value),
	}

	// Built-in sources are constants and always compile.
	_ = sr.RegisterSchema(SchemaLaunchConfig, builtinSchemas, "#LaunchConfig")
	_ = sr.RegisterSchema(SchemaDomainOwner, builtinSchemas, "#DomainOwner")

	return sr
}

// RegisterSchema compiles source and registers the definition at path under
// name. An empty definition registers the whole file.
func (sr *SchemaRegistry) RegisterSchema(name, source, definition string) error {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	val := sr.ctx.CompileString(source)
	if err := val.Err(); err != nil {
		return fmt.Errorf("failed to compile schema %s: %w", name, err)
	}
	if definition != "" {
		val = val.LookupPath(cue.ParsePath(definition))
		if err := val.Err(); err != nil {
			return fmt.Errorf("schema %s: definition %s: %w", name, definition, err)
		}
		if !val.Exists() {
			return fmt.Errorf("schema %s: definition %s not found", name, definition)
		}
	}

	sr.schemas[name] = val
	return nil
}

// GetSchema retrieves a schema by name.
func (sr *SchemaRegistry) GetSchema(name string) (cue.Value, bool) {
	sr.mu.RLock()
	defer sr.mu.RUnlock()

	val, ok := sr.schemas[name]
	return val, ok
}

// ValidateAgainstSchema validates data against a named schema. Data is
// compiled from its JSON form so integers stay integers.
func (sr *SchemaRegistry) ValidateAgainstSchema(ctx context.Context, schemaName string, data any) error {
	schema, ok := sr.GetSchema(schemaName)
	if !ok {
		return fmt.Errorf("schema %s not found", schemaName)
	}

	b, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode data: %w", err)
	}

	sr.mu.Lock()
	dataVal := sr.ctx.CompileBytes(b)
	sr.mu.Unlock()
	if err := dataVal.Err(); err != nil {
		return fmt.Errorf("failed to encode data: %w", err)
	}

	unified := schema.Unify(dataVal)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	return nil
}

// ListSchemas returns all registered schema names, sorted.
func (sr *SchemaRegistry) ListSchemas() []string {
	sr.mu.RLock()
	defer sr.mu.RUnlock()

	names := make([]string, 0, len(sr.schemas))
	for name := range sr.schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

const builtinSchemas = `
#DomainOwner: {
	firstName:     string & !=""
	lastName:      string & !=""
	streetAddress: string & !=""
	city:          string & !=""
	zip:           string & !=""
	phone:         string & !=""
	email:         string & =~"^[^@ ]+@[^@ ]+$"
	countryISO:    string & =~"^[A-Z]{2}$"

	// Index into Person, Company, Association, Public body, Domain Reseller.
	domainOwnerTypeNumeric: int & >=0 & <=4
}

#MailjetAPIKeys: {
	publicAPIKey:  string & !=""
	privateAPIKey: string & !=""
}

// Both config files share one shape. Unknown keys are allowed so files
// written by newer versions still validate.
#LaunchConfig: {
	domain?:                        string & =~"^([a-zA-Z0-9-]+\\.)+[a-zA-Z]{2,}$"
	gandiAPIKey?:                   string
	domainPurchaseCurrency?:        "EUR" | "USD" | "GBP" | "TWD" | "CNY"
	domainOwner?:                   #DomainOwner
	domainPurchaseDurationInYears?: int & >=1 & <=10
	domainPurchaseMaxPrice?:        number & >=0
	email?:                         string & =~"^[^@ ]+$"
	netlifyAccessToken?:            string
	mailjetAPIKeys?:                #MailjetAPIKeys
	...
}
`
