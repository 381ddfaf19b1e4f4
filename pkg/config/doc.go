// Package config resolves the answers a launch needs.
//
// # Resolution order
//
// Every value is described by a Descriptor and looked up, in order, in:
//
//  1. command-line flags the user actually set
//  2. the local config file (./launchwolf-config.json)
//  3. the global config file (<user config dir>/launchwolf/launchwolf-global-config.json)
//  4. the descriptor's fallback: a Prompt, or a Default
//
// Stored values that are nil, "", 0 or false count as missing. A prompt is
// repeated until it yields a non-empty value, which is then saved to the
// file matching the descriptor's Scope. Defaults are never saved.
//
//	schema, _ := config.DefaultSchema(prompter)
//	local := config.NewFileStore(config.DefaultLocalConfigPath())
//	global := config.NewFileStore(globalPath)
//
//	r := config.NewResolver(schema, flags, local, global, log.Logger)
//	if err := r.ReadConfig(); err != nil {
//	    return err
//	}
//	domain, err := r.GetString(ctx, config.KeyDomain, config.PromptParams{})
//
// # Validation
//
// SchemaRegistry validates config files against CUE schemas, and
// DomainOwner and Settings carry validator tags.
//
// # Settings
//
// The YAML settings file (launchwolf.yaml) configures the tool itself:
// telemetry, provider endpoints and polling. It is separate from the JSON
// config files, which only hold launch answers.
package config
