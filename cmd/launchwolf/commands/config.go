package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/launchwolf/launchwolf/pkg/config"
	"github.com/launchwolf/launchwolf/pkg/prompt"
)

const secretMask = "********"

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit saved answers",
		Long: `Inspect and edit the answers saved in the local (project) and global
(per-user) config files.`,
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigGetCommand())
	cmd.AddCommand(newConfigSetCommand())
	cmd.AddCommand(newConfigUnsetCommand())
	cmd.AddCommand(newConfigPathCommand())
	cmd.AddCommand(newConfigValidateCommand())

	return cmd
}

// configResolver builds a resolver that never prompts.
func configResolver(a *app) (*config.Resolver, error) {
	schema, err := config.DefaultSchema(nil)
	if err != nil {
		return nil, err
	}
	return a.resolver(schema, nil)
}

// storedValue returns the value of key from the file of its scope.
func storedValue(r *config.Resolver, d config.Descriptor) (any, bool) {
	v, ok := r.Values(d.Scope)[string(d.Key)]
	return v, ok
}

func formatValue(v any, secret bool) string {
	if secret {
		return secretMask
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func lookupDescriptor(r *config.Resolver, name string) (config.Descriptor, error) {
	d, ok := r.Schema().Lookup(config.Key(name))
	if !ok {
		return config.Descriptor{}, fmt.Errorf("%w: %s (known keys: %s)", config.ErrUnknownKey, name, knownKeys(r.Schema()))
	}
	return d, nil
}

func knownKeys(s *config.Schema) string {
	keys := s.Keys()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

func newConfigShowCommand() *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show all saved answers",
		Example: `  # Show saved answers, secrets masked
  launchwolf config show

  # Include API keys and tokens
  launchwolf config show --reveal`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			r, err := configResolver(a)
			if err != nil {
				return err
			}

			tbl := table.New().
				Border(lipgloss.NormalBorder()).
				Headers("Key", "Scope", "Value")
			for _, d := range r.Schema().Descriptors() {
				value := prompt.Styles.Muted.Render("(not set)")
				if v, ok := storedValue(r, d); ok {
					value = formatValue(v, d.Secret && !reveal)
				}
				tbl.Row(string(d.Key), string(d.Scope), value)
			}

			fmt.Fprintln(a.out, tbl.String())
			fmt.Fprintf(a.out, "local:  %s\n", r.ConfigPath(config.ScopeLocal))
			fmt.Fprintf(a.out, "global: %s\n", r.ConfigPath(config.ScopeGlobal))
			return nil
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "show secret values")

	return cmd
}

func newConfigGetCommand() *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print one saved answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			r, err := configResolver(a)
			if err != nil {
				return err
			}
			d, err := lookupDescriptor(r, args[0])
			if err != nil {
				return err
			}

			v, ok := storedValue(r, d)
			if !ok {
				return &config.KeyNotFoundError{Key: d.Key}
			}
			fmt.Fprintln(a.out, formatValue(v, d.Secret && !reveal))
			return nil
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "show secret values")

	return cmd
}

func newConfigSetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Save an answer",
		Long: `Save an answer to the config file of the key's scope. Object values
(domainOwner, mailjetAPIKeys) are given as JSON.`,
		Example: `  launchwolf config set domainPurchaseCurrency USD
  launchwolf config set domainPurchaseMaxPrice 40
  launchwolf config set mailjetAPIKeys '{"publicAPIKey":"...","privateAPIKey":"..."}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			r, err := configResolver(a)
			if err != nil {
				return err
			}
			d, err := lookupDescriptor(r, args[0])
			if err != nil {
				return err
			}

			value, err := parseConfigValue(d, args[1])
			if err != nil {
				return err
			}

			registry := config.NewSchemaRegistry()
			doc := map[string]any{string(d.Key): value}
			if err := registry.ValidateAgainstSchema(cmd.Context(), config.SchemaLaunchConfig, doc); err != nil {
				return fmt.Errorf("invalid value for %s: %w", d.Key, err)
			}

			log.Info().
				Str("key", string(d.Key)).
				Str("scope", string(d.Scope)).
				Msg("Setting config value")

			return r.Save(d.Key, value)
		},
	}

	return cmd
}

// parseConfigValue converts a command-line string to the key's value type.
func parseConfigValue(d config.Descriptor, raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("value must not be empty")
	}

	if strings.HasPrefix(raw, "{") {
		var obj map[string]any
		if err := json.Unmarshal([]byte(raw), &obj); err != nil {
			return nil, fmt.Errorf("invalid JSON value for %s: %w", d.Key, err)
		}
		return obj, nil
	}

	if d.Flag == nil {
		return raw, nil
	}
	switch d.Flag.Kind {
	case config.FlagInt:
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%s must be an integer: %w", d.Key, err)
		}
		return n, nil
	case config.FlagFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("%s must be a number: %w", d.Key, err)
		}
		return f, nil
	default:
		return raw, nil
	}
}

func newConfigUnsetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Forget a saved answer",
		Long:  `Forget a saved answer. The next launch asks for it again.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			r, err := configResolver(a)
			if err != nil {
				return err
			}
			d, err := lookupDescriptor(r, args[0])
			if err != nil {
				return err
			}
			if err := r.Unset(d.Key); err != nil {
				return err
			}
			fmt.Fprintln(a.out, prompt.Success(fmt.Sprintf("Removed %s from %s", d.Key, r.ConfigPath(d.Scope))))
			return nil
		},
	}
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			fmt.Fprintf(a.out, "local:  %s\n", a.local.Path())
			fmt.Fprintf(a.out, "global: %s\n", a.global.Path())
			return nil
		},
	}
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the config files",
		Long: `Check both config files against the LaunchWolf config schema. A stored
domain owner is also checked field by field.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if _, err := configResolver(a); err != nil {
				return err
			}

			registry := config.NewSchemaRegistry()
			var errs []error
			for _, store := range []*config.FileStore{a.local, a.global} {
				if !store.Exists() {
					fmt.Fprintf(a.out, "%s does not exist, skipping\n", store.Path())
					continue
				}

				err := validateStore(cmd, registry, store)
				if err != nil {
					fmt.Fprintln(a.out, prompt.Failure(fmt.Sprintf("%s: %v", store.Path(), err)))
					errs = append(errs, fmt.Errorf("%s: %w", store.Path(), err))
					continue
				}
				fmt.Fprintln(a.out, prompt.Success(fmt.Sprintf("%s is valid", store.Path())))
			}

			if len(errs) > 0 {
				cmd.SilenceUsage = true
				return &reportedError{err: errors.Join(errs...)}
			}
			return nil
		},
	}
}

func validateStore(cmd *cobra.Command, registry *config.SchemaRegistry, store *config.FileStore) error {
	values := store.Values()
	if err := registry.ValidateAgainstSchema(cmd.Context(), config.SchemaLaunchConfig, values); err != nil {
		return err
	}

	if raw, ok := values[string(config.KeyDomainOwner)]; ok {
		owner, err := config.Decode[config.DomainOwner](raw)
		if err != nil {
			return err
		}
		if err := owner.Validate(); err != nil {
			return err
		}
	}
	return nil
}
