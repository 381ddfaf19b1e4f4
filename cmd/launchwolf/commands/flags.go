package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"

	"github.com/launchwolf/launchwolf/pkg/config"
)

// registerConfigFlags adds one flag per descriptor that declares a FlagSpec.
// The flag is named after the key.
func registerConfigFlags(fs *pflag.FlagSet, schema *config.Schema) {
	for _, d := range schema.Descriptors() {
		if d.Flag == nil {
			continue
		}

		name := string(d.Key)
		usage := d.Flag.Usage
		if len(d.Flag.Choices) > 0 {
			usage = fmt.Sprintf("%s (one of %s)", usage, strings.Join(d.Flag.Choices, ", "))
		}

		switch d.Flag.Kind {
		case config.FlagInt:
			def, _ := d.Flag.Default.(int)
			fs.Int(name, def, usage)
		case config.FlagFloat:
			def, _ := d.Flag.Default.(float64)
			fs.Float64(name, def, usage)
		default:
			def, _ := d.Flag.Default.(string)
			fs.String(name, def, usage)
		}
	}
}

// validateFlagChoices rejects supplied flags whose value is not one of the
// descriptor's choices.
func validateFlagChoices(fs *pflag.FlagSet, schema *config.Schema) error {
	for _, d := range schema.Descriptors() {
		if d.Flag == nil || len(d.Flag.Choices) == 0 {
			continue
		}
		f := fs.Lookup(string(d.Key))
		if f == nil || !f.Changed {
			continue
		}
		if !slices.Contains(d.Flag.Choices, f.Value.String()) {
			return fmt.Errorf("invalid value %q for --%s: must be one of %s",
				f.Value.String(), d.Key, strings.Join(d.Flag.Choices, ", "))
		}
	}
	return nil
}

// cobraFlags exposes the flags supplied on this run to the resolver. Flags
// left at their default are not supplied.
type cobraFlags struct {
	fs     *pflag.FlagSet
	schema *config.Schema

	// domain is the positional argument of the launch command.
	domain string
}

var _ config.FlagSource = (*cobraFlags)(nil)

func (f *cobraFlags) Lookup(key config.Key) (any, bool) {
	if key == config.KeyDomain && f.domain != "" {
		return f.domain, true
	}

	d, ok := f.schema.Lookup(key)
	if !ok || d.Flag == nil {
		return nil, false
	}
	name := string(key)
	if fl := f.fs.Lookup(name); fl == nil || !fl.Changed {
		return nil, false
	}

	var (
		v   any
		err error
	)
	switch d.Flag.Kind {
	case config.FlagInt:
		v, err = f.fs.GetInt(name)
	case config.FlagFloat:
		v, err = f.fs.GetFloat64(name)
	default:
		v, err = f.fs.GetString(name)
	}
	if err != nil {
		return nil, false
	}
	return v, true
}
