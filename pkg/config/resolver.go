package config

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"

	"github.com/rs/zerolog"
)

// Source names where a resolved value came from.
type Source string

const (
	SourceFlag    Source = "flag"
	SourceLocal   Source = "local"
	SourceGlobal  Source = "global"
	SourcePrompt  Source = "prompt"
	SourceDefault Source = "default"
)

// invalidValueMessage is printed before a prompt is repeated.
const invalidValueMessage = "You entered an invalid value."

// FlagSource exposes values supplied on the command line. Lookup reports
// false for flags the user did not set.
type FlagSource interface {
	Lookup(key Key) (any, bool)
}

// MapFlags is a FlagSource backed by a plain map.
type MapFlags map[Key]any

// Lookup implements FlagSource.
func (m MapFlags) Lookup(key Key) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// ResolveFunc observes every successful resolution.
type ResolveFunc func(key Key, source Source)

// SaveFunc observes every value written to a config file.
type SaveFunc func(key Key, scope Scope)

// Resolver looks a key up in command-line flags, the local config file, the
// global config file, an interactive prompt and finally a default, in that
// order. Prompted values are saved to the file matching the key's scope.
type Resolver struct {
	schema    *Schema
	flags     FlagSource
	local     *FileStore
	global    *FileStore
	out       io.Writer
	logger    zerolog.Logger
	onResolve ResolveFunc
	onSave    SaveFunc
}

// NewResolver creates a resolver. Call ReadConfig before the first Get.
// A nil flags source means no flags were supplied.
func NewResolver(schema *Schema, flags FlagSource, local, global *FileStore, logger zerolog.Logger) *Resolver {
	if flags == nil {
		flags = MapFlags{}
	}
	return &Resolver{
		schema: schema,
		flags:  flags,
		local:  local,
		global: global,
		out:    os.Stdout,
		logger: logger,
	}
}

// SetOutput redirects user-facing messages.
func (r *Resolver) SetOutput(w io.Writer) {
	r.out = w
}

// OnResolve registers an observer called after each successful Get.
func (r *Resolver) OnResolve(fn ResolveFunc) {
	r.onResolve = fn
}

// OnSave registers an observer called after each successful Save.
func (r *Resolver) OnSave(fn SaveFunc) {
	r.onSave = fn
}

// Schema returns the descriptors the resolver was built with.
func (r *Resolver) Schema() *Schema {
	return r.schema
}

// Get resolves key. It returns a *KeyNotFoundError when no source yields a
// non-empty value.
func (r *Resolver) Get(ctx context.Context, key Key, params PromptParams) (any, error) {
	if v, ok := r.flags.Lookup(key); ok && !isEmpty(v) {
		return r.resolved(key, SourceFlag, v), nil
	}
	if v, ok := r.local.Get(string(key)); ok && !isEmpty(v) {
		return r.resolved(key, SourceLocal, v), nil
	}
	if v, ok := r.global.Get(string(key)); ok && !isEmpty(v) {
		return r.resolved(key, SourceGlobal, v), nil
	}

	d, ok := r.schema.Lookup(key)
	if !ok {
		return nil, &KeyNotFoundError{Key: key}
	}

	switch fb := d.Fallback.(type) {
	case Prompt:
		v, err := r.prompt(ctx, key, fb, params)
		if err != nil {
			return nil, err
		}
		if err := r.Save(key, v); err != nil {
			return nil, err
		}
		// Hand out the stored form so callers see the same shape on every run.
		stored, _ := r.storeFor(d.Scope).Get(string(key))
		return r.resolved(key, SourcePrompt, stored), nil
	case Default:
		return r.resolved(key, SourceDefault, fb.Value), nil
	}

	return nil, &KeyNotFoundError{Key: key}
}

func (r *Resolver) prompt(ctx context.Context, key Key, p Prompt, params PromptParams) (any, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		v, err := p.Run(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("prompt for %s: %w", key, err)
		}
		if !isEmpty(v) {
			return v, nil
		}

		r.logger.Debug().Str("key", string(key)).Msg("Prompt returned an empty value")
		_, _ = fmt.Fprintln(r.out, invalidValueMessage)
	}
}

func (r *Resolver) resolved(key Key, source Source, v any) any {
	r.logger.Debug().Str("key", string(key)).Str("source", string(source)).Msg("Resolved config value")
	if r.onResolve != nil {
		r.onResolve(key, source)
	}
	return v
}

// Save persists value in the config file selected by the key's scope.
func (r *Resolver) Save(key Key, value any) error {
	d, ok := r.schema.Lookup(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	normalized, err := normalize(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for %s: %w", key, err)
	}

	store := r.storeFor(d.Scope)
	_, _ = fmt.Fprintf(r.out, "Saving value as %q in %s config file, which is stored at %s\n", key, d.Scope, store.Path())

	if err := store.Set(string(key), normalized); err != nil {
		return err
	}

	r.logger.Info().
		Str("key", string(key)).
		Str("scope", string(d.Scope)).
		Str("path", store.Path()).
		Msg("Saved config value")
	if r.onSave != nil {
		r.onSave(key, d.Scope)
	}
	return nil
}

// Unset removes key from the config file selected by its scope.
func (r *Resolver) Unset(key Key) error {
	d, ok := r.schema.Lookup(key)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return r.storeFor(d.Scope).Delete(string(key))
}

// ReadConfig loads the local and global config files. A missing file is
// not an error.
func (r *Resolver) ReadConfig() error {
	if err := r.local.Load(); err != nil {
		return err
	}
	return r.global.Load()
}

// Values returns the contents of the local or global config file.
func (r *Resolver) Values(scope Scope) map[string]any {
	return r.storeFor(scope).Values()
}

// ConfigPath returns the file path backing scope.
func (r *Resolver) ConfigPath(scope Scope) string {
	return r.storeFor(scope).Path()
}

// LocalConfigExists reports whether the local config file exists.
func (r *Resolver) LocalConfigExists() bool {
	return r.local.Exists()
}

// GlobalConfigExists reports whether the global config file exists.
func (r *Resolver) GlobalConfigExists() bool {
	return r.global.Exists()
}

func (r *Resolver) storeFor(scope Scope) *FileStore {
	if scope == ScopeLocal {
		return r.local
	}
	return r.global
}

// isEmpty reports whether v counts as "not provided": nil, a nil pointer,
// the empty string, numeric zero or false. Empty maps and slices are values.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return isEmpty(rv.Elem().Interface())
	case reflect.String:
		return rv.Len() == 0
	case reflect.Bool:
		return !rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	}
	return false
}

// normalize converts v to the generic form it takes after a JSON round trip.
func normalize(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
