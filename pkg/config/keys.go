package config

import (
	"context"
	"errors"
	"fmt"
)

// Key identifies a configuration value known to LaunchWolf.
type Key string

// Configuration keys. The string values are the keys used in the JSON config
// files and the names of the generated command-line flags.
const (
	KeyDomain                        Key = "domain"
	KeyGandiAPIKey                   Key = "gandiAPIKey"
	KeyDomainPurchaseCurrency        Key = "domainPurchaseCurrency"
	KeyDomainOwner                   Key = "domainOwner"
	KeyDomainPurchaseDurationInYears Key = "domainPurchaseDurationInYears"
	KeyDomainPurchaseMaxPrice        Key = "domainPurchaseMaxPrice"
	KeyEmail                         Key = "email"
	KeyNetlifyAccessToken            Key = "netlifyAccessToken"
	KeyMailjetAPIKeys                Key = "mailjetAPIKeys"
)

// Scope selects the config file a newly acquired value is saved to.
type Scope string

const (
	// ScopeLocal values are project specific and live next to the project.
	ScopeLocal Scope = "local"

	// ScopeGlobal values are shared by every project of the user.
	ScopeGlobal Scope = "global"
)

// PromptParams carries context a prompt may need to render itself.
type PromptParams struct {
	// Domain is the domain being launched, used to template email prompts.
	Domain string
}

// PromptFunc interactively acquires a value. Returning an empty value makes
// the resolver ask again; returning an error aborts resolution.
type PromptFunc func(ctx context.Context, params PromptParams) (any, error)

// FlagKind is the type of a generated command-line flag.
type FlagKind string

const (
	FlagString FlagKind = "string"
	FlagInt    FlagKind = "int"
	FlagFloat  FlagKind = "float"
)

// FlagSpec describes how a key can be supplied on the command line.
type FlagSpec struct {
	Kind    FlagKind
	Usage   string
	Choices []string
	// Default is the flag's zero value as shown in help output. A flag left at
	// its default is not considered supplied.
	Default any
}

// Acquisition is how a value is obtained when nothing is supplied or stored.
// It is implemented by Prompt and Default only.
type Acquisition interface {
	acquisition()
}

// Prompt acquires a value interactively.
type Prompt struct {
	Run PromptFunc
}

// Default supplies a fixed value.
type Default struct {
	Value any
}

func (Prompt) acquisition()  {}
func (Default) acquisition() {}

// Descriptor is the static definition of one configuration key.
type Descriptor struct {
	Key         Key
	Description string
	Scope       Scope
	Flag        *FlagSpec
	Fallback    Acquisition
	// Secret values are masked by `config show`.
	Secret bool
}

var (
	// ErrInvalidDescriptor is returned for descriptors that can never produce a value.
	ErrInvalidDescriptor = errors.New("invalid config descriptor")

	// ErrUnknownKey is returned when a key has no descriptor.
	ErrUnknownKey = errors.New("unknown config key")

	// ErrKeyNotFound is returned when no source can provide a value for a key.
	ErrKeyNotFound = errors.New("config key not found")
)

// KeyNotFoundError reports the key that could not be resolved.
type KeyNotFoundError struct {
	Key Key
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("Couldn't find config key %s", e.Key)
}

// Is makes errors.Is(err, ErrKeyNotFound) match.
func (e *KeyNotFoundError) Is(target error) bool {
	return target == ErrKeyNotFound
}

// Schema is the ordered set of descriptors the resolver knows about.
type Schema struct {
	order       []Key
	descriptors map[Key]Descriptor
}

// NewSchema validates descriptors and builds a schema from them.
func NewSchema(descriptors ...Descriptor) (*Schema, error) {
	s := &Schema{
		order:       make([]Key, 0, len(descriptors)),
		descriptors: make(map[Key]Descriptor, len(descriptors)),
	}

	for _, d := range descriptors {
		if d.Key == "" {
			return nil, fmt.Errorf("%w: empty key", ErrInvalidDescriptor)
		}
		if _, dup := s.descriptors[d.Key]; dup {
			return nil, fmt.Errorf("%w: duplicate key %s", ErrInvalidDescriptor, d.Key)
		}
		if d.Flag == nil && d.Fallback == nil {
			return nil, fmt.Errorf("%w: %s has no flag, prompt or default", ErrInvalidDescriptor, d.Key)
		}
		if p, ok := d.Fallback.(Prompt); ok && p.Run == nil {
			return nil, fmt.Errorf("%w: %s has a prompt without a function", ErrInvalidDescriptor, d.Key)
		}
		if d.Scope == "" {
			d.Scope = ScopeGlobal
		}
		if d.Scope != ScopeLocal && d.Scope != ScopeGlobal {
			return nil, fmt.Errorf("%w: %s has invalid scope %q", ErrInvalidDescriptor, d.Key, d.Scope)
		}

		s.order = append(s.order, d.Key)
		s.descriptors[d.Key] = d
	}

	return s, nil
}

// Lookup returns the descriptor of key.
func (s *Schema) Lookup(key Key) (Descriptor, bool) {
	d, ok := s.descriptors[key]
	return d, ok
}

// Keys returns all keys in declaration order.
func (s *Schema) Keys() []Key {
	out := make([]Key, len(s.order))
	copy(out, s.order)
	return out
}

// Descriptors returns all descriptors in declaration order.
func (s *Schema) Descriptors() []Descriptor {
	out := make([]Descriptor, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.descriptors[k])
	}
	return out
}
