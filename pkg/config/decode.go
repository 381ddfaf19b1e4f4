package config

import (
	"context"
	"encoding/json"
	"fmt"
)

// Decode converts a resolved value into T. Values read from config files are
// generic JSON values, so the conversion goes through encoding/json.
func Decode[T any](v any) (T, error) {
	var out T
	if typed, ok := v.(T); ok {
		return typed, nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("failed to encode config value: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("config value has unexpected type %T: %w", v, err)
	}
	return out, nil
}

// GetAs resolves key and decodes it into T.
func GetAs[T any](ctx context.Context, r *Resolver, key Key, params PromptParams) (T, error) {
	var zero T
	v, err := r.Get(ctx, key, params)
	if err != nil {
		return zero, err
	}
	out, err := Decode[T](v)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", key, err)
	}
	return out, nil
}

// GetString resolves a string key.
func (r *Resolver) GetString(ctx context.Context, key Key, params PromptParams) (string, error) {
	return GetAs[string](ctx, r, key, params)
}

// GetInt resolves an integer key.
func (r *Resolver) GetInt(ctx context.Context, key Key, params PromptParams) (int, error) {
	return GetAs[int](ctx, r, key, params)
}

// GetFloat resolves a numeric key.
func (r *Resolver) GetFloat(ctx context.Context, key Key, params PromptParams) (float64, error) {
	return GetAs[float64](ctx, r, key, params)
}
