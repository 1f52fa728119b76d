package hydrate

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotObject indicates a payload that is valid JSON but not an object.
var ErrNotObject = errors.New("hydrate: payload is not a JSON object")

// Context carries identifiers tied to a fetched payload.
type Context struct {
	Source string
	Lang   string
}

// PreHook lets callers mutate or normalise the payload before decoding.
type PreHook func(Context, map[string]any) (map[string]any, error)

// DecoderOption configures a Decoder instance.
type DecoderOption[T any] func(*Decoder[T])

// Decoder converts raw JSON object payloads into typed values.
type Decoder[T any] struct {
	preHooks []PreHook
}

// WithPreHook applies hook prior to decoding.
func WithPreHook[T any](hook PreHook) DecoderOption[T] {
	return func(d *Decoder[T]) {
		d.preHooks = append(d.preHooks, hook)
	}
}

func NewDecoder[T any](opts ...DecoderOption[T]) *Decoder[T] {
	d := &Decoder[T]{}
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}
	return d
}

// Decode parses raw as a JSON object, runs the pre-hooks over it and converts
// the result into T.
func (d *Decoder[T]) Decode(ctx Context, raw []byte) (T, error) {
	var zero T

	var current map[string]any
	if err := json.Unmarshal(raw, &current); err != nil {
		return zero, fmt.Errorf("hydrate: parse %s: %w", describe(ctx), err)
	}
	if current == nil {
		return zero, fmt.Errorf("%w (%s)", ErrNotObject, describe(ctx))
	}

	for _, hook := range d.preHooks {
		if hook == nil {
			continue
		}
		next, err := hook(ctx, current)
		if err != nil {
			return zero, fmt.Errorf("hydrate: pre-hook for %s failed: %w", describe(ctx), err)
		}
		if next != nil {
			current = next
		}
	}

	buffer, err := json.Marshal(current)
	if err != nil {
		return zero, fmt.Errorf("hydrate: marshal %s: %w", describe(ctx), err)
	}
	var result T
	if err := json.Unmarshal(buffer, &result); err != nil {
		return zero, fmt.Errorf("hydrate: decode %s: %w", describe(ctx), err)
	}
	return result, nil
}

// DropNonStrings removes entries whose values are not JSON strings.
func DropNonStrings(_ Context, payload map[string]any) (map[string]any, error) {
	for key, value := range payload {
		if _, ok := value.(string); !ok {
			delete(payload, key)
		}
	}
	return payload, nil
}

// DropKeys returns a PreHook removing the named keys.
func DropKeys(keys ...string) PreHook {
	return func(_ Context, payload map[string]any) (map[string]any, error) {
		for _, key := range keys {
			delete(payload, key)
		}
		return payload, nil
	}
}

func describe(ctx Context) string {
	if ctx.Source == "" {
		return "payload"
	}
	return fmt.Sprintf("%q", ctx.Source)
}
