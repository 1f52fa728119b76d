package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrKeyRequired indicates an empty storage key.
var ErrKeyRequired = errors.New("storage: key is required")

// Store reads and writes JSON-serialized values.
type Store interface {
	// Get decodes the value stored under key into dst. ok is false when the
	// key is absent.
	Get(ctx context.Context, key string, dst any) (ok bool, err error)
	// Set serializes value and stores it under key, replacing any previous value.
	Set(ctx context.Context, key string, value any) error
	// Clear removes every stored value.
	Clear(ctx context.Context) error
}

func normalizeKey(key string) (string, error) {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return "", ErrKeyRequired
	}
	return trimmed, nil
}

func encode(key string, value any) ([]byte, error) {
	payload, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("storage: encode %q: %w", key, err)
	}
	return payload, nil
}

func decode(key string, payload []byte, dst any) error {
	if dst == nil {
		return nil
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return fmt.Errorf("storage: decode %q: %w", key, err)
	}
	return nil
}
