package storage

import (
	"context"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore is a process-local Store intended for tests, examples and
// short-lived tools. Values are kept as serialized JSON so callers observe the
// same round-trip behaviour as durable stores.
type MemoryStore struct {
	cache *gocache.Cache
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{cache: gocache.New(gocache.NoExpiration, 0)}
}

func (s *MemoryStore) Get(_ context.Context, key string, dst any) (bool, error) {
	key, err := normalizeKey(key)
	if err != nil {
		return false, err
	}
	value, found := s.cache.Get(key)
	if !found {
		return false, nil
	}
	payload, ok := value.([]byte)
	if !ok {
		return false, nil
	}
	if err := decode(key, payload, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value any) error {
	key, err := normalizeKey(key)
	if err != nil {
		return err
	}
	payload, err := encode(key, value)
	if err != nil {
		return err
	}
	s.cache.Set(key, payload, gocache.NoExpiration)
	return nil
}

func (s *MemoryStore) Clear(context.Context) error {
	s.cache.Flush()
	return nil
}

// Len reports how many keys are stored.
func (s *MemoryStore) Len() int {
	return s.cache.ItemCount()
}
