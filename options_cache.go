package wikiboot

import gocache "github.com/patrickmn/go-cache"

// ProgramCache stores compiled script programs keyed by resolved URL.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

type memoryProgramCache struct {
	cache *gocache.Cache
}

// NewProgramCache returns an in-process ProgramCache that never expires
// entries.
func NewProgramCache() ProgramCache {
	return memoryProgramCache{cache: gocache.New(gocache.NoExpiration, 0)}
}

func (c memoryProgramCache) Get(key string) (any, bool) {
	return c.cache.Get(key)
}

func (c memoryProgramCache) Set(key string, value any) {
	c.cache.SetDefault(key, value)
}

// WithProgramCache registers a program cache used when scripts are compiled.
func WithProgramCache(cache ProgramCache) Option {
	return func(cfg *bootConfig) {
		cfg.programCache = cache
	}
}
