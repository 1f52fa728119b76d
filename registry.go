package wikiboot

import (
	"context"
	"runtime"
	"strings"
	"sync"
	"weak"

	"github.com/google/uuid"

	"github.com/goliatone/go-wikiboot/pkg/activity"
)

// Readier is the part of Bootstrapper the registry depends on.
type Readier interface {
	EnsureReady(ctx context.Context, opts ...ReadyOption) error
}

// ServiceOption configures one GetOrCreate call.
type ServiceOption func(*serviceConfig)

type serviceConfig struct {
	include        bool
	configProvider ConfigProvider
	languages      []string
}

// WithInclude sets the include-mode flag passed to the service constructor.
func WithInclude(include bool) ServiceOption {
	return func(cfg *serviceConfig) {
		cfg.include = include
	}
}

// WithServiceConfig forwards provider to the background bootstrap.
func WithServiceConfig(provider ConfigProvider) ServiceOption {
	return func(cfg *serviceConfig) {
		cfg.configProvider = provider
	}
}

// WithPreferredLanguage forwards lang to the background bootstrap.
func WithPreferredLanguage(lang string) ServiceOption {
	return func(cfg *serviceConfig) {
		if lang = strings.TrimSpace(lang); lang != "" {
			cfg.languages = append(cfg.languages, lang)
		}
	}
}

// Registry associates owners with language-service instances by identity.
// Owners are referenced weakly: once an owner is unreachable both it and its
// service can be collected, and the association disappears.
type Registry[O any] struct {
	boot   Readier
	engine Engine
	cfg    bootConfig

	mu      sync.Mutex
	entries map[weak.Pointer[O]]association
}

type association struct {
	id      uuid.UUID
	service Service
}

// NewRegistry returns an empty registry creating services from engine.
func NewRegistry[O any](boot Readier, engine Engine, opts ...Option) *Registry[O] {
	return newRegistry[O](boot, engine, applyOptions(opts))
}

func newRegistry[O any](boot Readier, engine Engine, cfg bootConfig) *Registry[O] {
	return &Registry[O]{
		boot:    boot,
		engine:  engine,
		cfg:     cfg,
		entries: map[weak.Pointer[O]]association{},
	}
}

// GetOrCreate kicks off the bootstrap in the background and returns the
// service associated with owner. A service is constructed only when owner has
// none yet and the engine's language service is present; otherwise the
// existing association, or nil, is returned. A nil result is expected while
// the engine is still loading and callers retry later.
func (r *Registry[O]) GetOrCreate(owner *O, opts ...ServiceOption) Service {
	if owner == nil {
		return nil
	}
	svc := serviceConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&svc)
		}
	}
	go r.bootstrap(svc)

	if existing, ok := r.Lookup(owner); ok {
		return existing
	}
	// Checked outside r.mu so a busy engine never stalls other owners.
	if !r.engine.LanguageServiceReady() {
		return nil
	}

	key := weak.Make(owner)
	r.mu.Lock()
	if existing, ok := r.entries[key]; ok {
		r.mu.Unlock()
		return existing.service
	}
	service, err := r.engine.NewLanguageService(svc.include)
	if err != nil {
		r.mu.Unlock()
		r.cfg.logger.LogLoad(LoadLogEvent{Step: "service", Err: err})
		return nil
	}
	entry := association{id: uuid.New(), service: service}
	r.entries[key] = entry
	runtime.AddCleanup(owner, r.forget, key)
	r.mu.Unlock()

	r.cfg.emit(context.Background(), activity.BuildServiceCreatedEvent(activity.EventInput{
		ObjectID: entry.id.String(),
		Metadata: map[string]any{"include": svc.include},
	}))
	return service
}

// Lookup returns the service associated with owner without creating one.
func (r *Registry[O]) Lookup(owner *O) (Service, bool) {
	if owner == nil {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.entries[weak.Make(owner)]
	return entry.service, ok
}

// Len reports the number of live associations.
func (r *Registry[O]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry[O]) forget(key weak.Pointer[O]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
}

func (r *Registry[O]) bootstrap(svc serviceConfig) {
	if r.boot == nil {
		return
	}
	opts := []ReadyOption{WithPreferredLanguages(svc.languages...)}
	if svc.configProvider != nil {
		opts = append(opts, WithConfigProvider(svc.configProvider))
	}
	if err := r.boot.EnsureReady(context.Background(), opts...); err != nil {
		r.cfg.logger.LogLoad(LoadLogEvent{Step: "bootstrap", Err: err})
	}
}
