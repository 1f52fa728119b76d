package wikiboot

import (
	"context"
	"sync"
	"sync/atomic"
)

type fakeService struct {
	id      int
	include bool
}

// fakeEngine is an in-memory Engine recording what was pushed into it.
type fakeEngine struct {
	mu         sync.Mutex
	cdn        string
	version    string
	ready      bool
	setI18NErr error
	configs    []map[string]any
	bundles    []Bundle
	created    int
}

func (e *fakeEngine) CDN() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cdn, nil
}

func (e *fakeEngine) Version() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.version, nil
}

func (e *fakeEngine) SetConfig(_ context.Context, config map[string]any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.configs = append(e.configs, config)
	return nil
}

func (e *fakeEngine) SetI18N(_ context.Context, bundle Bundle) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.setI18NErr != nil {
		return e.setI18NErr
	}
	e.bundles = append(e.bundles, bundle)
	return nil
}

func (e *fakeEngine) LanguageServiceReady() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}

func (e *fakeEngine) setReady(ready bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ready = ready
}

func (e *fakeEngine) NewLanguageService(include bool) (Service, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.ready {
		return nil, ErrEngineNotLoaded
	}
	e.created++
	return &fakeService{id: e.created, include: include}, nil
}

// fakeLoader resolves every load immediately, recording the requests.
type fakeLoader struct {
	mu    sync.Mutex
	loads []string
	err   error
}

func (l *fakeLoader) Load(_ context.Context, src, symbol string, _ bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loads = append(l.loads, src+"#"+symbol)
	return l.err
}

// countingReadier counts EnsureReady calls and records their options.
type countingReadier struct {
	calls atomic.Int32
	mu    sync.Mutex
	last  readyConfig
	err   error
}

func (r *countingReadier) EnsureReady(_ context.Context, opts ...ReadyOption) error {
	cfg := readyConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	r.mu.Lock()
	r.last = cfg
	r.mu.Unlock()
	r.calls.Add(1)
	return r.err
}

func (r *countingReadier) lastConfig() readyConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}
