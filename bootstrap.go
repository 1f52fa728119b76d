package wikiboot

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/goliatone/go-wikiboot/pkg/activity"
)

// ConfigProvider produces the configuration pushed into the engine.
type ConfigProvider func(ctx context.Context) (map[string]any, error)

// ReadyOption configures one EnsureReady call.
type ReadyOption func(*readyConfig)

type readyConfig struct {
	configProvider ConfigProvider
	languages      []string
	enginePath     string
}

// WithConfigProvider supplies the engine configuration. It is consulted by the
// first EnsureReady call that carries one.
func WithConfigProvider(provider ConfigProvider) ReadyOption {
	return func(cfg *readyConfig) {
		cfg.configProvider = provider
	}
}

// WithPreferredLanguages sets the language order used for negotiation.
func WithPreferredLanguages(langs ...string) ReadyOption {
	return func(cfg *readyConfig) {
		for _, lang := range langs {
			if lang = strings.TrimSpace(lang); lang != "" {
				cfg.languages = append(cfg.languages, lang)
			}
		}
	}
}

// WithEnginePath overrides where the engine script is loaded from. A path
// ending in .js is used as is; anything else is treated as the package root.
func WithEnginePath(path string) ReadyOption {
	return func(cfg *readyConfig) {
		cfg.enginePath = strings.TrimSpace(path)
	}
}

// Bootstrapper loads the engine and its language service, then pushes
// configuration and localization into it. The push steps are attempted once
// per Bootstrapper, successful or not.
type Bootstrapper struct {
	loader     Loader
	engine     Engine
	negotiator *Negotiator
	cfg        bootConfig

	configPushed       atomic.Bool
	localizationPushed atomic.Bool
}

// NewBootstrapper wires loader and engine with the shared options.
func NewBootstrapper(loader Loader, engine Engine, opts ...Option) *Bootstrapper {
	return newBootstrapper(loader, engine, applyOptions(opts))
}

func newBootstrapper(loader Loader, engine Engine, cfg bootConfig) *Bootstrapper {
	return &Bootstrapper{
		loader:     loader,
		engine:     engine,
		negotiator: newNegotiator(cfg),
		cfg:        cfg,
	}
}

// EnginePath returns the script path EnsureReady loads for override.
func (b *Bootstrapper) EnginePath(override string) string {
	switch {
	case override == "":
		return b.cfg.config.EnginePath
	case strings.HasSuffix(override, ".js"):
		return override
	default:
		return strings.TrimRight(override, "/") + "/" + engineFile
	}
}

// EnsureReady runs the bootstrap sequence. Script failures are returned;
// configuration and localization failures are absorbed and reported through
// the activity hooks.
func (b *Bootstrapper) EnsureReady(ctx context.Context, opts ...ReadyOption) error {
	ready := readyConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&ready)
		}
	}
	start := time.Now()
	symbol := b.cfg.config.EngineSymbol

	if err := b.loader.Load(ctx, b.EnginePath(ready.enginePath), symbol, true); err != nil {
		return err
	}
	cdn, err := b.engine.CDN()
	if err != nil {
		return err
	}
	lsp := ResolveURL(cdn, languageServiceFile)
	if err := b.loader.Load(ctx, lsp, b.cfg.config.languageServiceSymbol(), false); err != nil {
		return err
	}

	if ready.configProvider != nil && b.configPushed.CompareAndSwap(false, true) {
		b.pushConfig(ctx, ready.configProvider)
	}
	if len(ready.languages) > 0 && b.localizationPushed.CompareAndSwap(false, true) {
		b.pushLocalization(ctx, cdn, ready.languages)
	}

	b.cfg.logger.LogLoad(LoadLogEvent{Step: "bootstrap", Key: symbol, Duration: time.Since(start)})
	b.cfg.emit(ctx, activity.BuildBootstrapCompletedEvent(activity.EventInput{ObjectID: symbol}))
	return nil
}

func (b *Bootstrapper) pushConfig(ctx context.Context, provider ConfigProvider) {
	config, err := provider(ctx)
	if err == nil {
		err = b.engine.SetConfig(ctx, config)
	}
	if err != nil {
		b.cfg.logger.LogLoad(LoadLogEvent{Step: "config", Key: b.cfg.config.EngineSymbol, Err: err})
		b.cfg.emit(ctx, activity.BuildConfigPushFailedEvent(activity.EventInput{Err: err}))
		return
	}
	b.cfg.emit(ctx, activity.BuildConfigPushedEvent(activity.EventInput{}))
}

func (b *Bootstrapper) pushLocalization(ctx context.Context, cdn string, langs []string) {
	key := b.cfg.config.StorageKey
	version, err := b.engine.Version()
	if err != nil {
		b.cfg.emit(ctx, activity.BuildI18NFallbackEvent(activity.EventInput{Lang: langs[0], Err: err}))
		return
	}

	var cached *Bundle
	var stored Bundle
	ok, err := b.cfg.store.Get(ctx, key, &stored)
	switch {
	case err != nil:
		b.cfg.logger.LogLoad(LoadLogEvent{Step: "i18n.cache", Key: key, Err: err})
	case ok:
		cached = &stored
	}

	bundle, err := b.negotiator.Negotiate(ctx, NegotiateRequest{
		BaseURL:        ResolveURL(cdn, "i18n"),
		CurrentVersion: version,
		Preferred:      langs,
		Acceptable:     b.cfg.config.AcceptableLanguages,
		StorageKey:     key,
		Cached:         cached,
	})
	if err == nil {
		err = b.engine.SetI18N(ctx, bundle)
		if err == nil {
			b.cfg.emit(ctx, activity.BuildI18NPushedEvent(activity.EventInput{Lang: bundle.Lang, Version: version}))
			return
		}
	}

	fallback := Bundle{Version: version, Lang: fallbackLang}
	if setErr := b.cfg.store.Set(ctx, key, fallback); setErr != nil {
		err = fmt.Errorf("%w (fallback not persisted: %v)", err, setErr)
	}
	b.cfg.logger.LogLoad(LoadLogEvent{Step: "i18n", Key: key, Err: err})
	b.cfg.emit(ctx, activity.BuildI18NFallbackEvent(activity.EventInput{
		Lang:    langs[0],
		Version: version,
		Err:     err,
	}))
}
