package wikiboot

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/goliatone/go-wikiboot/pkg/activity"
	"github.com/goliatone/go-wikiboot/pkg/storage"
)

// EnvPrefix namespaces every environment variable read by ConfigFromEnv.
const EnvPrefix = "WIKIBOOT_"

const (
	DefaultBaseURL      = "https://testingcf.jsdelivr.net"
	DefaultEnginePath   = "npm/wikiparser-node/extensions/dist/base.min.js"
	DefaultEngineSymbol = "wikiparse"
	DefaultStorageKey   = "wikiparse-i18n"

	// engineFile is appended to engine path overrides that do not name a script.
	engineFile = "extensions/dist/base.min.js"
	// languageServiceFile is resolved against the engine's advertised CDN.
	languageServiceFile = "extensions/dist/lsp.min.js"
	// fallbackLang is stamped on the bundle persisted when negotiation fails.
	fallbackLang = "en"
)

// acceptableLanguages lists the localization files the engine ships. Release
// builds override it with
//
//	-ldflags "-X github.com/goliatone/go-wikiboot.acceptableLanguages=en,zh-hans,..."
var acceptableLanguages = "en,zh-hans,zh-hant,ka"

// Config carries the process-wide constants of the bootstrap layer.
type Config struct {
	// BaseURL is the CDN host relative script paths resolve against.
	BaseURL string `env:"BASE_URL"`
	// EnginePath is the default engine script, relative to BaseURL.
	EnginePath string `env:"ENGINE_PATH"`
	// EngineSymbol is the global the engine registers itself under.
	EngineSymbol string `env:"ENGINE_SYMBOL"`
	// StorageKey is where the negotiated localization bundle is cached.
	StorageKey string `env:"STORAGE_KEY"`
	// AcceptableLanguages are the languages the i18n endpoint serves.
	AcceptableLanguages []string `env:"LANGUAGES" envSeparator:","`
	// ScriptTimeout bounds each script fetch. Zero waits indefinitely.
	ScriptTimeout time.Duration `env:"SCRIPT_TIMEOUT"`
	// ActivityChannel is applied to diagnostics emitted without one.
	ActivityChannel string `env:"ACTIVITY_CHANNEL"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:             DefaultBaseURL,
		EnginePath:          DefaultEnginePath,
		EngineSymbol:        DefaultEngineSymbol,
		StorageKey:          DefaultStorageKey,
		AcceptableLanguages: splitLanguages(acceptableLanguages),
	}
}

// ConfigFromEnv overlays WIKIBOOT_* environment variables on DefaultConfig.
func ConfigFromEnv() (Config, error) {
	return configFromEnvironment(nil)
}

func configFromEnvironment(environment map[string]string) (Config, error) {
	cfg := DefaultConfig()
	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      EnvPrefix,
		Environment: environment,
	}); err != nil {
		return Config{}, fmt.Errorf("wikiboot: parse env: %w", err)
	}
	cfg.AcceptableLanguages = normalizeLanguages(cfg.AcceptableLanguages)
	return cfg, nil
}

// languageServiceSymbol is the nested global the language service registers.
func (c Config) languageServiceSymbol() string {
	return c.EngineSymbol + ".LanguageService"
}

func splitLanguages(list string) []string {
	return normalizeLanguages(strings.Split(list, ","))
}

func normalizeLanguages(langs []string) []string {
	out := make([]string, 0, len(langs))
	for _, lang := range langs {
		lang = strings.ToLower(strings.TrimSpace(lang))
		if lang == "" {
			continue
		}
		out = append(out, lang)
	}
	return out
}

// Option configures the bootstrap components.
type Option func(*bootConfig)

type bootConfig struct {
	config        Config
	logger        Logger
	activityHooks activity.Hooks
	emitter       *activity.Emitter
	programCache  ProgramCache
	fetcher       Fetcher
	store         storage.Store
}

func applyOptions(opts []Option) bootConfig {
	cfg := bootConfig{
		config: DefaultConfig(),
		logger: noopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.fetcher == nil {
		cfg.fetcher = NewHTTPFetcher(nil)
	}
	if cfg.store == nil {
		cfg.store = storage.NewMemoryStore()
	}
	cfg.emitter = activity.NewEmitter(cfg.activityHooks, activity.Config{
		Enabled: len(cfg.activityHooks) > 0,
		Channel: cfg.config.ActivityChannel,
	})
	return cfg
}

// WithConfig replaces the whole configuration.
func WithConfig(config Config) Option {
	return func(cfg *bootConfig) {
		config.AcceptableLanguages = normalizeLanguages(config.AcceptableLanguages)
		cfg.config = config
	}
}

// WithBaseURL sets the CDN host relative paths resolve against.
func WithBaseURL(base string) Option {
	return func(cfg *bootConfig) {
		cfg.config.BaseURL = strings.TrimRight(strings.TrimSpace(base), "/")
	}
}

// WithEngineSymbol sets the global the engine registers under.
func WithEngineSymbol(symbol string) Option {
	return func(cfg *bootConfig) {
		if symbol = strings.TrimSpace(symbol); symbol != "" {
			cfg.config.EngineSymbol = symbol
		}
	}
}

// WithStorageKey sets the key the negotiated bundle is cached under.
func WithStorageKey(key string) Option {
	return func(cfg *bootConfig) {
		if key = strings.TrimSpace(key); key != "" {
			cfg.config.StorageKey = key
		}
	}
}

// WithAcceptableLanguages replaces the languages the i18n endpoint serves.
func WithAcceptableLanguages(langs ...string) Option {
	return func(cfg *bootConfig) {
		cfg.config.AcceptableLanguages = normalizeLanguages(langs)
	}
}

// WithScriptTimeout bounds each script fetch. Zero disables the bound.
func WithScriptTimeout(timeout time.Duration) Option {
	return func(cfg *bootConfig) {
		cfg.config.ScriptTimeout = timeout
	}
}

// WithFetcher replaces the network accessor.
func WithFetcher(fetcher Fetcher) Option {
	return func(cfg *bootConfig) {
		cfg.fetcher = fetcher
	}
}

// WithStore replaces the persistent key/value store.
func WithStore(store storage.Store) Option {
	return func(cfg *bootConfig) {
		cfg.store = store
	}
}
