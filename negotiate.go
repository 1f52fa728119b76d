package wikiboot

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-wikiboot/internal/hydrate"
	"github.com/goliatone/go-wikiboot/pkg/activity"
)

// NegotiateRequest carries the inputs of one negotiation.
type NegotiateRequest struct {
	// BaseURL hosts {lang}.json bundle fragments.
	BaseURL string
	// CurrentVersion is the engine version bundles must match.
	CurrentVersion string
	// Preferred is the caller's language order. It is authoritative.
	Preferred []string
	// Acceptable lists the languages BaseURL serves. Empty uses the
	// configured AcceptableLanguages.
	Acceptable []string
	// StorageKey is where a fresh bundle is persisted. Empty uses the
	// configured StorageKey.
	StorageKey string
	// Cached is the bundle read from storage, if any.
	Cached *Bundle
}

// Negotiator selects the first acceptable, fetchable localization bundle.
type Negotiator struct {
	cfg     bootConfig
	decoder *hydrate.Decoder[map[string]string]
}

// NewNegotiator returns a Negotiator fetching and persisting through the
// configured Fetcher and Store.
func NewNegotiator(opts ...Option) *Negotiator {
	return newNegotiator(applyOptions(opts))
}

func newNegotiator(cfg bootConfig) *Negotiator {
	return &Negotiator{
		cfg: cfg,
		decoder: hydrate.NewDecoder(
			hydrate.WithPreHook[map[string]string](hydrate.DropKeys("version", "lang")),
			hydrate.WithPreHook[map[string]string](hydrate.DropNonStrings),
		),
	}
}

// Negotiate returns the cached bundle untouched when it matches the current
// version and one of the preferred languages. Otherwise preferred languages
// are tried strictly in order; each is lower-cased, skipped unless
// acceptable, and fetched from {BaseURL}/{lang}.json. The first fragment that
// fetches and parses is merged over the cached bundle, stamped, persisted and
// returned. When every candidate fails the result is a *LocalizationError
// naming the first preferred language.
func (n *Negotiator) Negotiate(ctx context.Context, req NegotiateRequest) (Bundle, error) {
	if cached := req.Cached; cached != nil &&
		cached.Version == req.CurrentVersion &&
		slices.Contains(req.Preferred, cached.Lang) {
		return *cached, nil
	}

	acceptable := req.Acceptable
	if len(acceptable) == 0 {
		acceptable = n.cfg.config.AcceptableLanguages
	}
	acceptable = normalizeLanguages(acceptable)
	storageKey := req.StorageKey
	if storageKey == "" {
		storageKey = n.cfg.config.StorageKey
	}

	for _, candidate := range req.Preferred {
		lang := strings.ToLower(candidate)
		if !slices.Contains(acceptable, lang) {
			continue
		}
		url := strings.TrimRight(req.BaseURL, "/") + "/" + lang + ".json"
		messages, err := n.fetch(ctx, url, lang)
		if err != nil {
			n.cfg.emit(ctx, activity.BuildCandidateFailedEvent(activity.EventInput{
				URL:  url,
				Lang: candidate,
				Err:  err,
			}))
			if ctx.Err() != nil {
				break
			}
			continue
		}

		var bundle Bundle
		if req.Cached != nil {
			bundle = req.Cached.Clone()
		}
		bundle.Merge(messages)
		bundle.Version = req.CurrentVersion
		bundle.Lang = candidate

		if err := n.cfg.store.Set(ctx, storageKey, bundle); err != nil {
			n.cfg.emit(ctx, activity.BuildI18NPersistFailedEvent(activity.EventInput{
				ObjectID: storageKey,
				Lang:     candidate,
				Version:  req.CurrentVersion,
				Err:      err,
			}))
		}
		return bundle, nil
	}

	first := ""
	if len(req.Preferred) > 0 {
		first = req.Preferred[0]
	}
	return Bundle{}, &LocalizationError{Lang: first, Err: ctx.Err()}
}

func (n *Negotiator) fetch(ctx context.Context, url, lang string) (map[string]string, error) {
	start := time.Now()
	raw, err := n.cfg.fetcher.Fetch(ctx, url)
	if err == nil {
		var messages map[string]string
		messages, err = n.decoder.Decode(hydrate.Context{Source: url, Lang: lang}, raw)
		if err == nil {
			n.cfg.logger.LogLoad(LoadLogEvent{Step: "i18n.fetch", Key: url, Duration: time.Since(start)})
			return messages, nil
		}
	}
	err = fmt.Errorf("wikiboot: i18n candidate %q: %w", lang, err)
	n.cfg.logger.LogLoad(LoadLogEvent{Step: "i18n.fetch", Key: url, Duration: time.Since(start), Err: err})
	return nil, err
}
