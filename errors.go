package wikiboot

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEngineNotLoaded is returned when the engine global is not present yet.
	ErrEngineNotLoaded = errors.New("wikiboot: engine not loaded")
	// ErrLocalizationUnavailable is wrapped by LocalizationError.
	ErrLocalizationUnavailable = errors.New("wikiboot: localization unavailable")
	// ErrScriptUnavailable is wrapped by every LoadError.
	ErrScriptUnavailable = errors.New("wikiboot: script unavailable")
)

// LoadKind identifies which loading strategy produced a LoadError.
type LoadKind string

const (
	LoadKindScript LoadKind = "script"
	LoadKindModule LoadKind = "module"
	LoadKindFetch  LoadKind = "fetch"
)

// LoadError captures the load key and strategy alongside the originating error.
type LoadError struct {
	Kind LoadKind
	Key  string
	URL  string
	Err  error
}

func (e *LoadError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("wikiboot: %s load %s: %v", e.Kind, describeKey(e.Key, e.URL), e.Err)
}

func (e *LoadError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeKey(key, url string) string {
	if key == "" {
		return "key=<empty>"
	}
	if url == "" || url == key {
		return fmt.Sprintf("key=%q", key)
	}
	return fmt.Sprintf("key=%q url=%q", key, url)
}

// LocalizationError reports that no preferred language produced a bundle.
// Lang is the first requested language.
type LocalizationError struct {
	Lang string
	Err  error
}

func (e *LocalizationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	lang := e.Lang
	if lang == "" {
		lang = "<none>"
	}
	if e.Err == nil || errors.Is(e.Err, ErrLocalizationUnavailable) {
		return fmt.Sprintf("%s for %s", ErrLocalizationUnavailable.Error(), lang)
	}
	return fmt.Sprintf("%s for %s: %v", ErrLocalizationUnavailable.Error(), lang, e.Err)
}

func (e *LocalizationError) Unwrap() error {
	if e == nil {
		return nil
	}
	if e.Err == nil {
		return ErrLocalizationUnavailable
	}
	return e.Err
}

// Is lets errors.Is match ErrLocalizationUnavailable even when Err carries
// the last candidate failure instead.
func (e *LocalizationError) Is(target error) bool {
	return target == ErrLocalizationUnavailable
}

func wrapLoadError(kind LoadKind, key, url string, err error) error {
	if err == nil {
		return nil
	}

	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		if loadErr.Key == "" {
			loadErr.Key = key
		}
		if loadErr.URL == "" {
			loadErr.URL = url
		}
		return loadErr
	}

	if !errors.Is(err, ErrScriptUnavailable) {
		err = fmt.Errorf("%w: %w", ErrScriptUnavailable, err)
	}
	return &LoadError{
		Kind: kind,
		Key:  key,
		URL:  url,
		Err:  err,
	}
}

func wrapEngineError(op string, err error) error {
	if err == nil {
		return nil
	}
	if strings.HasPrefix(err.Error(), "wikiboot:") {
		return err
	}
	return fmt.Errorf("wikiboot: engine %s: %w", op, err)
}
