package wikiboot

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-wikiboot/pkg/activity"
)

var absoluteURL = regexp.MustCompile(`(?i)^https?://`)

// Loader makes a named script usable in the global scope.
type Loader interface {
	Load(ctx context.Context, src, globalSymbolPath string, preferModuleLoader bool) error
}

// ScriptLoader loads each src at most once for its lifetime. Every caller
// asking for the same src, concurrently or later, observes the same outcome.
type ScriptLoader struct {
	runtime *Runtime
	cfg     bootConfig

	mu    sync.Mutex
	loads map[string]*loadOp
}

type loadStrategy string

const (
	strategyPresent loadStrategy = "present"
	strategyModule  loadStrategy = "module"
	strategyScript  loadStrategy = "script"
)

type loadOp struct {
	src      string
	url      string
	symbol   string
	strategy loadStrategy
	started  time.Time

	once    sync.Once
	done    chan struct{}
	settled chan struct{}
	err     error
}

func newLoadOp(src, url, symbol string) *loadOp {
	return &loadOp{
		src:     src,
		url:     url,
		symbol:  symbol,
		started: time.Now(),
		done:    make(chan struct{}),
		settled: make(chan struct{}),
	}
}

func (op *loadOp) finish(err error) {
	op.once.Do(func() {
		op.err = err
		close(op.done)
	})
}

// NewScriptLoader returns a loader executing scripts in runtime.
func NewScriptLoader(runtime *Runtime, opts ...Option) *ScriptLoader {
	return newScriptLoader(runtime, applyOptions(opts))
}

func newScriptLoader(runtime *Runtime, cfg bootConfig) *ScriptLoader {
	return &ScriptLoader{
		runtime: runtime,
		cfg:     cfg,
		loads:   map[string]*loadOp{},
	}
}

// ResolveURL resolves src against the configured base host.
func (l *ScriptLoader) ResolveURL(src string) string {
	return ResolveURL(l.cfg.config.BaseURL, src)
}

// ResolveURL returns src unchanged when it is an absolute http(s) URL and
// joins it onto base otherwise.
func ResolveURL(base, src string) string {
	if absoluteURL.MatchString(src) {
		return src
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(src, "/")
}

// Load resolves once the script registered under src is usable. The strategy
// is picked when the first caller arrives and never re-evaluated: an already
// defined globalSymbolPath resolves immediately, an AMD loader is used when
// preferModuleLoader is set and one is installed, otherwise the script is
// fetched and executed. Failures are memoized and returned as *LoadError.
// Cancelling ctx abandons this caller's wait only.
func (l *ScriptLoader) Load(ctx context.Context, src, globalSymbolPath string, preferModuleLoader bool) error {
	op := l.start(src, globalSymbolPath, preferModuleLoader)
	select {
	case <-op.settled:
		return op.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Pending reports how many distinct sources have been requested so far.
func (l *ScriptLoader) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.loads)
}

func (l *ScriptLoader) start(src, symbol string, preferModuleLoader bool) *loadOp {
	l.mu.Lock()
	defer l.mu.Unlock()
	if op, ok := l.loads[src]; ok {
		return op
	}

	op := newLoadOp(src, l.ResolveURL(src), symbol)
	l.loads[src] = op
	go l.observe(op)

	switch {
	case l.runtime.Defined(symbol):
		op.strategy = strategyPresent
		op.finish(nil)
	case preferModuleLoader && l.runtime.AMDAvailable():
		op.strategy = strategyModule
		err := l.runtime.Require(symbol, op.url, func(err error) {
			op.finish(wrapLoadError(LoadKindModule, src, op.url, err))
		})
		if err != nil {
			op.finish(wrapLoadError(LoadKindModule, src, op.url, err))
		}
	default:
		op.strategy = strategyScript
		go l.inject(op)
	}
	return op
}

// inject is the script-tag path: fetch the source and run it in the global
// scope.
func (l *ScriptLoader) inject(op *loadOp) {
	ctx := context.Background()
	if timeout := l.cfg.config.ScriptTimeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	source, err := l.cfg.fetcher.Fetch(ctx, op.url)
	if err != nil {
		op.finish(wrapLoadError(LoadKindFetch, op.src, op.url, err))
		return
	}
	if err := l.runtime.Execute(op.url, string(source)); err != nil {
		op.finish(wrapLoadError(LoadKindScript, op.src, op.url, err))
		return
	}
	op.finish(nil)
}

// observe reports the outcome once and then releases waiters, so callers
// returning from Load can rely on the diagnostic having been emitted.
func (l *ScriptLoader) observe(op *loadOp) {
	<-op.done
	defer close(op.settled)

	l.cfg.logger.LogLoad(LoadLogEvent{
		Step:     "load." + string(op.strategy),
		Key:      op.src,
		Duration: time.Since(op.started),
		Err:      op.err,
	})
	input := activity.EventInput{
		URL:      op.url,
		Strategy: string(op.strategy),
		Err:      op.err,
		Metadata: map[string]any{"symbol": op.symbol},
	}
	if op.err != nil {
		l.cfg.emit(context.Background(), activity.BuildScriptFailedEvent(input))
		return
	}
	l.cfg.emit(context.Background(), activity.BuildScriptLoadedEvent(input))
}
