package wikiboot

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/dop251/goja"
)

// Service is the opaque language-service handle produced by the engine.
type Service any

// Engine is the capability surface exposed by a loaded engine. Methods that
// need the engine report ErrEngineNotLoaded until its script has run.
type Engine interface {
	// CDN is the base URL the engine advertises for its own assets.
	CDN() (string, error)
	// Version is the engine's version tag.
	Version() (string, error)
	SetConfig(ctx context.Context, config map[string]any) error
	SetI18N(ctx context.Context, bundle Bundle) error
	// LanguageServiceReady reports whether the language-service constructor
	// is present.
	LanguageServiceReady() bool
	NewLanguageService(include bool) (Service, error)
}

// JSEngine reads the engine from a global object in a Runtime.
type JSEngine struct {
	runtime *Runtime
	symbol  string

	serviceReady atomic.Bool
}

// NewJSEngine binds to the engine registered under symbol in runtime.
func NewJSEngine(runtime *Runtime, symbol string) *JSEngine {
	if symbol == "" {
		symbol = DefaultEngineSymbol
	}
	return &JSEngine{runtime: runtime, symbol: symbol}
}

// Symbol is the global the engine is read from.
func (e *JSEngine) Symbol() string {
	return e.symbol
}

func (e *JSEngine) CDN() (string, error) {
	return e.stringProperty("CDN")
}

func (e *JSEngine) Version() (string, error) {
	return e.stringProperty("version")
}

func (e *JSEngine) stringProperty(name string) (string, error) {
	var out string
	err := e.runtime.Do(func(vm *goja.Runtime) error {
		value := lookupPath(vm, e.symbol+"."+name)
		if value == nil {
			if lookupPath(vm, e.symbol) == nil {
				return ErrEngineNotLoaded
			}
			return fmt.Errorf("wikiboot: engine %s.%s is not defined", e.symbol, name)
		}
		out = value.String()
		return nil
	})
	return out, err
}

func (e *JSEngine) SetConfig(_ context.Context, config map[string]any) error {
	return wrapEngineError("setConfig", e.call("setConfig", config))
}

func (e *JSEngine) SetI18N(_ context.Context, bundle Bundle) error {
	return wrapEngineError("setI18N", e.call("setI18N", bundle.Flatten()))
}

func (e *JSEngine) call(method string, argument any) error {
	return e.runtime.Do(func(vm *goja.Runtime) error {
		engine := lookupPath(vm, e.symbol)
		if engine == nil {
			return ErrEngineNotLoaded
		}
		object := engine.ToObject(vm)
		fn, ok := goja.AssertFunction(object.Get(method))
		if !ok {
			return fmt.Errorf("%s is not a function", method)
		}
		_, err := fn(object, vm.ToValue(argument))
		return err
	})
}

// LanguageServiceReady never waits on the runtime: while a script is running
// it reports false and callers retry. A positive answer is remembered.
func (e *JSEngine) LanguageServiceReady() bool {
	if e.serviceReady.Load() {
		return true
	}
	defined, ok := e.runtime.TryDefined(e.symbol + ".LanguageService")
	if ok && defined {
		e.serviceReady.Store(true)
	}
	return defined
}

func (e *JSEngine) NewLanguageService(include bool) (Service, error) {
	var service *JSService
	err := e.runtime.Do(func(vm *goja.Runtime) error {
		ctor := lookupPath(vm, e.symbol+".LanguageService")
		if ctor == nil {
			return ErrEngineNotLoaded
		}
		object, err := vm.New(ctor, vm.ToValue(include))
		if err != nil {
			return err
		}
		service = &JSService{runtime: e.runtime, object: object}
		return nil
	})
	if err != nil {
		return nil, wrapEngineError("LanguageService", err)
	}
	return service, nil
}

// JSService is a language-service instance living in a Runtime.
type JSService struct {
	runtime *Runtime
	object  *goja.Object
}

// Call invokes method on the service and exports its result.
func (s *JSService) Call(method string, args ...any) (any, error) {
	var out any
	err := s.runtime.Do(func(vm *goja.Runtime) error {
		fn, ok := goja.AssertFunction(s.object.Get(method))
		if !ok {
			return fmt.Errorf("wikiboot: language service method %q is not a function", method)
		}
		values := make([]goja.Value, len(args))
		for i, arg := range args {
			values[i] = vm.ToValue(arg)
		}
		result, err := fn(s.object, values...)
		if err != nil {
			return err
		}
		out = result.Export()
		return nil
	})
	return out, err
}

// Get exports the property name of the service object.
func (s *JSService) Get(name string) any {
	var out any
	_ = s.runtime.Do(func(vm *goja.Runtime) error {
		if value := s.object.Get(name); value != nil {
			out = value.Export()
		}
		return nil
	})
	return out
}
