package wikiboot

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dop251/goja"
)

// Runtime is the global scope scripts are loaded into. It wraps a single goja
// runtime; goja is not safe for concurrent use so every access goes through
// the runtime lock.
type Runtime struct {
	mu    sync.Mutex
	vm    *goja.Runtime
	cache ProgramCache
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*runtimeConfig)

type runtimeConfig struct {
	cache   ProgramCache
	globals map[string]any
}

// RuntimeWithProgramCache caches compiled scripts keyed by their URL.
func RuntimeWithProgramCache(cache ProgramCache) RuntimeOption {
	return func(cfg *runtimeConfig) {
		cfg.cache = cache
	}
}

// RuntimeWithGlobal defines name on the global object before any script runs.
func RuntimeWithGlobal(name string, value any) RuntimeOption {
	return func(cfg *runtimeConfig) {
		if name == "" {
			return
		}
		if cfg.globals == nil {
			cfg.globals = map[string]any{}
		}
		cfg.globals[name] = value
	}
}

// NewRuntime constructs a Runtime whose global object is also reachable as
// window and self, the way browser bundles expect.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	cfg := runtimeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	vm := goja.New()
	global := vm.GlobalObject()
	_ = vm.Set("window", global)
	_ = vm.Set("self", global)
	for name, value := range cfg.globals {
		_ = vm.Set(name, value)
	}
	return &Runtime{vm: vm, cache: cfg.cache}
}

// Defined reports whether every segment of the dot-separated path resolves to
// a value other than undefined or null.
func (r *Runtime) Defined(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return lookupPath(r.vm, path) != nil
}

// TryDefined is Defined without waiting for a running script. ok is false when
// the runtime is busy and path could not be checked.
func (r *Runtime) TryDefined(path string) (defined, ok bool) {
	if !r.mu.TryLock() {
		return false, false
	}
	defer r.mu.Unlock()
	return lookupPath(r.vm, path) != nil, true
}

// Lookup exports the value found at path.
func (r *Runtime) Lookup(path string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	value := lookupPath(r.vm, path)
	if value == nil {
		return nil, false
	}
	return value.Export(), true
}

// Execute compiles and runs source as a classic script named name.
func (r *Runtime) Execute(name, source string) error {
	program, err := r.loadOrCompile(name, source)
	if err != nil {
		return err
	}
	return r.Do(func(vm *goja.Runtime) error {
		_, err := vm.RunProgram(program)
		return err
	})
}

// Do runs fn with exclusive access to the underlying goja runtime. JavaScript
// exceptions thrown out of fn are returned as errors.
func (r *Runtime) Do(fn func(vm *goja.Runtime) error) (err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer func() {
		if recovered := recover(); recovered != nil {
			if exception, ok := recovered.(*goja.Exception); ok {
				err = exception
				return
			}
			panic(recovered)
		}
	}()
	return fn(r.vm)
}

func (r *Runtime) loadOrCompile(name, source string) (*goja.Program, error) {
	if r.cache != nil {
		if cached, ok := r.cache.Get(name); ok {
			if program, ok := cached.(*goja.Program); ok {
				return program, nil
			}
		}
	}
	program, err := goja.Compile(name, source, false)
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		r.cache.Set(name, program)
	}
	return program, nil
}

// AMDAvailable reports whether an AMD module loader is installed: a global
// define function carrying an amd property and a global require exposing
// config.
func (r *Runtime) AMDAvailable() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	define := r.vm.Get("define")
	if _, ok := goja.AssertFunction(define); !ok {
		return false
	}
	if value := define.ToObject(r.vm).Get("amd"); value == nil || goja.IsUndefined(value) {
		return false
	}
	_, _, ok := amdRequire(r.vm)
	return ok
}

// Require maps symbol to url in the AMD loader and requires it. When the
// module arrives it is assigned onto the global object under symbol and done
// is called. done runs on the goja call stack and must not touch the Runtime.
func (r *Runtime) Require(symbol, url string, done func(error)) error {
	return r.Do(func(vm *goja.Runtime) error {
		require, configure, ok := amdRequire(vm)
		if !ok {
			return fmt.Errorf("amd loader not available")
		}

		paths := vm.NewObject()
		if err := paths.Set(symbol, url); err != nil {
			return err
		}
		config := vm.NewObject()
		if err := config.Set("paths", paths); err != nil {
			return err
		}
		if _, err := configure(vm.Get("require"), config); err != nil {
			return err
		}

		onLoad := func(call goja.FunctionCall) goja.Value {
			if err := assignPath(vm, symbol, call.Argument(0)); err != nil {
				done(err)
				return goja.Undefined()
			}
			done(nil)
			return goja.Undefined()
		}
		onError := func(call goja.FunctionCall) goja.Value {
			done(fmt.Errorf("amd require %q: %s", symbol, call.Argument(0).String()))
			return goja.Undefined()
		}
		_, err := require(goja.Undefined(), vm.NewArray(symbol), vm.ToValue(onLoad), vm.ToValue(onError))
		return err
	})
}

func amdRequire(vm *goja.Runtime) (goja.Callable, goja.Callable, bool) {
	value := vm.Get("require")
	require, ok := goja.AssertFunction(value)
	if !ok {
		return nil, nil, false
	}
	configure, ok := goja.AssertFunction(value.ToObject(vm).Get("config"))
	if !ok {
		return nil, nil, false
	}
	return require, configure, true
}

// lookupPath walks path from the global object, returning nil as soon as a
// segment is undefined or null.
func lookupPath(vm *goja.Runtime, path string) (found goja.Value) {
	defer func() {
		if recover() != nil {
			found = nil
		}
	}()
	if strings.TrimSpace(path) == "" {
		return nil
	}
	var current goja.Value = vm.GlobalObject()
	for _, segment := range strings.Split(path, ".") {
		object, ok := current.(*goja.Object)
		if !ok {
			object = current.ToObject(vm)
		}
		current = object.Get(segment)
		if current == nil || goja.IsUndefined(current) || goja.IsNull(current) {
			return nil
		}
	}
	return current
}

// assignPath sets value at path, creating intermediate objects as needed.
func assignPath(vm *goja.Runtime, path string, value goja.Value) error {
	segments := strings.Split(path, ".")
	parent := vm.GlobalObject()
	for _, segment := range segments[:len(segments)-1] {
		next := parent.Get(segment)
		if next == nil || goja.IsUndefined(next) || goja.IsNull(next) {
			created := vm.NewObject()
			if err := parent.Set(segment, created); err != nil {
				return err
			}
			parent = created
			continue
		}
		parent = next.ToObject(vm)
	}
	return parent.Set(segments[len(segments)-1], value)
}
