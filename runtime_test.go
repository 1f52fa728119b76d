package wikiboot

import (
	"errors"
	"testing"
	"time"

	"github.com/dop251/goja"
)

func TestRuntimeDefinedWalksNestedPaths(t *testing.T) {
	rt := NewRuntime()
	if err := rt.Execute("setup.js", `var a = {b: {c: 1, n: null}}; var zero = 0;`); err != nil {
		t.Fatalf("execute: %v", err)
	}

	cases := map[string]bool{
		"a":       true,
		"a.b":     true,
		"a.b.c":   true,
		"a.b.n":   false,
		"a.x.c":   false,
		"missing": false,
		"zero":    true,
		"":        false,
		"window":  true,
	}
	for path, want := range cases {
		if got := rt.Defined(path); got != want {
			t.Fatalf("Defined(%q) = %v, want %v", path, got, want)
		}
	}

	value, ok := rt.Lookup("a.b.c")
	if !ok || value != int64(1) {
		t.Fatalf("expected a.b.c = 1, got %v %v", value, ok)
	}
}

func TestRuntimeDefinedSurvivesThrowingGetter(t *testing.T) {
	rt := NewRuntime()
	err := rt.Execute("getter.js", `var trap = {}; Object.defineProperty(trap, "boom", {get: function () { throw new Error("no"); }});`)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if rt.Defined("trap.boom") {
		t.Fatalf("expected throwing getter to read as undefined")
	}
}

func TestRuntimeExecuteReportsScriptErrors(t *testing.T) {
	rt := NewRuntime()
	if err := rt.Execute("syntax.js", `var = ;`); err == nil {
		t.Fatalf("expected syntax error")
	}
	err := rt.Execute("throw.js", `throw new Error("broken bundle");`)
	var exception *goja.Exception
	if !errors.As(err, &exception) {
		t.Fatalf("expected goja exception, got %T %v", err, err)
	}
}

func TestRuntimeExecuteUsesProgramCache(t *testing.T) {
	cache := NewProgramCache()
	rt := NewRuntime(RuntimeWithProgramCache(cache))
	if err := rt.Execute("https://cdn/counter.js", `var runs = (typeof runs === "number" ? runs : 0) + 1;`); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if _, ok := cache.Get("https://cdn/counter.js"); !ok {
		t.Fatalf("expected compiled program to be cached")
	}
	// A cached program wins over new source under the same name.
	if err := rt.Execute("https://cdn/counter.js", `throw new Error("not compiled");`); err != nil {
		t.Fatalf("expected cached program to run, got %v", err)
	}
	if value, _ := rt.Lookup("runs"); value != int64(2) {
		t.Fatalf("expected runs = 2, got %v", value)
	}
}

func TestRuntimeWithGlobal(t *testing.T) {
	rt := NewRuntime(RuntimeWithGlobal("hostVersion", "1.0"))
	if value, ok := rt.Lookup("hostVersion"); !ok || value != "1.0" {
		t.Fatalf("expected injected global, got %v %v", value, ok)
	}
}

const amdShim = `
var modules = {};
var configured = {};
function define(name, factory) { modules[name] = factory(); }
define.amd = {};
function require(deps, onLoad, onError) {
	var name = deps[0];
	if (!(name in modules)) { onError("missing " + name + " at " + configured[name]); return; }
	onLoad(modules[name]);
}
require.config = function (cfg) { for (var k in cfg.paths) { configured[k] = cfg.paths[k]; } };
`

func TestRuntimeAMDRequireAssignsGlobal(t *testing.T) {
	rt := NewRuntime()
	if rt.AMDAvailable() {
		t.Fatalf("expected no AMD loader before shim")
	}
	if err := rt.Execute("amd.js", amdShim+`define("wikiparse", function () { return {version: "1.0"}; });`); err != nil {
		t.Fatalf("execute shim: %v", err)
	}
	if !rt.AMDAvailable() {
		t.Fatalf("expected AMD loader to be detected")
	}

	var result error = errors.New("not called")
	if err := rt.Require("wikiparse", "https://cdn/engine.js", func(err error) { result = err }); err != nil {
		t.Fatalf("require: %v", err)
	}
	if result != nil {
		t.Fatalf("expected module to load, got %v", result)
	}
	if value, ok := rt.Lookup("wikiparse.version"); !ok || value != "1.0" {
		t.Fatalf("expected module assigned to global, got %v %v", value, ok)
	}
	if value, _ := rt.Lookup("configured.wikiparse"); value != "https://cdn/engine.js" {
		t.Fatalf("expected path mapping registered, got %v", value)
	}

	if err := rt.Require("other.Nested", "https://cdn/other.js", func(err error) { result = err }); err != nil {
		t.Fatalf("require: %v", err)
	}
	if result == nil {
		t.Fatalf("expected missing module to report an error")
	}
}

func TestAssignPathCreatesIntermediateObjects(t *testing.T) {
	rt := NewRuntime()
	err := rt.Do(func(vm *goja.Runtime) error {
		return assignPath(vm, "a.b.c", vm.ToValue("x"))
	})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if value, ok := rt.Lookup("a.b.c"); !ok || value != "x" {
		t.Fatalf("expected nested assignment, got %v %v", value, ok)
	}
}

func TestRuntimeTryDefinedReportsBusyRuntime(t *testing.T) {
	started := make(chan struct{})
	rt := NewRuntime(RuntimeWithGlobal("scriptStarted", func() { close(started) }))

	done := make(chan error, 1)
	go func() {
		done <- rt.Execute("busy.js", `scriptStarted();
var until = Date.now() + 200;
while (Date.now() < until) {}
var ready = true;`)
	}()
	<-started

	begin := time.Now()
	defined, ok := rt.TryDefined("ready")
	if ok || defined {
		t.Fatalf("expected busy runtime to be reported, got defined=%v ok=%v", defined, ok)
	}
	if elapsed := time.Since(begin); elapsed > 50*time.Millisecond {
		t.Fatalf("expected TryDefined not to wait, took %s", elapsed)
	}

	if err := <-done; err != nil {
		t.Fatalf("execute: %v", err)
	}
	if defined, ok := rt.TryDefined("ready"); !ok || !defined {
		t.Fatalf("expected TryDefined to succeed on an idle runtime, got defined=%v ok=%v", defined, ok)
	}
}
