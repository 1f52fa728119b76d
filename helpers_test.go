package wikiboot

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-wikiboot/pkg/activity"
)

const (
	testEngineVersion = "1.20.1"
	testEnginePath    = "/npm/wikiparser-node/extensions/dist/base.min.js"
	testLSPPath       = "/npm/wikiparser-node/extensions/dist/lsp.min.js"
	testI18NPath      = "/npm/wikiparser-node/i18n/"
)

const testEngineScript = `var wikiparse = {
	CDN: %q,
	version: %q,
	config: null,
	i18n: null,
	created: 0,
	setConfig: function (config) { this.config = config; },
	setI18N: function (messages) { this.i18n = messages; }
};`

const testLSPScript = `wikiparse.LanguageService = function (include) {
	this.include = include;
	this.id = ++wikiparse.created;
};
wikiparse.LanguageService.prototype.lint = function (text) { return text.length; };`

// engineServer serves a fake engine, its language service and i18n bundles,
// counting every request by path.
type engineServer struct {
	*httptest.Server

	mu       sync.Mutex
	hits     map[string]int
	bundles  map[string]string
	delay    time.Duration
	failures map[string]int
}

func newEngineServer(t *testing.T) *engineServer {
	t.Helper()
	s := &engineServer{
		hits:     map[string]int{},
		bundles:  map[string]string{},
		failures: map[string]int{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func (s *engineServer) serve(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	delay := s.delay
	status := s.failures[r.URL.Path]
	bundle, hasBundle := s.bundles[strings.TrimPrefix(r.URL.Path, testI18NPath)]
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if status != 0 {
		w.WriteHeader(status)
		return
	}

	switch {
	case r.URL.Path == testEnginePath:
		cdn := "http://" + r.Host + "/npm/wikiparser-node"
		fmt.Fprintf(w, testEngineScript, cdn, testEngineVersion)
	case r.URL.Path == testLSPPath:
		fmt.Fprint(w, testLSPScript)
	case strings.HasPrefix(r.URL.Path, testI18NPath) && hasBundle:
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, bundle)
	default:
		http.NotFound(w, r)
	}
}

func (s *engineServer) serveBundle(lang, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bundles[lang+".json"] = body
}

func (s *engineServer) fail(path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = status
}

func (s *engineServer) setDelay(delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = delay
}

func (s *engineServer) hitCount(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func (s *engineServer) totalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.hits {
		total += n
	}
	return total
}

func (s *engineServer) options(extra ...Option) []Option {
	opts := []Option{
		WithBaseURL(s.URL),
		WithHTTPClient(s.Client()),
	}
	return append(opts, extra...)
}

func captureHooks() (*activity.CaptureHook, Option) {
	capture := &activity.CaptureHook{}
	return capture, WithActivityHooks(activity.Hooks{capture})
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}
