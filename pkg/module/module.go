package module

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fieldscope/verity/pkg/middleware"
)

// Module mounts an inner router at a path prefix with its own
// middleware stack. Requests reach the inner router with the prefix
// already stripped, so route patterns inside a module stay
// prefix-agnostic.
type Module struct {
	prefix     string
	router     http.Handler
	middleware middleware.System
}

// New creates a Module at the given prefix. The prefix must be a
// single path segment with a leading slash, like "/api"; anything
// else panics, since prefixes are fixed at wiring time.
func New(prefix string, router http.Handler) *Module {
	if err := validatePrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{
		prefix:     prefix,
		router:     router,
		middleware: middleware.New(),
	}
}

// Handler returns the inner router wrapped in the module's middleware.
func (m *Module) Handler() http.Handler {
	return m.middleware.Apply(m.router)
}

// Prefix returns the mount prefix.
func (m *Module) Prefix() string {
	return m.prefix
}

// Serve dispatches the request to the inner router with the prefix
// stripped from a cloned request, leaving the original untouched.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	inner := cloneRequest(req, innerPath(req.URL.Path, m.prefix))
	m.Handler().ServeHTTP(w, inner)
}

// Use appends middleware to the module's stack.
func (m *Module) Use(mw func(http.Handler) http.Handler) {
	m.middleware.Use(mw)
}

func cloneRequest(req *http.Request, path string) *http.Request {
	clone := new(http.Request)
	*clone = *req
	clone.URL = new(url.URL)
	*clone.URL = *req.URL
	clone.URL.Path = path
	clone.URL.RawPath = ""
	return clone
}

func innerPath(fullPath, prefix string) string {
	path := strings.TrimPrefix(fullPath, prefix)
	if path == "" {
		return "/"
	}
	return path
}

func validatePrefix(prefix string) error {
	if prefix == "" {
		return fmt.Errorf("module prefix cannot be empty")
	}
	if !strings.HasPrefix(prefix, "/") {
		return fmt.Errorf("module prefix must start with /: %s", prefix)
	}
	if strings.Count(prefix, "/") != 1 {
		return fmt.Errorf("module prefix must be single-level sub-path: %s", prefix)
	}
	return nil
}
