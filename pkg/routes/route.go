package routes

import "net/http"

// Route is one registerable endpoint: method, pattern suffix, and the
// handler that serves it.
type Route struct {
	Method  string
	Pattern string
	Handler http.HandlerFunc
}
