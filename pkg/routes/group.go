package routes

import "net/http"

// Group nests routes under a shared prefix. Child groups inherit and
// extend the parent prefix, so a tree of groups flattens into full
// route patterns at registration time.
type Group struct {
	Prefix   string
	Routes   []Route
	Children []Group
}

// Register walks the groups and registers every route on the mux
// using Go 1.22 "METHOD /pattern" syntax.
func Register(mux *http.ServeMux, groups ...Group) {
	for _, g := range groups {
		registerGroup(mux, "", g)
	}
}

func registerGroup(mux *http.ServeMux, parent string, g Group) {
	prefix := parent + g.Prefix
	for _, r := range g.Routes {
		mux.HandleFunc(r.Method+" "+prefix+r.Pattern, r.Handler)
	}
	for _, child := range g.Children {
		registerGroup(mux, prefix, child)
	}
}
