package api

import (
	"net/http"

	"github.com/fieldscope/verity/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain) {
	routes.Register(
		mux,
		domain.Responses.Handler().Routes(),
		domain.Media.Handler().Routes(),
		domain.Review.Handler().Routes(),
	)
}
