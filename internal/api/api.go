// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/fieldscope/verity/internal/config"
	"github.com/fieldscope/verity/internal/infrastructure"
	"github.com/fieldscope/verity/pkg/middleware"
	"github.com/fieldscope/verity/pkg/module"
	"github.com/fieldscope/verity/pkg/openapi"
)

// NewModule creates the API module with all domain handlers and middleware,
// and registers the session tracker and lease sweeper with the lifecycle
// coordinator.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	if err := domain.Tracker.Start(infra.Lifecycle); err != nil {
		return nil, fmt.Errorf("session tracker start failed: %w", err)
	}
	if err := domain.Leases.Start(infra.Lifecycle, cfg.Review.SweepEveryDuration()); err != nil {
		return nil, fmt.Errorf("lease sweeper start failed: %w", err)
	}

	identity, err := middleware.Identity(
		infra.Lifecycle.Context(),
		&cfg.API.Identity,
		runtime.Logger,
	)
	if err != nil {
		return nil, fmt.Errorf("identity middleware init failed: %w", err)
	}

	specBytes, err := buildSpec(cfg)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain)
	mux.HandleFunc("GET /openapi.json", openapi.ServeSpec(specBytes))

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(identity)

	return m, nil
}
