package api

import (
	"time"

	"github.com/fieldscope/verity/internal/config"
	"github.com/fieldscope/verity/internal/infrastructure"
	"github.com/fieldscope/verity/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination   pagination.Config
	Review       config.ReviewConfig
	SignedURLTTL time.Duration
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
			Telephony: infra.Telephony,
		},
		Pagination:   cfg.API.Pagination,
		Review:       cfg.Review,
		SignedURLTTL: cfg.Storage.SignedURLTTLDuration(),
	}
}
