package config

import (
	"fmt"
	"os"

	"github.com/fieldscope/verity/pkg/middleware"
	"github.com/fieldscope/verity/pkg/openapi"
	"github.com/fieldscope/verity/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "VERITY_CORS_ENABLED",
	Origins:          "VERITY_CORS_ORIGINS",
	AllowedMethods:   "VERITY_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "VERITY_CORS_ALLOWED_HEADERS",
	AllowCredentials: "VERITY_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "VERITY_CORS_MAX_AGE",
}

var openapiEnv = &openapi.ConfigEnv{
	Title:       "VERITY_OPENAPI_TITLE",
	Description: "VERITY_OPENAPI_DESCRIPTION",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "VERITY_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "VERITY_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, CORS, identity, and pagination settings.
type APIConfig struct {
	BasePath   string                    `toml:"base_path"`
	CORS       middleware.CORSConfig     `toml:"cors"`
	Identity   middleware.IdentityConfig `toml:"identity"`
	OpenAPI    openapi.Config            `toml:"openapi"`
	Pagination pagination.Config         `toml:"pagination"`
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS, identity, and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Identity.Finalize(); err != nil {
		return fmt.Errorf("identity: %w", err)
	}
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}

	c.CORS.Merge(&overlay.CORS)
	c.Identity.Merge(&overlay.Identity)
	c.OpenAPI.Merge(&overlay.OpenAPI)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("VERITY_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("VERITY_IDENTITY_ISSUER"); v != "" {
		c.Identity.Issuer = v
		c.Identity.Enabled = true
	}
	if v := os.Getenv("VERITY_IDENTITY_CLIENT_ID"); v != "" {
		c.Identity.ClientID = v
	}
}
