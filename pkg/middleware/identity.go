package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
)

type identityKey struct{}

// ErrNoIdentity indicates no reviewer identity is present on the request context.
var ErrNoIdentity = errors.New("no reviewer identity on request")

// IdentityConfig holds OIDC verification settings for reviewer identity.
type IdentityConfig struct {
	Enabled  bool   `toml:"enabled"`
	Issuer   string `toml:"issuer"`
	ClientID string `toml:"client_id"`
	// DevHeader names a fallback header carrying the reviewer identity
	// when OIDC verification is disabled. Local development only.
	DevHeader string `toml:"dev_header"`
}

// Merge overwrites fields from overlay. Enabled always applies.
func (c *IdentityConfig) Merge(overlay *IdentityConfig) {
	c.Enabled = overlay.Enabled
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.ClientID != "" {
		c.ClientID = overlay.ClientID
	}
	if overlay.DevHeader != "" {
		c.DevHeader = overlay.DevHeader
	}
}

// Finalize applies defaults and validates the configuration.
func (c *IdentityConfig) Finalize() error {
	if c.DevHeader == "" {
		c.DevHeader = "X-Reviewer"
	}
	if c.Enabled && c.Issuer == "" {
		return errors.New("identity issuer required when enabled")
	}
	return nil
}

// Identity returns middleware that resolves the reviewer identity for each request.
// With OIDC enabled, the bearer token's subject claim is verified against the
// configured issuer; otherwise the dev header value is used. Requests carrying
// no identity pass through unannotated so that read-only endpoints stay open;
// handlers requiring an identity reject via Reviewer. An invalid token is
// rejected outright with 401.
func Identity(ctx context.Context, cfg *IdentityConfig, logger *slog.Logger) (func(http.Handler) http.Handler, error) {
	var verifier *oidc.IDTokenVerifier

	if cfg.Enabled {
		provider, err := oidc.NewProvider(ctx, cfg.Issuer)
		if err != nil {
			return nil, err
		}
		verifier = provider.Verifier(&oidc.Config{ClientID: cfg.ClientID})
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reviewer, err := resolveReviewer(r, cfg, verifier)
			if err != nil {
				if !errors.Is(err, ErrNoIdentity) {
					logger.Warn("identity verification failed", "error", err)
					http.Error(w, "unauthorized", http.StatusUnauthorized)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(
				context.WithValue(r.Context(), identityKey{}, reviewer),
			))
		})
	}, nil
}

// Reviewer extracts the reviewer identity from the request context.
func Reviewer(ctx context.Context) (string, error) {
	if v, ok := ctx.Value(identityKey{}).(string); ok && v != "" {
		return v, nil
	}
	return "", ErrNoIdentity
}

func resolveReviewer(r *http.Request, cfg *IdentityConfig, verifier *oidc.IDTokenVerifier) (string, error) {
	if verifier == nil {
		if v := r.Header.Get(cfg.DevHeader); v != "" {
			return v, nil
		}
		return "", ErrNoIdentity
	}

	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	if raw == "" {
		return "", ErrNoIdentity
	}

	token, err := verifier.Verify(r.Context(), raw)
	if err != nil {
		return "", err
	}

	return token.Subject, nil
}
