package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/campusjobs/campusjobs/internal/cache"
	"github.com/campusjobs/campusjobs/internal/metrics"
	"github.com/campusjobs/campusjobs/internal/model"
)

// TokenVerifier verifies a raw bearer token. *Verifier satisfies it.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*model.Identity, error)
}

// IdentityCache remembers verified tokens. *cache.Cache satisfies it.
type IdentityCache interface {
	GetIdentity(ctx context.Context, token string) (*model.Identity, error)
	SetIdentity(ctx context.Context, token string, identity *model.Identity) error
}

// Resolver maps bearer tokens to identities, skipping signature checks for
// tokens verified recently.
type Resolver struct {
	verifier TokenVerifier
	cache    IdentityCache
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewResolver creates a Resolver. identityCache may be nil.
func NewResolver(verifier TokenVerifier, identityCache IdentityCache, recorder metrics.Recorder, logger *slog.Logger) *Resolver {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		verifier: verifier,
		cache:    identityCache,
		metrics:  recorder,
		logger:   logger.With("component", "identity"),
	}
}

// Resolve returns the identity behind token or an error wrapping ErrInvalidToken.
// Cache failures fall back to full verification.
func (r *Resolver) Resolve(ctx context.Context, token string) (*model.Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	if r.cache != nil {
		identity, err := r.cache.GetIdentity(ctx, token)
		if err == nil {
			r.metrics.IncIdentityCacheHit()
			return identity, nil
		}
		if errors.Is(err, cache.ErrCacheMiss) {
			r.metrics.IncIdentityCacheMiss()
		} else {
			r.logger.Warn("identity cache read failed", slog.String("error", err.Error()))
		}
	}

	start := time.Now()
	identity, err := r.verifier.Verify(ctx, token)
	r.metrics.ObserveTokenVerifyDuration(time.Since(start))
	if err != nil {
		r.metrics.IncAuthFailure()
		return nil, err
	}

	if r.cache != nil {
		if err := r.cache.SetIdentity(ctx, token, identity); err != nil {
			r.logger.Warn("identity cache write failed", slog.String("error", err.Error()))
		}
	}

	return identity, nil
}
