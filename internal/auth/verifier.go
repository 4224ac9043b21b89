package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/rsa"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campusjobs/campusjobs/internal/model"
)

// ErrInvalidToken is returned for every token that cannot be trusted.
var ErrInvalidToken = errors.New("invalid token")

// KeyProvider looks up verification keys by key id. *KeySet satisfies it.
type KeyProvider interface {
	Key(ctx context.Context, kid string) (any, error)
}

// VerifierConfig holds the claim expectations for tokens.
// Empty Issuer or Audience disables that check.
type VerifierConfig struct {
	Issuer   string
	Audience string
	Leeway   time.Duration
}

// Claims are the token claims the service reads.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verifier checks bearer tokens signed by the identity provider.
type Verifier struct {
	keys   KeyProvider
	parser *jwt.Parser
}

// NewVerifier creates a Verifier accepting ES256 and RS256 tokens with an expiry.
func NewVerifier(keys KeyProvider, cfg VerifierConfig) *Verifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg(), jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}

	return &Verifier{
		keys:   keys,
		parser: jwt.NewParser(opts...),
	}
}

// Verify validates token and extracts the caller identity from its claims.
// It never consults the user table.
func (v *Verifier) Verify(ctx context.Context, token string) (*model.Identity, error) {
	claims := &Claims{}

	_, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid header")
		}

		key, err := v.keys.Key(ctx, kid)
		if err != nil {
			return nil, err
		}

		switch t.Method.(type) {
		case *jwt.SigningMethodECDSA:
			if _, ok := key.(*ecdsa.PublicKey); !ok {
				return nil, fmt.Errorf("key %q is not an EC key", kid)
			}
		case *jwt.SigningMethodRSA:
			if _, ok := key.(*rsa.PublicKey); !ok {
				return nil, fmt.Errorf("key %q is not an RSA key", kid)
			}
		}
		return key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return &model.Identity{
		ID:        claims.Subject,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
