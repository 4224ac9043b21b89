package auth

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Key set errors.
var (
	ErrUnknownKey       = errors.New("unknown signing key")
	errRefreshThrottled = errors.New("key set refresh throttled")
)

const (
	// DefaultRefreshInterval spaces out key set fetches (at most 5 per minute).
	DefaultRefreshInterval = 12 * time.Second
	// DefaultKeySetTTL is how long a fetched key set is trusted.
	DefaultKeySetTTL = 10 * time.Minute

	maxJWKSBytes = 1 << 20
)

// KeySetConfig configures a KeySet.
type KeySetConfig struct {
	URL             string
	HTTPClient      *http.Client
	RefreshInterval time.Duration
	TTL             time.Duration
	Logger          *slog.Logger
}

// KeySet holds the identity provider's public signing keys, fetched from its
// JWKS endpoint. An unknown key id triggers a refetch, at most once per
// RefreshInterval.
type KeySet struct {
	url             string
	client          *http.Client
	refreshInterval time.Duration
	ttl             time.Duration
	logger          *slog.Logger

	group singleflight.Group

	mu          sync.RWMutex
	keys        map[string]any
	fetchedAt   time.Time
	lastAttempt time.Time
}

// NewKeySet creates a KeySet. Keys are fetched lazily on first use.
func NewKeySet(cfg KeySetConfig) *KeySet {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 5 * time.Second}
	}
	if cfg.RefreshInterval < 0 {
		cfg.RefreshInterval = 0
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultKeySetTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &KeySet{
		url:             cfg.URL,
		client:          cfg.HTTPClient,
		refreshInterval: cfg.RefreshInterval,
		ttl:             cfg.TTL,
		logger:          cfg.Logger.With("component", "jwks"),
		keys:            make(map[string]any),
	}
}

// Key returns the public key for kid (*rsa.PublicKey or *ecdsa.PublicKey).
// A stale key is still served when a refresh fails or is throttled.
func (s *KeySet) Key(ctx context.Context, kid string) (any, error) {
	key, fresh := s.lookup(kid)
	if key != nil && fresh {
		return key, nil
	}

	// Concurrent callers share one fetch; it must outlive any single request.
	fetchCtx := context.WithoutCancel(ctx)
	_, err, _ := s.group.Do("refresh", func() (any, error) {
		return nil, s.refresh(fetchCtx)
	})

	if key, _ := s.lookup(kid); key != nil {
		return key, nil
	}
	if err != nil && !errors.Is(err, errRefreshThrottled) {
		return nil, err
	}
	return nil, ErrUnknownKey
}

// Refresh fetches the key set now, subject to the refresh interval.
func (s *KeySet) Refresh(ctx context.Context) error {
	_, err, _ := s.group.Do("refresh", func() (any, error) {
		return nil, s.refresh(ctx)
	})
	return err
}

func (s *KeySet) lookup(kid string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := s.keys[kid]
	return key, time.Since(s.fetchedAt) < s.ttl
}

func (s *KeySet) refresh(ctx context.Context) error {
	s.mu.Lock()
	if !s.lastAttempt.IsZero() && time.Since(s.lastAttempt) < s.refreshInterval {
		s.mu.Unlock()
		return errRefreshThrottled
	}
	s.lastAttempt = time.Now()
	s.mu.Unlock()

	keys, err := s.fetch(ctx)
	if err != nil {
		s.logger.Warn("jwks fetch failed", slog.String("error", err.Error()))
		return err
	}

	s.mu.Lock()
	s.keys = keys
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("jwks refreshed", slog.Int("keys", len(keys)))
	return nil
}

func (s *KeySet) fetch(ctx context.Context) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build jwks request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch jwks: unexpected status %d", resp.StatusCode)
	}

	var set jwkSet
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJWKSBytes)).Decode(&set); err != nil {
		return nil, fmt.Errorf("decode jwks: %w", err)
	}

	return set.publicKeys(s.logger), nil
}

// jwk is one entry of a JSON Web Key Set (RFC 7517).
type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
	Crv string `json:"crv"`
	X   string `json:"x"`
	Y   string `json:"y"`
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

// publicKeys parses the signing keys by kid. Unusable entries are skipped.
func (s jwkSet) publicKeys(logger *slog.Logger) map[string]any {
	keys := make(map[string]any, len(s.Keys))
	for _, k := range s.Keys {
		if k.Kid == "" || (k.Use != "" && k.Use != "sig") {
			continue
		}
		key, err := k.publicKey()
		if err != nil {
			logger.Warn("skipping jwk", slog.String("kid", k.Kid), slog.String("error", err.Error()))
			continue
		}
		keys[k.Kid] = key
	}
	return keys
}

func (k jwk) publicKey() (any, error) {
	switch k.Kty {
	case "RSA":
		n, err := decodeBigInt(k.N)
		if err != nil {
			return nil, fmt.Errorf("rsa modulus: %w", err)
		}
		e, err := decodeBigInt(k.E)
		if err != nil {
			return nil, fmt.Errorf("rsa exponent: %w", err)
		}
		if !e.IsInt64() || e.Int64() < 2 || e.Int64() > 1<<31-1 {
			return nil, errors.New("rsa exponent out of range")
		}
		return &rsa.PublicKey{N: n, E: int(e.Int64())}, nil

	case "EC":
		if k.Crv != "P-256" {
			return nil, fmt.Errorf("unsupported curve %q", k.Crv)
		}
		x, err := decodeBigInt(k.X)
		if err != nil {
			return nil, fmt.Errorf("ec x: %w", err)
		}
		y, err := decodeBigInt(k.Y)
		if err != nil {
			return nil, fmt.Errorf("ec y: %w", err)
		}
		curve := elliptic.P256()
		if !curve.IsOnCurve(x, y) {
			return nil, errors.New("ec point not on curve")
		}
		return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil

	default:
		return nil, fmt.Errorf("unsupported key type %q", k.Kty)
	}
}

func decodeBigInt(s string) (*big.Int, error) {
	if s == "" {
		return nil, errors.New("missing value")
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(b), nil
}
