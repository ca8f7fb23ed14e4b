// Package idtoken verifies Setto Wallet ID tokens against the platform's JWKS.
package idtoken

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"

	setto "github.com/settopay/setto-server-sdk-go"
)

// JWKSPath is where the platform publishes its signing keys, relative to the base URL.
const JWKSPath = "/.well-known/jwks.json"

// DefaultRefreshInterval bounds how often the key set is refreshed in the background.
const DefaultRefreshInterval = 15 * time.Minute

const logCategory = "setto_idtoken"

var (
	ErrTokenInvalid     = errors.New("setto: invalid ID token")
	ErrTokenExpired     = errors.New("setto: ID token expired")
	ErrIssuerMismatch   = errors.New("setto: ID token issuer mismatch")
	ErrKeyNotFound      = errors.New("setto: signing key not found in JWKS")
	ErrEmailNotVerified = errors.New("setto: email not verified")
)

// walletClaims is the ID token payload as issued by Setto Wallet
type walletClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	jwt.RegisteredClaims
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithRefreshInterval overrides DefaultRefreshInterval.
func WithRefreshInterval(d time.Duration) Option {
	return func(v *Verifier) { v.refreshInterval = d }
}

// WithLeeway allows for clock skew when checking exp, iat and nbf.
func WithLeeway(d time.Duration) Option {
	return func(v *Verifier) { v.leeway = d }
}

// WithLogger sets the logger used for key refresh events.
func WithLogger(l setto.Logger) Option {
	return func(v *Verifier) { v.logger = l }
}

// Verifier verifies Wallet ID tokens. It is safe for concurrent use.
// The key set is fetched lazily on the first verification and refreshed when a
// token names a kid the cached set does not contain.
type Verifier struct {
	jwksURL         string
	issuer          string
	refreshInterval time.Duration
	leeway          time.Duration
	logger          setto.Logger

	mu        sync.RWMutex
	cache     *jwk.Cache
	cachedSet jwk.Set
	cancel    context.CancelFunc
}

// NewVerifier creates a verifier for tokens issued by issuer and signed with keys
// published at jwksURL. Nothing is fetched until the first call to VerifyIDToken.
func NewVerifier(jwksURL, issuer string, opts ...Option) *Verifier {
	v := &Verifier{
		jwksURL:         jwksURL,
		issuer:          issuer,
		refreshInterval: DefaultRefreshInterval,
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.logger == nil {
		v.logger = setto.NopLogger()
	}
	return v
}

// ForClient creates a verifier for the platform the client talks to. The issuer is
// the client's base URL and the key set lives at JWKSPath below it. The client's
// logger is used unless opts set another.
func ForClient(c *setto.Client, opts ...Option) *Verifier {
	base := strings.TrimRight(c.Config().BaseURL(), "/")
	opts = append([]Option{WithLogger(c.Config().Logger())}, opts...)
	return NewVerifier(base+JWKSPath, base, opts...)
}

// VerifyIDToken checks the token signature, expiry and issuer and returns its claims.
func (v *Verifier) VerifyIDToken(ctx context.Context, idToken string) (*setto.Claims, error) {
	if err := v.ensureCache(); err != nil {
		return nil, fmt.Errorf("failed to initialize JWKS cache: %w", err)
	}

	parserOpts := []jwt.ParserOption{jwt.WithIssuer(v.issuer), jwt.WithIssuedAt()}
	if v.leeway > 0 {
		parserOpts = append(parserOpts, jwt.WithLeeway(v.leeway))
	}

	token, err := jwt.ParseWithClaims(idToken, &walletClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		kid, ok := token.Header["kid"].(string)
		if !ok || kid == "" {
			return nil, errors.New("kid not found in token header")
		}
		return v.keyByID(ctx, kid)
	}, parserOpts...)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return nil, fmt.Errorf("%w: expected %s", ErrIssuerMismatch, v.issuer)
		case errors.Is(err, ErrKeyNotFound):
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	wc, ok := token.Claims.(*walletClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims := &setto.Claims{
		UserID:        wc.Subject,
		Email:         wc.Email,
		EmailVerified: wc.EmailVerified,
	}
	if wc.IssuedAt != nil {
		claims.IssuedAt = wc.IssuedAt.Time
	}
	if wc.ExpiresAt != nil {
		claims.ExpiresAt = wc.ExpiresAt.Time
	}
	return claims, nil
}

// VerifyIDTokenRequireEmail verifies the token and also requires email_verified.
func (v *Verifier) VerifyIDTokenRequireEmail(ctx context.Context, idToken string) (*setto.Claims, error) {
	claims, err := v.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	if !claims.EmailVerified {
		return nil, ErrEmailNotVerified
	}
	return claims, nil
}

// Close stops background key refresh. The verifier may be used again afterwards;
// it will start a new cache on demand.
func (v *Verifier) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.cancel != nil {
		v.cancel()
	}
	v.cache = nil
	v.cachedSet = nil
	v.cancel = nil
}

func (v *Verifier) ensureCache() error {
	v.mu.RLock()
	if v.cache != nil {
		v.mu.RUnlock()
		return nil
	}
	v.mu.RUnlock()

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.cache != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cache := jwk.NewCache(ctx)
	if err := cache.Register(v.jwksURL, jwk.WithMinRefreshInterval(v.refreshInterval)); err != nil {
		cancel()
		return err
	}

	v.cache = cache
	v.cachedSet = jwk.NewCachedSet(cache, v.jwksURL)
	v.cancel = cancel
	v.logger.Debug(fmt.Sprintf("JWKS cache registered for %s", v.jwksURL), logCategory)
	return nil
}

func (v *Verifier) keyByID(ctx context.Context, kid string) (interface{}, error) {
	v.mu.RLock()
	cachedSet := v.cachedSet
	cache := v.cache
	v.mu.RUnlock()

	if cache == nil {
		return nil, errors.New("verifier closed")
	}

	key, found := cachedSet.LookupKeyID(kid)
	if !found {
		v.logger.Info(fmt.Sprintf("Key %s not in cached JWKS, refreshing", kid), logCategory)
		if _, err := cache.Refresh(ctx, v.jwksURL); err != nil {
			return nil, fmt.Errorf("failed to refresh JWKS: %w", err)
		}
		if key, found = cachedSet.LookupKeyID(kid); !found {
			return nil, ErrKeyNotFound
		}
	}

	var rawKey interface{}
	if err := key.Raw(&rawKey); err != nil {
		return nil, fmt.Errorf("failed to get raw key: %w", err)
	}
	return rawKey, nil
}
