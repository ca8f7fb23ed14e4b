package idtoken

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/sirupsen/logrus"

	setto "github.com/settopay/setto-server-sdk-go"
)

// mockLogger is a simple test logger that doesn't write anywhere
type mockLogger struct{}

func (m *mockLogger) Debug(msg, category string) {}
func (m *mockLogger) Info(msg, category string)  {}
func (m *mockLogger) Warn(msg, category string)  {}
func (m *mockLogger) Error(msg, category string) {}

type signingKey struct {
	kid  string
	priv *rsa.PrivateKey
}

func newSigningKey(t *testing.T, kid string) signingKey {
	t.Helper()
	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate RSA key: %v", err)
	}
	return signingKey{kid: kid, priv: priv}
}

// jwksServer publishes the public halves of whatever keys are currently set.
type jwksServer struct {
	*httptest.Server
	mu      sync.Mutex
	keys    []signingKey
	fetches int32
}

func newJWKSServer(t *testing.T, keys ...signingKey) *jwksServer {
	t.Helper()
	s := &jwksServer{keys: keys}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != JWKSPath {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt32(&s.fetches, 1)

		s.mu.Lock()
		current := append([]signingKey(nil), s.keys...)
		s.mu.Unlock()

		set := jwk.NewSet()
		for _, k := range current {
			pub, err := jwk.FromRaw(&k.priv.PublicKey)
			if err != nil {
				t.Errorf("jwk.FromRaw failed: %v", err)
				return
			}
			pub.Set(jwk.KeyIDKey, k.kid)
			pub.Set(jwk.AlgorithmKey, jwa.RS256)
			set.AddKey(pub)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(set)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *jwksServer) setKeys(keys ...signingKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = keys
}

func sign(t *testing.T, key signingKey, claims walletClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	token.Header["kid"] = key.kid
	signed, err := token.SignedString(key.priv)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func validClaims(issuer string) walletClaims {
	now := time.Now()
	return walletClaims{
		Email:         "user@example.com",
		EmailVerified: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u_123",
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now.Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func newTestVerifier(t *testing.T, server *jwksServer) *Verifier {
	t.Helper()
	v := NewVerifier(server.URL+JWKSPath, server.URL, WithLogger(&mockLogger{}))
	t.Cleanup(v.Close)
	return v
}

func TestVerifyIDToken(t *testing.T) {
	k1 := newSigningKey(t, "k1")
	server := newJWKSServer(t, k1)
	v := newTestVerifier(t, server)

	if atomic.LoadInt32(&server.fetches) != 0 {
		t.Fatalf("JWKS fetched before first verification")
	}

	claims, err := v.VerifyIDToken(context.Background(), sign(t, k1, validClaims(server.URL)))
	if err != nil {
		t.Fatalf("VerifyIDToken() failed: %v", err)
	}
	if claims.UserID != "u_123" || claims.Email != "user@example.com" || !claims.EmailVerified {
		t.Errorf("unexpected claims: %+v", claims)
	}
	if claims.ExpiresAt.IsZero() || claims.Expired(time.Now()) {
		t.Errorf("ExpiresAt = %s", claims.ExpiresAt)
	}

	// A second verification is served from the cache.
	if _, err := v.VerifyIDToken(context.Background(), sign(t, k1, validClaims(server.URL))); err != nil {
		t.Fatalf("second VerifyIDToken() failed: %v", err)
	}
	if got := atomic.LoadInt32(&server.fetches); got != 1 {
		t.Errorf("JWKS fetched %d times, want 1", got)
	}
}

func TestVerifyIDTokenRejections(t *testing.T) {
	k1 := newSigningKey(t, "k1")
	stranger := newSigningKey(t, "k9")
	server := newJWKSServer(t, k1)
	v := newTestVerifier(t, server)

	expired := validClaims(server.URL)
	expired.IssuedAt = jwt.NewNumericDate(time.Now().Add(-2 * time.Hour))
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	hmacToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims(server.URL)).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("failed to sign HMAC token: %v", err)
	}

	// Signed by k1's kid but with a different private key.
	forged := sign(t, signingKey{kid: "k1", priv: stranger.priv}, validClaims(server.URL))

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"expired", sign(t, k1, expired), ErrTokenExpired},
		{"wrong issuer", sign(t, k1, validClaims("https://evil.example")), ErrIssuerMismatch},
		{"unknown kid", sign(t, stranger, validClaims(server.URL)), ErrKeyNotFound},
		{"hmac", hmacToken, ErrTokenInvalid},
		{"forged signature", forged, ErrTokenInvalid},
		{"garbage", "not.a.token", ErrTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.VerifyIDToken(context.Background(), tt.token)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestVerifyIDTokenKeyRotation(t *testing.T) {
	k1 := newSigningKey(t, "k1")
	k2 := newSigningKey(t, "k2")
	server := newJWKSServer(t, k1)
	v := newTestVerifier(t, server)

	if _, err := v.VerifyIDToken(context.Background(), sign(t, k1, validClaims(server.URL))); err != nil {
		t.Fatalf("VerifyIDToken() with k1 failed: %v", err)
	}

	server.setKeys(k1, k2)

	if _, err := v.VerifyIDToken(context.Background(), sign(t, k2, validClaims(server.URL))); err != nil {
		t.Fatalf("VerifyIDToken() after rotation failed: %v", err)
	}
	if got := atomic.LoadInt32(&server.fetches); got != 2 {
		t.Errorf("JWKS fetched %d times, want 2", got)
	}
}

func TestVerifyIDTokenRequireEmail(t *testing.T) {
	k1 := newSigningKey(t, "k1")
	server := newJWKSServer(t, k1)
	v := newTestVerifier(t, server)

	unverified := validClaims(server.URL)
	unverified.EmailVerified = false

	if _, err := v.VerifyIDTokenRequireEmail(context.Background(), sign(t, k1, unverified)); !errors.Is(err, ErrEmailNotVerified) {
		t.Errorf("expected ErrEmailNotVerified, got %v", err)
	}
	if _, err := v.VerifyIDTokenRequireEmail(context.Background(), sign(t, k1, validClaims(server.URL))); err != nil {
		t.Errorf("verified email rejected: %v", err)
	}
}

func TestVerifyConcurrent(t *testing.T) {
	k1 := newSigningKey(t, "k1")
	server := newJWKSServer(t, k1)
	v := newTestVerifier(t, server)
	token := sign(t, k1, validClaims(server.URL))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := v.VerifyIDToken(context.Background(), token); err != nil {
				t.Errorf("concurrent VerifyIDToken() failed: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestForClient(t *testing.T) {
	client, err := setto.NewClient(setto.Config{APIKey: "sk_partner.abc", Environment: setto.Development},
		setto.WithBaseURL("http://localhost:9000/"), setto.WithLogger(setto.NewLogrusLogger(logrus.New())))
	if err != nil {
		t.Fatalf("NewClient() failed: %v", err)
	}

	v := ForClient(client)
	defer v.Close()

	if v.jwksURL != "http://localhost:9000/.well-known/jwks.json" {
		t.Errorf("jwksURL = %q", v.jwksURL)
	}
	if v.issuer != "http://localhost:9000" {
		t.Errorf("issuer = %q", v.issuer)
	}
	if v.logger != client.Config().Logger() {
		t.Errorf("verifier should share the client's logger")
	}

	prod, err := setto.NewClient(setto.Config{APIKey: "sk_partner.abc", Environment: setto.Production})
	if err != nil {
		t.Fatalf("NewClient() failed: %v", err)
	}
	if got := ForClient(prod).issuer; got != setto.ProductionURL {
		t.Errorf("issuer = %q, want %q", got, setto.ProductionURL)
	}
}
