// Package auth verifies and issues the bearer tokens that identify callers.
// Identity is owned by an external provider; the API only needs the token's
// subject, which is the caller's canonical user id.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"golang.org/x/time/rate"
)

// Algorithm constants for JWT signing methods
const (
	AlgorithmHS256 = "HS256"
	AlgorithmRS256 = "RS256"
	AlgorithmES256 = "ES256"
)

var (
	// ErrMissingSubject is returned for a valid token without a sub claim
	ErrMissingSubject = errors.New("token has no subject")

	// ErrUnknownKey is returned when the token's kid is not in the key set
	ErrUnknownKey = errors.New("signing key not found")
)

// Claims represents the JWT claims we care about
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
}

// UserID returns the canonical id carried in the subject
func (c *Claims) UserID() string {
	return strings.ToLower(strings.TrimSpace(c.Subject))
}

// Verifier validates bearer tokens
type Verifier struct {
	keyfunc func(ctx context.Context) jwt.Keyfunc
	issuer  string
	methods []string
}

// VerifierOption configures a Verifier
type VerifierOption func(*Verifier)

// WithIssuer requires tokens to carry this iss claim
func WithIssuer(issuer string) VerifierOption {
	return func(v *Verifier) { v.issuer = issuer }
}

// NewHMACVerifier verifies HS256 tokens signed with a shared secret
func NewHMACVerifier(secret []byte, opts ...VerifierOption) (*Verifier, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret is empty")
	}
	v := &Verifier{
		keyfunc: func(context.Context) jwt.Keyfunc {
			return func(*jwt.Token) (interface{}, error) { return secret, nil }
		},
		methods: []string{AlgorithmHS256},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// forcedRefreshInterval spaces out the key set fetches triggered by unknown kids
const forcedRefreshInterval = 30 * time.Second

// NewJWKSVerifier verifies RS256 and ES256 tokens against a remote key set.
// The set is cached and refreshed in the background by the jwk cache; an
// unknown kid forces a refresh, at most once per forcedRefreshInterval,
// before the token is rejected.
func NewJWKSVerifier(ctx context.Context, jwksURL string, opts ...VerifierOption) (*Verifier, error) {
	cache := jwk.NewCache(ctx)
	if err := cache.Register(jwksURL, jwk.WithMinRefreshInterval(15*time.Minute)); err != nil {
		return nil, fmt.Errorf("failed to register jwks url: %w", err)
	}
	if _, err := cache.Refresh(ctx, jwksURL); err != nil {
		return nil, fmt.Errorf("failed to fetch jwks: %w", err)
	}

	keys := &keySource{
		cache:   cache,
		url:     jwksURL,
		refresh: rate.NewLimiter(rate.Every(forcedRefreshInterval), 1),
	}
	v := &Verifier{
		keyfunc: func(ctx context.Context) jwt.Keyfunc {
			return func(token *jwt.Token) (interface{}, error) {
				kid, _ := token.Header["kid"].(string)
				return keys.lookup(ctx, kid)
			}
		},
		methods: []string{AlgorithmRS256, AlgorithmES256},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

// keySource resolves signing keys from a cached remote key set
type keySource struct {
	cache   *jwk.Cache
	url     string
	refresh *rate.Limiter
}

func (k *keySource) lookup(ctx context.Context, kid string) (interface{}, error) {
	set, err := k.cache.Get(ctx, k.url)
	if err != nil {
		return nil, fmt.Errorf("failed to load jwks: %w", err)
	}

	key, ok := set.LookupKeyID(kid)
	if !ok {
		if !k.refresh.Allow() {
			return nil, fmt.Errorf("%w: kid=%q", ErrUnknownKey, kid)
		}
		set, err = k.cache.Refresh(ctx, k.url)
		if err != nil {
			return nil, fmt.Errorf("failed to refresh jwks: %w", err)
		}
		if key, ok = set.LookupKeyID(kid); !ok {
			return nil, fmt.Errorf("%w: kid=%q", ErrUnknownKey, kid)
		}
	}

	var raw interface{}
	if err := key.Raw(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode jwk: %w", err)
	}
	return raw, nil
}

// Verify checks the signature and the registered claims and returns the claims.
// Tokens must carry exp and a non-empty sub.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (*Claims, error) {
	tokenString = strings.TrimSpace(strings.TrimPrefix(tokenString, "Bearer "))

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods(v.methods),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(30 * time.Second),
	}
	if v.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(tokenString, claims, v.keyfunc(ctx), parserOpts...); err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if claims.UserID() == "" {
		return nil, ErrMissingSubject
	}
	return claims, nil
}

// IssueToken signs an HS256 token for subject. Used by the token command
// for local development and tests; production tokens come from the provider.
func IssueToken(secret []byte, subject, issuer string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("jwt secret is empty")
	}
	if strings.TrimSpace(subject) == "" {
		return "", ErrMissingSubject
	}

	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
