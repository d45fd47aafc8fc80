package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func TestHMACVerifier(t *testing.T) {
	v, err := NewHMACVerifier(testSecret)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("Valid token", func(t *testing.T) {
		token, err := IssueToken(testSecret, "Alice", "", time.Hour)
		require.NoError(t, err)

		claims, err := v.Verify(ctx, "Bearer "+token)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.UserID())
	})

	t.Run("Wrong secret", func(t *testing.T) {
		token, err := IssueToken([]byte("other"), "alice", "", time.Hour)
		require.NoError(t, err)

		_, err = v.Verify(ctx, token)
		assert.Error(t, err)
	})

	t.Run("Expired", func(t *testing.T) {
		token, err := IssueToken(testSecret, "alice", "", -time.Hour)
		require.NoError(t, err)

		_, err = v.Verify(ctx, token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("Missing expiry", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "alice"}).SignedString(testSecret)
		require.NoError(t, err)

		_, err = v.Verify(ctx, token)
		assert.Error(t, err)
	})

	t.Run("Missing subject", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString(testSecret)
		require.NoError(t, err)

		_, err = v.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrMissingSubject)
	})

	t.Run("Unsigned token rejected", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"sub": "alice",
			"exp": time.Now().Add(time.Hour).Unix(),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = v.Verify(ctx, token)
		assert.Error(t, err)
	})

	t.Run("Issuer enforced", func(t *testing.T) {
		strict, err := NewHMACVerifier(testSecret, WithIssuer("https://id.example"))
		require.NoError(t, err)

		token, err := IssueToken(testSecret, "alice", "https://other.example", time.Hour)
		require.NoError(t, err)
		_, err = strict.Verify(ctx, token)
		assert.Error(t, err)

		token, err = IssueToken(testSecret, "alice", "https://id.example", time.Hour)
		require.NoError(t, err)
		_, err = strict.Verify(ctx, token)
		assert.NoError(t, err)
	})
}

func TestNewHMACVerifier_EmptySecret(t *testing.T) {
	_, err := NewHMACVerifier(nil)
	assert.Error(t, err)
}

func TestJWKSVerifier(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	publicJWK, err := jwk.FromRaw(&privateKey.PublicKey)
	require.NoError(t, err)
	require.NoError(t, publicJWK.Set(jwk.KeyIDKey, "key-1"))
	require.NoError(t, publicJWK.Set(jwk.AlgorithmKey, "RS256"))

	set := jwk.NewSet()
	require.NoError(t, set.AddKey(publicJWK))
	body, err := json.Marshal(set)
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	v, err := NewJWKSVerifier(ctx, server.URL)
	require.NoError(t, err)

	sign := func(kid string) string {
		token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
			"sub": "bob",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		token.Header["kid"] = kid
		signed, err := token.SignedString(privateKey)
		require.NoError(t, err)
		return signed
	}

	claims, err := v.Verify(ctx, sign("key-1"))
	require.NoError(t, err)
	assert.Equal(t, "bob", claims.UserID())

	_, err = v.Verify(ctx, sign("key-2"))
	assert.ErrorIs(t, err, ErrUnknownKey)

	hmacToken, err := IssueToken(testSecret, "bob", "", time.Hour)
	require.NoError(t, err)
	_, err = v.Verify(ctx, hmacToken)
	assert.Error(t, err)
}

func TestJWKSVerifier_UnknownKidRefreshIsThrottled(t *testing.T) {
	newKey := func(kid string) (*rsa.PrivateKey, jwk.Key) {
		privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
		require.NoError(t, err)
		publicJWK, err := jwk.FromRaw(&privateKey.PublicKey)
		require.NoError(t, err)
		require.NoError(t, publicJWK.Set(jwk.KeyIDKey, kid))
		require.NoError(t, publicJWK.Set(jwk.AlgorithmKey, "RS256"))
		return privateKey, publicJWK
	}
	encode := func(keys ...jwk.Key) []byte {
		set := jwk.NewSet()
		for _, key := range keys {
			require.NoError(t, set.AddKey(key))
		}
		body, err := json.Marshal(set)
		require.NoError(t, err)
		return body
	}

	key1, jwk1 := newKey("key-1")
	key2, jwk2 := newKey("key-2")

	var body atomic.Value
	body.Store(encode(jwk1))
	var fetches atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body.Load().([]byte))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	v, err := NewJWKSVerifier(ctx, server.URL)
	require.NoError(t, err)

	sign := func(key *rsa.PrivateKey, kid string) string {
		token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
			"sub": "carol",
			"exp": time.Now().Add(time.Hour).Unix(),
		})
		token.Header["kid"] = kid
		signed, err := token.SignedString(key)
		require.NoError(t, err)
		return signed
	}

	claims, err := v.Verify(ctx, sign(key1, "key-1"))
	require.NoError(t, err)
	assert.Equal(t, "carol", claims.UserID())
	afterStart := fetches.Load()

	// A rotated-in key is picked up by one forced refresh
	body.Store(encode(jwk1, jwk2))
	claims, err = v.Verify(ctx, sign(key2, "key-2"))
	require.NoError(t, err)
	assert.Equal(t, "carol", claims.UserID())
	assert.Equal(t, afterStart+1, fetches.Load())

	// Further unknown kids within the interval are rejected without fetching
	for i := 0; i < 20; i++ {
		_, err = v.Verify(ctx, sign(key2, "forged"))
		assert.ErrorIs(t, err, ErrUnknownKey)
	}
	assert.Equal(t, afterStart+1, fetches.Load())
}
