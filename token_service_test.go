package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/nexotv/nexo-auth"
)

func TestNewTokenService(t *testing.T) {
	ts := auth.NewTokenServiceFromConfig(newMockConfig(), nil)
	require.NotNil(t, ts)

	token, err := ts.Sign("user-123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestTokenService_Sign(t *testing.T) {
	ts := auth.NewTokenService([]byte("test-signing-key"), 0, "test-issuer", []string{"test:audience"}, nil)

	before := time.Now().Add(-time.Second)
	token, err := ts.Sign("user-123")
	require.NoError(t, err)

	parsed, err := jwt.ParseWithClaims(token, &auth.JWTClaims{}, func(t *jwt.Token) (any, error) {
		return []byte("test-signing-key"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, jwt.SigningMethodHS256.Alg(), parsed.Method.Alg())

	claims := parsed.Claims.(*auth.JWTClaims)
	assert.Equal(t, "user-123", claims.UID)
	assert.Equal(t, "user-123", claims.Subject())
	assert.Equal(t, "test-issuer", claims.Issuer)
	assert.Equal(t, jwt.ClaimStrings{"test:audience"}, claims.Audience)
	assert.NotEmpty(t, claims.ID)

	// zero expiration falls back to the default
	expected := before.Add(auth.DefaultTokenExpiration * time.Hour)
	assert.WithinDuration(t, expected, claims.Expires(), 5*time.Second)
	assert.False(t, claims.IssuedAt().IsZero())
}

func TestTokenService_SignRequiresUserID(t *testing.T) {
	ts := auth.NewTokenServiceFromConfig(newMockConfig(), nil)

	_, err := ts.Sign("")
	assert.Error(t, err)
}

func TestTokenService_SignIsUnique(t *testing.T) {
	ts := auth.NewTokenServiceFromConfig(newMockConfig(), nil)

	t1, err := ts.Sign("user-123")
	require.NoError(t, err)
	t2, err := ts.Sign("user-123")
	require.NoError(t, err)

	assert.NotEqual(t, t1, t2)

	c1, err := ts.Validate(t1)
	require.NoError(t, err)
	c2, err := ts.Validate(t2)
	require.NoError(t, err)
	assert.Equal(t, c1.UserID(), c2.UserID())
	assert.NotEqual(t, c1.ID, c2.ID)
}

func TestTokenService_Validate(t *testing.T) {
	key := []byte("test-signing-key")
	ts := auth.NewTokenService(key, 4, "test-issuer", []string{"test:audience"}, nil)

	sign := func(t *testing.T, method jwt.SigningMethod, signKey any, claims *auth.JWTClaims) string {
		t.Helper()
		token, err := jwt.NewWithClaims(method, claims).SignedString(signKey)
		require.NoError(t, err)
		return token
	}

	baseClaims := func(exp time.Time) *auth.JWTClaims {
		return &auth.JWTClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "test-issuer",
				Subject:   "user-123",
				Audience:  jwt.ClaimStrings{"test:audience"},
				ExpiresAt: jwt.NewNumericDate(exp),
				IssuedAt:  jwt.NewNumericDate(time.Now()),
			},
			UID: "user-123",
		}
	}

	t.Run("valid token", func(t *testing.T) {
		claims, err := ts.Validate(sign(t, jwt.SigningMethodHS256, key, baseClaims(time.Now().Add(time.Hour))))
		require.NoError(t, err)
		assert.Equal(t, "user-123", claims.UserID())
	})

	t.Run("expired token", func(t *testing.T) {
		_, err := ts.Validate(sign(t, jwt.SigningMethodHS256, key, baseClaims(time.Now().Add(-time.Hour))))
		require.Error(t, err)
		assert.Equal(t, auth.ErrTokenExpired, err)
		assert.True(t, auth.IsTokenExpiredError(err))
	})

	t.Run("wrong key", func(t *testing.T) {
		_, err := ts.Validate(sign(t, jwt.SigningMethodHS256, []byte("other-key"), baseClaims(time.Now().Add(time.Hour))))
		require.Error(t, err)
		assert.True(t, auth.IsMalformedError(err))
	})

	t.Run("wrong issuer", func(t *testing.T) {
		claims := baseClaims(time.Now().Add(time.Hour))
		claims.Issuer = "someone-else"
		_, err := ts.Validate(sign(t, jwt.SigningMethodHS256, key, claims))
		assert.Error(t, err)
	})

	t.Run("wrong audience", func(t *testing.T) {
		claims := baseClaims(time.Now().Add(time.Hour))
		claims.Audience = jwt.ClaimStrings{"elsewhere"}
		_, err := ts.Validate(sign(t, jwt.SigningMethodHS256, key, claims))
		assert.Error(t, err)
	})

	t.Run("other hmac algorithm", func(t *testing.T) {
		_, err := ts.Validate(sign(t, jwt.SigningMethodHS512, key, baseClaims(time.Now().Add(time.Hour))))
		assert.Error(t, err)
	})

	t.Run("none algorithm", func(t *testing.T) {
		token := sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, baseClaims(time.Now().Add(time.Hour)))
		_, err := ts.Validate(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := ts.Validate("not-a-token")
		require.Error(t, err)
		assert.True(t, auth.IsMalformedError(err))
	})
}

func TestTokenValidatorFunc(t *testing.T) {
	var nilFn auth.TokenValidatorFunc
	_, err := nilFn.Validate("x")
	assert.Equal(t, auth.ErrUnableToDecodeSession, err)

	fn := auth.TokenValidatorFunc(func(raw string) (*auth.JWTClaims, error) {
		return &auth.JWTClaims{UID: raw}, nil
	})
	claims, err := fn.Validate("user-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
}
