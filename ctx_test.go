package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	user := PublicUser{ID: "user-1", Email: "a@x.com", Role: RoleAdmin}
	ctx := WithContext(context.Background(), user)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, user, got)
	assert.True(t, IsAdmin(ctx))
	assert.False(t, IsAdmin(WithContext(context.Background(), PublicUser{Role: RoleUser})))
}

func TestGetClaims(t *testing.T) {
	_, ok := GetClaims(context.Background())
	assert.False(t, ok)

	_, ok = GetClaims(WithClaimsContext(context.Background(), nil))
	assert.False(t, ok)

	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user123"},
		UID:              "user123",
	}
	got, ok := GetClaims(WithClaimsContext(context.Background(), claims))
	require.True(t, ok)
	assert.Equal(t, "user123", got.UserID())
}

func TestJWTClaimsUserIDFallsBackToSubject(t *testing.T) {
	claims := &JWTClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "sub-1"}}
	assert.Equal(t, "sub-1", claims.UserID())
	assert.True(t, claims.Expires().IsZero())
	assert.True(t, claims.IssuedAt().IsZero())
}

func TestUserFromLocals(t *testing.T) {
	srv := router.NewFiberAdapter(func(_ *fiber.App) *fiber.App {
		return fiber.New()
	})
	r := srv.Router()

	r.Get("/value", func(c router.Context) error {
		c.Locals("user", PublicUser{ID: "v"})
		u, ok := UserFromLocals(c, "")
		if !ok {
			return c.Status(http.StatusNotFound).SendString("")
		}
		return c.SendString(u.ID)
	})
	r.Get("/pointer", func(c router.Context) error {
		c.Locals("current", &PublicUser{ID: "p"})
		u, ok := UserFromLocals(c, "current")
		if !ok {
			return c.Status(http.StatusNotFound).SendString("")
		}
		return c.SendString(u.ID)
	})
	r.Get("/missing", func(c router.Context) error {
		c.Locals("user", "not a user")
		if _, ok := UserFromLocals(c, ""); ok {
			return c.SendString("")
		}
		return c.Status(http.StatusNotFound).SendString("")
	})

	app := srv.WrappedRouter()
	for path, want := range map[string]int{"/value": 200, "/pointer": 200, "/missing": 404} {
		resp, err := app.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, path)
	}
}
