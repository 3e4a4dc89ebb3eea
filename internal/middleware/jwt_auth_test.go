package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fledge-social/fledge/backend/internal/apperrors"
	"github.com/fledge-social/fledge/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func invoke(t *testing.T, authHeader string) (echo.Context, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := JWTAuthMiddleware(testSecret)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	return c, handler(c)
}

func signToken(t *testing.T, secret, userID string) string {
	t.Helper()

	claims := &models.JwtCustomClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestJWTAuthMiddleware(t *testing.T) {
	t.Run("missing header is unauthorized", func(t *testing.T) {
		_, err := invoke(t, "")
		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
		require.Equal(t, http.StatusUnauthorized, apperrors.Status(err))
	})

	t.Run("malformed header is unauthorized", func(t *testing.T) {
		_, err := invoke(t, "Token abc")
		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
		require.Equal(t, http.StatusUnauthorized, apperrors.Status(err))
	})

	t.Run("garbage token is unauthorized", func(t *testing.T) {
		_, err := invoke(t, "Bearer not-a-jwt")
		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
		require.Equal(t, http.StatusUnauthorized, apperrors.Status(err))
	})

	t.Run("token signed with wrong secret is unauthorized", func(t *testing.T) {
		signed := signToken(t, "other-secret", "64b0f0a1e4b0c2d3e4f5a6b7")
		_, err := invoke(t, "Bearer "+signed)
		require.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("valid token sets claims in context", func(t *testing.T) {
		signed := signToken(t, testSecret, "64b0f0a1e4b0c2d3e4f5a6b7")
		c, err := invoke(t, "Bearer "+signed)
		require.NoError(t, err)

		claims, ok := c.Get("user").(*models.JwtCustomClaims)
		require.True(t, ok)
		require.Equal(t, "64b0f0a1e4b0c2d3e4f5a6b7", claims.UserID)
	})
}
