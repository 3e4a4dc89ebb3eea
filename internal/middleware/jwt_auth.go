package middleware

import (
	"fmt"
	"strings"

	"github.com/fledge-social/fledge/backend/internal/apperrors"
	"github.com/fledge-social/fledge/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// JWTAuthMiddleware checks for a valid JWT and extracts user claims.
// Failures surface as apperrors.ErrUnauthorized and are rendered by the
// router's error handler.
func JWTAuthMiddleware(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return fmt.Errorf("missing Authorization header: %w", apperrors.ErrUnauthorized)
			}

			// Expecting "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return fmt.Errorf("invalid Authorization header format: %w", apperrors.ErrUnauthorized)
			}
			tokenString := parts[1]

			claims := &models.JwtCustomClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %w", apperrors.ErrUnauthorized)
				}
				return []byte(jwtSecret), nil
			})
			if err != nil {
				return fmt.Errorf("invalid token: %w", apperrors.ErrUnauthorized)
			}
			if !token.Valid {
				return fmt.Errorf("invalid token: %w", apperrors.ErrUnauthorized)
			}

			// Store user claims in context
			c.Set("user", claims)

			return next(c)
		}
	}
}
