package handlers

import (
	"fmt"

	"github.com/fledge-social/fledge/backend/internal/apperrors"
	"github.com/fledge-social/fledge/backend/internal/models"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// getUserIDFromContext extracts the authenticated user's ObjectID from the
// JWT claims stored by the auth middleware.
func getUserIDFromContext(c echo.Context) (primitive.ObjectID, error) {
	claims, ok := c.Get("user").(*models.JwtCustomClaims)
	if !ok {
		return primitive.NilObjectID, toHTTPError(fmt.Errorf("user not authenticated: %w", apperrors.ErrUnauthorized))
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return primitive.NilObjectID, toHTTPError(fmt.Errorf("invalid user ID in token: %w", apperrors.ErrUnauthorized))
	}
	return id, nil
}

// toHTTPError translates a domain error into an echo HTTP error using the
// apperrors status mapping.
func toHTTPError(err error) *echo.HTTPError {
	return echo.NewHTTPError(apperrors.Status(err), err.Error())
}
