package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"essay-auth/internal/domain"
)

// mapDomainError translates domain sentinels into transport errors. Anything
// unrecognized becomes a 500 with a generic message so internals never leak.
func mapDomainError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, "handle already registered")
	case errors.Is(err, domain.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, domain.ErrAccountDisabled):
		return echo.NewHTTPError(http.StatusForbidden, "account disabled")
	case errors.Is(err, domain.ErrTokenExpired),
		errors.Is(err, domain.ErrTokenSignatureInvalid),
		errors.Is(err, domain.ErrTokenMalformed):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	case errors.Is(err, domain.ErrPrincipalNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "principal not found")
	case errors.Is(err, domain.ErrProviderUnavailable):
		return echo.NewHTTPError(http.StatusBadGateway, "identity provider unavailable")
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
