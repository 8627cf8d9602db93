package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"essay-auth/internal/domain"
)

// Context keys set by the session gate for downstream handlers.
const (
	ContextKeyHandle = "principal_handle"
	ContextKeyRole   = "principal_role"
)

// Machine-readable codes carried in 401 bodies. Clients treat TOKEN_EXPIRED
// as retryable after a reissue; every other rejection is terminal.
const (
	CodeTokenExpired = "TOKEN_EXPIRED"
	CodeAuthFailed   = "AUTH_FAILED"
)

type authError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SessionGate verifies the bearer access token on every request it guards
// and rejects before any handler logic runs.
type SessionGate struct {
	issuer domain.TokenIssuer
}

func NewSessionGate(issuer domain.TokenIssuer) *SessionGate {
	return &SessionGate{issuer: issuer}
}

// Middleware returns an Echo middleware enforcing a valid access token.
// On success the principal's handle and role are placed on the request
// context for handlers and later middleware.
func (g *SessionGate) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c.Request())
			if !ok {
				return c.JSON(http.StatusUnauthorized, authError{
					Code:    CodeAuthFailed,
					Message: "missing bearer token",
				})
			}

			claims, err := g.issuer.Verify(token)
			if err != nil {
				if errors.Is(err, domain.ErrTokenExpired) {
					return c.JSON(http.StatusUnauthorized, authError{
						Code:    CodeTokenExpired,
						Message: "access token expired",
					})
				}
				return c.JSON(http.StatusUnauthorized, authError{
					Code:    CodeAuthFailed,
					Message: "invalid access token",
				})
			}

			c.Set(ContextKeyHandle, claims.Handle)
			c.Set(ContextKeyRole, claims.Role)
			return next(c)
		}
	}
}

// RequireRole returns a middleware rejecting principals whose role does not
// match. It must run after the session gate.
func RequireRole(role domain.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got, ok := c.Get(ContextKeyRole).(domain.Role)
			if !ok || got != role {
				return echo.NewHTTPError(http.StatusForbidden, "insufficient role")
			}
			return next(c)
		}
	}
}

// RequireAdmin guards the administrative surface.
func RequireAdmin() echo.MiddlewareFunc {
	return RequireRole(domain.RoleAdmin)
}

// HandleFromContext returns the authenticated principal's handle, if the
// session gate ran on this request.
func HandleFromContext(c echo.Context) (string, bool) {
	handle, ok := c.Get(ContextKeyHandle).(string)
	return handle, ok && handle != ""
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}
