package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"essay-auth/internal/domain"
	"essay-auth/internal/usecase"
	"essay-auth/middleware"
)

// AuthHandler serves the local credential lifecycle: signup, sign-in,
// reissue, logout and the session probe.
type AuthHandler struct {
	signup     *usecase.SignupLocal
	signin     *usecase.SigninLocal
	reissue    *usecase.Reissue
	refreshTTL time.Duration
	secure     bool
	logger     *slog.Logger
}

func NewAuthHandler(
	signup *usecase.SignupLocal,
	signin *usecase.SigninLocal,
	reissue *usecase.Reissue,
	refreshTTL time.Duration,
	secureCookies bool,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		signup:     signup,
		signin:     signin,
		reissue:    reissue,
		refreshTTL: refreshTTL,
		secure:     secureCookies,
		logger:     logger,
	}
}

type signupRequest struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type signinRequest struct {
	Handle   string `json:"handle"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string            `json:"accessToken"`
	User        *domain.Principal `json:"user,omitempty"`
}

// Signup handles POST /auth/signup.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	p, err := h.signup.Execute(c.Request().Context(), usecase.SignupInput{
		Handle:   req.Handle,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusCreated, p)
}

// Signin handles POST /auth/signin. On success the refresh token travels
// only as an HttpOnly cookie; the body carries the access token.
func (h *AuthHandler) Signin(c echo.Context) error {
	var req signinRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	creds, err := h.signin.Execute(c.Request().Context(), req.Handle, req.Password)
	if err != nil {
		return mapDomainError(err)
	}

	setRefreshCookie(c, creds.RefreshToken, h.refreshTTL, h.secure)
	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken: creds.AccessToken,
		User:        creds.Principal,
	})
}

// Reissue handles POST /auth/reissue. No cookie means there is nothing to
// refresh, which is a distinct outcome from a rejected one: 204 tells the
// client to re-authenticate without treating it as an attack.
func (h *AuthHandler) Reissue(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		return c.NoContent(http.StatusNoContent)
	}

	access, err := h.reissue.Execute(c.Request().Context(), cookie.Value)
	if err != nil {
		clearRefreshCookie(c, h.secure)
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh rejected")
	}

	return c.JSON(http.StatusOK, tokenResponse{AccessToken: access})
}

// Logout handles POST /auth/logout. Clearing an absent cookie is fine, so
// repeated calls all succeed.
func (h *AuthHandler) Logout(c echo.Context) error {
	clearRefreshCookie(c, h.secure)
	return c.JSON(http.StatusOK, map[string]bool{"ok": true})
}

// Check handles GET /auth/check. The session gate has already verified the
// token; this just echoes the authenticated identity.
func (h *AuthHandler) Check(c echo.Context) error {
	handle, _ := middleware.HandleFromContext(c)
	role, _ := c.Get(middleware.ContextKeyRole).(domain.Role)
	return c.JSON(http.StatusOK, map[string]any{
		"handle": handle,
		"role":   role,
	})
}
