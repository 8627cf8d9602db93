package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"essay-auth/internal/infrastructure/token"
	"essay-auth/internal/usecase"
)

// FederatedHandler serves the Google sign-in round-trip and the signup
// completion step for identities that arrive without a matching principal.
type FederatedHandler struct {
	flow       *usecase.FederatedSignIn
	complete   *usecase.CompleteRegistration
	appURL     string
	refreshTTL time.Duration
	secure     bool
	logger     *slog.Logger
}

func NewFederatedHandler(
	flow *usecase.FederatedSignIn,
	complete *usecase.CompleteRegistration,
	appURL string,
	refreshTTL time.Duration,
	secureCookies bool,
	logger *slog.Logger,
) *FederatedHandler {
	return &FederatedHandler{
		flow:       flow,
		complete:   complete,
		appURL:     appURL,
		refreshTTL: refreshTTL,
		secure:     secureCookies,
		logger:     logger,
	}
}

// Login handles GET /auth/google/login. The state token goes out twice, in
// the provider URL and in a short-lived cookie, and must match on return.
func (h *FederatedHandler) Login(c echo.Context) error {
	authURL, state, err := h.flow.Start()
	if err != nil {
		h.logger.Error("failed to start federated flow", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	setStateCookie(c, state, h.secure)
	return c.Redirect(http.StatusFound, authURL)
}

// Callback handles GET /auth/google/callback. A matched principal lands in
// the app with a refresh cookie; an unknown one is sent to the signup page
// with the provider's identity prefilled in the URL. The pending identity is
// never stored server-side, the signup URL is its only carrier.
func (h *FederatedHandler) Callback(c echo.Context) error {
	stateCookie, err := c.Cookie(stateCookieName)
	if err != nil || !token.StateMatches(stateCookie.Value, c.QueryParam("state")) {
		return echo.NewHTTPError(http.StatusBadRequest, "state mismatch")
	}
	clearStateCookie(c, h.secure)

	code := c.QueryParam("code")
	if code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing authorization code")
	}

	result, err := h.flow.Callback(c.Request().Context(), code)
	if err != nil {
		h.logger.Warn("federated callback failed", "error", err)
		return mapDomainError(err)
	}

	if result.IsNewUser {
		return c.Redirect(http.StatusFound, h.signupURL(result))
	}

	setRefreshCookie(c, result.Credentials.RefreshToken, h.refreshTTL, h.secure)
	return c.Redirect(http.StatusFound, h.appURL+"/dashboard")
}

// Signup handles POST /auth/google/signup, the registration completion step.
func (h *FederatedHandler) Signup(c echo.Context) error {
	var req struct {
		Handle    string `json:"handle"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatarUrl"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	creds, err := h.complete.Execute(c.Request().Context(), usecase.CompleteRegistrationInput{
		Handle:    req.Handle,
		Name:      req.Name,
		AvatarURL: req.AvatarURL,
	})
	if err != nil {
		return mapDomainError(err)
	}

	setRefreshCookie(c, creds.RefreshToken, h.refreshTTL, h.secure)
	return c.JSON(http.StatusOK, tokenResponse{
		AccessToken: creds.AccessToken,
		User:        creds.Principal,
	})
}

func (h *FederatedHandler) signupURL(result *usecase.FederatedResult) string {
	q := url.Values{}
	q.Set("handle", result.Pending.Handle)
	if name := result.Pending.DisplayName(); name != "" {
		q.Set("name", name)
	}
	if result.Pending.AvatarURL != "" {
		q.Set("avatar", result.Pending.AvatarURL)
	}
	return h.appURL + "/signup?" + q.Encode()
}
